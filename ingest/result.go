// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import "net/http"

// RecordResult is the per-record outcome of a batch invocation. The field
// names are the externally observed reporting contract; messageId is
// deliberately camel-cased while the rest are snake-cased.
type RecordResult struct {
	MessageID        string `json:"messageId"`
	Status           string `json:"status"`
	DocumentID       string `json:"document_id,omitempty"`
	ChunkCount       int    `json:"chunk_count,omitempty"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	Error            string `json:"error,omitempty"`
	Details          string `json:"details,omitempty"`
}

const (
	// ResultSuccess marks a record whose document was fully indexed.
	ResultSuccess = "success"
	// ResultFailed marks a record that failed at any stage.
	ResultFailed = "failed"
)

// BatchResult aggregates the outcomes of one batch. Processed counts every
// record handled, including the failed ones; Failed counts the subset that
// failed.
type BatchResult struct {
	Processed int            `json:"processed"`
	Failed    int            `json:"failed"`
	Results   []RecordResult `json:"results"`
}

// Add appends a record result, updating the counters.
func (b *BatchResult) Add(result RecordResult) {
	b.Results = append(b.Results, result)
	b.Processed++
	if result.Status != ResultSuccess {
		b.Failed++
	}
}

// StatusCode maps the batch outcome to an HTTP-style status: 200 when every
// record succeeded, 206 whenever any record failed. An empty batch is a
// success. 500 is reserved for configuration failures caught before a batch
// is handled; those surface as service construction errors, so the worker
// never reaches this point.
func (b *BatchResult) StatusCode() int {
	if b.Failed > 0 {
		return http.StatusPartialContent
	}
	return http.StatusOK
}
