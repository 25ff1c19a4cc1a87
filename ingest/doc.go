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


// Package ingest implements the document ingestion pipeline and the batch
// coordinator that drives it.
//
// The coordinator receives batches of queue records, resolves each into an
// IngestJob, and runs every job through the pipeline stages independently:
//
//	fetch -> parse -> chunk -> embed -> upsert
//
// One failing job never aborts its batch. Each record produces its own
// RecordResult, and a BatchResult aggregates them so the queue layer can
// decide what to acknowledge.
//
// # Idempotency
//
// Chunk identifiers are content-addressed, so reprocessing a document after
// a redelivered message overwrites its vectors in place rather than
// duplicating them. Jobs derived from storage notifications get document
// IDs derived deterministically from the object key for the same reason.
package ingest
