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

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/status"
)

// Message is one queue record as seen by the coordinator.
type Message struct {
	ID   string
	Body []byte
}

// Handler processes a batch of queue messages.
type Handler interface {
	HandleBatch(ctx context.Context, messages []Message) *BatchResult
}

// Coordinator resolves queue messages into jobs and drives each one
// through the pipeline. Records in a batch are independent: one failure
// never aborts the others.
type Coordinator struct {
	pipeline *Pipeline
	tracker  *status.Tracker
	pool     *ants.Pool
	logger   *slog.Logger
}

var _ Handler = (*Coordinator)(nil)

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator) error

// WithConcurrency processes up to n batch records in parallel. Without
// this option records are processed sequentially in delivery order.
func WithConcurrency(n int) CoordinatorOption {
	return func(c *Coordinator) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return fmt.Errorf("failed to create worker pool: %w", err)
		}
		c.pool = pool
		return nil
	}
}

// NewCoordinator creates a Coordinator over the given pipeline and tracker.
func NewCoordinator(pipeline *Pipeline, tracker *status.Tracker, opts ...CoordinatorOption) (*Coordinator, error) {
	c := &Coordinator{
		pipeline: pipeline,
		tracker:  tracker,
		logger:   slog.Default().With("component", "coordinator"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			if c.pool != nil {
				c.pool.Release()
			}
			return nil, err
		}
	}
	return c, nil
}

// Close releases the worker pool, if any.
func (c *Coordinator) Close() error {
	if c.pool != nil {
		c.pool.Release()
	}
	return nil
}

// HandleBatch processes every message and returns per-record outcomes in
// delivery order.
func (c *Coordinator) HandleBatch(ctx context.Context, messages []Message) *BatchResult {
	results := make([]RecordResult, len(messages))

	if c.pool == nil {
		for i := range messages {
			results[i] = c.processMessage(ctx, messages[i])
		}
	} else {
		var wg sync.WaitGroup
		for i := range messages {
			wg.Add(1)
			idx := i
			err := c.pool.Submit(func() {
				defer wg.Done()
				results[idx] = c.processMessage(ctx, messages[idx])
			})
			if err != nil {
				// Pool rejected the task; fall back to inline processing.
				results[idx] = c.processMessage(ctx, messages[idx])
				wg.Done()
			}
		}
		wg.Wait()
	}

	batch := &BatchResult{}
	for _, result := range results {
		batch.Add(result)
	}
	c.logger.Info("batch complete",
		"records", len(messages),
		"processed", batch.Processed,
		"failed", batch.Failed,
		"status_code", batch.StatusCode())
	return batch
}

// processMessage resolves one queue message into jobs and runs them. A
// notification message can carry several objects; its record succeeds only
// if every derived job succeeds.
func (c *Coordinator) processMessage(ctx context.Context, msg Message) RecordResult {
	started := time.Now()

	jobs, err := ParseMessage(msg.Body)
	if err != nil {
		c.logger.Warn("unresolvable message", "message_id", msg.ID, "error", err)
		return RecordResult{
			MessageID:        msg.ID,
			Status:           ResultFailed,
			ProcessingTimeMS: time.Since(started).Milliseconds(),
			Error:            ErrInvalidMessageFormat.Error(),
			Details:          err.Error(),
		}
	}

	totalChunks := 0
	var docIDs []string
	var failures []string
	for _, job := range jobs {
		count, err := c.processJob(ctx, job)
		docIDs = append(docIDs, job.DocumentID.String())
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		totalChunks += count
	}

	result := RecordResult{
		MessageID:        msg.ID,
		DocumentID:       strings.Join(docIDs, ","),
		ChunkCount:       totalChunks,
		ProcessingTimeMS: time.Since(started).Milliseconds(),
	}
	if len(failures) > 0 {
		result.Status = ResultFailed
		result.Error = strings.Join(failures, "; ")
	} else {
		result.Status = ResultSuccess
	}
	return result
}

// processJob runs one job through the pipeline, keeping the document row
// in step with the outcome.
func (c *Coordinator) processJob(ctx context.Context, job *core.IngestJob) (int, error) {
	if job.Source == core.JobSourceNotification {
		if err := c.tracker.EnsureDocument(ctx, job); err != nil {
			return 0, fmt.Errorf("ensure document %s: %w", job.DocumentID, err)
		}
	}

	if err := c.tracker.MarkProcessing(ctx, job.DocumentID); err != nil {
		return 0, fmt.Errorf("mark processing %s: %w", job.DocumentID, err)
	}

	count, err := c.pipeline.Process(ctx, job)
	if err != nil {
		c.logger.Error("pipeline failed",
			"document_id", job.DocumentID,
			"session_id", job.SessionID,
			"error", err)
		if markErr := c.tracker.MarkFailed(ctx, job.DocumentID, err.Error()); markErr != nil {
			c.logger.Error("failed to record failure", "document_id", job.DocumentID, "error", markErr)
		}
		return 0, err
	}

	if err := c.tracker.MarkCompleted(ctx, job.DocumentID); err != nil {
		// Don't leave the row stuck in processing; a polling client needs
		// a terminal status even when the completion write was lost.
		err = fmt.Errorf("mark completed %s: %w", job.DocumentID, err)
		if markErr := c.tracker.MarkFailed(ctx, job.DocumentID, err.Error()); markErr != nil {
			c.logger.Error("failed to record failure", "document_id", job.DocumentID, "error", markErr)
		}
		return 0, err
	}
	return count, nil
}
