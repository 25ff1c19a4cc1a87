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


// Package queue consumes ingestion messages from Kafka and hands them to
// the batch coordinator.
//
// Offsets are committed per batch after the coordinator returns, whatever
// the per-record outcomes were: failed documents are recorded in the
// status store, not redelivered, so a poisoned message cannot wedge the
// partition. Uncommitted batches (worker crash mid-batch) are redelivered,
// which is safe because processing is idempotent end to end.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/poiesic/docindex/ingest"
)

const (
	defaultBatchSize = 10
	defaultBatchWait = 2 * time.Second
)

// Consumer reads ingestion messages from a Kafka consumer group.
type Consumer struct {
	reader    *kafka.Reader
	handler   ingest.Handler
	batchSize int
	batchWait time.Duration
	logger    *slog.Logger
}

// Option configures a Consumer.
type Option func(*Consumer) error

// WithBatchSize caps how many messages are collected before the handler is
// invoked.
func WithBatchSize(size int) Option {
	return func(c *Consumer) error {
		if size <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		c.batchSize = size
		return nil
	}
}

// WithBatchWait bounds how long the consumer waits to fill a batch once it
// holds at least one message.
func WithBatchWait(wait time.Duration) Option {
	return func(c *Consumer) error {
		if wait <= 0 {
			return fmt.Errorf("batch wait must be positive, got %v", wait)
		}
		c.batchWait = wait
		return nil
	}
}

// NewConsumer creates a Consumer in the given consumer group.
func NewConsumer(brokers []string, topic, groupID string, handler ingest.Handler, opts ...Option) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" || groupID == "" {
		return nil, fmt.Errorf("topic and group ID are required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	c := &Consumer{
		handler:   handler,
		batchSize: defaultBatchSize,
		batchWait: defaultBatchWait,
		logger:    slog.Default().With("component", "queue"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return c, nil
}

// Run consumes batches until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", "batch_size", c.batchSize)
	for {
		batch, err := c.fetchBatch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping")
				return nil
			}
			return fmt.Errorf("fetch failed: %w", err)
		}
		if len(batch) == 0 {
			continue
		}

		messages := make([]ingest.Message, len(batch))
		for i, m := range batch {
			messages[i] = ingest.Message{
				ID:   fmt.Sprintf("%s-%d-%d", m.Topic, m.Partition, m.Offset),
				Body: m.Value,
			}
		}

		result := c.handler.HandleBatch(ctx, messages)
		c.logger.Info("batch handled",
			"records", len(messages),
			"processed", result.Processed,
			"failed", result.Failed,
			"status_code", result.StatusCode())

		if err := c.reader.CommitMessages(ctx, batch...); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("commit failed: %w", err)
		}
	}
}

// fetchBatch blocks for the first message, then fills the batch until it
// is full or batchWait elapses.
func (c *Consumer) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	first, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	batch := []kafka.Message{first}

	fillCtx, cancel := context.WithTimeout(ctx, c.batchWait)
	defer cancel()
	for len(batch) < c.batchSize {
		m, err := c.reader.FetchMessage(fillCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			if errors.Is(err, context.Canceled) && ctx.Err() == nil {
				break
			}
			return nil, err
		}
		batch = append(batch, m)
	}
	return batch, nil
}

// Close shuts the underlying reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
