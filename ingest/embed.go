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
	"time"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/core"
)

const (
	defaultEmbedBatchSize = 32
	embedMaxAttempts      = 3
	embedBaseDelay        = 500 * time.Millisecond
)

// embedStage turns chunk text into vectors and assigns content-addressed
// chunk IDs.
type embedStage struct {
	embedder  ai.Embedder
	batchSize int
	logger    *slog.Logger
}

func newEmbedStage(embedder ai.Embedder, batchSize int) *embedStage {
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	return &embedStage{
		embedder:  embedder,
		batchSize: batchSize,
		logger:    slog.Default().With("component", "embed"),
	}
}

// embedChunks fills in ID and Vector for every chunk, submitting texts to
// the provider in batches. Transient provider failures are retried with
// backoff before the stage gives up.
func (e *embedStage) embedChunks(ctx context.Context, chunks []core.Chunk) error {
	for start := 0; start < len(chunks); start += e.batchSize {
		end := min(start+e.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}

		var vectors [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			vectors, embedErr = e.embedder.EmbedTexts(ctx, texts)
			return embedErr
		}, embedMaxAttempts, embedBaseDelay)
		if err != nil {
			return fmt.Errorf("embedding batch at offset %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingCountMismatch, len(vectors), len(batch))
		}

		for i := range batch {
			batch[i].Vector = vectors[i]
			batch[i].ID = core.ChunkID(batch[i].Text, batch[i].Meta.Source, batch[i].Meta.Offset)
		}

		e.logger.Debug("embedded batch", "offset", start, "size", len(batch))
	}
	return nil
}
