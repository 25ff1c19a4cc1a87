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
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/chunk"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/parse"
	"github.com/poiesic/docindex/storage"
)

const (
	upsertMaxAttempts = 5
	upsertBaseDelay   = 200 * time.Millisecond
)

// Pipeline runs one document through fetch, parse, chunk, embed and upsert.
type Pipeline struct {
	store    storage.ObjectStore
	parser   parse.Parser
	splitter *chunk.Splitter
	embed    *embedStage
	index    storage.VectorIndex
	workDir  string
	logger   *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithEmbedBatchSize sets how many chunk texts are submitted to the
// embedding provider per call.
func WithEmbedBatchSize(size int) PipelineOption {
	return func(p *Pipeline) error {
		if size <= 0 {
			return fmt.Errorf("embed batch size must be positive, got %d", size)
		}
		p.embed.batchSize = size
		return nil
	}
}

// WithWorkDir sets the directory used for temporary downloads. Defaults to
// the system temp directory.
func WithWorkDir(dir string) PipelineOption {
	return func(p *Pipeline) error {
		if dir == "" {
			return fmt.Errorf("work dir must not be empty")
		}
		p.workDir = dir
		return nil
	}
}

// NewPipeline creates a Pipeline from its stage dependencies.
func NewPipeline(store storage.ObjectStore, parser parse.Parser, splitter *chunk.Splitter, embedder ai.Embedder, index storage.VectorIndex, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		store:    store,
		parser:   parser,
		splitter: splitter,
		embed:    newEmbedStage(embedder, defaultEmbedBatchSize),
		index:    index,
		workDir:  os.TempDir(),
		logger:   slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Process runs job through every stage and returns the number of chunks
// indexed. The downloaded file is removed before Process returns.
//
// Chunk identifiers are derived from chunk text, the canonical storage key
// and the chunk offset, so rerunning the same job overwrites its vectors
// instead of duplicating them.
func (p *Pipeline) Process(ctx context.Context, job *core.IngestJob) (int, error) {
	if err := core.ValidateJob(job); err != nil {
		return 0, err
	}

	tmpDir, err := os.MkdirTemp(p.workDir, "docindex-")
	if err != nil {
		return 0, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, filepath.Base(job.Filename))
	if err := p.store.Fetch(ctx, job.StorageKey, localPath); err != nil {
		return 0, fmt.Errorf("fetch stage: %w", err)
	}

	segments, err := p.parser.Parse(ctx, localPath, job.StorageKey)
	if err != nil {
		return 0, fmt.Errorf("parse stage: %w", err)
	}

	chunks, err := p.splitter.Split(segments, job.DocumentID, job.SessionID)
	if err != nil {
		return 0, fmt.Errorf("chunk stage: %w", err)
	}
	if len(chunks) == 0 {
		return 0, ErrNoChunks
	}

	if err := p.embed.embedChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("embed stage: %w", err)
	}

	records := make([]*core.VectorRecord, len(chunks))
	for i := range chunks {
		records[i] = chunks[i].VectorRecord()
	}

	// Index backends can throttle under load; retry with backoff before
	// failing the document.
	err = RetryWithBackoff(ctx, func() error {
		return p.index.Upsert(ctx, records...)
	}, upsertMaxAttempts, upsertBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("upsert stage: %w", err)
	}

	p.logger.Info("document indexed",
		"document_id", job.DocumentID,
		"session_id", job.SessionID,
		"chunks", len(records))
	return len(records), nil
}
