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


package docindex

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/ai/openai"
	"github.com/poiesic/docindex/chunk"
	"github.com/poiesic/docindex/config"
	"github.com/poiesic/docindex/ingest"
	"github.com/poiesic/docindex/parse"
	"github.com/poiesic/docindex/queue"
	"github.com/poiesic/docindex/status"
	"github.com/poiesic/docindex/storage"
	"github.com/poiesic/docindex/storage/badger"
	"github.com/poiesic/docindex/storage/object"
	"github.com/poiesic/docindex/storage/postgres"
)

// Service wires the storage backends, embedding provider and pipeline into
// one closable unit.
type Service struct {
	cfg      *config.Config
	repo     storage.DocumentRepository
	index    storage.VectorIndex
	store    storage.ObjectStore
	provider ai.Provider
	backend  *badger.Backend // nil when the postgres index is selected
	tracker  *status.Tracker
	pipeline *ingest.Pipeline
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	provider    ai.Provider
	concurrency int
}

// WithProvider substitutes the embedding provider, primarily for tests.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithWorkerConcurrency processes up to n batch records in parallel.
func WithWorkerConcurrency(n int) ServiceOption {
	return func(o *serviceOptions) {
		o.concurrency = n
	}
}

// NewService builds a Service from cfg. Backends are selected by the
// VECTOR_BACKEND and OBJECT_BACKEND settings.
func NewService(ctx context.Context, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	repo, err := postgres.NewDocumentRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:    cfg,
		repo:   repo,
		logger: slog.Default().With("component", "service"),
	}

	svc.index, svc.backend, err = openVectorIndex(cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	svc.store, err = openObjectStore(ctx, cfg)
	if err != nil {
		svc.closePartial()
		return nil, err
	}

	svc.provider = options.provider
	if svc.provider == nil {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(cfg.EmbeddingHost),
			ai.WithEmbeddingModel(cfg.EmbeddingModel),
			ai.WithDimensions(cfg.EmbeddingDims),
		)
		svc.provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			svc.closePartial()
			return nil, err
		}
	}

	splitter, err := chunk.NewSplitter(
		chunk.WithMaxChars(cfg.ChunkSize),
		chunk.WithOverlap(cfg.ChunkOverlap),
	)
	if err != nil {
		svc.Close()
		return nil, err
	}

	svc.pipeline, err = ingest.NewPipeline(
		svc.store,
		parse.NewDocumentParser(),
		splitter,
		svc.provider.Embedder(),
		svc.index,
	)
	if err != nil {
		svc.Close()
		return nil, err
	}

	svc.tracker = status.NewTracker(repo)
	return svc, nil
}

func openVectorIndex(cfg *config.Config) (storage.VectorIndex, *badger.Backend, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendPostgres:
		index, err := postgres.NewVectorIndex(cfg.DatabaseURL, cfg.EmbeddingDims)
		return index, nil, err
	default:
		backend, err := badger.OpenBackend(filepath.Join(cfg.DataDir, cfg.VectorsBucket), false)
		if err != nil {
			return nil, nil, err
		}
		index, err := badger.NewVectorIndex(backend)
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		return index, backend, nil
	}
}

func openObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.ObjectBackend {
	case config.ObjectBackendGCS:
		return object.NewGCSStore(ctx, cfg.DocumentsBucket)
	default:
		return object.NewFSStore(filepath.Join(cfg.DataDir, cfg.DocumentsBucket))
	}
}

// NewCoordinator creates a batch coordinator over the service pipeline.
func (s *Service) NewCoordinator(opts ...ingest.CoordinatorOption) (*ingest.Coordinator, error) {
	return ingest.NewCoordinator(s.pipeline, s.tracker, opts...)
}

// NewConsumer creates a queue consumer feeding the given handler.
func (s *Service) NewConsumer(handler ingest.Handler, opts ...queue.Option) (*queue.Consumer, error) {
	opts = append([]queue.Option{queue.WithBatchSize(s.cfg.BatchSize)}, opts...)
	return queue.NewConsumer(s.cfg.KafkaBrokers, s.cfg.KafkaTopic, s.cfg.KafkaGroupID, handler, opts...)
}

// DocumentRepository exposes the relational store.
func (s *Service) DocumentRepository() storage.DocumentRepository {
	return s.repo
}

// VectorIndex exposes the vector store.
func (s *Service) VectorIndex() storage.VectorIndex {
	return s.index
}

// Embedder exposes the embedding service.
func (s *Service) Embedder() ai.Embedder {
	return s.provider.Embedder()
}

// Tracker exposes the status tracker.
func (s *Service) Tracker() *status.Tracker {
	return s.tracker
}

// Pipeline exposes the ingestion pipeline for one-shot use.
func (s *Service) Pipeline() *ingest.Pipeline {
	return s.pipeline
}

// Close releases all service resources in reverse construction order.
func (s *Service) Close() error {
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
		}
	}
	return s.closePartial()
}

func (s *Service) closePartial() error {
	var firstErr error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("error closing object store", "err", err)
			firstErr = err
		}
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			s.logger.Error("error closing vector index", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing badger backend", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			s.logger.Error("error closing document repository", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
