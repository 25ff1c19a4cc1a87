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


// Package config loads and validates the worker's environment configuration.
//
// Required values are validated once at startup. A missing required value
// is a fatal, non-retryable condition: no queue record is processed without
// a complete configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvDocumentsBucket = "DOCUMENTS_BUCKET"
	EnvVectorsBucket   = "VECTORS_BUCKET"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvRegion          = "REGION"
	EnvLogLevel        = "LOG_LEVEL"

	EnvKafkaBrokers   = "KAFKA_BROKERS"
	EnvKafkaTopic     = "KAFKA_TOPIC"
	EnvKafkaGroupID   = "KAFKA_GROUP_ID"
	EnvBatchSize      = "BATCH_SIZE"
	EnvEmbeddingHost  = "EMBEDDING_HOST"
	EnvEmbeddingModel = "EMBEDDING_MODEL"
	EnvEmbeddingDims  = "EMBEDDING_DIMENSIONS"
	EnvChunkSize      = "CHUNK_SIZE"
	EnvChunkOverlap   = "CHUNK_OVERLAP"
	EnvVectorBackend  = "VECTOR_BACKEND"
	EnvObjectBackend  = "OBJECT_BACKEND"
	EnvDataDir        = "DATA_DIR"
)

// ErrMissingEnv indicates one or more required environment variables are unset.
// This is fatal and non-retryable.
var ErrMissingEnv = errors.New("missing required environment configuration")

// Backend selector values.
const (
	VectorBackendBadger   = "badger"
	VectorBackendPostgres = "postgres"

	ObjectBackendFS  = "fs"
	ObjectBackendGCS = "gcs"
)

// Config holds the full worker configuration.
type Config struct {
	// Required.
	DocumentsBucket string // object-storage bucket holding uploaded documents
	VectorsBucket   string // vector index name (badger directory / postgres table namespace)
	DatabaseURL     string // relational store connection string
	Region          string
	LogLevel        string

	// Queue.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	BatchSize    int

	// Embeddings.
	EmbeddingHost  string
	EmbeddingModel string
	EmbeddingDims  int

	// Chunking.
	ChunkSize    int
	ChunkOverlap int

	// Backend selection.
	VectorBackend string // "badger" or "postgres"
	ObjectBackend string // "fs" or "gcs"
	DataDir       string // root for badger data and fs object store
}

// FromEnv builds a Config from the process environment and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DocumentsBucket: os.Getenv(EnvDocumentsBucket),
		VectorsBucket:   os.Getenv(EnvVectorsBucket),
		DatabaseURL:     os.Getenv(EnvDatabaseURL),
		Region:          os.Getenv(EnvRegion),
		LogLevel:        os.Getenv(EnvLogLevel),

		KafkaBrokers: splitList(getEnv(EnvKafkaBrokers, "localhost:9092")),
		KafkaTopic:   getEnv(EnvKafkaTopic, "document-ingest"),
		KafkaGroupID: getEnv(EnvKafkaGroupID, "docindex-workers"),
		BatchSize:    getEnvInt(EnvBatchSize, 10),

		EmbeddingHost:  getEnv(EnvEmbeddingHost, "http://localhost:11434/v1"),
		EmbeddingModel: getEnv(EnvEmbeddingModel, "embeddinggemma"),
		EmbeddingDims:  getEnvInt(EnvEmbeddingDims, 768),

		ChunkSize:    getEnvInt(EnvChunkSize, 1000),
		ChunkOverlap: getEnvInt(EnvChunkOverlap, 200),

		VectorBackend: getEnv(EnvVectorBackend, VectorBackendBadger),
		ObjectBackend: getEnv(EnvObjectBackend, ObjectBackendFS),
		DataDir:       getEnv(EnvDataDir, "./data"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and backend selectors.
func (c *Config) Validate() error {
	var missing []string
	for _, v := range []struct {
		name  string
		value string
	}{
		{EnvDocumentsBucket, c.DocumentsBucket},
		{EnvVectorsBucket, c.VectorsBucket},
		{EnvDatabaseURL, c.DatabaseURL},
		{EnvRegion, c.Region},
		{EnvLogLevel, c.LogLevel},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.VectorBackend {
	case VectorBackendBadger, VectorBackendPostgres:
	default:
		return fmt.Errorf("unknown vector backend %q", c.VectorBackend)
	}

	switch c.ObjectBackend {
	case ObjectBackendFS, ObjectBackendGCS:
	default:
		return fmt.Errorf("unknown object backend %q", c.ObjectBackend)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than 0, got %d", c.BatchSize)
	}

	return nil
}

// ParseLevel maps a log level string to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
