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


package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/poiesic/docindex/core"
)

// DocumentRepository persists document rows and their lifecycle status.
type DocumentRepository interface {
	// CreateDocument inserts a new document row.
	CreateDocument(ctx context.Context, doc *core.Document) error

	// EnsureDocument inserts doc if no row with its ID exists. Existing
	// rows are left untouched, which keeps redelivered notifications
	// idempotent.
	EnsureDocument(ctx context.Context, doc *core.Document) error

	// GetDocument returns the document with the given ID, or ErrNotFound.
	GetDocument(ctx context.Context, id uuid.UUID) (*core.Document, error)

	// UpdateStatus transitions the document to status, recording
	// errorMessage alongside failed transitions. Returns ErrNotFound when
	// no row with the given ID exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status core.DocumentStatus, errorMessage string) error

	// Close releases the underlying connection pool.
	Close() error
}

// VectorFilter restricts similarity search to records whose metadata
// matches the set fields. Zero-value fields match everything.
type VectorFilter struct {
	SessionID string
	DocID     string
}

// Matches reports whether metadata satisfies the filter.
func (f VectorFilter) Matches(metadata map[string]string) bool {
	if f.SessionID != "" && metadata[core.MetaSessionID] != f.SessionID {
		return false
	}
	if f.DocID != "" && metadata[core.MetaDocID] != f.DocID {
		return false
	}
	return true
}

// VectorMatch is a similarity search hit.
type VectorMatch struct {
	Record *core.VectorRecord
	Score  float32
}

// VectorIndex stores embedding vectors keyed by chunk ID.
type VectorIndex interface {
	// Upsert writes records, overwriting any existing record with the
	// same ID. Re-ingesting identical content is therefore idempotent.
	Upsert(ctx context.Context, records ...*core.VectorRecord) error

	// FindSimilar returns up to limit records most similar to vector,
	// restricted by filter, ordered by descending score.
	FindSimilar(ctx context.Context, vector []float32, filter VectorFilter, limit int) ([]*VectorMatch, error)

	// Count returns the number of records matching filter.
	Count(ctx context.Context, filter VectorFilter) (int, error)

	// Close flushes and releases the index.
	Close() error
}

// ObjectStore fetches uploaded document objects for local processing.
type ObjectStore interface {
	// Fetch downloads the object at key into destPath. Returns
	// ErrNotFound when the object does not exist.
	Fetch(ctx context.Context, key, destPath string) error

	// Close releases any client resources.
	Close() error
}
