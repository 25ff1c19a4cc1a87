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


package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// chunkEmbeddingRow is the gorm mapping for the chunk_embeddings table.
// The embedding column type is created with the configured dimension count
// before AutoMigrate runs, so the struct tag leaves it untyped.
type chunkEmbeddingRow struct {
	ID        string          `gorm:"size:64;primaryKey"`
	SessionID string          `gorm:"size:64;not null;index"`
	DocID     string          `gorm:"size:64;not null;index"`
	Page      string          `gorm:"size:16"`
	Section   string          `gorm:"size:512"`
	SourceURI string          `gorm:"size:2048"`
	Embedding pgvector.Vector `gorm:"type:vector"`
}

func (chunkEmbeddingRow) TableName() string {
	return "chunk_embeddings"
}

func (r *chunkEmbeddingRow) toRecord() *core.VectorRecord {
	meta := map[string]string{
		core.MetaChunkID:   r.ID,
		core.MetaSessionID: r.SessionID,
		core.MetaDocID:     r.DocID,
		core.MetaSourceURI: r.SourceURI,
	}
	if r.Page != "" {
		meta[core.MetaPage] = r.Page
	}
	if r.Section != "" {
		meta[core.MetaSection] = r.Section
	}
	return &core.VectorRecord{
		ID:       r.ID,
		Values:   r.Embedding.Slice(),
		Metadata: meta,
	}
}

// VectorIndex implements storage.VectorIndex on Postgres with pgvector.
type VectorIndex struct {
	db   *gorm.DB
	dims int
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex connects to Postgres, enables the pgvector extension and
// creates the chunk_embeddings table with the given embedding dimension.
func NewVectorIndex(dsn string, dims int) (storage.VectorIndex, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", dims)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunk_embeddings (
		id varchar(64) PRIMARY KEY,
		session_id varchar(64) NOT NULL,
		doc_id varchar(64) NOT NULL,
		page varchar(16) DEFAULT '',
		section varchar(512) DEFAULT '',
		source_uri varchar(2048) DEFAULT '',
		embedding vector(%d)
	)`, dims)
	if err := db.Exec(createTable).Error; err != nil {
		return nil, fmt.Errorf("failed to create chunk_embeddings table: %w", err)
	}
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_session ON chunk_embeddings (session_id)",
		"CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_doc ON chunk_embeddings (doc_id)",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}
	return &VectorIndex{db: db, dims: dims}, nil
}

// Upsert writes records keyed by ID, overwriting existing rows.
func (v *VectorIndex) Upsert(ctx context.Context, records ...*core.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]chunkEmbeddingRow, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			return fmt.Errorf("%w: missing record ID", storage.ErrInvalidRecord)
		}
		rows = append(rows, chunkEmbeddingRow{
			ID:        record.ID,
			SessionID: record.Metadata[core.MetaSessionID],
			DocID:     record.Metadata[core.MetaDocID],
			Page:      record.Metadata[core.MetaPage],
			Section:   record.Metadata[core.MetaSection],
			SourceURI: record.Metadata[core.MetaSourceURI],
			Embedding: pgvector.NewVector(record.Values),
		})
	}
	err := v.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d vectors: %w", len(rows), err)
	}
	return nil
}

// FindSimilar orders rows by cosine distance to vector, restricted by filter.
func (v *VectorIndex) FindSimilar(ctx context.Context, vector []float32, filter storage.VectorFilter, limit int) ([]*storage.VectorMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	query := v.db.WithContext(ctx).Model(&chunkEmbeddingRow{})
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.DocID != "" {
		query = query.Where("doc_id = ?", filter.DocID)
	}

	var rows []chunkEmbeddingRow
	err := query.
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []any{pgvector.NewVector(vector)}},
		}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	matches := make([]*storage.VectorMatch, 0, len(rows))
	for i := range rows {
		record := rows[i].toRecord()
		matches = append(matches, &storage.VectorMatch{
			Record: record,
			Score:  dotProduct(vector, record.Values),
		})
	}
	return matches, nil
}

// Count returns the number of rows matching filter.
func (v *VectorIndex) Count(ctx context.Context, filter storage.VectorFilter) (int, error) {
	query := v.db.WithContext(ctx).Model(&chunkEmbeddingRow{})
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.DocID != "" {
		query = query.Where("doc_id = ?", filter.DocID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return int(count), nil
}

// Close releases the underlying connection pool.
func (v *VectorIndex) Close() error {
	sqlDB, err := v.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
