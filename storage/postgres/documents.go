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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// documentRow is the gorm mapping for the documents table. The upload
// service owns row creation for direct jobs; this repository creates rows
// only for notification-derived jobs.
type documentRow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"size:1024;not null"`
	Status       string    `gorm:"size:32;not null;index"`
	UploadURL    string    `gorm:"size:2048"`
	ErrorMessage string    `gorm:"size:2048"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

func (r *documentRow) toDocument() *core.Document {
	return &core.Document{
		ID:           r.ID,
		SessionID:    r.SessionID,
		Name:         r.Name,
		Status:       core.DocumentStatus(r.Status),
		UploadURL:    r.UploadURL,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func rowFromDocument(doc *core.Document) *documentRow {
	return &documentRow{
		ID:           doc.ID,
		SessionID:    doc.SessionID,
		Name:         doc.Name,
		Status:       string(doc.Status),
		UploadURL:    doc.UploadURL,
		ErrorMessage: doc.ErrorMessage,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// DocumentRepository implements storage.DocumentRepository on Postgres.
type DocumentRepository struct {
	db *gorm.DB
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository connects to Postgres with the given DSN and
// migrates the documents table.
func NewDocumentRepository(dsn string) (storage.DocumentRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &DocumentRepository{db: db}, nil
}

// CreateDocument inserts a new document row.
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rowFromDocument(doc)).Error; err != nil {
		return fmt.Errorf("failed to create document %s: %w", doc.ID, err)
	}
	return nil
}

// EnsureDocument inserts doc unless a row with its ID already exists.
func (r *DocumentRepository) EnsureDocument(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(rowFromDocument(doc)).Error
	if err != nil {
		return fmt.Errorf("failed to ensure document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument returns the document with the given ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id uuid.UUID) (*core.Document, error) {
	var row documentRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("document %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return row.toDocument(), nil
}

// UpdateStatus transitions the document to status. The update is a single
// conditional statement, so concurrent workers cannot interleave partial
// writes for the same row.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status core.DocumentStatus, errorMessage string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidStatus, status)
	}
	result := r.db.WithContext(ctx).
		Model(&documentRow{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        string(status),
			"error_message": errorMessage,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update document %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *DocumentRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
