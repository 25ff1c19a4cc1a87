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


// Package status records document lifecycle transitions in the relational
// store. The Tracker is the only writer of document status in the pipeline;
// every transition it makes is observable by the upload service polling the
// same table.
package status

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

const (
	// maxErrorLength bounds stored failure reasons. The error_message
	// column is varchar(2048); staying under it leaves headroom for any
	// multi-byte expansion at the column layer.
	maxErrorLength = 2000

	truncationMarker = "... [truncated]"
)

// Tracker applies document status transitions.
type Tracker struct {
	repo   storage.DocumentRepository
	logger *slog.Logger
}

// NewTracker creates a Tracker over the given repository.
func NewTracker(repo storage.DocumentRepository) *Tracker {
	return &Tracker{
		repo:   repo,
		logger: slog.Default().With("component", "status"),
	}
}

// EnsureDocument creates a pending row for a notification-derived job if
// one does not already exist. Direct jobs skip this; the upload service
// created their row before enqueueing.
func (t *Tracker) EnsureDocument(ctx context.Context, job *core.IngestJob) error {
	doc := &core.Document{
		ID:        job.DocumentID,
		SessionID: job.SessionID,
		Name:      job.Filename,
		Status:    core.StatusPending,
		UploadURL: job.StorageKey,
	}
	if err := t.repo.EnsureDocument(ctx, doc); err != nil {
		return err
	}
	t.logger.Debug("ensured document row",
		"document_id", job.DocumentID,
		"session_id", job.SessionID)
	return nil
}

// MarkProcessing transitions the document to processing.
func (t *Tracker) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	if err := t.repo.UpdateStatus(ctx, id, core.StatusProcessing, ""); err != nil {
		return err
	}
	t.logger.Info("document processing", "document_id", id)
	return nil
}

// MarkCompleted transitions the document to completed and clears any
// previous error message.
func (t *Tracker) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	if err := t.repo.UpdateStatus(ctx, id, core.StatusCompleted, ""); err != nil {
		return err
	}
	t.logger.Info("document completed", "document_id", id)
	return nil
}

// MarkFailed transitions the document to failed, recording reason truncated
// to at most maxErrorLength characters.
func (t *Tracker) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if err := t.repo.UpdateStatus(ctx, id, core.StatusFailed, TruncateError(reason)); err != nil {
		return err
	}
	t.logger.Warn("document failed", "document_id", id, "reason", reason)
	return nil
}

// TruncateError bounds an error message to maxErrorLength characters,
// replacing the tail with an explicit marker when it is cut.
func TruncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= maxErrorLength {
		return msg
	}
	keep := maxErrorLength - len(truncationMarker)
	return string(runes[:keep]) + truncationMarker
}
