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


package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID and SessionID must be set
//   - Status must be a known lifecycle state
//
// NOT validated:
//   - ErrorMessage (only meaningful for failed documents)
//   - Timestamps (populated by the repository)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingDocumentID)
	}

	if doc.SessionID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingSessionID)
	}

	if !doc.Status.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidDocument, ErrInvalidStatus, doc.Status)
	}

	return nil
}

// ValidateJob validates an IngestJob before the pipeline runs.
//
// Validation rules:
//   - DocumentID and SessionID must be set
//   - StorageKey must not be empty
//
// NOT validated:
//   - Filename and FileSize (informational, notification events may omit them)
func ValidateJob(job *IngestJob) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidJob)
	}

	if job.DocumentID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrMissingDocumentID)
	}

	if job.SessionID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrMissingSessionID)
	}

	if job.StorageKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrMissingStorageKey)
	}

	return nil
}
