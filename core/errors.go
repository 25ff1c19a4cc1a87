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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidJob indicates an IngestJob failed validation.
	ErrInvalidJob = errors.New("invalid ingest job")

	// ErrInvalidStatus indicates an unknown document lifecycle status.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrMissingDocumentID indicates the document identifier is unset.
	ErrMissingDocumentID = errors.New("document id required")

	// ErrMissingSessionID indicates the session identifier is unset.
	ErrMissingSessionID = errors.New("session id required")

	// ErrMissingStorageKey indicates the storage key is empty.
	ErrMissingStorageKey = errors.New("storage key required")
)
