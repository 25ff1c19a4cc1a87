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

import "errors"

var (
	// ErrInvalidMessageFormat indicates a queue record body that matches
	// neither the canonical job format nor a storage notification.
	ErrInvalidMessageFormat = errors.New("Invalid message format")

	// ErrEmptyNotification indicates a storage notification with no
	// usable object records.
	ErrEmptyNotification = errors.New("notification contains no object records")

	// ErrUnrecognizedKey indicates an object key that matches no known
	// layout, so no session can be attributed.
	ErrUnrecognizedKey = errors.New("unrecognized object key layout")

	// ErrEmbeddingCountMismatch indicates the embedding provider returned
	// a different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match chunk count")

	// ErrInvalidMaxAttempts indicates a retry call with a non-positive
	// attempt budget.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoChunks indicates a document that parsed successfully but
	// produced no indexable chunks.
	ErrNoChunks = errors.New("document produced no chunks")
)
