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

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrThrottled indicates the backend rejected the operation due to
	// rate limiting. Callers should retry with backoff.
	ErrThrottled = errors.New("storage throttled")

	// ErrStorageClosed indicates an operation was attempted on a closed
	// storage backend.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a record could not be encoded or
	// decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrInvalidRecord indicates a record failed validation before write.
	ErrInvalidRecord = errors.New("invalid record")
)

// IsThrottled reports whether err is (or wraps) ErrThrottled.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}
