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


// Package storage provides the storage abstraction layer for docindex.
//
// This package defines the interfaces that decouple storage implementations
// from the ingestion pipeline:
//
//   - DocumentRepository: relational document rows and status transitions
//   - VectorIndex: idempotent vector upserts and filtered similarity search
//   - ObjectStore: fetching uploaded objects to the local filesystem
//
// # Constructor Return Type Pattern
//
// Public constructors in the implementation packages return interface types
// to enforce abstraction and keep backends swappable:
//
//	repo, err := postgres.NewDocumentRepository(dsn)  // storage.DocumentRepository
//	index, err := badger.NewVectorIndex(backend)      // storage.VectorIndex
//
// # Implementations
//
//   - storage/postgres: gorm-backed document rows; pgvector-backed index
//   - storage/badger: embedded BadgerDB vector index (default)
//   - storage/object: local-filesystem and GCS object stores
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
