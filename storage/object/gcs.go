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


package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"

	"github.com/poiesic/docindex/storage"
)

// GCSStore serves objects from a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

var _ storage.ObjectStore = (*GCSStore)(nil)

// NewGCSStore creates a GCS-backed object store for the given bucket.
// Credentials are resolved from the environment.
func NewGCSStore(ctx context.Context, bucket string) (storage.ObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Fetch streams the object at key into destPath without buffering it in
// memory, so large uploads do not blow the worker's footprint.
func (s *GCSStore) Fetch(ctx context.Context, key, destPath string) error {
	reader, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("object gs://%s/%s: %w", s.bucket, key, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get object reader for gs://%s/%s: %w", s.bucket, key, err)
	}
	defer reader.Close()

	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer localFile.Close()

	if _, err := io.Copy(localFile, reader); err != nil {
		return fmt.Errorf("failed to download gs://%s/%s: %w", s.bucket, key, err)
	}
	return localFile.Sync()
}

// Close releases the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
