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


// Package object provides ObjectStore implementations for fetching uploaded
// documents: a local-filesystem store for development and testing, and a
// Google Cloud Storage store for deployment.
package object

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docindex/storage"
)

// FSStore serves objects from a directory tree rooted at root. Object keys
// map to relative paths beneath the root.
type FSStore struct {
	root string
}

var _ storage.ObjectStore = (*FSStore)(nil)

// NewFSStore creates a filesystem-backed object store rooted at root.
func NewFSStore(root string) (storage.ObjectStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("object store root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("object store root %s is not a directory", root)
	}
	return &FSStore{root: root}, nil
}

// Fetch copies the object at key into destPath.
func (s *FSStore) Fetch(ctx context.Context, key, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	srcPath := filepath.Join(s.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.root, srcPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("object key %q escapes store root", key)
	}

	src, err := os.Open(srcPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("object %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to copy object %s: %w", key, err)
	}
	return dest.Sync()
}

// Close is a no-op for the filesystem store.
func (s *FSStore) Close() error {
	return nil
}
