package object

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docindex/storage"
)

func TestFSStoreFetch(t *testing.T) {
	root := t.TempDir()
	key := "documents/sess-1/report.pdf"
	srcPath := filepath.Join(root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(srcPath), 0755))
	require.NoError(t, os.WriteFile(srcPath, []byte("pdf bytes"), 0644))

	store, err := NewFSStore(root)
	require.NoError(t, err)
	defer store.Close()

	destPath := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, store.Fetch(context.Background(), key, destPath))

	data, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)
}

func TestFSStoreFetchMissing(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	destPath := filepath.Join(t.TempDir(), "out")
	err = store.Fetch(context.Background(), "documents/sess-1/missing.pdf", destPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFSStoreRejectsEscapingKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	destPath := filepath.Join(t.TempDir(), "out")
	err = store.Fetch(context.Background(), "../../etc/passwd", destPath)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestFSStoreRejectsMissingRoot(t *testing.T) {
	_, err := NewFSStore(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
