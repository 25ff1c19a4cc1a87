package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

func newTestRecord(id, sessionID, docID string, values []float32) *core.VectorRecord {
	return &core.VectorRecord{
		ID:     id,
		Values: values,
		Metadata: map[string]string{
			core.MetaChunkID:   id,
			core.MetaSessionID: sessionID,
			core.MetaDocID:     docID,
		},
	}
}

func TestVectorIndexUpsertAndSearch(t *testing.T) {
	index, backend, err := NewMemoryVectorIndex()
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}
	defer func() {
		index.Close()
		backend.Close()
	}()

	ctx := context.Background()

	err = index.Upsert(ctx,
		newTestRecord("chunk-a", "sess-1", "doc-1", []float32{1, 0, 0}),
		newTestRecord("chunk-b", "sess-1", "doc-1", []float32{0, 1, 0}),
		newTestRecord("chunk-c", "sess-2", "doc-2", []float32{0.9, 0.1, 0}),
	)
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	matches, err := index.FindSimilar(ctx, []float32{1, 0, 0}, storage.VectorFilter{}, 10)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(matches))
	}
	if matches[0].Record.ID != "chunk-a" {
		t.Fatalf("Expected chunk-a first, got %s", matches[0].Record.ID)
	}
	if matches[1].Record.ID != "chunk-c" {
		t.Fatalf("Expected chunk-c second, got %s", matches[1].Record.ID)
	}
	if matches[0].Score <= matches[1].Score || matches[1].Score <= matches[2].Score {
		t.Fatal("Expected scores in descending order")
	}
}

func TestVectorIndexUpsertOverwrites(t *testing.T) {
	index, backend, err := NewMemoryVectorIndex()
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}
	defer func() {
		index.Close()
		backend.Close()
	}()

	ctx := context.Background()

	if err := index.Upsert(ctx, newTestRecord("chunk-a", "sess-1", "doc-1", []float32{1, 0})); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if err := index.Upsert(ctx, newTestRecord("chunk-a", "sess-1", "doc-1", []float32{0, 1})); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	count, err := index.Count(ctx, storage.VectorFilter{})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 record after re-upsert, got %d", count)
	}

	matches, err := index.FindSimilar(ctx, []float32{0, 1}, storage.VectorFilter{}, 1)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Score != 1 {
		t.Fatalf("Expected overwritten vector, got %+v", matches)
	}
}

func TestVectorIndexFilter(t *testing.T) {
	index, backend, err := NewMemoryVectorIndex()
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}
	defer func() {
		index.Close()
		backend.Close()
	}()

	ctx := context.Background()

	err = index.Upsert(ctx,
		newTestRecord("chunk-a", "sess-1", "doc-1", []float32{1, 0}),
		newTestRecord("chunk-b", "sess-1", "doc-2", []float32{1, 0}),
		newTestRecord("chunk-c", "sess-2", "doc-3", []float32{1, 0}),
	)
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	matches, err := index.FindSimilar(ctx, []float32{1, 0}, storage.VectorFilter{SessionID: "sess-1"}, 10)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 session matches, got %d", len(matches))
	}

	matches, err = index.FindSimilar(ctx, []float32{1, 0}, storage.VectorFilter{SessionID: "sess-1", DocID: "doc-2"}, 10)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Record.ID != "chunk-b" {
		t.Fatalf("Expected chunk-b only, got %+v", matches)
	}

	count, err := index.Count(ctx, storage.VectorFilter{DocID: "doc-3"})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1, got %d", count)
	}
}

func TestVectorIndexLimit(t *testing.T) {
	index, backend, err := NewMemoryVectorIndex()
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}
	defer func() {
		index.Close()
		backend.Close()
	}()

	ctx := context.Background()

	err = index.Upsert(ctx,
		newTestRecord("chunk-a", "s", "d", []float32{1, 0}),
		newTestRecord("chunk-b", "s", "d", []float32{0.8, 0.2}),
		newTestRecord("chunk-c", "s", "d", []float32{0.5, 0.5}),
	)
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	matches, err := index.FindSimilar(ctx, []float32{1, 0}, storage.VectorFilter{}, 2)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
}

func TestVectorIndexRejectsMissingID(t *testing.T) {
	index, backend, err := NewMemoryVectorIndex()
	if err != nil {
		t.Fatalf("Failed to create index: %v", err)
	}
	defer func() {
		index.Close()
		backend.Close()
	}()

	err = index.Upsert(context.Background(), &core.VectorRecord{Values: []float32{1}})
	if err == nil {
		t.Fatal("Expected error for record without ID")
	}
}
