package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIDDeterministic(t *testing.T) {
	id1 := ChunkID("some chunk text", "documents/abc/report.pdf", 1000)
	id2 := ChunkID("some chunk text", "documents/abc/report.pdf", 1000)

	assert.Equal(t, id1, id2, "identical inputs must yield identical IDs")
	assert.Len(t, id1, 16, "ID must be a truncated 16-character hex digest")
}

func TestChunkIDSensitivity(t *testing.T) {
	base := ChunkID("content", "documents/abc/report.pdf", 0)

	tests := []struct {
		name    string
		content string
		source  string
		offset  int
	}{
		{"different content", "content!", "documents/abc/report.pdf", 0},
		{"different source", "content", "documents/xyz/report.pdf", 0},
		{"different offset", "content", "documents/abc/report.pdf", 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, ChunkID(tt.content, tt.source, tt.offset))
		})
	}
}

func TestChunkIDFieldBoundaries(t *testing.T) {
	// Moving bytes between content and source must not collide.
	a := ChunkID("abc", "def", 0)
	b := ChunkID("abcd", "ef", 0)
	assert.NotEqual(t, a, b)
}

func TestDocumentIDFromKey(t *testing.T) {
	key := "documents/0b7e915a-58f3-4c1d-9f2e-6a1f20c4d9b3/resume.pdf"

	id1 := DocumentIDFromKey(key)
	id2 := DocumentIDFromKey(key)
	assert.Equal(t, id1, id2, "same key must derive the same document ID")

	other := DocumentIDFromKey(key + "2")
	assert.NotEqual(t, id1, other)
	assert.NotEqual(t, uuid.Nil, id1)
}

func TestChunkVectorRecord(t *testing.T) {
	docID := uuid.New()
	sessionID := uuid.New()

	chunk := &Chunk{
		ID:   ChunkID("text", "documents/a/b.pdf", 0),
		Text: "text",
		Meta: ChunkMeta{
			DocumentID: docID,
			SessionID:  sessionID,
			Index:      3,
			Page:       2,
			Section:    "Introduction",
			Source:     "documents/a/b.pdf",
			Offset:     0,
		},
		Vector: []float32{0.1, 0.2, 0.3},
	}

	record := chunk.VectorRecord()
	require.NotNil(t, record)

	assert.Equal(t, chunk.ID, record.ID)
	assert.Equal(t, chunk.Vector, record.Values)
	assert.Equal(t, sessionID.String(), record.Metadata[MetaSessionID])
	assert.Equal(t, docID.String(), record.Metadata[MetaDocID])
	assert.Equal(t, chunk.ID, record.Metadata[MetaChunkID])
	assert.Equal(t, "2", record.Metadata[MetaPage])
	assert.Equal(t, "Introduction", record.Metadata[MetaSection])
	assert.Equal(t, "documents/a/b.pdf", record.Metadata[MetaSourceURI])
}

func TestChunkVectorRecordOmitsUnknownFields(t *testing.T) {
	chunk := &Chunk{
		ID:   "abcdef0123456789",
		Text: "text",
		Meta: ChunkMeta{
			DocumentID: uuid.New(),
			SessionID:  uuid.New(),
			Source:     "dev/local.pdf",
		},
	}

	record := chunk.VectorRecord()
	_, hasPage := record.Metadata[MetaPage]
	_, hasSection := record.Metadata[MetaSection]
	assert.False(t, hasPage)
	assert.False(t, hasSection)
}

func TestDocumentStatusValid(t *testing.T) {
	for _, s := range []DocumentStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, DocumentStatus("archived").Valid())
	assert.False(t, DocumentStatus("").Valid())
}
