package chunk

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/docindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitterValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"defaults", nil, nil},
		{"custom valid", []Option{WithMaxChars(500), WithOverlap(100)}, nil},
		{"zero window", []Option{WithMaxChars(0)}, ErrInvalidWindow},
		{"negative overlap", []Option{WithOverlap(-1)}, ErrInvalidOverlap},
		{"overlap equals window", []Option{WithMaxChars(100), WithOverlap(100)}, ErrInvalidOverlap},
		{"overlap exceeds window", []Option{WithMaxChars(100), WithOverlap(150)}, ErrInvalidOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(tt.opts...)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	_, err = s.Split(nil, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNoSegments)

	_, err = s.Split([]core.Segment{}, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestSplitShortSegment(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	docID, sessionID := uuid.New(), uuid.New()
	segments := []core.Segment{{Text: "short text", Source: "documents/s/a.pdf", Page: 1}}

	chunks, err := s.Split(segments, docID, sessionID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.Equal(t, "short text", c.Text)
	assert.Equal(t, 0, c.Meta.Offset)
	assert.Equal(t, 0, c.Meta.Index)
	assert.Equal(t, 1, c.Meta.Page)
	assert.Equal(t, "documents/s/a.pdf", c.Meta.Source)
	assert.Equal(t, docID, c.Meta.DocumentID)
	assert.Equal(t, sessionID, c.Meta.SessionID)
}

func TestSplitOverlappingWindows(t *testing.T) {
	s, err := NewSplitter(WithMaxChars(10), WithOverlap(4))
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz" // 26 runes, step 6
	chunks, err := s.Split([]core.Segment{{Text: text, Source: "src", Page: 1}}, uuid.New(), uuid.New())
	require.NoError(t, err)

	// Windows: [0,10) [6,16) [12,22) [18,26)
	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "ghijklmnop", chunks[1].Text)
	assert.Equal(t, "mnopqrstuv", chunks[2].Text)
	assert.Equal(t, "stuvwxyz", chunks[3].Text)

	for i, c := range chunks {
		assert.Equal(t, i, c.Meta.Index)
		assert.Equal(t, i*6, c.Meta.Offset)
	}

	// Consecutive windows share the configured overlap.
	assert.True(t, strings.HasPrefix(chunks[1].Text, chunks[0].Text[6:]))
}

func TestSplitGlobalOffsetsAcrossSegments(t *testing.T) {
	s, err := NewSplitter(WithMaxChars(10), WithOverlap(2))
	require.NoError(t, err)

	segments := []core.Segment{
		{Text: "0123456789ab", Source: "src", Page: 1}, // 12 runes
		{Text: "CDEFG", Source: "src", Page: 2},
	}

	chunks, err := s.Split(segments, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// Page 1: windows [0,10) and [8,12); page 2 starts at global offset 12.
	assert.Equal(t, 0, chunks[0].Meta.Offset)
	assert.Equal(t, 8, chunks[1].Meta.Offset)
	assert.Equal(t, 12, chunks[2].Meta.Offset)
	assert.Equal(t, 2, chunks[2].Meta.Page)

	// Index keeps increasing across segment boundaries.
	assert.Equal(t, []int{0, 1, 2}, []int{chunks[0].Meta.Index, chunks[1].Meta.Index, chunks[2].Meta.Index})
}

func TestSplitSkipsWhitespaceSegments(t *testing.T) {
	s, err := NewSplitter(WithMaxChars(10), WithOverlap(2))
	require.NoError(t, err)

	segments := []core.Segment{
		{Text: "   \n\t  ", Source: "src", Page: 1},
		{Text: "real text", Source: "src", Page: 2},
	}

	chunks, err := s.Split(segments, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "real text", chunks[0].Text)
	// Whitespace segment still advances the global offset.
	assert.Equal(t, 7, chunks[0].Meta.Offset)
}

func TestSplitWhitespaceOnlyDocument(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)

	_, err = s.Split([]core.Segment{{Text: "   ", Source: "src"}}, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestSplitDeterministic(t *testing.T) {
	s, err := NewSplitter(WithMaxChars(50), WithOverlap(10))
	require.NoError(t, err)

	docID, sessionID := uuid.New(), uuid.New()
	segments := []core.Segment{{Text: strings.Repeat("deterministic input ", 20), Source: "src", Page: 1}}

	first, err := s.Split(segments, docID, sessionID)
	require.NoError(t, err)
	second, err := s.Split(segments, docID, sessionID)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Meta.Offset, second[i].Meta.Offset)
	}
}
