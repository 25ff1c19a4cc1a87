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


package chunk

import (
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/docindex/core"
)

const (
	// DefaultMaxChars is the default window length in runes.
	DefaultMaxChars = 1000
	// DefaultOverlapChars is the default inter-window overlap in runes.
	DefaultOverlapChars = 200
)

// Splitter produces sliding windows over parsed segments.
type Splitter struct {
	maxChars     int
	overlapChars int
}

// Option configures a Splitter.
type Option func(*Splitter) error

// WithMaxChars sets the maximum window length in runes.
func WithMaxChars(n int) Option {
	return func(s *Splitter) error {
		if n <= 0 {
			return ErrInvalidWindow
		}
		s.maxChars = n
		return nil
	}
}

// WithOverlap sets the inter-window overlap in runes.
func WithOverlap(n int) Option {
	return func(s *Splitter) error {
		if n < 0 {
			return ErrInvalidOverlap
		}
		s.overlapChars = n
		return nil
	}
}

// NewSplitter creates a Splitter with the given options.
// Defaults are DefaultMaxChars / DefaultOverlapChars.
func NewSplitter(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		maxChars:     DefaultMaxChars,
		overlapChars: DefaultOverlapChars,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.overlapChars >= s.maxChars {
		return nil, ErrInvalidOverlap
	}
	return s, nil
}

// Split produces overlapping windows over the segments' concatenated text.
// Offsets are global across the document; chunk indexes increase
// monotonically in order of appearance.
//
// An empty segment list is a hard error: the parsing stage never emits zero
// segments for a successfully parsed document, so this indicates an
// upstream bug rather than a transient condition.
func (s *Splitter) Split(segments []core.Segment, docID, sessionID uuid.UUID) ([]core.Chunk, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	step := s.maxChars - s.overlapChars

	var chunks []core.Chunk
	base := 0  // rune offset of the current segment within the document
	index := 0 // chunk index within the document

	for _, seg := range segments {
		runes := []rune(seg.Text)
		if len(strings.TrimSpace(seg.Text)) == 0 {
			base += len(runes)
			continue
		}

		for start := 0; start < len(runes); start += step {
			end := start + s.maxChars
			if end > len(runes) {
				end = len(runes)
			}

			chunks = append(chunks, core.Chunk{
				Text: string(runes[start:end]),
				Meta: core.ChunkMeta{
					DocumentID: docID,
					SessionID:  sessionID,
					Index:      index,
					Page:       seg.Page,
					Source:     seg.Source,
					Offset:     base + start,
				},
			})
			index++

			if end == len(runes) {
				break
			}
		}

		base += len(runes)
	}

	if len(chunks) == 0 {
		return nil, ErrNoSegments
	}

	return chunks, nil
}
