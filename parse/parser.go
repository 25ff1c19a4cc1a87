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


package parse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docindex/core"
)

// Parser extracts ordered text segments from a single document format.
// Implementations must be safe for concurrent use.
type Parser interface {
	// Parse extracts text from the file at path. The source argument is the
	// canonical URI (object-storage key) recorded in segment metadata.
	Parse(ctx context.Context, path, source string) ([]core.Segment, error)
}

// DocumentParser dispatches to a format-specific parser by file extension.
type DocumentParser struct {
	parsers map[string]Parser
}

// NewDocumentParser creates a parser supporting the formats the pipeline
// understands. Currently that is PDF only.
func NewDocumentParser() *DocumentParser {
	return &DocumentParser{
		parsers: map[string]Parser{
			".pdf": newPDFParser(),
		},
	}
}

// Parse extracts text segments from the file at path.
//
// Failure modes, all carrying the file path for diagnostics:
//   - the file does not exist
//   - the extension has no registered parser (ErrUnsupportedType)
//   - the file yields zero extractable text (ErrNoContent)
//
// None of these are retried internally.
func (p *DocumentParser) Parse(ctx context.Context, path, source string) ([]core.Segment, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	parser, ok := p.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("parse %s: %w: %q", path, ErrUnsupportedType, ext)
	}

	segments, err := parser.Parse(ctx, path, source)
	if err != nil {
		return nil, err
	}

	if !hasText(segments) {
		return nil, fmt.Errorf("parse %s: %w", path, ErrNoContent)
	}

	return segments, nil
}

// Supports reports whether files with the given extension can be parsed.
func (p *DocumentParser) Supports(ext string) bool {
	_, ok := p.parsers[strings.ToLower(ext)]
	return ok
}

func hasText(segments []core.Segment) bool {
	for _, s := range segments {
		if strings.TrimSpace(s.Text) != "" {
			return true
		}
	}
	return false
}
