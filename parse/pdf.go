package parse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/poiesic/docindex/core"
)

// pdfParser extracts per-page plain text from PDF files.
//
// The file is first validated with pdfcpu in relaxed mode so corrupt uploads
// fail fast with a clear error instead of producing garbage segments, then
// text is extracted page by page.
type pdfParser struct {
	conf   *model.Configuration
	logger *slog.Logger
}

var _ Parser = (*pdfParser)(nil)

func newPDFParser() *pdfParser {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfParser{
		conf:   conf,
		logger: slog.Default().With("component", "pdf-parser"),
	}
}

// Parse extracts one segment per page that contains text.
func (p *pdfParser) Parse(ctx context.Context, path, source string) ([]core.Segment, error) {
	if err := api.ValidateFile(path, p.conf); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", path, ErrInvalidDocument, err)
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", path, ErrInvalidDocument, err)
	}
	defer file.Close()

	pageCount := reader.NumPage()
	p.logger.Debug("extracting PDF text", "path", path, "pages", pageCount)

	segments := make([]core.Segment, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page is logged and skipped; pages with
			// only images legitimately have no text layer.
			p.logger.Warn("failed to extract page text", "path", path, "page", i, "err", err)
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		segments = append(segments, core.Segment{
			Text:   text,
			Source: source,
			Page:   i,
		})
	}

	return segments, nil
}
