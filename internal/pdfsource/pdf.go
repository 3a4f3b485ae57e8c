// Package pdfsource implements Phase 1 (PDF Parser, spec.md §4.1): opening
// the document, lazily extracting per-page text through a prioritised
// backend chain, wrapping pages with boundary sentinels, estimating
// tokens, and detecting the embedded outline.
package pdfsource

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/vectorless/pagetree/models"
)

// Document wraps an opened PDF and lazily-populated per-page state.
// It is safe to call ParseInitial and ParseAll repeatedly; already-parsed
// pages are never re-extracted.
type Document struct {
	name       string
	raw        []byte
	ctx        *model.Context
	totalPages int
	pages      []*models.Page // nil until parsed
	pageBytes  [][]byte       // single-page PDF bytes, populated on demand
}

// Open reads a PDF from an in-memory byte stream.
func Open(name string, data []byte) (*Document, error) {
	reader := bytes.NewReader(data)
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(reader, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfsource: open %s: %w", name, err)
	}
	total := ctx.PageCount
	return &Document{
		name:       name,
		raw:        data,
		ctx:        ctx,
		totalPages: total,
		pages:      make([]*models.Page, total),
		pageBytes:  make([][]byte, total),
	}, nil
}

// OpenPath reads a PDF from a filesystem path.
func OpenPath(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdfsource: read %s: %w", path, err)
	}
	return Open(path, data)
}

// Name returns the name the document was opened with (a path or a
// synthetic in-memory identifier), used for Result.SourceFile and for the
// title-from-filename boundary behaviour (spec.md §8).
func (d *Document) Name() string { return d.name }

// TotalPages returns the document's page count.
func (d *Document) TotalPages() int { return d.totalPages }

// pageContent returns the raw per-page PDF bytes, extracting and caching
// them on first access. pdfcpu page numbers are 1-based.
func (d *Document) pageContent(pageNum int) ([]byte, error) {
	if pageNum < 1 || pageNum > d.totalPages {
		return nil, fmt.Errorf("pdfsource: page %d out of range [1,%d]", pageNum, d.totalPages)
	}
	if b := d.pageBytes[pageNum-1]; b != nil {
		return b, nil
	}
	pageReader, err := api.ExtractPage(d.ctx, pageNum)
	if err != nil {
		// Unreadable page: empty body, not an error (spec.md §4.1 failure semantics).
		d.pageBytes[pageNum-1] = []byte{}
		return d.pageBytes[pageNum-1], nil
	}
	data, err := io.ReadAll(pageReader)
	if err != nil {
		d.pageBytes[pageNum-1] = []byte{}
		return d.pageBytes[pageNum-1], nil
	}
	d.pageBytes[pageNum-1] = data
	return data, nil
}

// ParseInitial guarantees pages 1..n (clamped to TotalPages) are parsed
// and cached, without forcing extraction of the rest of the document —
// the lazy-parsing design note in spec.md §9.
func (d *Document) ParseInitial(n int) ([]*models.Page, error) {
	if n > d.totalPages {
		n = d.totalPages
	}
	for i := 1; i <= n; i++ {
		if _, err := d.Page(i); err != nil {
			return nil, err
		}
	}
	return d.pages[:n], nil
}

// ParseAll guarantees every page is parsed and cached.
func (d *Document) ParseAll() ([]*models.Page, error) {
	for i := 1; i <= d.totalPages; i++ {
		if _, err := d.Page(i); err != nil {
			return nil, err
		}
	}
	return d.pages, nil
}

// Page returns the parsed page, extracting it through the backend chain
// on first access.
func (d *Document) Page(pageNum int) (*models.Page, error) {
	if pageNum < 1 || pageNum > d.totalPages {
		return nil, fmt.Errorf("pdfsource: page %d out of range [1,%d]", pageNum, d.totalPages)
	}
	if p := d.pages[pageNum-1]; p != nil {
		return p, nil
	}

	content, err := d.pageContent(pageNum)
	if err != nil {
		return nil, err
	}

	text, tableLike := extractText(content)
	page := &models.Page{
		PhysicalIndex:   pageNum,
		Text:            text,
		TokenEstimate:   estimateTokens(text),
		HasTableMarkers: tableLike,
	}
	d.pages[pageNum-1] = page
	return page, nil
}
