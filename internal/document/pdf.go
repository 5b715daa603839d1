// Package document extracts the text of a local PDF used as chat context.
package document

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tmc/langchaingo/documentloaders"
)

// Document is the extracted text of one PDF, read once at startup.
type Document struct {
	Path  string
	Text  string
	Pages int
	Size  int64
}

// Load reads the PDF at path and concatenates the text of every page.
func Load(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	pages, err := loadPages(ctx, f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parsing document %s: %w", path, err)
	}

	return &Document{
		Path:  path,
		Text:  strings.Join(pages, "\n"),
		Pages: len(pages),
		Size:  info.Size(),
	}, nil
}

// loadPages recovers from panics in the PDF parser, which does not guard
// against every malformed input.
func loadPages(ctx context.Context, f *os.File, size int64) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid pdf: %v", r)
		}
	}()

	docs, err := documentloaders.NewPDF(f, size).Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		pages = append(pages, d.PageContent)
	}
	return pages, nil
}

// Summary describes the document for the startup banner.
func (d *Document) Summary() string {
	return fmt.Sprintf("%s (%d pages, %s)", d.Path, d.Pages, humanize.Bytes(uint64(d.Size)))
}

// SystemPrompt appends the document text to a persona prompt.
func SystemPrompt(persona string, d *Document) string {
	return persona + d.Text
}
