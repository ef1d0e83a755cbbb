package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
)

// FileSource reads a previously captured listing dump from disk. Useful for
// offline benchmark runs against a frozen scrape.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed listing source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Fetch reads and decodes the listing dump.
func (s *FileSource) Fetch(ctx context.Context) ([]Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ScrapeError("listing fetch cancelled", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.ScrapeError(fmt.Sprintf("reading listing dump %s", s.path), err)
	}

	var listings []Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, errors.ScrapeError("decoding listing dump", err)
	}

	return listings, nil
}
