package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// maxListingBody bounds how much of the collaborator's response is read.
const maxListingBody = 16 << 20

// HTTPSource fetches listings from the scraping collaborator's listing
// endpoint, which serves the scraped dump as a JSON array.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates an HTTP listing source.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// Name identifies the source.
func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// Fetch retrieves and decodes the current listings.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.ScrapeError("building listing request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.ScrapeError("fetching listings", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ScrapeError(fmt.Sprintf("listing endpoint returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBody))
	if err != nil {
		return nil, errors.ScrapeError("reading listing response", err)
	}

	var listings []Listing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, errors.ScrapeError("decoding listing response", err)
	}

	return listings, nil
}
