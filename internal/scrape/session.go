package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

// Session serializes access to a listing source. The source behaves like a
// single browser session: concurrent fetches would interleave page state, so
// every caller goes through one mutex no matter how many workers are running.
type Session struct {
	mu     sync.Mutex
	source Source
	log    *logger.Logger
}

// NewSession wraps a source in a serialized session.
func NewSession(source Source, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		source: source,
		log:    log.WithComponent("scrape"),
	}
}

// Name identifies the underlying source.
func (s *Session) Name() string {
	return s.source.Name()
}

// Fetch acquires the session and fetches the current listings. Blocks while
// another query's keyword path holds the session.
func (s *Session) Fetch(ctx context.Context) ([]Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	listings, err := s.source.Fetch(ctx)
	if err != nil {
		s.log.WithError(err).Error("listing fetch failed")
		return nil, err
	}

	s.log.Debug("fetched listings",
		"source", s.source.Name(),
		"listings", len(listings),
		"took", time.Since(start).String())
	return listings, nil
}
