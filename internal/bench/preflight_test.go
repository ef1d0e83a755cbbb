package bench

import (
	"context"
	"strings"
	"testing"

	"github.com/shelfsearch/shelf-search/internal/embed"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/scrape"
	"github.com/shelfsearch/shelf-search/internal/vector"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type staticSource struct {
	listings []scrape.Listing
	err      error
}

func (s staticSource) Fetch(ctx context.Context) ([]scrape.Listing, error) {
	return s.listings, s.err
}

func (s staticSource) Name() string { return "static" }

func populatedIndex(t *testing.T) vector.Index {
	t.Helper()
	index := vector.NewMemory(8)
	vec, err := embed.EmbedOne(context.Background(), embed.NewHashing(8), "ridge runner")
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Upsert(context.Background(), []vector.Record{{ItemID: "s1", Vector: vec}}); err != nil {
		t.Fatal(err)
	}
	return index
}

func TestPreflightPasses(t *testing.T) {
	deps := PreflightDeps{
		Index: populatedIndex(t),
		LLM:   fakePinger{},
		Session: scrape.NewSession(staticSource{
			listings: []scrape.Listing{{Name: "Ridge Runner"}},
		}, logger.Nop()),
	}
	if err := Preflight(context.Background(), deps, logger.Nop()); err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}
}

func TestPreflightEmptyIndex(t *testing.T) {
	deps := PreflightDeps{Index: vector.NewMemory(8)}
	err := Preflight(context.Background(), deps, logger.Nop())
	if err == nil {
		t.Fatal("Preflight() passed with an empty index")
	}
	if !strings.Contains(err.Error(), "index command") {
		t.Errorf("error %q should point at the index command", err)
	}
}

func TestPreflightUnreachableLLM(t *testing.T) {
	deps := PreflightDeps{
		Index: populatedIndex(t),
		LLM:   fakePinger{err: errors.ServiceUnavailableError("llm provider")},
	}
	if err := Preflight(context.Background(), deps, logger.Nop()); err == nil {
		t.Fatal("Preflight() passed with an unreachable provider")
	}
}

func TestPreflightEmptyListingSource(t *testing.T) {
	deps := PreflightDeps{
		Index:   populatedIndex(t),
		LLM:     fakePinger{},
		Session: scrape.NewSession(staticSource{}, logger.Nop()),
	}
	err := Preflight(context.Background(), deps, logger.Nop())
	if !errors.IsScrape(err) {
		t.Fatalf("want scrape failure for empty listing source, got %v", err)
	}
}

func TestPreflightSkipsNilDeps(t *testing.T) {
	if err := Preflight(context.Background(), PreflightDeps{}, logger.Nop()); err != nil {
		t.Fatalf("Preflight() with no deps error = %v", err)
	}
}
