package bench

import (
	"context"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/scrape"
	"github.com/shelfsearch/shelf-search/internal/vector"
)

// pinger is the slice of the LLM client preflight needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// PreflightDeps are the external dependencies checked before a run. Nil
// members are skipped.
type PreflightDeps struct {
	Index   vector.Index
	LLM     pinger
	Session *scrape.Session
}

// Preflight verifies that every external dependency a run needs is actually
// reachable, so a misconfigured run fails in seconds instead of after the
// first query times out.
func Preflight(ctx context.Context, deps PreflightDeps, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("preflight")
	start := time.Now()

	if deps.Index != nil {
		count, err := deps.Index.Count(ctx)
		if err != nil {
			return errors.Wrap(errors.CodeVectorError, "checking vector index", err)
		}
		if count == 0 {
			return errors.New(errors.CodeRetrieval, "vector index is empty, run the index command first")
		}
		log.Debug("vector index ready", "vectors", count)
	}

	if deps.LLM != nil {
		if err := deps.LLM.Ping(ctx); err != nil {
			return err
		}
		log.Debug("llm provider reachable")
	}

	if deps.Session != nil {
		listings, err := deps.Session.Fetch(ctx)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			return errors.New(errors.CodeScrape, "listing source returned no listings")
		}
		log.Debug("listing source ready", "listings", len(listings))
	}

	log.Info("preflight passed", "took", time.Since(start).String())
	return nil
}
