package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shelfsearch/shelf-search/internal/bus"
	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/embed"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/triples"
	"github.com/shelfsearch/shelf-search/internal/vector"
)

// embedConcurrency bounds parallel embedding batches against the provider.
const embedConcurrency = 4

// Report summarizes one ingest run.
type Report struct {
	Items    int           `json:"items"`
	Vectors  int           `json:"vectors"`
	Triples  int           `json:"triples"`
	Duration time.Duration `json:"duration"`
}

// Pipeline builds the vector index and triple store from a catalog.
type Pipeline struct {
	embedder  embed.Embedder
	index     vector.Index
	bus       bus.Bus
	batchSize int
	log       *logger.Logger
}

// New creates an ingest pipeline. The bus is optional.
func New(embedder embed.Embedder, index vector.Index, b bus.Bus, batchSize int, log *logger.Logger) *Pipeline {
	if batchSize < 1 {
		batchSize = 32
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		embedder:  embedder,
		index:     index,
		bus:       b,
		batchSize: batchSize,
		log:       log.WithComponent("ingest"),
	}
}

// Run validates the catalog, embeds every item's projection into the index,
// and builds the triple store. The index is reset first: ingest is a full
// rebuild, never an incremental update.
func (p *Pipeline) Run(ctx context.Context, cat *catalog.Catalog) (*triples.Store, Report, error) {
	start := time.Now()
	items := cat.Items()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, Report{}, errors.Wrap(errors.CodeValidation, fmt.Sprintf("item %s", item.ID), err)
		}
	}

	if err := p.index.Reset(ctx); err != nil {
		return nil, Report{}, errors.VectorError("resetting index", err)
	}

	records, err := p.embedAll(ctx, items)
	if err != nil {
		return nil, Report{}, err
	}
	if err := p.index.Upsert(ctx, records); err != nil {
		return nil, Report{}, errors.VectorError("upserting vectors", err)
	}

	store := triples.BuildFromCatalog(cat)

	report := Report{
		Items:    len(items),
		Vectors:  len(records),
		Triples:  store.Len(),
		Duration: time.Since(start),
	}
	p.log.Info("ingest complete",
		"items", report.Items,
		"vectors", report.Vectors,
		"triples", report.Triples,
		"took", report.Duration.String())

	if p.bus != nil {
		event := bus.NewEvent(bus.TopicIndexBuilt, "ingest", "", map[string]string{
			"items":      fmt.Sprintf("%d", report.Items),
			"triples":    fmt.Sprintf("%d", report.Triples),
			"latency_ms": fmt.Sprintf("%d", report.Duration.Milliseconds()),
		})
		if err := p.bus.Publish(ctx, bus.TopicIndexBuilt, event); err != nil {
			p.log.Debug("event publish failed", "topic", bus.TopicIndexBuilt, "error", err)
		}
	}

	return store, report, nil
}

// embedAll embeds item projections in batches, a few batches in flight at a
// time. Record order follows catalog order.
func (p *Pipeline) embedAll(ctx context.Context, items []*catalog.Item) ([]vector.Record, error) {
	records := make([]vector.Record, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for batchStart := 0; batchStart < len(items); batchStart += p.batchSize {
		batchStart := batchStart
		batchEnd := batchStart + p.batchSize
		if batchEnd > len(items) {
			batchEnd = len(items)
		}

		g.Go(func() error {
			batch := items[batchStart:batchEnd]
			texts := make([]string, len(batch))
			for i, item := range batch {
				texts[i] = Projection(item)
			}

			vecs, err := p.embedder.Embed(gctx, texts)
			if err != nil {
				return errors.IngestError("embedding batch", err)
			}
			if len(vecs) != len(batch) {
				return errors.IngestError(
					fmt.Sprintf("embedder returned %d vectors for %d texts", len(vecs), len(batch)), nil)
			}

			for i, item := range batch {
				records[batchStart+i] = vector.Record{
					ItemID:     item.ID,
					Vector:     vecs[i],
					Name:       item.Name,
					Brand:      item.Brand,
					Family:     item.Family,
					Projection: texts[i],
					Embedder:   p.embedder.Name(),
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
