package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfsearch/shelf-search/internal/bus"
	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/config"
	"github.com/shelfsearch/shelf-search/internal/dataset"
	"github.com/shelfsearch/shelf-search/internal/embed"
	"github.com/shelfsearch/shelf-search/internal/llm"
	"github.com/shelfsearch/shelf-search/internal/metrics"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/qdrant"
	"github.com/shelfsearch/shelf-search/internal/scrape"
	"github.com/shelfsearch/shelf-search/internal/vector"
)

// app holds the wired collaborators shared by the commands. Components are
// built lazily: the report command never touches the vector backend or the
// LLM provider.
type app struct {
	cfg *config.Config
	log *logger.Logger
	cat *catalog.Catalog

	llmClient *llm.Client
	metrics   *metrics.Metrics
	bus       bus.Bus

	closers []func() error
}

// newApp loads configuration, the logger, and the catalog.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", cfg.Catalog.Path, err)
	}
	log.Info("catalog loaded", "path", cfg.Catalog.Path, "items", cat.Len())

	return &app{cfg: cfg, log: log, cat: cat}, nil
}

// close releases everything the app built, in reverse order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// buildLLM creates the shared provider client once.
func (a *app) buildLLM() *llm.Client {
	if a.llmClient == nil {
		a.llmClient = llm.New(llm.Config{
			BaseURL:           a.cfg.LLM.BaseURL,
			APIKey:            a.cfg.LLM.APIKey,
			Timeout:           a.cfg.LLM.Timeout,
			RequestsPerSecond: a.cfg.LLM.RequestsPerSecond,
			Burst:             a.cfg.LLM.Burst,
			BreakerEnabled:    a.cfg.LLM.BreakerEnabled,
		}, a.log)
	}
	return a.llmClient
}

// buildEmbedder creates the configured embedding function behind the LRU
// cache.
func (a *app) buildEmbedder() (embed.Embedder, error) {
	var inner embed.Embedder
	switch a.cfg.Embed.Provider {
	case "hashing":
		inner = embed.NewHashing(a.cfg.Embed.Dimension)
	case "openai":
		inner = embed.NewRemote(a.buildLLM(), a.cfg.Embed.Model, a.cfg.Embed.Dimension)
	default:
		return nil, fmt.Errorf("unknown embed provider: %s", a.cfg.Embed.Provider)
	}

	cache := embed.NewCache(inner, a.cfg.Embed.CacheSize)
	if a.metrics != nil {
		cache.SetMetrics(a.metrics)
	}
	return cache, nil
}

// buildIndex creates the configured vector index backend.
func (a *app) buildIndex(ctx context.Context) (vector.Index, error) {
	switch a.cfg.Vector.Backend {
	case "memory":
		return vector.NewMemory(a.cfg.Embed.Dimension), nil

	case "qdrant":
		client, err := qdrant.NewClient(qdrant.ClientConfig{
			Host:   a.cfg.Vector.Host,
			Port:   a.cfg.Vector.Port,
			APIKey: a.cfg.Vector.APIKey,
			UseTLS: a.cfg.Vector.UseTLS,
		})
		if err != nil {
			return nil, err
		}
		a.onClose(client.Close)

		index, err := vector.NewQdrant(ctx, client, a.cfg.Vector.Collection, a.cfg.Embed.Dimension)
		if err != nil {
			return nil, err
		}
		return index, nil

	default:
		return nil, fmt.Errorf("unknown vector backend: %s", a.cfg.Vector.Backend)
	}
}

// buildSession creates the listing scrape session for the keyword baseline.
func (a *app) buildSession() (*scrape.Session, error) {
	var source scrape.Source
	switch a.cfg.Scrape.Source {
	case "http":
		source = scrape.NewHTTPSource(a.cfg.Scrape.ListingURL, a.cfg.Scrape.Timeout)
	case "file":
		source = scrape.NewFileSource(a.cfg.Scrape.FilePath)
	case "catalog":
		source = scrape.NewCatalogSource(a.cat)
	default:
		return nil, fmt.Errorf("unknown scrape source: %s", a.cfg.Scrape.Source)
	}
	return scrape.NewSession(source, a.log), nil
}

// buildBus creates the event bus and, when metrics are enabled, wraps it with
// the publish instrumentation.
func (a *app) buildBus() (bus.Bus, error) {
	if a.bus != nil {
		return a.bus, nil
	}

	b, err := bus.New(a.cfg.Bus, a.log)
	if err != nil {
		return nil, err
	}
	a.onClose(b.Close)

	if a.metrics != nil {
		b = bus.NewInstrumentedBus(b, a.metrics)
	}
	a.bus = b
	return b, nil
}

// buildMetrics creates the metrics registry. Must run before buildBus and
// buildEmbedder for their instrumentation to attach.
func (a *app) buildMetrics() *metrics.Metrics {
	if a.metrics == nil {
		a.metrics = metrics.New()
		a.onClose(a.metrics.Close)
	}
	return a.metrics
}

// loadDataset loads the query set: an Excel sheet or JSON file per the
// configured path, falling back to the built-in default set.
func (a *app) loadDataset() (dataset.Dataset, error) {
	path := a.cfg.Dataset.Path
	if path == "" {
		a.log.Info("no dataset configured, using the built-in query set")
		return *dataset.Default(), nil
	}

	var (
		ds  *dataset.Dataset
		err error
	)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		ds, err = dataset.LoadXLSX(path)
	} else {
		ds, err = dataset.Load(path, a.cat)
	}
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("loading dataset %s: %w", path, err)
	}

	a.log.Info("dataset loaded", "path", path, "queries", ds.Len())
	return *ds, nil
}
