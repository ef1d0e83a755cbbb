package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfsearch/shelf-search/internal/bench"
	"github.com/shelfsearch/shelf-search/internal/ingest"
	"github.com/shelfsearch/shelf-search/internal/judge"
	"github.com/shelfsearch/shelf-search/internal/metrics"
	"github.com/shelfsearch/shelf-search/internal/observability"
	"github.com/shelfsearch/shelf-search/internal/query"
	"github.com/shelfsearch/shelf-search/internal/report"
	"github.com/shelfsearch/shelf-search/internal/retrieval"
	"github.com/shelfsearch/shelf-search/internal/synthesis"
	"github.com/shelfsearch/shelf-search/internal/triples"
)

func benchCmd() *cobra.Command {
	var (
		datasetPath string
		noEvaluate  bool
		sampleN     int
		queryID     string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the hybrid-versus-keyword benchmark",
		Long: `Bench runs every dataset query through both retrieval paths, scores the
outcomes, and writes the run output, a markdown report, and the query
timelines into the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			if datasetPath != "" {
				app.cfg.Dataset.Path = datasetPath
			}
			if noEvaluate {
				app.cfg.Bench.Evaluate = false
			}

			return runBench(cmd.Context(), app, sampleN, queryID)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "query dataset path (.json or .xlsx)")
	cmd.Flags().BoolVar(&noEvaluate, "no-evaluate", false, "skip LLM-judged scoring")
	cmd.Flags().IntVar(&sampleN, "sample", 0, "run only the first N dataset queries")
	cmd.Flags().StringVar(&queryID, "query", "", "run only the query with this id")
	return cmd
}

func runBench(ctx context.Context, app *app, sampleN int, queryID string) error {
	m := app.buildMetrics()

	b, err := app.buildBus()
	if err != nil {
		return err
	}
	if err := metrics.NewCollector(m, app.log).Attach(ctx, b); err != nil {
		return err
	}
	if addr := app.cfg.Metrics.HTTPAddr; addr != "" {
		server := metrics.NewServer(addr, m, app.log)
		server.Start()
		app.onClose(func() error { return server.Shutdown(context.Background()) })
	}

	embedder, err := app.buildEmbedder()
	if err != nil {
		return err
	}
	index, err := app.buildIndex(ctx)
	if err != nil {
		return err
	}

	// A persistent backend that already holds vectors skips the rebuild; the
	// fact store is in-memory and rebuilt either way.
	count, err := index.Count(ctx)
	if err != nil {
		return err
	}
	var store *triples.Store
	if count == 0 {
		pipeline := ingest.New(embedder, index, b, app.cfg.Embed.BatchSize, app.log)
		store, _, err = pipeline.Run(ctx, app.cat)
		if err != nil {
			return err
		}
	} else {
		app.log.Info("reusing existing vector index", "vectors", count)
		store = triples.BuildFromCatalog(app.cat)
	}

	session, err := app.buildSession()
	if err != nil {
		return err
	}
	client := app.buildLLM()

	if err := bench.Preflight(ctx, bench.PreflightDeps{
		Index:   index,
		LLM:     client,
		Session: session,
	}, app.log); err != nil {
		return err
	}

	ds, err := app.loadDataset()
	if err != nil {
		return err
	}
	if queryID != "" {
		narrowed, err := ds.ByID(queryID)
		if err != nil {
			return err
		}
		ds = *narrowed
	} else if sampleN > 0 {
		ds = *ds.Sample(sampleN)
	}

	var scorer *judge.Judge
	if app.cfg.Bench.Evaluate {
		scorer = judge.New(client, app.cfg.LLM.JudgeModel, app.cfg.Bench.JudgeSamples, app.log)
	}

	runLog := observability.NewRunLog("", 0)
	deps := bench.Deps{
		Catalog: app.cat,
		Parser:  query.NewParser(query.SchemaFromCatalog(app.cat), app.log),
		Hybrid: retrieval.NewHybrid(index, embedder, store, app.cat,
			app.cfg.Bench.KWide, app.cfg.Bench.TopN, app.log),
		Keyword: retrieval.NewKeyword(session, app.cat, app.cfg.Bench.TopN, app.log),
		Synth:   synthesis.New(client, app.cfg.LLM.Model, app.log),
		Bus:     b,
		RunLog:  runLog,
		Metrics: m,
	}
	if scorer != nil {
		deps.Judge = scorer
	}

	out, err := bench.NewRunner(deps, app.cfg.Bench, app.log).Run(ctx, ds)
	if err != nil {
		return err
	}

	outputDir := app.cfg.Bench.OutputDir
	outPath, err := out.Write(outputDir)
	if err != nil {
		return err
	}
	reportPath, err := report.Write(out, outputDir)
	if err != nil {
		return err
	}
	if _, err := runLog.Dump(outputDir); err != nil {
		app.log.Warn("run log dump failed", "error", err)
	}
	metricsPath := filepath.Join(outputDir, fmt.Sprintf("metrics-%s.prom", out.RunID))
	if err := m.WriteFile(metricsPath); err != nil {
		app.log.Warn("metrics snapshot failed", "error", err)
	}

	saveRunHistory(ctx, app, out, outPath)
	printSummary(out, outPath, reportPath)
	return nil
}

// saveRunHistory records the run summary in Redis when history is enabled.
// History failures never fail the run.
func saveRunHistory(ctx context.Context, app *app, out bench.Output, outPath string) {
	if !app.cfg.Redis.Enabled {
		return
	}
	history, err := metrics.NewRunHistory(app.cfg.Redis.URL)
	if err != nil {
		app.log.Warn("run history unavailable", "error", err)
		return
	}
	defer history.Close()

	record := metrics.RunRecord{
		RunID:        out.RunID,
		Timestamp:    out.Timestamp,
		TotalQueries: out.TotalQueries,
		Succeeded:    out.TotalQueries - out.Failed,
		Failed:       out.Failed,
		Winner:       out.Summary.Winner.Overall,
		HybridWins:   out.Summary.Winner.HybridWins,
		KeywordWins:  out.Summary.Winner.KeywordWins,
		OutputPath:   outPath,
	}
	hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := history.SaveRun(hctx, record); err != nil {
		app.log.Warn("run history save failed", "error", err)
	}
}

func printSummary(out bench.Output, outPath, reportPath string) {
	w := out.Summary.Winner
	fmt.Printf("Run %s: %d queries, %d failed\n", out.RunID, out.TotalQueries, out.Failed)
	fmt.Printf("Winner: %s (hybrid %d, keyword %d)\n", w.Overall, w.HybridWins, w.KeywordWins)
	fmt.Printf("Output: %s\n", outPath)
	fmt.Printf("Report: %s\n", reportPath)
}
