package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/ingest"
	"github.com/shelfsearch/shelf-search/internal/watch"
)

func watchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index fresh while the catalog file changes",
		Long: `Watch indexes the catalog, then watches the catalog file and re-ingests
after every change. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			embedder, err := app.buildEmbedder()
			if err != nil {
				return err
			}
			index, err := app.buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			b, err := app.buildBus()
			if err != nil {
				return err
			}
			pipeline := ingest.New(embedder, index, b, app.cfg.Embed.BatchSize, app.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, report, err := pipeline.Run(ctx, app.cat)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d items, watching %s\n", report.Items, app.cfg.Catalog.Path)

			w, err := watch.New(watch.Config{
				Path:     app.cfg.Catalog.Path,
				Debounce: debounce,
				Reindex: func(ctx context.Context, path string) error {
					cat, err := catalog.Load(path)
					if err != nil {
						return err
					}
					_, _, err = pipeline.Run(ctx, cat)
					return err
				},
			}, app.log)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 0, "reindex debounce window (default 500ms)")
	return cmd
}
