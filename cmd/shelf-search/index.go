package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfsearch/shelf-search/internal/ingest"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the retrieval substrate from the catalog",
		Long: `Index rebuilds the vector index and the fact store from the product
catalog. The rebuild is full: existing vectors are dropped first.`,
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
			_, report, err := pipeline.Run(cmd.Context(), app.cat)
			if err != nil {
				return err
			}

			fmt.Printf("Indexed %d items (%d vectors, %d triples) in %s\n",
				report.Items, report.Vectors, report.Triples, report.Duration.Round(time.Millisecond))
			return nil
		},
	}
}
