package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfsearch/shelf-search/internal/ingest"
	"github.com/shelfsearch/shelf-search/internal/query"
	"github.com/shelfsearch/shelf-search/internal/retrieval"
)

func searchCmd() *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "search <query text>",
		Short: "Run one ad-hoc query through the hybrid engine",
		Long: `Search runs a single query through the hybrid retrieval engine and prints
the ranked items. An in-memory backend is indexed on the fly; a persistent
backend must have been indexed beforehand.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

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

			// The fact store lives only in memory, so a rebuild is always
			// needed; for the memory backend this also populates the index.
			pipeline := ingest.New(embedder, index, nil, app.cfg.Embed.BatchSize, app.log)
			store, _, err := pipeline.Run(cmd.Context(), app.cat)
			if err != nil {
				return err
			}

			if topN <= 0 {
				topN = app.cfg.Bench.TopN
			}
			parser := query.NewParser(query.SchemaFromCatalog(app.cat), app.log)
			hybrid := retrieval.NewHybrid(index, embedder, store, app.cat,
				app.cfg.Bench.KWide, topN, app.log)

			result, err := hybrid.Retrieve(cmd.Context(), text, parser.Parse(text).Constraints())
			if err != nil {
				return err
			}

			if len(result.Items) == 0 {
				fmt.Println("No matching items.")
				return nil
			}
			fmt.Printf("Top %d results (%s):\n", len(result.Items), result.Latency.Round(time.Millisecond))
			for i, item := range result.Items {
				fmt.Printf("%2d. %-12s %-30s score=%.4f\n", i+1, item.ID, item.Name, item.Score)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "number of results to return (default from config)")
	return cmd
}
