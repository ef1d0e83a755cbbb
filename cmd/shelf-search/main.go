package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shelf-search",
		Short: "Shelf Search - hybrid product retrieval benchmark",
		Long: `Shelf Search compares a hybrid retrieval engine (vector search plus a
symbolic triple store) against a naive keyword baseline over the same product
catalog, with LLM-judged scoring and deterministic hallucination detection.

Run 'shelf-search index' to build the retrieval substrate.
Run 'shelf-search bench' to execute the head-to-head benchmark.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format override (text, json)")

	rootCmd.AddCommand(
		indexCmd(),
		searchCmd(),
		benchCmd(),
		reportCmd(),
		watchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shelf-search %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
