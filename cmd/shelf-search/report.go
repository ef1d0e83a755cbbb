package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfsearch/shelf-search/internal/bench"
	"github.com/shelfsearch/shelf-search/internal/report"
)

func reportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "report <run-output.json>",
		Short: "Render a markdown report from a benchmark output file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := bench.Load(args[0])
			if err != nil {
				return err
			}

			if outDir == "" {
				fmt.Print(report.Render(out))
				return nil
			}

			path, err := report.Write(out, outDir)
			if err != nil {
				return err
			}
			fmt.Printf("Report: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write the report into (default: stdout)")
	return cmd
}
