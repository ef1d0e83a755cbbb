// Package report renders benchmark output as a markdown comparison the team
// can paste into a doc or PR.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/bench"
)

// Render produces a markdown report for one benchmark run.
func Render(out bench.Output) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Benchmark Report\n\n")
	fmt.Fprintf(&sb, "- **Run:** %s\n", out.RunID)
	fmt.Fprintf(&sb, "- **Date:** %s\n", out.Timestamp.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&sb, "- **Queries:** %d (%d failed)\n", out.TotalQueries, out.Failed)
	fmt.Fprintf(&sb, "- **Winner:** %s (hybrid %d, keyword %d)\n\n",
		out.Summary.Winner.Overall, out.Summary.Winner.HybridWins, out.Summary.Winner.KeywordWins)

	writeSummaryTable(&sb, out.Summary)
	writeFindings(&sb, out)
	writeFailures(&sb, out)

	return sb.String()
}

// Write renders the report beside the run output and returns the path.
func Write(out bench.Output, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("report-%s-%s.md", out.Timestamp.Format("20060102-150405"), out.RunID)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(Render(out)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func writeSummaryTable(sb *strings.Builder, s bench.Summary) {
	fmt.Fprintf(sb, "## Side by Side\n\n")
	fmt.Fprintf(sb, "| Metric | Hybrid | Keyword |\n")
	fmt.Fprintf(sb, "|---|---|---|\n")

	row := func(name, hybrid, keyword string) {
		fmt.Fprintf(sb, "| %s | %s | %s |\n", name, hybrid, keyword)
	}

	row("Success rate",
		fmt.Sprintf("%.0f%% (%d/%d)", s.Hybrid.SuccessRate*100, s.Hybrid.Succeeded, s.Hybrid.Attempted),
		fmt.Sprintf("%.0f%% (%d/%d)", s.Keyword.SuccessRate*100, s.Keyword.Succeeded, s.Keyword.Attempted))
	row("Latency (ms)", statsCell(s.Hybrid.Latency), statsCell(s.Keyword.Latency))
	row("Result count", statsCell(s.Hybrid.ResultCount), statsCell(s.Keyword.ResultCount))
	row("Relevance", scoreCell(s.Hybrid.Relevance), scoreCell(s.Keyword.Relevance))
	row("Coverage", scoreCell(s.Hybrid.Coverage), scoreCell(s.Keyword.Coverage))
	row("Precision", scoreCell(s.Hybrid.Precision), scoreCell(s.Keyword.Precision))
	row("Accuracy", scoreCell(s.Hybrid.Accuracy), scoreCell(s.Keyword.Accuracy))
	row("Hallucination score", scoreCell(s.Hybrid.Hallucination), scoreCell(s.Keyword.Hallucination))
	row("Helpfulness", scoreCell(s.Hybrid.Helpfulness), scoreCell(s.Keyword.Helpfulness))
	row("Completeness", scoreCell(s.Hybrid.Completeness), scoreCell(s.Keyword.Completeness))
	row("Hallucination findings",
		fmt.Sprintf("%d (%d critical)", s.Hybrid.HallucinationFindings, s.Hybrid.CriticalFindings),
		fmt.Sprintf("%d (%d critical)", s.Keyword.HallucinationFindings, s.Keyword.CriticalFindings))
	row("Judge failures",
		fmt.Sprintf("%d", s.Hybrid.JudgeFailures),
		fmt.Sprintf("%d", s.Keyword.JudgeFailures))

	sb.WriteString("\n")
}

func writeFindings(sb *strings.Builder, out bench.Output) {
	var rows []string
	for _, res := range out.Results {
		paths := []struct {
			name string
			p    *bench.PathResult
		}{{"hybrid", res.Hybrid}, {"keyword", res.Keyword}}
		for _, entry := range paths {
			if entry.p == nil {
				continue
			}
			for _, f := range entry.p.Hallucinations {
				rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s | %s |",
					res.QueryID, entry.name, f.Type, f.Severity, f.ItemID))
			}
		}
	}
	if len(rows) == 0 {
		return
	}

	fmt.Fprintf(sb, "## Hallucination Findings\n\n")
	fmt.Fprintf(sb, "| Query | Path | Type | Severity | Item |\n")
	fmt.Fprintf(sb, "|---|---|---|---|---|\n")
	for _, row := range rows {
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeFailures(sb *strings.Builder, out bench.Output) {
	var rows []string
	for _, res := range out.Results {
		if res.State == bench.StateFailed {
			rows = append(rows, fmt.Sprintf("| %s | query | %s |", res.QueryID, res.FailureCause))
			continue
		}
		if res.Hybrid != nil && !res.Hybrid.OK() {
			rows = append(rows, fmt.Sprintf("| %s | hybrid | %s |", res.QueryID, res.Hybrid.FailureCause))
		}
		if res.Keyword != nil && !res.Keyword.OK() {
			rows = append(rows, fmt.Sprintf("| %s | keyword | %s |", res.QueryID, res.Keyword.FailureCause))
		}
	}
	if len(rows) == 0 {
		return
	}

	fmt.Fprintf(sb, "## Failures\n\n")
	fmt.Fprintf(sb, "| Query | Scope | Cause |\n")
	fmt.Fprintf(sb, "|---|---|---|\n")
	for _, row := range rows {
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func statsCell(s bench.Stats) string {
	if s.Count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f (med %.1f, sd %.1f)", s.Mean, s.Median, s.StdDev)
}

func scoreCell(s bench.Stats) string {
	if s.Count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f / 5", s.Mean)
}
