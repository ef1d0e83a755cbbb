package bench

import "github.com/shelfsearch/shelf-search/internal/hallucination"

// PathSummary aggregates one path's results across the run. Timed-out queries
// never reach a summary; failed paths count against success rate only.
type PathSummary struct {
	Attempted   int     `json:"attempted"`
	Succeeded   int     `json:"succeeded"`
	SuccessRate float64 `json:"success_rate"`

	Latency     Stats `json:"latency_ms"`
	ResultCount Stats `json:"result_count"`

	Relevance Stats `json:"relevance"`
	Coverage  Stats `json:"coverage"`
	Precision Stats `json:"precision"`

	Accuracy      Stats `json:"accuracy"`
	Hallucination Stats `json:"hallucination"`
	Helpfulness   Stats `json:"helpfulness"`
	Completeness  Stats `json:"completeness"`

	HallucinationFindings int `json:"hallucination_findings"`
	CriticalFindings      int `json:"critical_findings"`
	JudgeFailures         int `json:"judge_failures"`
}

// Winner is the run verdict from the per-metric tally.
type Winner struct {
	HybridWins  int    `json:"hybrid_wins"`
	KeywordWins int    `json:"keyword_wins"`
	Overall     string `json:"overall"`
}

// Summary is the aggregated comparison of the two paths.
type Summary struct {
	Hybrid  PathSummary `json:"hybrid"`
	Keyword PathSummary `json:"keyword"`
	Winner  Winner      `json:"winner"`
}

// Summarize aggregates per-query results and tallies the winner.
func Summarize(results []QueryResult) Summary {
	s := Summary{
		Hybrid:  summarizePath(results, func(q QueryResult) *PathResult { return q.Hybrid }),
		Keyword: summarizePath(results, func(q QueryResult) *PathResult { return q.Keyword }),
	}
	s.Winner = tally(s.Hybrid, s.Keyword)
	return s
}

func summarizePath(results []QueryResult, pick func(QueryResult) *PathResult) PathSummary {
	var out PathSummary
	var latencies, counts []float64
	var relevance, coverage, precision []float64
	var accuracy, halluc, helpfulness, completeness []float64

	for _, q := range results {
		if q.State == StateFailed {
			continue
		}
		p := pick(q)
		if p == nil {
			continue
		}

		out.Attempted++
		if !p.OK() {
			continue
		}
		out.Succeeded++

		latencies = append(latencies, float64(p.LatencyMS))
		counts = append(counts, float64(p.ResultCount))

		out.HallucinationFindings += len(p.Hallucinations)
		for _, f := range p.Hallucinations {
			if f.Severity == hallucination.SeverityCritical {
				out.CriticalFindings++
			}
		}

		if p.JudgeFailed {
			out.JudgeFailures++
			continue
		}
		if p.RetrievalScores != nil {
			relevance = append(relevance, float64(p.RetrievalScores.Relevance))
			coverage = append(coverage, float64(p.RetrievalScores.Coverage))
			precision = append(precision, float64(p.RetrievalScores.Precision))
		}
		if p.ResponseScores != nil {
			accuracy = append(accuracy, float64(p.ResponseScores.Accuracy))
			halluc = append(halluc, float64(p.ResponseScores.Hallucination))
			helpfulness = append(helpfulness, float64(p.ResponseScores.Helpfulness))
			completeness = append(completeness, float64(p.ResponseScores.Completeness))
		}
	}

	if out.Attempted > 0 {
		out.SuccessRate = float64(out.Succeeded) / float64(out.Attempted)
	}
	out.Latency = computeStats(latencies)
	out.ResultCount = computeStats(counts)
	out.Relevance = computeStats(relevance)
	out.Coverage = computeStats(coverage)
	out.Precision = computeStats(precision)
	out.Accuracy = computeStats(accuracy)
	out.Hallucination = computeStats(halluc)
	out.Helpfulness = computeStats(helpfulness)
	out.Completeness = computeStats(completeness)
	return out
}

// comparison is one tallied metric. higherBetter is false for latency.
type comparison struct {
	name         string
	higherBetter bool
	value        func(PathSummary) (float64, bool)
}

var comparisons = []comparison{
	{"success_rate", true, func(p PathSummary) (float64, bool) {
		return p.SuccessRate, p.Attempted > 0
	}},
	{"latency", false, func(p PathSummary) (float64, bool) {
		return p.Latency.Mean, p.Latency.Count > 0
	}},
	{"result_count", true, func(p PathSummary) (float64, bool) {
		return p.ResultCount.Mean, p.ResultCount.Count > 0
	}},
	{"relevance", true, func(p PathSummary) (float64, bool) {
		return p.Relevance.Mean, p.Relevance.Count > 0
	}},
	{"coverage", true, func(p PathSummary) (float64, bool) {
		return p.Coverage.Mean, p.Coverage.Count > 0
	}},
	{"precision", true, func(p PathSummary) (float64, bool) {
		return p.Precision.Mean, p.Precision.Count > 0
	}},
	{"accuracy", true, func(p PathSummary) (float64, bool) {
		return p.Accuracy.Mean, p.Accuracy.Count > 0
	}},
	{"hallucination", true, func(p PathSummary) (float64, bool) {
		return p.Hallucination.Mean, p.Hallucination.Count > 0
	}},
	{"helpfulness", true, func(p PathSummary) (float64, bool) {
		return p.Helpfulness.Mean, p.Helpfulness.Count > 0
	}},
	{"completeness", true, func(p PathSummary) (float64, bool) {
		return p.Completeness.Mean, p.Completeness.Count > 0
	}},
}

// tally awards one point per metric to the strictly better path. Metrics
// missing on either side are skipped; ties award nothing.
func tally(hybrid, keyword PathSummary) Winner {
	var w Winner
	for _, c := range comparisons {
		hv, hok := c.value(hybrid)
		kv, kok := c.value(keyword)
		if !hok || !kok {
			continue
		}

		hybridBetter := hv > kv
		if !c.higherBetter {
			hybridBetter = hv < kv
		}
		switch {
		case hv == kv:
		case hybridBetter:
			w.HybridWins++
		default:
			w.KeywordWins++
		}
	}

	switch {
	case w.HybridWins > w.KeywordWins:
		w.Overall = "hybrid"
	case w.KeywordWins > w.HybridWins:
		w.Overall = "keyword"
	default:
		w.Overall = "tie"
	}
	return w
}
