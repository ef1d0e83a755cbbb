// Package bench runs the head-to-head benchmark: every dataset query goes
// through both retrieval paths, gets a synthesized recommendation per path,
// and is scored by the judge, the hallucination detector, and the golden
// expectations. Aggregation feeds the winner verdict.
package bench

import (
	"github.com/shelfsearch/shelf-search/internal/evaluation"
	"github.com/shelfsearch/shelf-search/internal/hallucination"
	"github.com/shelfsearch/shelf-search/internal/judge"
)

// State is a query's position in the benchmark lifecycle.
type State string

const (
	StatePending     State = "pending"
	StateRetrieved   State = "retrieved"
	StateSynthesized State = "synthesized"
	StateEvaluated   State = "evaluated"
	StateRecorded    State = "recorded"
	StateFailed      State = "failed"
)

// Path result statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// PathResult is the outcome of one retrieval path for one query. A failed
// path carries its cause and nothing else; the other path proceeds
// independently.
type PathResult struct {
	Status       string `json:"status"`
	FailureCause string `json:"failure_cause,omitempty"`

	ItemIDs     []string `json:"item_ids,omitempty"`
	ResultCount int      `json:"result_count"`
	LatencyMS   int64    `json:"latency_ms"`
	Response    string   `json:"response,omitempty"`

	RetrievalScores *judge.RetrievalScores `json:"retrieval_scores,omitempty"`
	ResponseScores  *judge.ResponseScores  `json:"response_scores,omitempty"`
	JudgeFailed     bool                   `json:"judge_failed,omitempty"`

	Hallucinations []hallucination.Finding `json:"hallucinations,omitempty"`
	Evaluation     *evaluation.Outcome     `json:"evaluation,omitempty"`
}

// OK reports whether the path completed.
func (p *PathResult) OK() bool {
	return p != nil && p.Status == StatusOK
}

// QueryResult is the full per-query benchmark record. A failed query (timeout)
// is kept in the output for inspection but excluded from all aggregates.
type QueryResult struct {
	QueryID      string      `json:"query_id"`
	Text         string      `json:"text"`
	State        State       `json:"state"`
	FailureCause string      `json:"failure_cause,omitempty"`
	Hybrid       *PathResult `json:"hybrid,omitempty"`
	Keyword      *PathResult `json:"keyword,omitempty"`
}
