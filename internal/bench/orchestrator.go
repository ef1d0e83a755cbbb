package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shelfsearch/shelf-search/internal/bus"
	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/config"
	"github.com/shelfsearch/shelf-search/internal/dataset"
	"github.com/shelfsearch/shelf-search/internal/evaluation"
	"github.com/shelfsearch/shelf-search/internal/hallucination"
	"github.com/shelfsearch/shelf-search/internal/judge"
	"github.com/shelfsearch/shelf-search/internal/metrics"
	"github.com/shelfsearch/shelf-search/internal/observability"
	runctx "github.com/shelfsearch/shelf-search/internal/pkg/context"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/query"
	"github.com/shelfsearch/shelf-search/internal/retrieval"
	"github.com/shelfsearch/shelf-search/internal/synthesis"
)

// hybridRetriever is the slice of the hybrid engine the runner needs.
type hybridRetriever interface {
	Retrieve(ctx context.Context, text string, constraints map[string]catalog.AttrValue) (retrieval.Result, error)
}

// keywordRetriever is the slice of the keyword baseline the runner needs.
type keywordRetriever interface {
	Retrieve(ctx context.Context, text string) (retrieval.Result, error)
}

// synthesizer generates the recommendation for one retrieval result.
type synthesizer interface {
	Generate(ctx context.Context, cat *catalog.Catalog, queryText string, result retrieval.Result) (synthesis.Response, error)
}

// scorer is the slice of the judge the runner needs.
type scorer interface {
	ScoreRetrieval(ctx context.Context, queryText string, items []synthesis.ContextItem) (judge.RetrievalScores, error)
	ScoreResponse(ctx context.Context, queryText, responseText string, items []synthesis.ContextItem) (judge.ResponseScores, error)
}

// Runner orchestrates one benchmark run over a query dataset.
type Runner struct {
	cat     *catalog.Catalog
	parser  *query.Parser
	hybrid  hybridRetriever
	keyword keywordRetriever
	synth   synthesizer
	judge   scorer
	bus     bus.Bus
	runLog  *observability.RunLog
	metrics *metrics.Metrics
	cfg     config.BenchConfig
	log     *logger.Logger
}

// Deps bundles the runner's collaborators. Bus, RunLog and Metrics are
// optional; the judge is required only when evaluation is enabled.
type Deps struct {
	Catalog *catalog.Catalog
	Parser  *query.Parser
	Hybrid  hybridRetriever
	Keyword keywordRetriever
	Synth   synthesizer
	Judge   scorer
	Bus     bus.Bus
	RunLog  *observability.RunLog
	Metrics *metrics.Metrics
}

// NewRunner creates a benchmark runner.
func NewRunner(deps Deps, cfg config.BenchConfig, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		cat:     deps.Catalog,
		parser:  deps.Parser,
		hybrid:  deps.Hybrid,
		keyword: deps.Keyword,
		synth:   deps.Synth,
		judge:   deps.Judge,
		bus:     deps.Bus,
		runLog:  deps.RunLog,
		metrics: deps.Metrics,
		cfg:     cfg,
		log:     log.WithComponent("bench"),
	}
}

// Run executes the benchmark over the dataset and returns the aggregated
// output. Dataset validation failures abort the whole run; per-query failures
// are recorded and the run continues.
func (r *Runner) Run(ctx context.Context, ds dataset.Dataset) (Output, error) {
	if err := ds.Validate(r.cat); err != nil {
		return Output{}, err
	}

	runID := uuid.NewString()[:8]
	if r.runLog != nil {
		r.runLog.SetRunID(runID)
	}
	log := r.log.WithRun(runID)
	startedAt := time.Now()

	log.Info("benchmark run starting",
		"queries", ds.Len(),
		"workers", r.cfg.Workers,
		"evaluate", r.cfg.Evaluate)

	r.publish(ctx, bus.TopicRunStarted, runID, map[string]string{
		"total_queries": fmt.Sprintf("%d", ds.Len()),
	})

	ids := make([]string, ds.Len())
	for i, q := range ds.Queries {
		ids[i] = q.ID
	}
	collector := newResultCollector(ids)

	g, gctx := errgroup.WithContext(ctx)
	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, q := range ds.Queries {
		q := q
		g.Go(func() error {
			collector.add(r.runQuery(gctx, runID, q))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, err
	}

	results := collector.collect()
	failed := 0
	for _, res := range results {
		if res.State == StateFailed {
			failed++
		}
	}

	out := Output{
		RunType:      "benchmark",
		RunID:        runID,
		Timestamp:    startedAt.UTC(),
		TotalQueries: len(results),
		Failed:       failed,
		Summary:      Summarize(results),
		Results:      results,
	}

	r.publish(ctx, bus.TopicRunCompleted, runID, map[string]string{
		"total_queries": fmt.Sprintf("%d", out.TotalQueries),
		"failed":        fmt.Sprintf("%d", out.Failed),
		"winner":        out.Summary.Winner.Overall,
	})

	log.Info("benchmark run complete",
		"took", time.Since(startedAt).String(),
		"failed", failed,
		"winner", out.Summary.Winner.Overall)
	return out, nil
}

// runQuery takes one query through both paths under the per-query timeout.
func (r *Runner) runQuery(ctx context.Context, runID string, q dataset.Query) QueryResult {
	log := r.log.WithRun(runID).WithQuery(q.ID)
	timeline := observability.NewTimeline(q.ID, q.Text)
	start := time.Now()

	if r.metrics != nil {
		r.metrics.QueryStarted()
		defer r.metrics.QueryFinished()
	}

	// Downstream components pick the ids up for correlated logging.
	qctx := runctx.WithQueryID(runctx.WithRunID(ctx, runID), q.ID)
	if r.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(qctx, r.cfg.QueryTimeout)
		defer cancel()
	}

	result := QueryResult{QueryID: q.ID, Text: q.Text, State: StatePending}
	constraints := r.constraintsFor(q)

	advance := func(state State) {
		result.State = state
		r.publish(ctx, bus.TopicQueryStateChanged, runID, map[string]string{
			"query_id": q.ID,
			"state":    string(state),
		})
	}

	result.Hybrid = r.runPath(qctx, log, q, retrieval.PathHybrid, constraints, timeline)
	result.Keyword = r.runPath(qctx, log, q, retrieval.PathKeyword, constraints, timeline)

	if qctx.Err() == context.DeadlineExceeded {
		result.State = StateFailed
		result.FailureCause = "timeout"
		log.Warn("query timed out", "timeout", r.cfg.QueryTimeout.String())
	} else {
		advance(StateRetrieved)
		advance(StateSynthesized)
		if r.cfg.Evaluate {
			advance(StateEvaluated)
		}
		advance(StateRecorded)
	}

	duration := time.Since(start)
	r.publish(ctx, bus.TopicQueryCompleted, runID, map[string]string{
		"query_id":         q.ID,
		"state":            string(result.State),
		"duration_seconds": fmt.Sprintf("%.3f", duration.Seconds()),
	})
	if r.runLog != nil {
		r.runLog.Record(timeline.Finish(string(result.State), result.FailureCause))
	}
	return result
}

// runPath executes one retrieval path end to end. Failures mark the path
// failed and never touch the other path.
func (r *Runner) runPath(ctx context.Context, log *logger.Logger, q dataset.Query, path retrieval.Path, constraints map[string]catalog.AttrValue, timeline *observability.TimelineBuilder) *PathResult {
	plog := log.WithPath(string(path))

	var retrieved retrieval.Result
	var err error
	if path == retrieval.PathHybrid {
		retrieved, err = r.hybrid.Retrieve(ctx, q.Text, constraints)
	} else {
		retrieved, err = r.keyword.Retrieve(ctx, q.Text)
	}
	if r.metrics != nil {
		r.metrics.RecordRetrieval(string(path), retrieved.Latency.Milliseconds(), len(retrieved.Items), err)
	}
	if err != nil {
		plog.Warn("retrieval failed", "error", err)
		return &PathResult{Status: StatusFailed, FailureCause: errors.CauseOf(err)}
	}
	timeline.Stage("retrieved", string(path), retrieved.Latency, fmt.Sprintf("%d items", len(retrieved.Items)))

	out := &PathResult{
		Status:      StatusOK,
		ItemIDs:     retrieved.IDs(),
		ResultCount: len(retrieved.Items),
		LatencyMS:   retrieved.Latency.Milliseconds(),
	}

	resp, err := r.synth.Generate(ctx, r.cat, q.Text, retrieved)
	if err != nil {
		plog.Warn("synthesis failed", "error", err)
		out.Status = StatusFailed
		out.FailureCause = errors.CauseOf(err)
		return out
	}
	out.Response = resp.Text
	timeline.Stage("synthesized", string(path), resp.Latency, "")

	report := hallucination.Detect(resp.Text, r.cat)
	out.Hallucinations = report.Findings
	if r.metrics != nil {
		for _, f := range report.Findings {
			r.metrics.RecordHallucination(f.Type, string(f.Severity))
		}
	}

	if r.cfg.Evaluate && r.judge != nil {
		judgeStart := time.Now()
		rs, rerr := r.judge.ScoreRetrieval(ctx, q.Text, resp.Context)
		ps, perr := r.judge.ScoreResponse(ctx, q.Text, resp.Text, resp.Context)
		timeline.Stage("evaluated", string(path), time.Since(judgeStart), "")

		switch {
		case rerr == nil && perr == nil:
			out.RetrievalScores = &rs
			out.ResponseScores = &ps
		default:
			// The query stays in the run; only its scores are excluded.
			out.JudgeFailed = true
			if r.metrics != nil && (errors.IsJudgeParse(rerr) || errors.IsJudgeParse(perr)) {
				r.metrics.RecordJudgeParseFailure()
			}
			plog.Warn("judge scoring failed",
				"retrieval_error", rerr,
				"response_error", perr)
		}
	}

	if q.HasExpectations() {
		outcome := evaluation.Evaluate(q, out.ItemIDs, r.cat)
		out.Evaluation = &outcome
	}

	return out
}

// constraintsFor resolves the hard constraints for one query: ground-truth
// required attributes when the dataset provides them, otherwise whatever the
// parser understands from the text.
func (r *Runner) constraintsFor(q dataset.Query) map[string]catalog.AttrValue {
	if len(q.RequiredAttributes) > 0 {
		return q.RequiredAttributes
	}
	if r.parser == nil {
		return nil
	}
	return r.parser.Parse(q.Text).Constraints()
}

func (r *Runner) publish(ctx context.Context, topic, runID string, payload map[string]string) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, topic, bus.NewEvent(topic, "bench", runID, payload)); err != nil {
		r.log.Debug("event publish failed", "topic", topic, "error", err)
	}
}
