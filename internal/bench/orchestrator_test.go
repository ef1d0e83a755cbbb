package bench

import (
	"context"
	"testing"
	"time"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/config"
	"github.com/shelfsearch/shelf-search/internal/dataset"
	"github.com/shelfsearch/shelf-search/internal/judge"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/retrieval"
	"github.com/shelfsearch/shelf-search/internal/synthesis"
)

func benchCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{
			ID: "s1", Name: "Ridge Runner", Family: "trail", Price: 149.99, InStock: true,
			AvailableSizes: []string{"9", "10"},
			Attributes:     map[string]catalog.AttrValue{"waterproof": catalog.Bool(true)},
		},
		{
			ID: "s2", Name: "Pavement Flyer", Family: "road", Price: 89.50, InStock: true,
			AvailableSizes: []string{"8", "9"},
			Attributes:     map[string]catalog.AttrValue{"waterproof": catalog.Bool(false)},
		},
	})
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return cat
}

type fakeHybrid struct {
	result      retrieval.Result
	err         error
	delays      map[string]time.Duration
	constraints map[string]catalog.AttrValue
}

func (f *fakeHybrid) Retrieve(ctx context.Context, text string, constraints map[string]catalog.AttrValue) (retrieval.Result, error) {
	f.constraints = constraints
	if delay, ok := f.delays[text]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return retrieval.Result{}, errors.TimeoutError("hybrid retrieve")
		}
	}
	if f.err != nil {
		return retrieval.Result{}, f.err
	}
	r := f.result
	r.Path = retrieval.PathHybrid
	return r, nil
}

type fakeKeyword struct {
	result retrieval.Result
	err    error
}

func (f *fakeKeyword) Retrieve(ctx context.Context, text string) (retrieval.Result, error) {
	if ctx.Err() != nil {
		return retrieval.Result{}, errors.TimeoutError("keyword retrieve")
	}
	if f.err != nil {
		return retrieval.Result{}, f.err
	}
	r := f.result
	r.Path = retrieval.PathKeyword
	return r, nil
}

type fakeSynth struct {
	text string
	err  error
}

func (f *fakeSynth) Generate(ctx context.Context, cat *catalog.Catalog, queryText string, result retrieval.Result) (synthesis.Response, error) {
	if f.err != nil {
		return synthesis.Response{}, f.err
	}
	return synthesis.Response{
		Path:    result.Path,
		Text:    f.text,
		Context: synthesis.BuildContext(cat, result.Items),
		Latency: time.Millisecond,
	}, nil
}

type fakeJudge struct {
	rs  judge.RetrievalScores
	ps  judge.ResponseScores
	err error
}

func (f *fakeJudge) ScoreRetrieval(ctx context.Context, queryText string, items []synthesis.ContextItem) (judge.RetrievalScores, error) {
	return f.rs, f.err
}

func (f *fakeJudge) ScoreResponse(ctx context.Context, queryText, responseText string, items []synthesis.ContextItem) (judge.ResponseScores, error) {
	return f.ps, f.err
}

func okResult() retrieval.Result {
	return retrieval.Result{
		Items:   []retrieval.ScoredItem{{ID: "s1", Name: "Ridge Runner", Score: 0.9}},
		Latency: 5 * time.Millisecond,
	}
}

func testDataset(texts ...string) dataset.Dataset {
	ds := dataset.Dataset{}
	for i, text := range texts {
		ds.Queries = append(ds.Queries, dataset.Query{
			ID:   "q" + string(rune('1'+i)),
			Text: text,
		})
	}
	return ds
}

func newTestRunner(t *testing.T, deps Deps, cfg config.BenchConfig) *Runner {
	t.Helper()
	if deps.Catalog == nil {
		deps.Catalog = benchCatalog(t)
	}
	if deps.Hybrid == nil {
		deps.Hybrid = &fakeHybrid{result: okResult()}
	}
	if deps.Keyword == nil {
		deps.Keyword = &fakeKeyword{result: okResult()}
	}
	if deps.Synth == nil {
		deps.Synth = &fakeSynth{text: "The Ridge Runner [s1] is a solid pick."}
	}
	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	return NewRunner(deps, cfg, logger.Nop())
}

func TestRunCompletesAllQueries(t *testing.T) {
	r := newTestRunner(t, Deps{}, config.BenchConfig{})

	out, err := r.Run(context.Background(), testDataset("trail shoes", "road shoes", "waterproof shoes"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if out.TotalQueries != 3 {
		t.Fatalf("TotalQueries = %d, want 3", out.TotalQueries)
	}
	for i, res := range out.Results {
		if res.State != StateRecorded {
			t.Errorf("query %d state = %s, want recorded", i, res.State)
		}
		if !res.Hybrid.OK() || !res.Keyword.OK() {
			t.Errorf("query %d paths not ok: %+v / %+v", i, res.Hybrid, res.Keyword)
		}
	}

	// Results come back in dataset order regardless of worker scheduling.
	for i, wantID := range []string{"q1", "q2", "q3"} {
		if out.Results[i].QueryID != wantID {
			t.Errorf("Results[%d].QueryID = %s, want %s", i, out.Results[i].QueryID, wantID)
		}
	}
}

func TestRunRejectsInvalidDataset(t *testing.T) {
	r := newTestRunner(t, Deps{}, config.BenchConfig{})

	_, err := r.Run(context.Background(), dataset.Dataset{})
	if err == nil {
		t.Fatal("Run() accepted an empty dataset")
	}
	if !errors.IsValidation(err) {
		t.Errorf("error = %v, want validation failure", err)
	}
}

func TestRunTimedOutQueryExcludedFromAggregates(t *testing.T) {
	hybrid := &fakeHybrid{
		result: okResult(),
		delays: map[string]time.Duration{"slow query": 500 * time.Millisecond},
	}
	r := newTestRunner(t, Deps{Hybrid: hybrid}, config.BenchConfig{
		Workers:      1,
		QueryTimeout: 50 * time.Millisecond,
	})

	out, err := r.Run(context.Background(), testDataset("a", "b", "slow query", "d", "e"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if out.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", out.Failed)
	}
	slow := out.Results[2]
	if slow.State != StateFailed || slow.FailureCause != "timeout" {
		t.Errorf("slow query = %+v, want failed/timeout", slow)
	}

	// The other four queries still aggregate on both paths.
	if out.Summary.Hybrid.Latency.Count != 4 {
		t.Errorf("hybrid Latency.Count = %d, want 4", out.Summary.Hybrid.Latency.Count)
	}
	if out.Summary.Keyword.Latency.Count != 4 {
		t.Errorf("keyword Latency.Count = %d, want 4", out.Summary.Keyword.Latency.Count)
	}
}

func TestRunScrapeFailureKillsKeywordPathOnly(t *testing.T) {
	keyword := &fakeKeyword{err: errors.ScrapeError("fetching listings", nil)}
	r := newTestRunner(t, Deps{Keyword: keyword}, config.BenchConfig{})

	out, err := r.Run(context.Background(), testDataset("trail shoes"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	res := out.Results[0]
	if res.State != StateRecorded {
		t.Errorf("state = %s, want recorded", res.State)
	}
	if !res.Hybrid.OK() {
		t.Errorf("hybrid = %+v, want ok", res.Hybrid)
	}
	if res.Keyword.OK() || res.Keyword.FailureCause == "" {
		t.Errorf("keyword = %+v, want failed with cause", res.Keyword)
	}
}

func TestRunJudgeScoresAttached(t *testing.T) {
	j := &fakeJudge{
		rs: judge.RetrievalScores{Relevance: 4, Coverage: 4, Precision: 5},
		ps: judge.ResponseScores{Accuracy: 5, Hallucination: 5, Helpfulness: 4, Completeness: 4},
	}
	r := newTestRunner(t, Deps{Judge: j}, config.BenchConfig{Evaluate: true})

	out, err := r.Run(context.Background(), testDataset("trail shoes"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	h := out.Results[0].Hybrid
	if h.RetrievalScores == nil || h.RetrievalScores.Precision != 5 {
		t.Errorf("RetrievalScores = %+v", h.RetrievalScores)
	}
	if h.ResponseScores == nil || h.ResponseScores.Accuracy != 5 {
		t.Errorf("ResponseScores = %+v", h.ResponseScores)
	}
	if out.Summary.Hybrid.Precision.Mean != 5 {
		t.Errorf("summary Precision.Mean = %.1f, want 5", out.Summary.Hybrid.Precision.Mean)
	}
}

func TestRunJudgeParseFailureExcludesScoresOnly(t *testing.T) {
	j := &fakeJudge{err: errors.JudgeParseError("no JSON object in reply")}
	r := newTestRunner(t, Deps{Judge: j}, config.BenchConfig{Evaluate: true})

	out, err := r.Run(context.Background(), testDataset("trail shoes"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	h := out.Results[0].Hybrid
	if !h.OK() {
		t.Fatalf("path = %+v, want ok", h)
	}
	if !h.JudgeFailed || h.RetrievalScores != nil {
		t.Errorf("JudgeFailed = %v, scores = %+v", h.JudgeFailed, h.RetrievalScores)
	}
	if out.Summary.Hybrid.Relevance.Count != 0 {
		t.Errorf("Relevance.Count = %d, want 0", out.Summary.Hybrid.Relevance.Count)
	}
}

func TestRunGroundTruthConstraintsWin(t *testing.T) {
	hybrid := &fakeHybrid{result: okResult()}
	r := newTestRunner(t, Deps{Hybrid: hybrid}, config.BenchConfig{})

	ds := testDataset("waterproof trail shoes")
	ds.Queries[0].RequiredAttributes = map[string]catalog.AttrValue{
		"max_price": catalog.Number(200),
	}

	if _, err := r.Run(context.Background(), ds); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got, ok := hybrid.constraints["max_price"]
	if !ok {
		t.Fatalf("constraints = %v, want max_price", hybrid.constraints)
	}
	if n, err := got.AsNumber(); err != nil || n != 200 {
		t.Errorf("max_price = %v (%v), want 200", n, err)
	}
}

func TestRunDetectsHallucinatedResponse(t *testing.T) {
	synth := &fakeSynth{text: "The Ridge Runner [s1] costs $99.99 and ships today."}
	r := newTestRunner(t, Deps{Synth: synth}, config.BenchConfig{})

	out, err := r.Run(context.Background(), testDataset("trail shoes"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	h := out.Results[0].Hybrid
	if len(h.Hallucinations) == 0 {
		t.Fatal("expected a price hallucination finding")
	}
	if h.Hallucinations[0].ItemID != "s1" {
		t.Errorf("finding = %+v", h.Hallucinations[0])
	}
}

func TestRunEvaluatesGoldenExpectations(t *testing.T) {
	r := newTestRunner(t, Deps{}, config.BenchConfig{})

	ds := testDataset("trail shoes")
	ds.Queries[0].ExpectedItems = []dataset.ExpectedItem{{ID: "s1"}, {ID: "s2"}}

	out, err := r.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ev := out.Results[0].Hybrid.Evaluation
	if ev == nil || !ev.Evaluated {
		t.Fatalf("Evaluation = %+v, want evaluated", ev)
	}
	if ev.HitRate != 0.5 {
		t.Errorf("HitRate = %.2f, want 0.5", ev.HitRate)
	}
}
