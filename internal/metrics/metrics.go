package metrics

import (
	stderrors "errors"
	"runtime"
	"sync"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Retrieval metrics, labeled by path (hybrid, keyword)
	RetrievalRequests *CounterVec   // labels: path
	RetrievalLatency  *HistogramVec // labels: path
	RetrievalResults  *HistogramVec // labels: path
	RetrievalErrors   *CounterVec   // labels: path, error_type

	// Ingest metrics
	IngestedItems   *Counter
	IngestedTriples *Counter
	IngestLatency   *Histogram
	IngestErrors    *CounterVec // labels: error_type

	// Embedding metrics
	EmbedRequests  *Counter
	EmbedLatency   *Histogram
	EmbedBatchSize *Histogram

	// LLM metrics, labeled by role (synthesis, judge)
	LLMRequests *CounterVec   // labels: role
	LLMLatency  *HistogramVec // labels: role
	LLMErrors   *CounterVec   // labels: role, error_type

	// Judge metrics
	JudgeParseFailures *Counter
	JudgeRetries       *Counter

	// Hallucination metrics
	HallucinationFindings *CounterVec // labels: type, severity

	// Scrape metrics
	ScrapeRequests *Counter
	ScrapeLatency  *Histogram
	ScrapeErrors   *Counter

	// Benchmark metrics
	BenchQueries    *CounterVec // labels: state
	BenchQueryTime  *Histogram
	BenchRuns       *Counter
	QueriesInFlight *Gauge

	// Cache metrics
	CacheHits   *CounterVec // labels: type
	CacheMisses *CounterVec // labels: type
	CacheSize   *GaugeVec   // labels: type

	// Bus metrics
	BusEventsPublished *CounterVec   // labels: topic
	BusEventLatency    *HistogramVec // labels: topic
	BusErrors          *CounterVec   // labels: topic

	// System metrics
	GoroutineCount *Gauge
	MemoryUsage    *Gauge // bytes
	Uptime         *Counter

	startTime time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

// New creates a metrics instance with all metrics initialized and starts the
// background system collector.
func New() *Metrics {
	m := &Metrics{
		RetrievalRequests: NewCounterVec(
			"shelf_retrieval_requests_total",
			"Total number of retrieval requests",
			[]string{"path"},
		),
		RetrievalLatency: NewHistogramVec(
			"shelf_retrieval_latency_ms",
			"Retrieval latency in milliseconds",
			[]string{"path"},
			[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		),
		RetrievalResults: NewHistogramVec(
			"shelf_retrieval_results",
			"Number of results per retrieval",
			[]string{"path"},
			[]float64{0, 1, 2, 5, 10, 20, 30},
		),
		RetrievalErrors: NewCounterVec(
			"shelf_retrieval_errors_total",
			"Total number of retrieval errors",
			[]string{"path", "error_type"},
		),

		IngestedItems: NewCounter(
			"shelf_ingested_items_total",
			"Total number of catalog items ingested",
			nil,
		),
		IngestedTriples: NewCounter(
			"shelf_ingested_triples_total",
			"Total number of triples built during ingest",
			nil,
		),
		IngestLatency: NewHistogram(
			"shelf_ingest_latency_ms",
			"Ingest pipeline latency in milliseconds",
			[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		),
		IngestErrors: NewCounterVec(
			"shelf_ingest_errors_total",
			"Total number of ingest errors",
			[]string{"error_type"},
		),

		EmbedRequests: NewCounter(
			"shelf_embed_requests_total",
			"Total number of embedding requests",
			nil,
		),
		EmbedLatency: NewHistogram(
			"shelf_embed_latency_ms",
			"Embedding generation latency in milliseconds",
			[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		),
		EmbedBatchSize: NewHistogram(
			"shelf_embed_batch_size",
			"Number of texts per embedding batch",
			[]float64{1, 5, 10, 20, 32, 50, 64, 100, 128},
		),

		LLMRequests: NewCounterVec(
			"shelf_llm_requests_total",
			"Total number of LLM requests",
			[]string{"role"},
		),
		LLMLatency: NewHistogramVec(
			"shelf_llm_latency_ms",
			"LLM request latency in milliseconds",
			[]string{"role"},
			[]float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		),
		LLMErrors: NewCounterVec(
			"shelf_llm_errors_total",
			"Total number of LLM errors",
			[]string{"role", "error_type"},
		),

		JudgeParseFailures: NewCounter(
			"shelf_judge_parse_failures_total",
			"Total number of judge replies that failed to parse after retry",
			nil,
		),
		JudgeRetries: NewCounter(
			"shelf_judge_retries_total",
			"Total number of judge retry attempts",
			nil,
		),

		HallucinationFindings: NewCounterVec(
			"shelf_hallucination_findings_total",
			"Total number of hallucination findings",
			[]string{"type", "severity"},
		),

		ScrapeRequests: NewCounter(
			"shelf_scrape_requests_total",
			"Total number of listing fetches",
			nil,
		),
		ScrapeLatency: NewHistogram(
			"shelf_scrape_latency_ms",
			"Listing fetch latency in milliseconds",
			[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		),
		ScrapeErrors: NewCounter(
			"shelf_scrape_errors_total",
			"Total number of listing fetch errors",
			nil,
		),

		BenchQueries: NewCounterVec(
			"shelf_bench_queries_total",
			"Total number of benchmark queries by terminal state",
			[]string{"state"},
		),
		BenchQueryTime: NewHistogram(
			"shelf_bench_query_seconds",
			"End-to-end benchmark query duration in seconds",
			[]float64{1, 2, 5, 10, 20, 30, 60, 120},
		),
		BenchRuns: NewCounter(
			"shelf_bench_runs_total",
			"Total number of benchmark runs",
			nil,
		),
		QueriesInFlight: NewGauge(
			"shelf_bench_queries_in_flight",
			"Number of benchmark queries currently being processed",
			nil,
		),

		CacheHits: NewCounterVec(
			"shelf_cache_hits_total",
			"Total number of cache hits",
			[]string{"type"},
		),
		CacheMisses: NewCounterVec(
			"shelf_cache_misses_total",
			"Total number of cache misses",
			[]string{"type"},
		),
		CacheSize: NewGaugeVec(
			"shelf_cache_size",
			"Current cache size",
			[]string{"type"},
		),

		BusEventsPublished: NewCounterVec(
			"shelf_bus_events_published_total",
			"Total number of events published to the bus",
			[]string{"topic"},
		),
		BusEventLatency: NewHistogramVec(
			"shelf_bus_event_latency_seconds",
			"Event bus publish latency in seconds",
			[]string{"topic"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		),
		BusErrors: NewCounterVec(
			"shelf_bus_errors_total",
			"Total number of event bus errors",
			[]string{"topic"},
		),

		GoroutineCount: NewGauge(
			"shelf_goroutines",
			"Number of goroutines",
			nil,
		),
		MemoryUsage: NewGauge(
			"shelf_memory_bytes",
			"Memory usage in bytes",
			nil,
		),
		Uptime: NewCounter(
			"shelf_uptime_seconds",
			"Application uptime in seconds",
			nil,
		),

		startTime: time.Now(),
		stop:      make(chan struct{}),
	}

	go m.collectSystemMetrics()

	return m
}

// collectSystemMetrics periodically samples runtime stats until Close.
func (m *Metrics) collectSystemMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.GoroutineCount.Set(float64(runtime.NumGoroutine()))

			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)
			m.MemoryUsage.Set(float64(memStats.Alloc))

			m.Uptime.Add(15)
		}
	}
}

// RecordRetrieval records retrieval metrics for one path.
func (m *Metrics) RecordRetrieval(path string, latencyMs int64, resultCount int, err error) {
	m.RetrievalRequests.WithLabels(path).Inc()
	m.RetrievalLatency.WithLabels(path).Observe(float64(latencyMs))
	m.RetrievalResults.WithLabels(path).Observe(float64(resultCount))

	if err != nil {
		m.RetrievalErrors.WithLabels(path, errorType(err)).Inc()
	}
}

// RecordIngest records ingest pipeline metrics.
func (m *Metrics) RecordIngest(itemCount, tripleCount int, latencyMs int64, err error) {
	m.IngestedItems.Add(int64(itemCount))
	m.IngestedTriples.Add(int64(tripleCount))
	m.IngestLatency.Observe(float64(latencyMs))

	if err != nil {
		m.IngestErrors.WithLabels(errorType(err)).Inc()
	}
}

// RecordEmbed records embedding generation metrics.
func (m *Metrics) RecordEmbed(batchSize int, latencyMs int64) {
	m.EmbedRequests.Inc()
	m.EmbedLatency.Observe(float64(latencyMs))
	m.EmbedBatchSize.Observe(float64(batchSize))
}

// RecordLLM records one LLM request for the given role (synthesis, judge).
func (m *Metrics) RecordLLM(role string, latencyMs int64, err error) {
	m.LLMRequests.WithLabels(role).Inc()
	m.LLMLatency.WithLabels(role).Observe(float64(latencyMs))

	if err != nil {
		m.LLMErrors.WithLabels(role, errorType(err)).Inc()
	}
}

// RecordJudgeParseFailure records a judge reply that never parsed.
func (m *Metrics) RecordJudgeParseFailure() {
	m.JudgeParseFailures.Inc()
}

// RecordJudgeRetry records a judge retry attempt.
func (m *Metrics) RecordJudgeRetry() {
	m.JudgeRetries.Inc()
}

// RecordHallucination records one hallucination finding.
func (m *Metrics) RecordHallucination(findingType, severity string) {
	m.HallucinationFindings.WithLabels(findingType, severity).Inc()
}

// RecordScrape records one listing fetch.
func (m *Metrics) RecordScrape(latencyMs int64, err error) {
	m.ScrapeRequests.Inc()
	m.ScrapeLatency.Observe(float64(latencyMs))
	if err != nil {
		m.ScrapeErrors.Inc()
	}
}

// RecordBenchQuery records a benchmark query reaching a terminal state.
func (m *Metrics) RecordBenchQuery(state string, durationSeconds float64) {
	m.BenchQueries.WithLabels(state).Inc()
	m.BenchQueryTime.Observe(durationSeconds)
}

// RecordBenchRun records the start of a benchmark run.
func (m *Metrics) RecordBenchRun() {
	m.BenchRuns.Inc()
}

// QueryStarted increments the in-flight gauge.
func (m *Metrics) QueryStarted() {
	m.QueriesInFlight.Inc()
}

// QueryFinished decrements the in-flight gauge.
func (m *Metrics) QueryFinished() {
	m.QueriesInFlight.Dec()
}

// RecordBusPublish records event bus publish metrics.
func (m *Metrics) RecordBusPublish(topic string, latencyMs int64, err error) {
	m.BusEventsPublished.WithLabels(topic).Inc()
	m.BusEventLatency.WithLabels(topic).Observe(float64(latencyMs) / 1000.0)

	if err != nil {
		m.BusErrors.WithLabels(topic).Inc()
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabels(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabels(cacheType).Inc()
}

// UpdateCacheSize updates the cache size gauge.
func (m *Metrics) UpdateCacheSize(cacheType string, size int) {
	m.CacheSize.WithLabels(cacheType).Set(float64(size))
}

// errorType maps an error to a low-cardinality label value.
func errorType(err error) string {
	if err == nil {
		return "none"
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "generic"
}

// Close stops the background collector.
func (m *Metrics) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	return nil
}
