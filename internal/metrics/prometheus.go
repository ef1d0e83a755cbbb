package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PrometheusFormat exports all metrics in Prometheus text exposition format.
// See: https://prometheus.io/docs/instrumenting/exposition_formats/
func (m *Metrics) PrometheusFormat() string {
	var sb strings.Builder

	writeCounterVec(&sb, m.RetrievalRequests)
	writeHistogramVec(&sb, m.RetrievalLatency)
	writeHistogramVec(&sb, m.RetrievalResults)
	writeCounterVec(&sb, m.RetrievalErrors)

	writeCounter(&sb, m.IngestedItems)
	writeCounter(&sb, m.IngestedTriples)
	writeHistogram(&sb, m.IngestLatency)
	writeCounterVec(&sb, m.IngestErrors)

	writeCounter(&sb, m.EmbedRequests)
	writeHistogram(&sb, m.EmbedLatency)
	writeHistogram(&sb, m.EmbedBatchSize)

	writeCounterVec(&sb, m.LLMRequests)
	writeHistogramVec(&sb, m.LLMLatency)
	writeCounterVec(&sb, m.LLMErrors)

	writeCounter(&sb, m.JudgeParseFailures)
	writeCounter(&sb, m.JudgeRetries)
	writeCounterVec(&sb, m.HallucinationFindings)

	writeCounter(&sb, m.ScrapeRequests)
	writeHistogram(&sb, m.ScrapeLatency)
	writeCounter(&sb, m.ScrapeErrors)

	writeCounterVec(&sb, m.BenchQueries)
	writeHistogram(&sb, m.BenchQueryTime)
	writeCounter(&sb, m.BenchRuns)
	writeGauge(&sb, m.QueriesInFlight)

	writeCounterVec(&sb, m.CacheHits)
	writeCounterVec(&sb, m.CacheMisses)
	writeGaugeVec(&sb, m.CacheSize)

	writeCounterVec(&sb, m.BusEventsPublished)
	writeHistogramVec(&sb, m.BusEventLatency)
	writeCounterVec(&sb, m.BusErrors)

	writeGauge(&sb, m.GoroutineCount)
	writeGauge(&sb, m.MemoryUsage)
	writeCounter(&sb, m.Uptime)

	return sb.String()
}

// WriteFile dumps the current exposition to a file, typically beside a
// benchmark run's output.
func (m *Metrics) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	return os.WriteFile(path, []byte(m.PrometheusFormat()), 0o644)
}

func writeCounter(sb *strings.Builder, c *Counter) {
	writeHeader(sb, c.Name(), c.Help(), "counter")
	sb.WriteString(c.Name())
	writeLabels(sb, c.Labels())
	fmt.Fprintf(sb, " %d\n", c.Value())
}

func writeGauge(sb *strings.Builder, g *Gauge) {
	writeHeader(sb, g.Name(), g.Help(), "gauge")
	sb.WriteString(g.Name())
	writeLabels(sb, g.Labels())
	fmt.Fprintf(sb, " %.0f\n", g.Value())
}

func writeHistogram(sb *strings.Builder, h *Histogram) {
	writeHeader(sb, h.Name(), h.Help(), "histogram")
	writeHistogramSamples(sb, h)
}

func writeHistogramSamples(sb *strings.Builder, h *Histogram) {
	buckets := h.Buckets()
	counts := h.BucketCounts()
	labels := h.Labels()

	for i, bucket := range buckets {
		sb.WriteString(h.Name())
		sb.WriteString("_bucket")
		writeLabelsWith(sb, labels, "le", fmt.Sprintf("%g", bucket))
		fmt.Fprintf(sb, " %d\n", counts[i])
	}

	sb.WriteString(h.Name())
	sb.WriteString("_bucket")
	writeLabelsWith(sb, labels, "le", "+Inf")
	fmt.Fprintf(sb, " %d\n", counts[len(counts)-1])

	sb.WriteString(h.Name())
	sb.WriteString("_sum")
	writeLabels(sb, labels)
	fmt.Fprintf(sb, " %.2f\n", h.Sum())

	sb.WriteString(h.Name())
	sb.WriteString("_count")
	writeLabels(sb, labels)
	fmt.Fprintf(sb, " %d\n", h.Count())
}

func writeCounterVec(sb *strings.Builder, cv *CounterVec) {
	counters := cv.GetAll()
	if len(counters) == 0 {
		return
	}

	writeHeader(sb, cv.Name(), cv.Help(), "counter")
	for _, c := range counters {
		sb.WriteString(c.Name())
		writeLabels(sb, c.Labels())
		fmt.Fprintf(sb, " %d\n", c.Value())
	}
}

func writeGaugeVec(sb *strings.Builder, gv *GaugeVec) {
	gauges := gv.GetAll()
	if len(gauges) == 0 {
		return
	}

	writeHeader(sb, gv.Name(), gv.Help(), "gauge")
	for _, g := range gauges {
		sb.WriteString(g.Name())
		writeLabels(sb, g.Labels())
		fmt.Fprintf(sb, " %.0f\n", g.Value())
	}
}

func writeHistogramVec(sb *strings.Builder, hv *HistogramVec) {
	histograms := hv.GetAll()
	if len(histograms) == 0 {
		return
	}

	writeHeader(sb, hv.Name(), hv.Help(), "histogram")
	for _, h := range histograms {
		writeHistogramSamples(sb, h)
	}
}

func writeHeader(sb *strings.Builder, name, help, kind string) {
	sb.WriteString("# HELP ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(help)
	sb.WriteString("\n# TYPE ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(kind)
	sb.WriteString("\n")
}

// writeLabels writes labels in Prometheus format {key="value",key2="value2"}.
func writeLabels(sb *strings.Builder, labels map[string]string) {
	if len(labels) == 0 {
		return
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(k)
		sb.WriteString("=\"")
		sb.WriteString(escapeString(labels[k]))
		sb.WriteString("\"")
	}
	sb.WriteString("}")
}

// writeLabelsWith writes labels with one extra pair appended, used for the
// histogram le label.
func writeLabelsWith(sb *strings.Builder, labels map[string]string, extraKey, extraValue string) {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("{")
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=\"")
		sb.WriteString(escapeString(labels[k]))
		sb.WriteString("\",")
	}
	sb.WriteString(extraKey)
	sb.WriteString("=\"")
	sb.WriteString(extraValue)
	sb.WriteString("\"}")
}

// escapeString escapes special characters in label values.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
