package metrics

import (
	"context"
	"strconv"

	"github.com/shelfsearch/shelf-search/internal/bus"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

// Collector feeds run lifecycle events from the bus into metrics, so that
// progress counters stay correct regardless of which component published.
type Collector struct {
	metrics *Metrics
	log     *logger.Logger
}

// NewCollector creates a bus-fed metrics collector.
func NewCollector(m *Metrics, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		metrics: m,
		log:     log.WithComponent("metrics"),
	}
}

// Attach subscribes the collector to the run lifecycle topics.
func (c *Collector) Attach(ctx context.Context, b bus.Bus) error {
	subscriptions := map[string]bus.Handler{
		bus.TopicRunStarted:     c.onRunStarted,
		bus.TopicQueryCompleted: c.onQueryCompleted,
		bus.TopicIndexBuilt:     c.onIndexBuilt,
	}

	for topic, handler := range subscriptions {
		if err := b.Subscribe(ctx, topic, handler); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) onRunStarted(ctx context.Context, event bus.Event) error {
	c.metrics.RecordBenchRun()
	return nil
}

func (c *Collector) onQueryCompleted(ctx context.Context, event bus.Event) error {
	state := payloadField(event, "state")
	if state == "" {
		c.log.Debug("query event without state", "event_id", event.ID)
		return nil
	}

	seconds, _ := strconv.ParseFloat(payloadField(event, "duration_seconds"), 64)
	c.metrics.RecordBenchQuery(state, seconds)
	return nil
}

func (c *Collector) onIndexBuilt(ctx context.Context, event bus.Event) error {
	items, _ := strconv.Atoi(payloadField(event, "items"))
	triples, _ := strconv.Atoi(payloadField(event, "triples"))
	latencyMs, _ := strconv.ParseInt(payloadField(event, "latency_ms"), 10, 64)
	c.metrics.RecordIngest(items, triples, latencyMs, nil)
	return nil
}

// payloadField reads a string field from an event payload. Payloads arrive as
// map[string]string in process and as map[string]any after a JSON round trip
// through Kafka or the journal.
func payloadField(event bus.Event, key string) string {
	switch payload := event.Payload.(type) {
	case map[string]string:
		return payload[key]
	case map[string]any:
		if v, ok := payload[key].(string); ok {
			return v
		}
	}
	return ""
}
