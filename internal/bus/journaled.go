package bus

import (
	"context"

	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

// JournaledBus wraps another Bus and journals every published event to disk.
// Journal failures are logged, never surfaced.
type JournaledBus struct {
	inner   Bus
	journal *Journal
	log     *logger.Logger
}

// NewJournaledBus creates a journaling wrapper around an inner bus.
func NewJournaledBus(inner Bus, journal *Journal, log *logger.Logger) *JournaledBus {
	if log == nil {
		log = logger.Nop()
	}
	return &JournaledBus{
		inner:   inner,
		journal: journal,
		log:     log.WithComponent("bus"),
	}
}

// Publish journals the event and delegates to the inner bus.
func (b *JournaledBus) Publish(ctx context.Context, topic string, event Event) error {
	if err := b.journal.Log(topic, event); err != nil {
		b.log.Warn("failed to journal event", "topic", topic, "error", err)
	}
	return b.inner.Publish(ctx, topic, event)
}

// Subscribe delegates to the inner bus.
func (b *JournaledBus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	return b.inner.Subscribe(ctx, topic, handler)
}

// Close closes the journal and the inner bus.
func (b *JournaledBus) Close() error {
	if err := b.journal.Close(); err != nil {
		b.log.Warn("failed to close journal", "error", err)
	}
	return b.inner.Close()
}
