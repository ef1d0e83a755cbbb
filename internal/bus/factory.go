package bus

import (
	"fmt"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/config"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

// New creates a Bus from configuration, wrapping it with the event journal
// when one is configured.
func New(cfg config.BusConfig, log *logger.Logger) (Bus, error) {
	var inner Bus

	switch strings.ToLower(cfg.Backend) {
	case "memory", "":
		inner = NewMemoryBus(log)

	case "kafka":
		brokers := ParseBrokers(cfg.Brokers)
		if len(brokers) == 0 {
			return nil, errors.New(errors.CodeValidation, "kafka brokers not configured")
		}

		group := cfg.Group
		if group == "" {
			group = "shelf-search"
		}

		kafka, err := NewKafkaBus(KafkaConfig{
			Brokers:       brokers,
			ConsumerGroup: group,
			TopicPrefix:   cfg.TopicPrefix,
		}, log)
		if err != nil {
			return nil, err
		}
		inner = kafka

	default:
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown bus backend: %s", cfg.Backend))
	}

	if cfg.JournalPath == "" {
		return inner, nil
	}

	journal, err := NewJournal(cfg.JournalPath)
	if err != nil {
		inner.Close()
		return nil, errors.Wrap(errors.CodeInternal, "creating event journal", err)
	}
	return NewJournaledBus(inner, journal, log), nil
}
