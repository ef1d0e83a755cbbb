package bus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
)

// JournaledEvent is one journal line: the event plus where and when it was
// published.
type JournaledEvent struct {
	Event     Event     `json:"event"`
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal persists published events as JSON lines, for post-run inspection
// and replay.
type Journal struct {
	path    string
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	enabled bool
}

// NewJournal creates an event journal at path. An empty path disables the
// journal; every method becomes a no-op.
func NewJournal(path string) (*Journal, error) {
	j := &Journal{path: path, enabled: path != ""}
	if !j.enabled {
		return j, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal file: %w", err)
	}

	j.file = file
	j.encoder = json.NewEncoder(file)
	return j, nil
}

// Log appends one event to the journal.
func (j *Journal) Log(topic string, event Event) error {
	if !j.enabled {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return errors.New(errors.CodeInternal, "journal is closed")
	}

	entry := JournaledEvent{
		Event:     event,
		Topic:     topic,
		Timestamp: time.Now().UTC(),
	}
	if err := j.encoder.Encode(entry); err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	return nil
}

// Events reads journal entries written after since. limit > 0 caps the
// result; entries come back in write order.
func (j *Journal) Events(since time.Time, limit int) ([]JournaledEvent, error) {
	if !j.enabled {
		return nil, errors.New(errors.CodeUnavailable, "event journal is disabled")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal file: %w", err)
	}
	defer file.Close()

	var events []JournaledEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	for scanner.Scan() {
		var entry JournaledEvent
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // skip malformed lines
		}
		if entry.Timestamp.After(since) {
			events = append(events, entry)
			if limit > 0 && len(events) >= limit {
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal file: %w", err)
	}
	return events, nil
}

// Replay republishes journal entries written after since onto a bus.
func (j *Journal) Replay(ctx context.Context, target Bus, since time.Time) error {
	events, err := j.Events(since, 0)
	if err != nil {
		return err
	}

	for _, entry := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := target.Publish(ctx, entry.Topic, entry.Event); err != nil {
			return fmt.Errorf("replay event %s: %w", entry.Event.ID, err)
		}
	}
	return nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if !j.enabled {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return fmt.Errorf("close journal file: %w", err)
		}
		j.file = nil
		j.encoder = nil
	}
	return nil
}

// Enabled reports whether the journal writes events.
func (j *Journal) Enabled() bool {
	return j.enabled
}
