package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

func TestWatcherTriggersReindexOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(`{"items":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	reindexed := make(chan struct{}, 4)

	w, err := New(Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
		Reindex: func(ctx context.Context, p string) error {
			calls.Add(1)
			reindexed <- struct{}{}
			return nil
		},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	defer w.Stop()

	// Give the watch loop time to register.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`{"items":[{}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reindexed:
	case <-time.After(3 * time.Second):
		t.Fatal("reindex not triggered by catalog write")
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w, err := New(Config{
		Path:     path,
		Debounce: 200 * time.Millisecond,
		Reindex: func(ctx context.Context, p string) error {
			calls.Add(1)
			return nil
		},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	// A burst of writes inside one debounce window.
	for i := 0; i < 5; i++ {
		os.WriteFile(path, []byte(`{}`), 0o644)
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("reindex ran %d times for one burst, want 1", got)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w, err := New(Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
		Reindex: func(ctx context.Context, p string) error {
			calls.Add(1)
			return nil
		},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("reindex ran %d times for an unrelated file, want 0", got)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	os.WriteFile(path, []byte(`{}`), 0o644)

	w, err := New(Config{Path: path, Reindex: func(ctx context.Context, p string) error { return nil }}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
