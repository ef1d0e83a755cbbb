// Package watch re-ingests the catalog when its file changes on disk, so a
// long-lived benchmark host never serves a stale index.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

// ReindexFunc rebuilds the index from the catalog file. Called after the
// debounce window closes.
type ReindexFunc func(ctx context.Context, path string) error

// Watcher watches a single catalog file. Editors write through temp files and
// renames, so events are debounced and the file is watched via its directory.
type Watcher struct {
	path     string
	dir      string
	reindex  ReindexFunc
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
	once sync.Once
	log  *logger.Logger
}

// Config holds watcher settings.
type Config struct {
	Path     string
	Reindex  ReindexFunc
	Debounce time.Duration // default 500ms
}

// New creates a catalog watcher.
func New(cfg Config, log *logger.Logger) (*Watcher, error) {
	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}

	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     absPath,
		dir:      filepath.Dir(absPath),
		reindex:  cfg.Reindex,
		debounce: cfg.Debounce,
		done:     make(chan struct{}),
		log:      log.WithComponent("watch"),
	}, nil
}

// Start blocks watching for changes until the context is cancelled or Stop is
// called. The first ingest is the caller's responsibility; Start only reacts
// to changes.
func (w *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	// Watch the directory, not the file: rename-based saves replace the
	// inode and a file watch would silently die.
	if err := fsWatcher.Add(w.dir); err != nil {
		return err
	}

	w.log.Info("watching catalog", "path", w.path, "debounce", w.debounce.String())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.log.Debug("catalog changed", "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.runReindex(ctx)
	})
}

func (w *Watcher) runReindex(ctx context.Context) {
	select {
	case <-w.done:
		return
	case <-ctx.Done():
		return
	default:
	}

	start := time.Now()
	rctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := w.reindex(rctx, w.path); err != nil {
		w.log.Error("reindex failed", "error", err)
		return
	}
	w.log.Info("reindexed after catalog change", "took", time.Since(start).String())
}

// Stop terminates the watch loop.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
	})
}
