package queue

import (
	"context"
	"log/slog"
	"os"
	"time"
)

const (
	defaultPollInterval   = 2 * time.Second
	defaultDebounceWindow = 500 * time.Millisecond
)

// Watcher polls the queue file's modification time and reloads the store
// when another process changed it. Writes made by this process are ignored
// via the store's self-write flag.
type Watcher struct {
	store  *Store
	logger *slog.Logger

	pollInterval   time.Duration
	debounceWindow time.Duration

	lastModTime time.Time
}

// NewWatcher creates a watcher for the given store
func NewWatcher(store *Store) *Watcher {
	return &Watcher{
		store:          store,
		logger:         slog.Default(),
		pollInterval:   defaultPollInterval,
		debounceWindow: defaultDebounceWindow,
	}
}

// Start polls until the context is canceled. Errors are logged and
// swallowed: a dead watcher only means staler caches, since every store
// mutation reloads the file first anyway.
func (w *Watcher) Start(ctx context.Context) {
	if info, err := os.Stat(w.store.Path()); err == nil {
		w.lastModTime = info.ModTime()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Queue watcher shutting down")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll checks the file mtime once, debouncing before reload so a burst of
// external writes coalesces into a single load
func (w *Watcher) poll(ctx context.Context) {
	info, err := os.Stat(w.store.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("Queue watcher stat failed", "error", err)
		}
		return
	}

	if info.ModTime().Equal(w.lastModTime) {
		return
	}
	w.lastModTime = info.ModTime()

	if w.store.SelfWriting() {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(w.debounceWindow):
	}

	w.logger.Info("Queue file changed externally, reloading", "path", w.store.Path())
	w.store.Load()
}
