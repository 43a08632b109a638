package downloader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"archive-downloader/internal/queue"
	"archive-downloader/pkg/models"
)

const (
	// MaxRetries is the number of attempts before a job fails permanently
	MaxRetries = 3

	// idleTickInterval is the safety-net re-tick while the queue is idle
	idleTickInterval = 10 * time.Second

	// StoppedByUser marks user-initiated cancellation, distinguishing it
	// from download failure
	StoppedByUser = "stopped by user"
)

// Scheduler picks the next eligible job and ensures at most one download
// runs at a time. The single-download invariant lives in the in-process
// processing flag, not in the queue file, so a stale file cannot start a
// second download.
type Scheduler struct {
	store      QueueStore
	executor   JobRunner
	history    HistoryAppender
	terminator ProcessTerminator
	notifier   Notifier
	logger     *slog.Logger

	// backoff returns the delay before retry attempt n; swapped in tests
	backoff func(attempt int) time.Duration

	wake chan struct{}

	mu         sync.Mutex
	processing bool
	paused     bool
	currentID  string
	cancel     context.CancelFunc
}

// NewScheduler creates a scheduler. notifier may be nil.
func NewScheduler(store QueueStore, executor JobRunner, history HistoryAppender, terminator ProcessTerminator, notifier Notifier) *Scheduler {
	return &Scheduler{
		store:      store,
		executor:   executor,
		history:    history,
		terminator: terminator,
		notifier:   notifier,
		logger:     slog.Default(),
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
		wake: make(chan struct{}, 1),
	}
}

// Start processes jobs until the context is canceled, re-ticking on Wake
// signals and on a fixed interval as a safety net against missed triggers
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting download scheduler")

	ticker := time.NewTicker(idleTickInterval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Download scheduler shutting down")
			return
		case <-s.wake:
			s.Tick(ctx)
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Wake nudges the scheduler without blocking; safe from any goroutine
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Tick runs eligible jobs until the queue is idle. Idempotent: concurrent
// calls return immediately while a download is active.
func (s *Scheduler) Tick(ctx context.Context) {
	for {
		s.mu.Lock()
		if s.processing || s.paused {
			s.mu.Unlock()
			return
		}
		s.processing = true
		s.mu.Unlock()

		item := s.store.NextQueued()
		if item == nil {
			s.setProcessing(false)
			return
		}

		s.runJob(ctx, item)
		s.setProcessing(false)

		// Immediately look for the next job
		if ctx.Err() != nil {
			return
		}
	}
}

// runJob drives one executor run and applies the retry policy to its
// outcome
func (s *Scheduler) runJob(ctx context.Context, item *models.QueueItem) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.currentID = item.ID
	s.cancel = cancel
	s.mu.Unlock()

	err := s.executor.Run(jobCtx, item)

	s.mu.Lock()
	s.currentID = ""
	s.cancel = nil
	s.mu.Unlock()

	if err == nil || errors.Is(err, ErrCanceled) {
		return
	}

	latest, ok := s.store.Get(item.ID)
	if !ok || latest.Status == models.StatusCanceled {
		// Deleted or canceled while the attempt ran; nothing to retry
		return
	}

	if errors.Is(err, ErrNoFilesFound) || errors.Is(err, ErrToolNotFound) {
		// Retrying cannot help; the executor already marked the item failed
		s.logger.Error("Download failed permanently", "id", item.ID, "error", err)
		return
	}

	attempts := latest.RetryCount + 1
	if attempts < MaxRetries {
		// Re-enqueue, preserving the executor's error message for the UI
		status := models.StatusQueued
		s.store.Update(item.ID, queue.Update{Status: &status, RetryCount: &attempts})
		s.logger.Warn("Download attempt failed, re-queued",
			"id", item.ID, "attempt", attempts, "error", err)

		select {
		case <-ctx.Done():
		case <-time.After(s.backoff(attempts)):
		}
		return
	}

	status := models.StatusFailed
	s.store.Update(item.ID, queue.Update{Status: &status, RetryCount: &attempts})
	s.logger.Error("Download failed permanently",
		"id", item.ID, "attempts", attempts, "error", err)
}

// Cancel stops the item, terminating its external process when it is the
// active download. Returns false for unknown or already terminal items.
func (s *Scheduler) Cancel(id string) bool {
	item, ok := s.store.Get(id)
	if !ok || item.Status.IsTerminal() {
		return false
	}

	s.mu.Lock()
	active := s.currentID == id
	cancel := s.cancel
	s.mu.Unlock()

	if active {
		// Best-effort: the item stays canceled even when the process
		// cannot be confirmed dead
		if !s.terminator.Terminate(item) {
			s.logger.Warn("Could not confirm process termination", "id", id, "pid", item.ProcessID)
		}
		if cancel != nil {
			cancel()
		}
	}

	status := models.StatusCanceled
	reason := StoppedByUser
	updated, ok := s.store.Update(id, queue.Update{Status: &status, Error: &reason})
	if !ok {
		return false
	}

	s.logger.Info("Download canceled", "id", id)
	s.appendHistory(updated)
	s.notifyQueue()
	return true
}

// Retry re-queues a failed or canceled item with a fresh retry budget
func (s *Scheduler) Retry(id string) bool {
	item, ok := s.store.Get(id)
	if !ok || (item.Status != models.StatusFailed && item.Status != models.StatusCanceled) {
		return false
	}

	status := models.StatusQueued
	noError := ""
	noRetries := 0
	zero := 0.0
	if _, ok := s.store.Update(id, queue.Update{
		Status:     &status,
		Error:      &noError,
		RetryCount: &noRetries,
		Progress:   &zero,
	}); !ok {
		return false
	}

	s.logger.Info("Download re-queued", "id", id)
	s.notifyQueue()
	s.Wake()
	return true
}

// Prioritize changes the scheduling priority of an item
func (s *Scheduler) Prioritize(id string, priority models.Priority) bool {
	if _, ok := s.store.Update(id, queue.Update{Priority: &priority}); !ok {
		return false
	}
	s.notifyQueue()
	s.Wake()
	return true
}

// Paused reports whether scheduling is paused
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SetPaused pauses or resumes scheduling. Pausing does not preempt an
// in-flight download.
func (s *Scheduler) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()

	s.logger.Info("Scheduler pause state changed", "paused", paused)
	if !paused {
		s.Wake()
	}
}

// ResetOrphans re-queues items a previous process left mid-download. Called
// once at startup, before the scheduler starts.
func (s *Scheduler) ResetOrphans() {
	for _, item := range s.store.Load() {
		if item.Status != models.StatusDownloading && item.Status != models.StatusFetchingMetadata {
			continue
		}
		status := models.StatusQueued
		zero := 0.0
		s.store.Update(item.ID, queue.Update{Status: &status, Progress: &zero})
		s.logger.Info("Reset orphaned download to queued", "id", item.ID, "url", item.URL)
	}
}

func (s *Scheduler) setProcessing(processing bool) {
	s.mu.Lock()
	s.processing = processing
	s.mu.Unlock()
}

func (s *Scheduler) appendHistory(item *models.QueueItem) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(models.Snapshot(item)); err != nil {
		s.logger.Warn("Failed to append history entry", "id", item.ID, "error", err)
	}
}

func (s *Scheduler) notifyQueue() {
	if s.notifier != nil {
		s.notifier.QueueUpdated()
	}
}
