// Package queue implements the persisted download queue: a JSON file
// guarded by an advisory file lock, with corruption repair, atomic writes,
// throttled persistence and an external-change watcher.
package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"archive-downloader/pkg/models"
)

const (
	// BackupSuffix names the routine pre-write backup sibling
	BackupSuffix = ".backup"

	defaultLockTimeout  = 5 * time.Second
	defaultSaveInterval = time.Second

	// selfWriteGrace must outlast the watcher poll interval so the watcher
	// never mistakes our own write for an external change
	selfWriteGrace = 3 * time.Second
)

// Update describes a partial mutation of a queue item. Nil fields are left
// untouched.
type Update struct {
	Status         *models.Status
	Progress       *float64
	FilesCompleted *int
	TotalFiles     *int
	Priority       *models.Priority
	ProcessID      *int
	Error          *string
	Message        *string
	RetryCount     *int
}

// Store owns the persisted queue file and a process-local cache of its
// contents. The cache is always treated as possibly stale relative to the
// file: every mutator reloads before applying its change.
type Store struct {
	path   string
	lock   *FileLock
	logger *slog.Logger

	// ioMu serializes load/save within this process; the file lock only
	// arbitrates with other processes
	ioMu sync.Mutex

	lockTimeout  time.Duration
	saveInterval time.Duration

	mu        sync.RWMutex
	items     []*models.QueueItem
	lastSave  time.Time
	dirty     bool
	saveTimer *time.Timer

	selfWriteMu    sync.Mutex
	selfWriteUntil time.Time
}

// NewStore creates a store for the queue file at path. Nothing is read
// until Load is called.
func NewStore(path string) *Store {
	return &Store{
		path:         path,
		lock:         NewFileLock(path),
		logger:       slog.Default(),
		lockTimeout:  defaultLockTimeout,
		saveInterval: defaultSaveInterval,
	}
}

// Path returns the queue file path
func (s *Store) Path() string {
	return s.path
}

// Close releases the lock if held and flushes any throttled write
func (s *Store) Close() {
	s.mu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	dirty := s.dirty
	items := cloneItems(s.items)
	s.mu.Unlock()

	if dirty {
		if err := s.Save(items); err != nil {
			s.logger.Error("Failed to flush queue on close", "error", err)
		}
	}
	s.lock.Release()
}

// Load reads the queue file and refreshes the cache. On lock timeout the
// last cached value is returned unchanged; that is a stale read, logged as
// a warning, never an error.
func (s *Store) Load() []*models.QueueItem {
	// A throttled update may still be waiting on its timer; write it out
	// first so re-reading the file cannot revert it.
	s.flushThrottled()

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if !s.lock.Acquire(s.lockTimeout) {
		s.logger.Warn("Queue lock timed out, serving cached items", "path", s.path)
		return s.Items()
	}
	defer s.lock.Release()

	items, err := s.readLocked()
	if err != nil {
		s.logger.Error("Failed to read queue file, serving cached items", "path", s.path, "error", err)
		return s.Items()
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	return cloneItems(items)
}

// readLocked reads and parses the queue file. Caller holds the file lock.
func (s *Store) readLocked() ([]*models.QueueItem, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		// Missing or empty file initializes to an empty queue on disk
		if werr := s.writeLocked([]*models.QueueItem{}); werr != nil {
			s.logger.Warn("Failed to initialize empty queue file", "path", s.path, "error", werr)
		}
		return []*models.QueueItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}

	items, ok := ParseOrRepair(data, []*models.QueueItem{})
	if !ok || !json.Valid(data) {
		// Keep the corrupt original around for forensics before the next
		// write replaces it
		s.backupCorrupt(data)
	}
	if items == nil {
		items = []*models.QueueItem{}
	}
	return items, nil
}

// Save persists the given items with an atomic temp-file-then-rename write.
// A partial write is never visible as the live file.
func (s *Store) Save(items []*models.QueueItem) error {
	s.markSelfWrite()

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if !s.lock.Acquire(s.lockTimeout) {
		return fmt.Errorf("timed out acquiring queue lock for save")
	}
	defer s.lock.Release()

	if err := s.writeLocked(items); err != nil {
		return err
	}

	s.mu.Lock()
	s.items = cloneItems(items)
	s.lastSave = time.Now()
	s.dirty = false
	s.mu.Unlock()

	return nil
}

// writeLocked writes items to disk. Caller holds the file lock.
func (s *Store) writeLocked(items []*models.QueueItem) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create queue directory: %w", err)
	}

	// Routine backup of the previous committed state
	if prev, err := os.ReadFile(s.path); err == nil {
		if werr := os.WriteFile(s.path+BackupSuffix, prev, 0o644); werr != nil {
			s.logger.Warn("Failed to write queue backup", "error", werr)
		}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp queue file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to commit queue file: %w", err)
	}
	return nil
}

// backupCorrupt copies corrupt file content to a timestamped sibling
func (s *Store) backupCorrupt(data []byte) {
	backupPath := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		s.logger.Error("Failed to back up corrupt queue file", "path", backupPath, "error", err)
		return
	}
	s.logger.Warn("Backed up corrupt queue file", "path", backupPath)
}

// Add appends a new item and persists immediately
func (s *Store) Add(item *models.QueueItem) error {
	items := s.Load()
	items = append(items, item)
	return s.Save(items)
}

// Get returns a copy of the item with the given id
func (s *Store) Get(id string) (*models.QueueItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			clone := *item
			return &clone, true
		}
	}
	return nil, false
}

// Items returns a copy of the cached queue
func (s *Store) Items() []*models.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Update applies a partial update to the item with the given id, reloading
// first to pick up external writes. Unknown ids return (nil, false).
// Progress-style updates are throttled; terminal transitions persist
// immediately.
func (s *Store) Update(id string, update Update) (*models.QueueItem, bool) {
	items := s.Load()

	var target *models.QueueItem
	for _, item := range items {
		if item.ID == id {
			target = item
			break
		}
	}
	if target == nil {
		return nil, false
	}

	applyUpdate(target, update)

	terminal := update.Status != nil && update.Status.IsTerminal()
	s.persist(items, terminal)

	clone := *target
	return &clone, true
}

// Remove deletes the item with the given id, persisting immediately.
// Unknown ids return false.
func (s *Store) Remove(id string) bool {
	items := s.Load()
	for i, item := range items {
		if item.ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := s.Save(items); err != nil {
				s.logger.Error("Failed to persist queue after remove", "id", id, "error", err)
			}
			return true
		}
	}
	return false
}

// NextQueued returns the next item eligible for download: highest priority
// first, oldest first within a priority tier. Returns nil when the queue
// has no queued items.
func (s *Store) NextQueued() *models.QueueItem {
	items := s.Load()

	var queued []*models.QueueItem
	for _, item := range items {
		if item.Status == models.StatusQueued {
			queued = append(queued, item)
		}
	}
	if len(queued) == 0 {
		return nil
	}

	sort.SliceStable(queued, func(i, j int) bool {
		if queued[i].Priority.Rank() != queued[j].Priority.Rank() {
			return queued[i].Priority.Rank() < queued[j].Priority.Rank()
		}
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})

	clone := *queued[0]
	return &clone
}

// Stats returns item counts per status
func (s *Store) Stats() models.QueueStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.QueueStats{Total: len(s.items)}
	for _, item := range s.items {
		switch item.Status {
		case models.StatusQueued, models.StatusFetchingMetadata:
			stats.Queued++
		case models.StatusDownloading:
			stats.Downloading++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusFailed:
			stats.Failed++
		case models.StatusCanceled:
			stats.Canceled++
		}
	}
	return stats
}

// Clear removes all items, optionally preserving those currently
// downloading. Persists immediately.
func (s *Store) Clear(keepDownloading bool) int {
	items := s.Load()

	var kept []*models.QueueItem
	for _, item := range items {
		if keepDownloading && (item.Status == models.StatusDownloading || item.Status == models.StatusFetchingMetadata) {
			kept = append(kept, item)
		}
	}
	if kept == nil {
		kept = []*models.QueueItem{}
	}

	removed := len(items) - len(kept)
	if err := s.Save(kept); err != nil {
		s.logger.Error("Failed to persist queue after clear", "error", err)
	}
	return removed
}

// persist saves now for immediate writes, otherwise coalesces writes so
// high-frequency progress updates hit the disk at most once per interval
func (s *Store) persist(items []*models.QueueItem, immediate bool) {
	if immediate {
		if err := s.Save(items); err != nil {
			s.logger.Error("Failed to persist queue", "error", err)
		}
		return
	}

	s.mu.Lock()
	s.items = cloneItems(items)
	elapsed := time.Since(s.lastSave)
	if elapsed >= s.saveInterval {
		s.mu.Unlock()
		if err := s.Save(items); err != nil {
			s.logger.Error("Failed to persist queue", "error", err)
		}
		return
	}

	// Schedule a trailing save for whatever state is cached when it fires
	s.dirty = true
	if s.saveTimer == nil {
		s.saveTimer = time.AfterFunc(s.saveInterval-elapsed, s.flushThrottled)
	}
	s.mu.Unlock()
}

// flushThrottled writes the cached state scheduled by persist
func (s *Store) flushThrottled() {
	s.mu.Lock()
	s.saveTimer = nil
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	items := cloneItems(s.items)
	s.mu.Unlock()

	if err := s.Save(items); err != nil {
		s.logger.Error("Failed to flush throttled queue write", "error", err)
	}
}

// markSelfWrite flags the upcoming write as ours so the watcher ignores it.
// The flag expires after a grace delay longer than the watcher poll.
func (s *Store) markSelfWrite() {
	s.selfWriteMu.Lock()
	s.selfWriteUntil = time.Now().Add(selfWriteGrace)
	s.selfWriteMu.Unlock()
}

// SelfWriting reports whether a recent write originated from this store
func (s *Store) SelfWriting() bool {
	s.selfWriteMu.Lock()
	defer s.selfWriteMu.Unlock()
	return time.Now().Before(s.selfWriteUntil)
}

func applyUpdate(item *models.QueueItem, update Update) {
	if update.Status != nil {
		item.Status = *update.Status
		if item.Status != models.StatusDownloading {
			item.ProcessID = 0
		}
	}
	if update.Progress != nil {
		item.Progress = models.ClampProgress(*update.Progress)
	}
	if update.FilesCompleted != nil {
		item.FilesCompleted = *update.FilesCompleted
	}
	if update.TotalFiles != nil {
		item.TotalFiles = *update.TotalFiles
	}
	if update.Priority != nil {
		item.Priority = *update.Priority
	}
	if update.ProcessID != nil {
		item.ProcessID = *update.ProcessID
	}
	if update.Error != nil {
		item.Error = *update.Error
	}
	if update.Message != nil {
		item.Message = *update.Message
	}
	if update.RetryCount != nil {
		item.RetryCount = *update.RetryCount
	}
}

func cloneItems(items []*models.QueueItem) []*models.QueueItem {
	out := make([]*models.QueueItem, len(items))
	for i, item := range items {
		clone := *item
		out[i] = &clone
	}
	return out
}
