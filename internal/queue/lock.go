package queue

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	// LockSuffix is appended to the queue file path to form the sentinel path
	LockSuffix = ".lock"

	defaultLockRetryDelay = 100 * time.Millisecond
)

// FileLock is an advisory cross-process lock built on exclusive creation of
// a sentinel file. The sentinel records the holder's pid so a lock left
// behind by a dead process can be detected and reclaimed.
type FileLock struct {
	path       string
	retryDelay time.Duration
	logger     *slog.Logger

	held bool
}

// NewFileLock creates a lock guarding the file at the given path
func NewFileLock(path string) *FileLock {
	return &FileLock{
		path:       path + LockSuffix,
		retryDelay: defaultLockRetryDelay,
		logger:     slog.Default(),
	}
}

// Acquire attempts to take the lock, retrying until the timeout elapses.
// It returns false on timeout; callers fall back to cached data or retry
// later, never treat this as fatal.
func (l *FileLock) Acquire(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			if _, werr := file.WriteString(strconv.Itoa(os.Getpid())); werr != nil {
				l.logger.Warn("Failed to record pid in lock sentinel", "path", l.path, "error", werr)
			}
			file.Close()
			l.held = true
			return true
		}

		if os.IsNotExist(err) {
			// Queue directory missing on first run
			if merr := os.MkdirAll(filepath.Dir(l.path), 0o755); merr != nil {
				l.logger.Warn("Failed to create queue directory", "dir", filepath.Dir(l.path), "error", merr)
			} else {
				continue
			}
		} else if !os.IsExist(err) {
			l.logger.Warn("Unexpected error creating lock sentinel", "path", l.path, "error", err)
		} else if l.reclaimStale() {
			// Stale sentinel removed, retry immediately
			continue
		}

		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(l.retryDelay)
	}
}

// Release removes the sentinel. Safe to call when the lock is not held.
func (l *FileLock) Release() {
	if !l.held {
		return
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		l.logger.Warn("Failed to remove lock sentinel", "path", l.path, "error", err)
	}
}

// reclaimStale reads the pid recorded in an existing sentinel and removes
// the sentinel when that process is no longer alive. Returns true when the
// sentinel was removed and the caller should retry immediately.
func (l *FileLock) reclaimStale() bool {
	data, err := os.ReadFile(l.path)
	if err != nil {
		// Sentinel vanished between create attempt and read; retry
		return os.IsNotExist(err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// Unreadable sentinel content counts as stale
		l.logger.Warn("Removing lock sentinel with unreadable pid", "path", l.path)
		return os.Remove(l.path) == nil
	}

	if processAlive(pid) {
		return false
	}

	l.logger.Warn("Removing stale lock sentinel", "path", l.path, "pid", pid)
	return os.Remove(l.path) == nil
}

// processAlive probes a pid with signal 0
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
