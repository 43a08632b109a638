// Package cleanup prunes the corrupt-queue backups that repair leaves
// behind, keeping the data directory from growing without bound
package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultRetention is how long corrupt-file backups are kept
	DefaultRetention = 14 * 24 * time.Hour

	// sweepInterval is how often the background sweep runs
	sweepInterval = 24 * time.Hour
)

// Service removes aged .corrupt-* siblings of the queue file
type Service struct {
	queuePath string
	retention time.Duration
	logger    *slog.Logger
}

// NewService creates a cleanup service for the given queue file
func NewService(queuePath string) *Service {
	return &Service{
		queuePath: queuePath,
		retention: DefaultRetention,
		logger:    slog.Default(),
	}
}

// Run sweeps immediately and then daily until the context is canceled
func (s *Service) Run(ctx context.Context) {
	s.Sweep()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Cleanup routine shutting down")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep deletes corrupt-queue backups older than the retention window
// and returns how many were removed
func (s *Service) Sweep() int {
	pattern := s.queuePath + ".corrupt-*"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		s.logger.Warn("Corrupt backup sweep failed", "pattern", pattern, "error", err)
		return 0
	}

	cutoff := time.Now().Add(-s.retention)
	removed := 0
	for _, path := range matches {
		if !strings.HasPrefix(path, s.queuePath+".corrupt-") {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to remove corrupt backup", "path", path, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Removed aged corrupt-queue backups", "count", removed)
	}
	return removed
}
