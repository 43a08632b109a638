package downloader

import (
	"context"

	"archive-downloader/internal/archive"
	"archive-downloader/internal/queue"
	"archive-downloader/pkg/models"
)

// QueueStore defines the queue operations used by the executor and
// scheduler
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type QueueStore interface {
	Load() []*models.QueueItem
	Get(id string) (*models.QueueItem, bool)
	Update(id string, update queue.Update) (*models.QueueItem, bool)
	NextQueued() *models.QueueItem
}

// MetadataFetcher defines the Internet Archive operations used to resolve
// an item page into downloadable files
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, identifier string) (*archive.Metadata, error)
	FileURL(identifier, name string) string
}

// HistoryAppender records terminal job snapshots
type HistoryAppender interface {
	Append(entry *models.HistoryItem) error
}

// Runner spawns an external download-tool process. Line callbacks receive
// the tool's incremental output for progress parsing.
type Runner interface {
	Start(ctx context.Context, tool string, args []string, onStdout, onStderr func(line string)) (Process, error)
}

// Process is a handle on a running download-tool process
type Process interface {
	PID() int
	// Wait blocks until exit and returns the exit code. A nonzero code is
	// not an error; the error covers spawn-level failures only.
	Wait() (int, error)
}

// ProcessTerminator stops the external process behind a downloading item,
// best-effort
type ProcessTerminator interface {
	Terminate(item *models.QueueItem) bool
}

// JobRunner is the executor surface the scheduler drives
type JobRunner interface {
	Run(ctx context.Context, item *models.QueueItem) error
}

// Notifier pushes queue change events to connected UI clients. Implemented
// by the websocket hub; a nil Notifier disables pushes.
type Notifier interface {
	QueueUpdated()
	Progress(itemID string, progress float64)
}
