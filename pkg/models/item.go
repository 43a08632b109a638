// Package models defines the data structures used throughout the application
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a queue item
type Status string

const (
	StatusQueued           Status = "queued"
	StatusFetchingMetadata Status = "fetching_metadata"
	StatusDownloading      Status = "downloading"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
	StatusCanceled         Status = "canceled"
)

// IsTerminal reports whether no further automatic transition occurs
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// Priority controls scheduling order between queued items
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Rank returns the scheduling rank of a priority, lower runs first.
// Unknown values sort with normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// QueueItem represents one user-requested download. Field names in the
// persisted queue file are camelCase because the browser UI reads the
// same document.
type QueueItem struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	DownloadPath   string    `json:"downloadPath"`
	FileTypes      []string  `json:"fileTypes,omitempty"`
	IsPlaylist     bool      `json:"isPlaylist"`
	Status         Status    `json:"status"`
	Progress       float64   `json:"progress"`
	FilesCompleted int       `json:"filesCompleted"`
	TotalFiles     int       `json:"totalFiles"`
	Priority       Priority  `json:"priority"`
	ProcessID      int       `json:"processId,omitempty"`
	Error          string    `json:"error,omitempty"`
	Message        string    `json:"message,omitempty"`
	RetryCount     int       `json:"retryCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewQueueItem creates a queued item with a fresh time-based identifier
func NewQueueItem(url, downloadPath string) *QueueItem {
	return &QueueItem{
		ID:           fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		URL:          url,
		DownloadPath: downloadPath,
		Status:       StatusQueued,
		Priority:     PriorityNormal,
		CreatedAt:    time.Now(),
	}
}

// MatchesFileType reports whether a filename passes the item's format
// filter. An empty filter admits everything.
func (q *QueueItem) MatchesFileType(filename string) bool {
	if len(q.FileTypes) == 0 {
		return true
	}
	lower := strings.ToLower(filename)
	for _, ext := range q.FileTypes {
		if strings.HasSuffix(lower, "."+strings.ToLower(strings.TrimPrefix(ext, "."))) {
			return true
		}
	}
	return false
}

// ClampProgress bounds a progress value to the 0-100 range
func ClampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// HistoryItem is an immutable snapshot of a queue item that reached a
// terminal status
type HistoryItem struct {
	ID             int64     `json:"id"`
	ItemID         string    `json:"itemId"`
	URL            string    `json:"url"`
	DownloadPath   string    `json:"downloadPath"`
	Status         Status    `json:"status"`
	Progress       float64   `json:"progress"`
	FilesCompleted int       `json:"filesCompleted"`
	TotalFiles     int       `json:"totalFiles"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Snapshot copies the terminal state of a queue item into a history record
func Snapshot(item *QueueItem) *HistoryItem {
	return &HistoryItem{
		ItemID:         item.ID,
		URL:            item.URL,
		DownloadPath:   item.DownloadPath,
		Status:         item.Status,
		Progress:       ClampProgress(item.Progress),
		FilesCompleted: item.FilesCompleted,
		TotalFiles:     item.TotalFiles,
		Error:          item.Error,
		CreatedAt:      item.CreatedAt,
		CompletedAt:    time.Now(),
	}
}

// QueueStats summarizes the queue for the UI
type QueueStats struct {
	Total       int `json:"total"`
	Queued      int `json:"queued"`
	Downloading int `json:"downloading"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
	Canceled    int `json:"canceled"`
}
