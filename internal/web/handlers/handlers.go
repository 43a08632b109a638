// Package handlers implements the JSON API consumed by the browser UI
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"archive-downloader/internal/downloader"
	"archive-downloader/internal/folder"
	"archive-downloader/internal/history"
	"archive-downloader/internal/queue"
	"archive-downloader/pkg/fuzzy"
	"archive-downloader/pkg/models"
)

// Handlers holds the dependencies shared by all API endpoints
type Handlers struct {
	store     *queue.Store
	scheduler *downloader.Scheduler
	history   *history.DB
	notifier  downloader.Notifier
	folders   *folder.Service
	matcher   *fuzzy.Matcher
	basePath  string
	logger    *slog.Logger
}

// NewHandlers creates the API handler set. notifier may be nil.
func NewHandlers(store *queue.Store, scheduler *downloader.Scheduler, historyDB *history.DB, notifier downloader.Notifier, basePath string) *Handlers {
	return &Handlers{
		store:     store,
		scheduler: scheduler,
		history:   historyDB,
		notifier:  notifier,
		folders:   folder.NewService(basePath),
		matcher:   fuzzy.NewMatcher(),
		basePath:  basePath,
		logger:    slog.Default(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListQueue returns every queue item
func (h *Handlers) ListQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Items())
}

type addRequest struct {
	URL          string          `json:"url"`
	DownloadPath string          `json:"downloadPath"`
	FileTypes    []string        `json:"fileTypes"`
	IsPlaylist   bool            `json:"isPlaylist"`
	Priority     models.Priority `json:"priority"`
}

// AddToQueue enqueues a new download request
func (h *Handlers) AddToQueue(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.DownloadPath == "" {
		req.DownloadPath = h.basePath
	}

	item := models.NewQueueItem(req.URL, req.DownloadPath)
	item.FileTypes = req.FileTypes
	item.IsPlaylist = req.IsPlaylist
	if req.Priority != "" {
		item.Priority = req.Priority
	}

	if err := h.store.Add(item); err != nil {
		h.logger.Error("Failed to add queue item", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to persist queue item")
		return
	}

	h.logger.Info("Queue item added", "id", item.ID, "url", item.URL)
	h.queueChanged()
	h.scheduler.Wake()
	writeJSON(w, http.StatusCreated, item)
}

// GetQueueItem returns a single item by id
func (h *Handlers) GetQueueItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type patchRequest struct {
	Priority *models.Priority `json:"priority"`
}

// PatchQueueItem applies a partial update. Only priority is mutable after
// enqueue; everything else belongs to the lifecycle endpoints.
func (h *Handlers) PatchQueueItem(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Priority == nil {
		writeError(w, http.StatusBadRequest, "no updatable fields in request")
		return
	}
	if !validPriority(*req.Priority) {
		writeError(w, http.StatusBadRequest, "priority must be high, normal or low")
		return
	}

	item, ok := h.store.Update(chi.URLParam(r, "id"), queue.Update{Priority: req.Priority})
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.queueChanged()
	h.scheduler.Wake()
	writeJSON(w, http.StatusOK, item)
}

// DeleteQueueItem removes an item from the queue
func (h *Handlers) DeleteQueueItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if item, ok := h.store.Get(id); ok && item.Status == models.StatusDownloading {
		// Stop the process first so the removal does not orphan it
		h.scheduler.Cancel(id)
	}
	if !h.store.Remove(id) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.logger.Info("Queue item removed", "id", id)
	h.queueChanged()
	w.WriteHeader(http.StatusNoContent)
}

// ClearQueue removes finished and waiting items, keeping active downloads
func (h *Handlers) ClearQueue(w http.ResponseWriter, r *http.Request) {
	removed := h.store.Clear(true)
	h.logger.Info("Queue cleared", "removed", removed)
	h.queueChanged()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// QueueStats returns per-status counts
func (h *Handlers) QueueStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// GetPaused reports the scheduler pause state
func (h *Handlers) GetPaused(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"paused": h.scheduler.Paused()})
}

// SetPaused pauses or resumes the scheduler
func (h *Handlers) SetPaused(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused *bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Paused == nil {
		writeError(w, http.StatusBadRequest, "paused is required")
		return
	}

	h.scheduler.SetPaused(*req.Paused)
	h.queueChanged()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": *req.Paused})
}

// CancelDownload stops an active or pending item
func (h *Handlers) CancelDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.scheduler.Cancel(id) {
		writeError(w, http.StatusNotFound, "item not found or already finished")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

// RetryDownload re-queues a failed or canceled item
func (h *Handlers) RetryDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.scheduler.Retry(id) {
		writeError(w, http.StatusNotFound, "item not found or not retryable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

// PrioritizeDownload changes an item's scheduling priority
func (h *Handlers) PrioritizeDownload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Priority models.Priority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !validPriority(req.Priority) {
		writeError(w, http.StatusBadRequest, "priority must be high, normal or low")
		return
	}

	if !h.scheduler.Prioritize(chi.URLParam(r, "id"), req.Priority) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "prioritized"})
}

// ListHistory returns recent terminal downloads, newest first
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.MaxEntries
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.history.List(limit)
	if err != nil {
		h.logger.Error("Failed to list history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if entries == nil {
		entries = []*models.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// BrowseFolders lists download destinations under the downloads root
func (h *Handlers) BrowseFolders(w http.ResponseWriter, r *http.Request) {
	entries, err := h.folders.List(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// CreateFolder makes a new destination directory
func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	full, err := h.folders.Create(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("Destination directory created", "path", full)
	writeJSON(w, http.StatusCreated, map[string]string{"path": full})
}

// SuggestFolder proposes a download path based on where similar past
// downloads went
func (h *Handlers) SuggestFolder(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	entries, err := h.history.List(history.MaxEntries)
	if err != nil {
		h.logger.Error("Failed to list history for suggestion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	suggested := h.matcher.SuggestPath(rawURL, entries)
	if suggested == "" {
		suggested = h.basePath
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": suggested})
}

func (h *Handlers) queueChanged() {
	if h.notifier != nil {
		h.notifier.QueueUpdated()
	}
}

func validPriority(p models.Priority) bool {
	return p == models.PriorityHigh || p == models.PriorityNormal || p == models.PriorityLow
}
