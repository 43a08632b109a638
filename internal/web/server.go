// Package web provides the HTTP server and routing
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"archive-downloader/internal/config"
	"archive-downloader/internal/downloader"
	"archive-downloader/internal/history"
	"archive-downloader/internal/queue"
	"archive-downloader/internal/web/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer wires the API routes. wsHandler serves the live-update
// websocket and may be nil when pushes are disabled.
func NewServer(cfg *config.Config, store *queue.Store, scheduler *downloader.Scheduler, historyDB *history.DB, notifier downloader.Notifier, wsHandler http.HandlerFunc) *Server {
	h := handlers.NewHandlers(store, scheduler, historyDB, notifier, cfg.BaseDownloadsPath)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/queue", func(r chi.Router) {
		r.Get("/", h.ListQueue)
		r.Post("/", h.AddToQueue)
		r.Delete("/", h.ClearQueue)
		r.Get("/stats", h.QueueStats)
		r.Get("/paused", h.GetPaused)
		r.Put("/paused", h.SetPaused)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetQueueItem)
			r.Patch("/", h.PatchQueueItem)
			r.Delete("/", h.DeleteQueueItem)
			r.Post("/cancel", h.CancelDownload)
			r.Post("/retry", h.RetryDownload)
			r.Post("/prioritize", h.PrioritizeDownload)
		})
	})
	r.Route("/api/folders", func(r chi.Router) {
		r.Get("/", h.BrowseFolders)
		r.Post("/", h.CreateFolder)
		r.Get("/suggest", h.SuggestFolder)
	})
	r.Get("/api/history", h.ListHistory)
	if wsHandler != nil {
		r.Get("/ws", wsHandler)
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server: server,
		logger: slog.Default(),
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
