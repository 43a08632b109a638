package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"archive-downloader/internal/archive"
	"archive-downloader/internal/cleanup"
	"archive-downloader/internal/config"
	"archive-downloader/internal/downloader"
	"archive-downloader/internal/history"
	"archive-downloader/internal/queue"
	"archive-downloader/internal/web"
	"archive-downloader/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Archive Downloader", "version", "1.0.0")

	// Initialize history database
	historyDB, err := history.New(cfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize history database: %w", err)
	}
	defer func() {
		if err := historyDB.Close(); err != nil {
			slog.Error("Failed to close history database", "error", err)
		}
	}()

	// Initialize the shared queue file
	store := queue.NewStore(cfg.QueueFilePath)
	defer store.Close()
	store.Load()

	// Websocket hub for live UI updates
	hub := websocket.NewHub()

	// Download pipeline
	tools := downloader.Tools{
		File:        cfg.DownloadTool,
		Playlist:    cfg.PlaylistTool,
		PlaylistAlt: cfg.PlaylistToolAlt,
	}
	executor := downloader.NewExecutor(store, archive.New(), historyDB, downloader.NewRunner(), hub, tools)
	scheduler := downloader.NewScheduler(store, executor, historyDB, downloader.NewTerminator(tools), hub)

	// Web server
	server := web.NewServer(cfg, store, scheduler, historyDB, hub, hub.Handler)

	return runServer(server, store, scheduler, hub)
}

func runServer(server *web.Server, store *queue.Store, scheduler *downloader.Scheduler, hub *websocket.Hub) error {
	// Create main context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Re-queue downloads a previous process left mid-flight
	scheduler.ResetOrphans()

	go hub.Run(ctx)
	go scheduler.Start(ctx)

	// Watch the queue file for edits made by the UI or other processes
	watcher := queue.NewWatcher(store)
	go watcher.Start(ctx)

	// Prune aged corrupt-queue backups daily
	go cleanup.NewService(store.Path()).Run(ctx)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	// Cancel context to stop the scheduler, watcher and hub
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: "2006-01-02 15:04:05",
	})
	slog.SetDefault(slog.New(handler))
}
