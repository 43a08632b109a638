// Package downloader drives external download-tool processes for queued
// jobs: one executor run per job, one scheduler enforcing a single active
// download at a time.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"archive-downloader/internal/archive"
	"archive-downloader/internal/queue"
	"archive-downloader/pkg/models"
)

var (
	// ErrNoFilesFound means metadata resolution produced nothing to
	// download: fetch failure, empty item, or a filter excluding all files
	ErrNoFilesFound = errors.New("no downloadable files found")

	// ErrToolNotFound means neither the primary nor the fallback download
	// tool is installed
	ErrToolNotFound = errors.New("download tool not found")

	// ErrCanceled means the job was stopped by the user mid-download
	ErrCanceled = errors.New("download canceled")
)

var (
	percentPattern  = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)%`)
	playlistPattern = regexp.MustCompile(`(?i)downloading (?:item|video|file)?\s*(\d+) of (\d+)`)
)

// Tools names the external download commands
type Tools struct {
	File        string // plain file downloads, normally wget
	Playlist    string // playlist downloads, normally yt-dlp
	PlaylistAlt string // fallback when Playlist is not installed
}

// DefaultTools is the stock tool configuration
var DefaultTools = Tools{File: "wget", Playlist: "yt-dlp", PlaylistAlt: "youtube-dl"}

// Executor resolves a queue item into concrete files and downloads them
// one at a time through an external tool, reporting progress through the
// queue store.
type Executor struct {
	store    QueueStore
	archive  MetadataFetcher
	history  HistoryAppender
	runner   Runner
	notifier Notifier
	tools    Tools
	logger   *slog.Logger

	// lookPath is swapped in tests to control tool availability
	lookPath func(name string) (string, error)
}

// NewExecutor creates an executor. notifier may be nil.
func NewExecutor(store QueueStore, client MetadataFetcher, history HistoryAppender, runner Runner, notifier Notifier, tools Tools) *Executor {
	return &Executor{
		store:    store,
		archive:  client,
		history:  history,
		runner:   runner,
		notifier: notifier,
		tools:    tools,
		logger:   slog.Default(),
		lookPath: exec.LookPath,
	}
}

// resolvedFile is one concrete download the item expands to
type resolvedFile struct {
	URL  string
	Name string
}

// Run downloads every file the item resolves to. Terminal outcomes are
// written to the store and appended to history; the returned error is for
// the scheduler's retry bookkeeping and never escapes further.
func (e *Executor) Run(ctx context.Context, item *models.QueueItem) error {
	files, err := e.resolveFiles(ctx, item)
	if err != nil {
		e.failItem(item, err.Error())
		return err
	}

	tool, err := e.selectTool(item)
	if err != nil {
		e.failItem(item, err.Error())
		return err
	}

	status := models.StatusDownloading
	zero := 0.0
	total := len(files)
	e.store.Update(item.ID, queue.Update{
		Status:     &status,
		Progress:   &zero,
		TotalFiles: &total,
	})

	for i, file := range files {
		if err := e.downloadFile(ctx, item, tool, file, i, total); err != nil {
			if canceled(ctx, err) || e.itemCanceled(item.ID) {
				return ErrCanceled
			}
			e.failItem(item, err.Error())
			return err
		}

		completed := i + 1
		e.store.Update(item.ID, queue.Update{FilesCompleted: &completed})
	}

	e.completeItem(item)
	return nil
}

// resolveFiles expands the item URL into concrete downloads. Archive item
// pages are resolved through the metadata API; any other URL downloads
// directly.
func (e *Executor) resolveFiles(ctx context.Context, item *models.QueueItem) ([]resolvedFile, error) {
	identifier, ok := archive.ExtractIdentifier(item.URL)
	if !ok {
		return []resolvedFile{{URL: item.URL, Name: filenameFromURL(item.URL)}}, nil
	}

	status := models.StatusFetchingMetadata
	e.store.Update(item.ID, queue.Update{Status: &status})
	e.logger.Info("Fetching item metadata", "id", item.ID, "identifier", identifier)

	meta, err := e.archive.FetchMetadata(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata fetch failed: %v", ErrNoFilesFound, err)
	}

	var files []resolvedFile
	for _, f := range meta.Files {
		if f.Source != "original" || archive.IsAuxiliaryFile(f.Name) {
			continue
		}
		if !item.MatchesFileType(f.Name) {
			continue
		}
		files = append(files, resolvedFile{URL: e.archive.FileURL(identifier, f.Name), Name: f.Name})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoFilesFound, item.URL)
	}
	return files, nil
}

// selectTool picks the external command for the item, preferring the
// playlist tool's fallback name when the primary is missing
func (e *Executor) selectTool(item *models.QueueItem) (string, error) {
	if item.IsPlaylist {
		for _, tool := range []string{e.tools.Playlist, e.tools.PlaylistAlt} {
			if _, err := e.lookPath(tool); err == nil {
				return tool, nil
			}
		}
		return "", fmt.Errorf("%w: tried %s, %s", ErrToolNotFound, e.tools.Playlist, e.tools.PlaylistAlt)
	}

	if _, err := e.lookPath(e.tools.File); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, e.tools.File)
	}
	return e.tools.File, nil
}

// downloadFile runs one external process to completion, streaming progress
// into the store
func (e *Executor) downloadFile(ctx context.Context, item *models.QueueItem, tool string, file resolvedFile, index, total int) error {
	args := e.buildArgs(tool, item, file)
	e.logger.Info("Starting download", "id", item.ID, "tool", tool, "file", file.Name)

	var lastError string
	onStdout := func(line string) {
		e.handleProgressLine(item.ID, line, index, total)
	}
	onStderr := func(line string) {
		e.handleProgressLine(item.ID, line, index, total)
		// Some tools route informational text to stderr; surface lines
		// mentioning errors without aborting on them
		if strings.Contains(strings.ToLower(line), "error") {
			lastError = strings.TrimSpace(line)
			e.store.Update(item.ID, queue.Update{Message: &lastError})
		}
	}

	proc, err := e.runner.Start(ctx, tool, args, onStdout, onStderr)
	if err != nil {
		return fmt.Errorf("failed to spawn %s: %w", tool, err)
	}

	pid := proc.PID()
	e.store.Update(item.ID, queue.Update{ProcessID: &pid})

	code, err := proc.Wait()
	if err != nil {
		return err
	}
	if code != 0 {
		if lastError != "" {
			return fmt.Errorf("%s exited with code %d: %s", tool, code, lastError)
		}
		return fmt.Errorf("%s exited with code %d", tool, code)
	}
	return nil
}

// buildArgs constructs the tool invocation: URL, explicit output path and
// a progress flag that emits line-parseable output
func (e *Executor) buildArgs(tool string, item *models.QueueItem, file resolvedFile) []string {
	if tool == e.tools.Playlist || tool == e.tools.PlaylistAlt {
		args := []string{
			"--newline",
			"-o", filepath.Join(item.DownloadPath, "%(title)s.%(ext)s"),
		}
		if item.IsPlaylist {
			args = append(args, "--yes-playlist")
		}
		return append(args, file.URL)
	}

	return []string{
		"--progress=dot:mega",
		"-O", filepath.Join(item.DownloadPath, file.Name),
		file.URL,
	}
}

// handleProgressLine parses one line of tool output. Percentages map into
// overall job progress across all resolved files; playlist counters update
// the file counts directly.
func (e *Executor) handleProgressLine(id, line string, index, total int) {
	if m := playlistPattern.FindStringSubmatch(line); m != nil {
		completed, _ := strconv.Atoi(m[1])
		totalFiles, _ := strconv.Atoi(m[2])
		if completed > 0 {
			completed--
		}
		e.store.Update(id, queue.Update{FilesCompleted: &completed, TotalFiles: &totalFiles})
		return
	}

	m := percentPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return
	}

	overall := models.ClampProgress((float64(index) + pct/100) / float64(total) * 100)
	e.store.Update(id, queue.Update{Progress: &overall})
	if e.notifier != nil {
		e.notifier.Progress(id, overall)
	}
}

// completeItem marks the job done and records it in history
func (e *Executor) completeItem(item *models.QueueItem) {
	status := models.StatusCompleted
	full := 100.0
	noRetries := 0
	update := queue.Update{Status: &status, Progress: &full, RetryCount: &noRetries}
	if latest, ok := e.store.Get(item.ID); ok {
		// Playlist tools report their own counts; align completion with
		// whatever total ended up stored
		completed := latest.TotalFiles
		update.FilesCompleted = &completed
	}
	updated, ok := e.store.Update(item.ID, update)
	if !ok {
		return
	}

	e.logger.Info("Download completed", "id", item.ID, "files", updated.TotalFiles)
	e.appendHistory(updated)
	if e.notifier != nil {
		e.notifier.QueueUpdated()
	}
}

// failItem marks the job failed with a non-empty explanation and records
// the partial progress in history
func (e *Executor) failItem(item *models.QueueItem, reason string) {
	if reason == "" {
		reason = "download failed"
	}
	status := models.StatusFailed
	updated, ok := e.store.Update(item.ID, queue.Update{Status: &status, Error: &reason})
	if !ok {
		return
	}

	e.logger.Warn("Download failed", "id", item.ID, "error", reason)
	e.appendHistory(updated)
	if e.notifier != nil {
		e.notifier.QueueUpdated()
	}
}

func (e *Executor) appendHistory(item *models.QueueItem) {
	if e.history == nil {
		return
	}
	if err := e.history.Append(models.Snapshot(item)); err != nil {
		e.logger.Warn("Failed to append history entry", "id", item.ID, "error", err)
	}
}

// itemCanceled reports whether the item was marked canceled while the
// process ran
func (e *Executor) itemCanceled(id string) bool {
	item, ok := e.store.Get(id)
	return ok && item.Status == models.StatusCanceled
}

func canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

// filenameFromURL derives an output filename for direct downloads
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "download"
	}
	return path.Base(parsed.Path)
}
