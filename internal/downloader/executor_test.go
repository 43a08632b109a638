package downloader_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"archive-downloader/internal/archive"
	"archive-downloader/internal/downloader"
	"archive-downloader/internal/downloader/mocks"
	"archive-downloader/internal/queue"
	"archive-downloader/pkg/models"
)

// shTools points every tool at sh so availability checks pass without the
// real downloaders installed
var shTools = downloader.Tools{File: "sh", Playlist: "sh", PlaylistAlt: "sh"}

func newTestStore(t *testing.T) *queue.Store {
	t.Helper()
	store := queue.NewStore(filepath.Join(t.TempDir(), "queue.json"))
	t.Cleanup(store.Close)
	return store
}

func TestExecutorRunArchiveItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newTestStore(t)

	item := models.NewQueueItem("https://archive.org/details/demo", "/downloads/demo")
	item.FileTypes = []string{"mp4"}
	require.NoError(t, store.Add(item))

	fetcher := mocks.NewMockMetadataFetcher(ctrl)
	fetcher.EXPECT().FetchMetadata(gomock.Any(), "demo").Return(&archive.Metadata{
		Files: []archive.File{
			{Name: "a.mp4", Source: "original"},
			{Name: "demo_meta.xml", Source: "original"},
			{Name: "a.ogv", Source: "derivative"},
		},
	}, nil)
	fetcher.EXPECT().FileURL("demo", "a.mp4").Return("https://archive.org/download/demo/a.mp4")

	history := mocks.NewMockHistoryAppender(ctrl)
	history.EXPECT().Append(gomock.Any()).DoAndReturn(func(entry *models.HistoryItem) error {
		require.Equal(t, models.StatusCompleted, entry.Status)
		return nil
	})

	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().PID().Return(4242)
	proc.EXPECT().Wait().Return(0, nil)

	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().Start(gomock.Any(), "sh", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, args []string, onStdout, _ func(string)) (downloader.Process, error) {
			require.Contains(t, args, "https://archive.org/download/demo/a.mp4")
			require.Contains(t, args, filepath.Join("/downloads/demo", "a.mp4"))
			onStdout(" 45% 12.3M 1.2MB/s")
			return proc, nil
		})

	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Progress(item.ID, 45.0)
	notifier.EXPECT().QueueUpdated()

	exec := downloader.NewExecutor(store, fetcher, history, runner, notifier, shTools)
	require.NoError(t, exec.Run(context.Background(), item))

	got, ok := store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusCompleted, got.Status)
	require.Equal(t, 100.0, got.Progress)
	require.Equal(t, 1, got.FilesCompleted)
	require.Equal(t, 1, got.TotalFiles)
	require.Equal(t, 0, got.RetryCount)
	require.Empty(t, got.Error)
	require.Zero(t, got.ProcessID)
}

func TestExecutorRunNoDownloadableFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newTestStore(t)

	item := models.NewQueueItem("https://archive.org/details/empty", "/downloads/empty")
	require.NoError(t, store.Add(item))

	fetcher := mocks.NewMockMetadataFetcher(ctrl)
	fetcher.EXPECT().FetchMetadata(gomock.Any(), "empty").Return(&archive.Metadata{
		Files: []archive.File{
			{Name: "empty_meta.xml", Source: "original"},
			{Name: "a.ogv", Source: "derivative"},
		},
	}, nil)

	history := mocks.NewMockHistoryAppender(ctrl)
	history.EXPECT().Append(gomock.Any()).Return(nil)

	exec := downloader.NewExecutor(store, fetcher, history, mocks.NewMockRunner(ctrl), nil, shTools)
	err := exec.Run(context.Background(), item)
	require.ErrorIs(t, err, downloader.ErrNoFilesFound)

	got, ok := store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusFailed, got.Status)
	require.NotEmpty(t, got.Error)
}

func TestExecutorRunToolNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newTestStore(t)

	item := models.NewQueueItem("https://example.com/file.bin", "/downloads/misc")
	require.NoError(t, store.Add(item))

	history := mocks.NewMockHistoryAppender(ctrl)
	history.EXPECT().Append(gomock.Any()).Return(nil)

	tools := downloader.Tools{File: "no-such-download-tool-1b2c3d"}
	exec := downloader.NewExecutor(store, mocks.NewMockMetadataFetcher(ctrl), history, mocks.NewMockRunner(ctrl), nil, tools)
	err := exec.Run(context.Background(), item)
	require.ErrorIs(t, err, downloader.ErrToolNotFound)

	got, ok := store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusFailed, got.Status)
	require.NotEmpty(t, got.Error)
}

func TestExecutorRunPlaylistFallbackTool(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newTestStore(t)

	item := models.NewQueueItem("https://example.com/playlist", "/downloads/pl")
	item.IsPlaylist = true
	require.NoError(t, store.Add(item))

	history := mocks.NewMockHistoryAppender(ctrl)
	history.EXPECT().Append(gomock.Any()).Return(nil)

	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().PID().Return(77)
	proc.EXPECT().Wait().Return(0, nil)

	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().Start(gomock.Any(), "sh", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, args []string, onStdout, _ func(string)) (downloader.Process, error) {
			require.Contains(t, args, "--newline")
			require.Contains(t, args, "--yes-playlist")
			onStdout("[download] Downloading item 2 of 5")
			return proc, nil
		})

	tools := downloader.Tools{File: "sh", Playlist: "no-such-download-tool-1b2c3d", PlaylistAlt: "sh"}
	exec := downloader.NewExecutor(store, mocks.NewMockMetadataFetcher(ctrl), history, runner, nil, tools)
	require.NoError(t, exec.Run(context.Background(), item))

	got, ok := store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusCompleted, got.Status)
	require.Equal(t, 5, got.TotalFiles)
	require.Equal(t, 5, got.FilesCompleted)
}

func TestExecutorRunSurfacesStderrErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newTestStore(t)

	item := models.NewQueueItem("https://example.com/file.bin", "/downloads/misc")
	require.NoError(t, store.Add(item))

	history := mocks.NewMockHistoryAppender(ctrl)
	history.EXPECT().Append(gomock.Any()).Return(nil)

	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().PID().Return(99)
	proc.EXPECT().Wait().Return(8, nil)

	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().Start(gomock.Any(), "sh", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []string, _, onStderr func(string)) (downloader.Process, error) {
			onStderr("ERROR: connection reset by peer")
			return proc, nil
		})

	exec := downloader.NewExecutor(store, mocks.NewMockMetadataFetcher(ctrl), history, runner, nil, shTools)
	err := exec.Run(context.Background(), item)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exited with code 8")
	require.Contains(t, err.Error(), "connection reset by peer")

	got, ok := store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusFailed, got.Status)
	require.Equal(t, "ERROR: connection reset by peer", got.Message)
}

func TestExecutorRunDetectsCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := newTestStore(t)

	item := models.NewQueueItem("https://example.com/file.bin", "/downloads/misc")
	require.NoError(t, store.Add(item))

	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().PID().Return(55)
	proc.EXPECT().Wait().DoAndReturn(func() (int, error) {
		// Simulate a user cancel landing while the process runs
		status := models.StatusCanceled
		_, ok := store.Update(item.ID, queue.Update{Status: &status})
		require.True(t, ok)
		return 1, nil
	})

	runner := mocks.NewMockRunner(ctrl)
	runner.EXPECT().Start(gomock.Any(), "sh", gomock.Any(), gomock.Any(), gomock.Any()).Return(proc, nil)

	// No history expectation: cancellation bookkeeping belongs to the
	// scheduler, not the executor
	exec := downloader.NewExecutor(store, mocks.NewMockMetadataFetcher(ctrl), mocks.NewMockHistoryAppender(ctrl), runner, nil, shTools)
	err := exec.Run(context.Background(), item)
	require.ErrorIs(t, err, downloader.ErrCanceled)

	got, ok := store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusCanceled, got.Status)
}
