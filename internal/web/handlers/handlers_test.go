package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"archive-downloader/internal/config"
	"archive-downloader/internal/downloader"
	"archive-downloader/internal/history"
	"archive-downloader/internal/queue"
	"archive-downloader/internal/web"
	"archive-downloader/pkg/models"
)

type testAPI struct {
	handler http.Handler
	store   *queue.Store
	history *history.DB
	base    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := queue.NewStore(filepath.Join(t.TempDir(), "queue.json"))
	t.Cleanup(store.Close)

	historyDB, err := history.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { historyDB.Close() })

	scheduler := downloader.NewScheduler(store, nil, historyDB, downloader.NewTerminator(downloader.DefaultTools), nil)

	base := t.TempDir()
	cfg := &config.Config{ServerPort: "0", BaseDownloadsPath: base}
	srv := web.NewServer(cfg, store, scheduler, historyDB, nil, nil)

	return &testAPI{handler: srv.Handler(), store: store, history: historyDB, base: base}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestAddAndListQueue(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/queue",
		`{"url":"https://archive.org/details/demo","fileTypes":["mp4"],"priority":"high"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	items := api.store.Items()
	require.Len(t, items, 1)
	require.Equal(t, "https://archive.org/details/demo", items[0].URL)
	require.Equal(t, api.base, items[0].DownloadPath)
	require.Equal(t, models.PriorityHigh, items[0].Priority)
	require.Equal(t, models.StatusQueued, items[0].Status)

	rec = api.do(t, http.MethodGet, "/api/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), items[0].ID)
}

func TestAddQueueValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/queue", `{"downloadPath":"/downloads"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/queue", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPatchDeleteQueueItem(t *testing.T) {
	api := newTestAPI(t)

	item := models.NewQueueItem("https://example.com/file.bin", "/downloads")
	require.NoError(t, api.store.Add(item))

	rec := api.do(t, http.MethodGet, "/api/queue/"+item.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/queue/"+item.ID, `{"priority":"low"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got, ok := api.store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.PriorityLow, got.Priority)

	rec = api.do(t, http.MethodPatch, "/api/queue/"+item.ID, `{"priority":"urgent"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, "/api/queue/"+item.ID, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/queue/"+item.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/queue/"+item.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelAndRetryEndpoints(t *testing.T) {
	api := newTestAPI(t)

	item := models.NewQueueItem("https://example.com/file.bin", "/downloads")
	require.NoError(t, api.store.Add(item))

	rec := api.do(t, http.MethodPost, "/api/queue/"+item.ID+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got, ok := api.store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusCanceled, got.Status)
	require.Equal(t, downloader.StoppedByUser, got.Error)

	// Cancel is recorded in history
	count, err := api.history.Count()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rec = api.do(t, http.MethodPost, "/api/queue/"+item.ID+"/retry", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got, ok = api.store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.StatusQueued, got.Status)
	require.Empty(t, got.Error)

	// Queued items are not retryable
	rec = api.do(t, http.MethodPost, "/api/queue/"+item.ID+"/retry", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/queue/missing/cancel", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrioritizeEndpoint(t *testing.T) {
	api := newTestAPI(t)

	item := models.NewQueueItem("https://example.com/file.bin", "/downloads")
	require.NoError(t, api.store.Add(item))

	rec := api.do(t, http.MethodPost, "/api/queue/"+item.ID+"/prioritize", `{"priority":"high"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got, ok := api.store.Get(item.ID)
	require.True(t, ok)
	require.Equal(t, models.PriorityHigh, got.Priority)

	rec = api.do(t, http.MethodPost, "/api/queue/"+item.ID+"/prioritize", `{"priority":"asap"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/queue/missing/prioritize", `{"priority":"high"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPausedEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/queue/paused", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"paused":false}`, rec.Body.String())

	rec = api.do(t, http.MethodPut, "/api/queue/paused", `{"paused":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/queue/paused", "")
	require.JSONEq(t, `{"paused":true}`, rec.Body.String())

	rec = api.do(t, http.MethodPut, "/api/queue/paused", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsAndClearEndpoints(t *testing.T) {
	api := newTestAPI(t)

	queued := models.NewQueueItem("https://example.com/a", "/downloads")
	require.NoError(t, api.store.Add(queued))

	active := models.NewQueueItem("https://example.com/b", "/downloads")
	require.NoError(t, api.store.Add(active))
	status := models.StatusDownloading
	_, ok := api.store.Update(active.ID, queue.Update{Status: &status})
	require.True(t, ok)

	rec := api.do(t, http.MethodGet, "/api/queue/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"removed":1}`, rec.Body.String())

	items := api.store.Items()
	require.Len(t, items, 1)
	require.Equal(t, active.ID, items[0].ID)
}

func TestHistoryEndpoint(t *testing.T) {
	api := newTestAPI(t)

	item := models.NewQueueItem("https://example.com/file.bin", "/downloads")
	item.Status = models.StatusCompleted
	require.NoError(t, api.history.Append(models.Snapshot(item)))

	rec := api.do(t, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), item.ID)

	rec = api.do(t, http.MethodGet, "/api/history?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFolderEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/folders", `{"path":"/concerts"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/folders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"concerts"`)

	rec = api.do(t, http.MethodPost, "/api/folders", `{"path":"/../escape"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/folders?path=/../..", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestFolderEndpoint(t *testing.T) {
	api := newTestAPI(t)

	item := models.NewQueueItem("https://archive.org/details/grateful-dead-1977", "/downloads/concerts")
	item.Status = models.StatusCompleted
	require.NoError(t, api.history.Append(models.Snapshot(item)))

	rec := api.do(t, http.MethodGet, "/api/folders/suggest?url=https://archive.org/details/grateful-dead-1978", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"path":"/downloads/concerts"}`, rec.Body.String())

	// Nothing similar in history falls back to the downloads root
	rec = api.do(t, http.MethodGet, "/api/folders/suggest?url=https://archive.org/details/apollo-11-audio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), api.base)

	rec = api.do(t, http.MethodGet, "/api/folders/suggest", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
