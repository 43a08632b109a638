package fuzzy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"archive-downloader/pkg/models"
)

func entry(url, path string, completed time.Time) *models.HistoryItem {
	return &models.HistoryItem{URL: url, DownloadPath: path, CompletedAt: completed}
}

func TestSuggestPathMatchesSimilarURLs(t *testing.T) {
	now := time.Now()
	entries := []*models.HistoryItem{
		entry("https://archive.org/details/night-of-the-living-dead", "/downloads/movies", now.Add(-time.Hour)),
		entry("https://archive.org/details/grateful-dead-1977-05-08", "/downloads/concerts", now.Add(-2*time.Hour)),
		entry("https://archive.org/details/apollo-11-onboard-audio", "/downloads/space", now.Add(-3*time.Hour)),
	}

	m := NewMatcher()

	got := m.SuggestPath("https://archive.org/details/night-of-the-living-dead-1968", entries)
	require.Equal(t, "/downloads/movies", got)

	got = m.SuggestPath("https://archive.org/details/grateful-dead-1978-07-01", entries)
	require.Equal(t, "/downloads/concerts", got)
}

func TestSuggestPathNoMatch(t *testing.T) {
	entries := []*models.HistoryItem{
		entry("https://archive.org/details/night-of-the-living-dead", "/downloads/movies", time.Now()),
	}

	m := NewMatcher()
	require.Empty(t, m.SuggestPath("https://archive.org/details/persepolis-recordings", entries))
	require.Empty(t, m.SuggestPath("https://archive.org/details/x", nil))
}

func TestSuggestPathPrefersRecentOnTies(t *testing.T) {
	now := time.Now()
	entries := []*models.HistoryItem{
		entry("https://archive.org/details/grateful-dead-1977", "/downloads/old", now.Add(-48*time.Hour)),
		entry("https://archive.org/details/grateful-dead-1978", "/downloads/new", now),
	}

	m := NewMatcher()
	require.Equal(t, "/downloads/new", m.SuggestPath("https://archive.org/details/grateful-dead-1979", entries))
}

func TestSuggestPathSkipsEntriesWithoutPath(t *testing.T) {
	entries := []*models.HistoryItem{
		entry("https://archive.org/details/grateful-dead-1977", "", time.Now()),
	}

	m := NewMatcher()
	require.Empty(t, m.SuggestPath("https://archive.org/details/grateful-dead-1978", entries))
}
