// Package fuzzy suggests download destinations by matching a new URL
// against where similar past downloads were saved
package fuzzy

import (
	"net/url"
	"sort"
	"strings"

	"archive-downloader/pkg/models"
)

// Matcher scores history entries against new download URLs
type Matcher struct{}

// NewMatcher creates a new fuzzy matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// SuggestPath returns the download path of the best-matching history
// entry, or "" when nothing scores. Recent entries win ties.
func (m *Matcher) SuggestPath(rawURL string, entries []*models.HistoryItem) string {
	if len(entries) == 0 {
		return ""
	}

	words := tokenize(rawURL)
	if len(words) == 0 {
		return ""
	}

	type scoredEntry struct {
		entry *models.HistoryItem
		score float64
	}

	var scored []scoredEntry
	for _, entry := range entries {
		if entry.DownloadPath == "" {
			continue
		}
		if score := overlap(words, tokenize(entry.URL)); score > 0 {
			scored = append(scored, scoredEntry{entry: entry, score: score})
		}
	}
	if len(scored) == 0 {
		return ""
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].entry.CompletedAt.After(scored[j].entry.CompletedAt)
	})
	return scored[0].entry.DownloadPath
}

// tokenize splits a URL path into lowercase words, dropping the scheme
// and host so matches reflect content, not origin
func tokenize(rawURL string) []string {
	s := strings.ToLower(rawURL)
	if parsed, err := url.Parse(s); err == nil && parsed.Path != "" {
		s = parsed.Path
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '/', '.', '_', '-', ' ', '+', '%':
			return true
		}
		return false
	})

	var words []string
	for _, f := range fields {
		// Skip structural noise like "details" and file extensions
		if len(f) < 3 || f == "details" || f == "download" {
			continue
		}
		words = append(words, f)
	}
	return words
}

// overlap scores how much of the candidate's vocabulary the new URL
// shares, relative to the new URL's size
func overlap(want, have []string) float64 {
	if len(want) == 0 || len(have) == 0 {
		return 0
	}

	haveSet := make(map[string]struct{}, len(have))
	for _, w := range have {
		haveSet[w] = struct{}{}
	}

	matches := 0
	for _, w := range want {
		if _, ok := haveSet[w]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(want))
}
