// Package archive provides client functionality for the Internet Archive
// metadata API
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the base URL for archive.org
	DefaultBaseURL = "https://archive.org"
)

var detailsURLPattern = regexp.MustCompile(`archive\.org/(?:details|download)/([^/?#]+)`)

// Client represents an Internet Archive API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// File represents one file entry in an item's metadata
type File struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Format string `json:"format"`
	Size   string `json:"size"`
}

// Metadata represents the item metadata response
type Metadata struct {
	Files  []File `json:"files"`
	Server string `json:"server"`
	Dir    string `json:"dir"`
}

// New creates a new Internet Archive client
func New() *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExtractIdentifier pulls the item identifier out of a details or download
// URL. It returns false for URLs that do not point at an archive.org item.
func ExtractIdentifier(rawURL string) (string, bool) {
	m := detailsURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FetchMetadata retrieves the file listing for an item
func (c *Client) FetchMetadata(ctx context.Context, identifier string) (*Metadata, error) {
	endpoint := fmt.Sprintf("%s/metadata/%s", c.baseURL, url.PathEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata request failed with status %d", resp.StatusCode)
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return &meta, nil
}

// FileURL constructs the direct download URL for a file in an item
func (c *Client) FileURL(identifier, name string) string {
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(name, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return fmt.Sprintf("%s/download/%s/%s", c.baseURL, url.PathEscape(identifier), strings.Join(escaped, "/"))
}

// IsAuxiliaryFile reports whether a metadata file entry is one of the
// bookkeeping files the Archive adds to every item
func IsAuxiliaryFile(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "_meta.xml"),
		strings.HasSuffix(lower, "_files.xml"),
		strings.HasSuffix(lower, "_meta.sqlite"),
		strings.HasSuffix(lower, "_reviews.xml"),
		strings.HasSuffix(lower, "__ia_thumb.jpg"):
		return true
	}
	return false
}
