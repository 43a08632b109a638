// Package folder lets the UI browse and create download destinations,
// restricted to the configured downloads root
package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Service resolves UI-supplied relative paths against the downloads root
// and refuses anything that escapes it
type Service struct {
	base string
}

// Entry is one directory visible to the path picker
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewService creates a folder service rooted at basePath
func NewService(basePath string) *Service {
	return &Service{base: filepath.Clean(basePath)}
}

// Resolve maps a UI path onto the filesystem, rejecting escapes from the
// downloads root. Empty and "/" mean the root itself.
func (s *Service) Resolve(relative string) (string, error) {
	if relative == "" || relative == "/" {
		return s.base, nil
	}

	full := filepath.Clean(filepath.Join(s.base, strings.TrimPrefix(relative, "/")))
	if full != s.base && !strings.HasPrefix(full, s.base+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes downloads root: %s", relative)
	}
	return full, nil
}

// List returns the subdirectories under the given UI path
func (s *Service) List(relative string) ([]Entry, error) {
	full, err := s.Resolve(relative)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", full, err)
	}

	rel := strings.TrimPrefix(relative, "/")
	entries := []Entry{}
	for _, entry := range dirEntries {
		if !entry.IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Name: entry.Name(),
			Path: "/" + filepath.Join(rel, entry.Name()),
		})
	}
	return entries, nil
}

// Create makes a new destination directory under the downloads root
func (s *Service) Create(relative string) (string, error) {
	full, err := s.Resolve(relative)
	if err != nil {
		return "", err
	}
	if full == s.base {
		return "", fmt.Errorf("directory name is required")
	}
	if _, err := os.Stat(full); err == nil {
		return "", fmt.Errorf("directory already exists: %s", relative)
	}

	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return full, nil
}
