// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	ServerPort        string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	QueueFilePath     string `env:"QUEUE_FILE_PATH" envDefault:"data/queue.json"`
	HistoryDBPath     string `env:"HISTORY_DB_PATH" envDefault:"data/history.db"`
	BaseDownloadsPath string `env:"BASE_DOWNLOADS_PATH" envDefault:"/downloads"`
	DownloadTool      string `env:"DOWNLOAD_TOOL" envDefault:"wget"`
	PlaylistTool      string `env:"PLAYLIST_TOOL" envDefault:"yt-dlp"`
	PlaylistToolAlt   string `env:"PLAYLIST_TOOL_ALT" envDefault:"youtube-dl"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	if c.QueueFilePath == "" {
		return fmt.Errorf("QUEUE_FILE_PATH cannot be empty")
	}
	if c.HistoryDBPath == "" {
		return fmt.Errorf("HISTORY_DB_PATH cannot be empty")
	}

	if c.BaseDownloadsPath == "" {
		return fmt.Errorf("BASE_DOWNLOADS_PATH cannot be empty")
	}

	cleanPath := filepath.Clean(c.BaseDownloadsPath)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("BASE_DOWNLOADS_PATH must be an absolute path, got: %s", c.BaseDownloadsPath)
	}

	// Check if path exists and is a directory (only if it exists)
	if info, err := os.Stat(cleanPath); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("BASE_DOWNLOADS_PATH must be a directory, got file: %s", cleanPath)
		}
	}

	c.BaseDownloadsPath = cleanPath

	return nil
}
