// Package history provides SQLite persistence for terminal download jobs
package history

import (
	"database/sql"
	"fmt"

	"archive-downloader/pkg/models"

	_ "modernc.org/sqlite"
)

// MaxEntries caps the history at the most recent entries; older rows are
// evicted on append
const MaxEntries = 100

// DB wraps the SQLite history database
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL,
		url TEXT NOT NULL,
		download_path TEXT NOT NULL,
		status TEXT NOT NULL,
		progress REAL DEFAULT 0.0,
		files_completed INTEGER DEFAULT 0,
		total_files INTEGER DEFAULT 0,
		error TEXT,
		created_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_completed_at ON history(completed_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Append inserts a terminal snapshot and evicts rows beyond the cap,
// oldest first
func (db *DB) Append(entry *models.HistoryItem) error {
	query := `
	INSERT INTO history (
		item_id, url, download_path, status, progress,
		files_completed, total_files, error, created_at, completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		entry.ItemID, entry.URL, entry.DownloadPath, entry.Status,
		entry.Progress, entry.FilesCompleted, entry.TotalFiles,
		entry.Error, entry.CreatedAt, entry.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id

	prune := `
	DELETE FROM history WHERE id NOT IN (
		SELECT id FROM history ORDER BY id DESC LIMIT ?
	)
	`
	if _, err := db.conn.Exec(prune, MaxEntries); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return nil
}

// List retrieves history entries, newest first
func (db *DB) List(limit int) ([]*models.HistoryItem, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}

	query := `
	SELECT id, item_id, url, download_path, status, progress,
		   files_completed, total_files, error, created_at, completed_at
	FROM history ORDER BY id DESC LIMIT ?
	`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryItem
	for rows.Next() {
		var entry models.HistoryItem
		err := rows.Scan(
			&entry.ID, &entry.ItemID, &entry.URL, &entry.DownloadPath,
			&entry.Status, &entry.Progress, &entry.FilesCompleted,
			&entry.TotalFiles, &entry.Error, &entry.CreatedAt, &entry.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Count returns the number of stored entries
func (db *DB) Count() (int, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}
