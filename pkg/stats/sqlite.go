package stats

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/skillstack/skillmcp/pkg/types/skills"
)

const searchLogSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS search_log (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	result_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_log_timestamp ON search_log(timestamp);
`

const searchLogSchemaVersion = 1

// SearchLog persists search history to a SQLite database so usage can be
// inspected across restarts.
type SearchLog struct {
	dbPath string
	db     *sqlx.DB
}

// OpenSearchLog opens or creates the search log database at the given
// path, configuring WAL mode and initializing the schema.
func OpenSearchLog(ctx context.Context, dbPath string) (*SearchLog, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := configureDatabase(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to configure database")
	}

	log := &SearchLog{dbPath: dbPath, db: db}
	if err := log.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}
	return log, nil
}

// configureDatabase sets up SQLite pragmas for WAL mode operation.
func configureDatabase(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=1000",
		"PRAGMA temp_store=memory",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return errors.Wrap(err, "failed to query journal mode")
	}
	if strings.ToLower(journalMode) != "wal" {
		return errors.Errorf("WAL mode not enabled. Current mode: %s", journalMode)
	}
	return nil
}

func (l *SearchLog) initializeSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, searchLogSchema); err != nil {
		return errors.Wrap(err, "failed to create tables")
	}
	_, err := l.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_version (version) VALUES (?)", searchLogSchemaVersion)
	return errors.Wrap(err, "failed to record schema version")
}

// searchRow mirrors the search_log table. The driver round-trips
// time.Time through the DATETIME column, so timestamps scan directly.
type searchRow struct {
	ID          string    `db:"id"`
	Query       string    `db:"query"`
	Timestamp   time.Time `db:"timestamp"`
	ResultCount int       `db:"result_count"`
}

// Insert writes one search entry.
func (l *SearchLog) Insert(ctx context.Context, entry skills.SearchEntry) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO search_log (id, query, timestamp, result_count) VALUES (?, ?, ?, ?)",
		entry.ID, entry.Query, entry.Timestamp.UTC(), entry.ResultCount)
	return errors.Wrap(err, "failed to insert search entry")
}

// Recent returns the most recent entries, newest first.
func (l *SearchLog) Recent(ctx context.Context, limit int) ([]skills.SearchEntry, error) {
	if limit <= 0 {
		limit = SearchHistorySize
	}
	var rows []searchRow
	err := l.db.SelectContext(ctx, &rows,
		"SELECT id, query, timestamp, result_count FROM search_log ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query search log")
	}

	entries := make([]skills.SearchEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, skills.SearchEntry{
			ID:          row.ID,
			Query:       row.Query,
			Timestamp:   row.Timestamp.UTC(),
			ResultCount: row.ResultCount,
		})
	}
	return entries, nil
}

// Close closes the underlying database.
func (l *SearchLog) Close() error {
	return l.db.Close()
}
