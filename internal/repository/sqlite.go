package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"airquality-dashboard/internal/models"
)

// OpenSQLite opens (and creates if needed) the SQLite database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("repository: mkdir %s: %w", dir, err)
			}
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: sqlite open: %w", err)
	}
	// One writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: sqlite ping: %w", err)
	}
	return db, nil
}

// SQLiteStore keeps the station cache in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite cache store
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// EnsureSchema creates the station_cache table if it does not exist
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS station_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			station TEXT NOT NULL UNIQUE,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("repository: failed to create station_cache: %w", err)
	}
	return nil
}

// Load returns the cached stations in insertion order
func (s *SQLiteStore) Load(ctx context.Context) ([]models.StationLocation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT station, latitude, longitude FROM station_cache ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute cache query: %w", err)
	}
	defer rows.Close()

	var locations []models.StationLocation
	for rows.Next() {
		var loc models.StationLocation
		if err := rows.Scan(&loc.Station, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, fmt.Errorf("repository: failed to scan station: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}
	return locations, nil
}

// Save inserts every row in one transaction, keeping existing stations.
func (s *SQLiteStore) Save(ctx context.Context, rows []models.StationLocation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO station_cache (station, latitude, longitude)
		VALUES (?, ?, ?)
		ON CONFLICT (station) DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("repository: failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Station, r.Latitude, r.Longitude); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("repository: failed to insert station %q: %w", r.Station, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return nil
}
