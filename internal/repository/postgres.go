package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"airquality-dashboard/internal/models"
)

// PgxDB is the subset of *pgxpool.Pool the store needs.
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore keeps the station cache in the station_cache table
type PostgresStore struct {
	db PgxDB
}

// NewPostgresStore creates a new PostgreSQL cache store
func NewPostgresStore(db PgxDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the station_cache table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS station_cache (
		id BIGSERIAL PRIMARY KEY,
		station TEXT NOT NULL UNIQUE,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		cached_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("repository: failed to create station_cache: %w", err)
	}
	return nil
}

// Load returns the cached stations in insertion order
func (s *PostgresStore) Load(ctx context.Context) ([]models.StationLocation, error) {
	sql := `
		SELECT station, latitude, longitude
		FROM station_cache
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, sql)
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

// Save inserts every row in one transaction. Stations already stored keep
// their original coordinates.
func (s *PostgresStore) Save(ctx context.Context, rows []models.StationLocation) error {
	sql := `
		INSERT INTO station_cache (station, latitude, longitude)
		VALUES ($1, $2, $3)
		ON CONFLICT (station) DO NOTHING
	`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}

	for _, r := range rows {
		if _, err := tx.Exec(ctx, sql, r.Station, r.Latitude, r.Longitude); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("repository: failed to insert station %q: %w", r.Station, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return nil
}
