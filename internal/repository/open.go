package repository

import (
	"context"
	"fmt"

	"airquality-dashboard/internal/cache"
	"airquality-dashboard/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// OpenStore opens the cache store selected by config.CacheDriver and makes
// sure its schema exists. The returned func releases the store's resources.
func OpenStore(ctx context.Context, cfg config.Config) (cache.Store, func(), error) {
	switch cfg.CacheDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			return nil, nil, fmt.Errorf("repository: cannot connect to db: %w", err)
		}
		store := NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.CacheDriver).Msg("cache store opened")
		return store, pool.Close, nil

	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store := NewSQLiteStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Str("driver", cfg.CacheDriver).Str("path", cfg.SQLitePath).Msg("cache store opened")
		return store, func() { _ = db.Close() }, nil

	case config.DriverFile, "":
		log.Info().Str("driver", config.DriverFile).Str("path", cfg.CacheFile).Msg("cache store opened")
		return NewFileStore(cfg.CacheFile), func() {}, nil
	}
	return nil, nil, fmt.Errorf("repository: unknown cache driver %q", cfg.CacheDriver)
}
