package database

import (
	"context"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"planner/internal/config"
	"planner/pkg/logger"
)

var (
	pool *sqlx.DB
	once sync.Once
)

// DB returns the global database connection pool (initialized on first use).
func DB(ctx context.Context) *sqlx.DB {
	once.Do(func() {
		cfg := config.Get()
		if cfg.DatabaseURL == "" {
			logger.Error(ctx, "DATABASE_URL is not set")
			return
		}
		db, err := Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBPoolSize)
		if err != nil {
			logger.Error(ctx, "Failed to open database", "error", err, "driver", cfg.DBDriver)
			return
		}
		pool = db
		logger.Info(ctx, "Database pool initialized", "driver", cfg.DBDriver, "max_open", cfg.DBPoolSize)
	})
	return pool
}

// Open connects with one of the supported drivers: postgres (lib/pq), pgx or sqlite.
func Open(ctx context.Context, driver, dsn string, poolSize int) (*sqlx.DB, error) {
	switch driver {
	case "postgres", "pgx", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases shared and serialises writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(poolSize)
		db.SetMaxIdleConns(poolSize / 2)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", driver, err)
	}
	return db, nil
}
