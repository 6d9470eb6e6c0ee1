// Package factory builds the store for the configured driver.
package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/store/postgres"
	"github.com/passvault-io/passvault/internal/store/sqlite"
)

// NewStore opens the configured database, applies the schema, and returns
// the store together with the raw handle for health checks and shutdown.
func NewStore(ctx context.Context, cfg *config.Config) (store.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("apply postgres schema: %w", err)
		}
		return postgres.New(db), db, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := sqlite.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
		return sqlite.New(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}
