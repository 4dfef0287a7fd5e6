package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sheikh-saqib/transaction-engine/internal/config"
	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/storage/memory"
	"github.com/sheikh-saqib/transaction-engine/internal/storage/postgres"
)

// Open returns the LedgerStore selected by cfg. SQL drivers must be
// registered by the caller (lib/pq as "postgres", pgx as "pgx").
func Open(ctx context.Context, cfg config.StoreConfig, runID string) (interfaces.LedgerStore, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return memory.NewMemoryLedgerStore(), nil
	case config.DriverPostgres, config.DriverPgx:
		db, err := sql.Open(cfg.Driver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", interfaces.ErrStorage, cfg.Driver, err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: ping %s: %w", interfaces.ErrStorage, cfg.Driver, err)
		}
		store := postgres.NewPostgresLedgerStore(db, runID)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
