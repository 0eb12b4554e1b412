package main

import (
	"context"
	"fmt"

	"vnforge/internal/config"
	"vnforge/internal/store"
	"vnforge/internal/store/postgres"
	"vnforge/internal/store/sqlite"
)

func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	var st store.Store
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		client, err := postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		st = client
	case config.DriverSQLite:
		client, err := sqlite.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		st = client
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close(ctx)
		return nil, err
	}
	return st, nil
}
