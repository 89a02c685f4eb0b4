package app

import (
	"context"
	"fmt"
	"log/slog"

	"apierrmw/internal/config"
	"apierrmw/internal/item"
	"apierrmw/internal/platform/pg"
	"apierrmw/internal/platform/sqlite"
	"apierrmw/migrations"
)

type store struct {
	repo  item.Repository
	close func()
}

// openStore opens the configured database and migrates it.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*store, error) {
	switch cfg.DB.Driver {
	case "postgres":
		info, err := pg.ApplyMigrations(cfg.DB.DSN, migrations.FS, migrations.PostgresDir)
		if err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("migrations applied", "driver", "postgres", "applied", info.Applied, "version", info.FinalVersion)

		pool, err := pg.NewPool(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		return &store{repo: item.NewPostgresRepository(pool), close: pool.Close}, nil

	default:
		db, err := sqlite.Open(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		info, err := sqlite.ApplyMigrations(db, migrations.FS, migrations.SQLiteDir)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		log.Info("migrations applied", "driver", "sqlite", "applied", info.Applied, "version", info.FinalVersion)
		return &store{repo: item.NewSQLiteRepository(db), close: func() { _ = db.Close() }}, nil
	}
}
