// Package storage elige el backend del docstore según la configuración.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"pet-medical-log/internal/adapters/storage/memory"
	pg "pet-medical-log/internal/adapters/storage/postgres"
	"pet-medical-log/internal/adapters/storage/sqlite"
	"pet-medical-log/internal/config"
	"pet-medical-log/internal/platform/logger"
	"pet-medical-log/internal/ports/docstore"
)

// Open devuelve el Store configurado y una función para liberar la conexión.
func Open(ctx context.Context, cfg config.StoreConfig, log logger.Logger) (docstore.Store, func() error, error) {
	if log == nil {
		log = logger.Nop()
	}
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory, "":
		log.Warn("usando store en memoria; los datos no se persisten", nil)
		return memory.NewStore(), noop, nil

	case config.DriverPostgres:
		db, err := pg.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.InitSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("init postgres schema: %w", err)
		}
		log.Info("store postgres listo", nil)
		return pg.NewDocumentStore(db), closer(db), nil

	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("store sqlite listo", map[string]any{"path": cfg.SQLitePath})
		return sqlite.NewDocumentStore(db), closer(db), nil
	}
	return nil, noop, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Driver)
}

func closer(db *sql.DB) func() error {
	return db.Close
}
