// Command migrate convierte los registros planos de melba-records y current-data/last
// en eventos tipados. Se puede correr las veces que haga falta: lo ya migrado se saltea.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pet-medical-log/internal/adapters/storage"
	"pet-medical-log/internal/config"
	"pet-medical-log/internal/domain/events"
	"pet-medical-log/internal/domain/legacy"
	"pet-medical-log/internal/domain/migration"
	"pet-medical-log/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ migración fallida: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LoggerOptions())
	if zl, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = zl.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	engine := migration.NewEngine(
		events.NewService(store, log.With(map[string]any{"component": "events"})),
		legacy.NewReader(store, log.With(map[string]any{"component": "legacy"})),
		migration.Options{
			PetID:    cfg.PetID,
			Location: cfg.Location(),
			Logger:   log.With(map[string]any{"component": "migration"}),
		},
	)

	fmt.Printf("🔄 migrando registros de %s (pet %s)\n", legacy.RecordsCollection, cfg.PetID)
	sum, err := engine.Run(ctx)
	printSummary(sum)
	if err != nil {
		return err
	}
	fmt.Println("✅ migración completa")
	return nil
}

func printSummary(sum migration.Summary) {
	fmt.Printf("   registros:    %d eventos creados, %d salteados\n", sum.Records.Created, sum.Records.Skipped)
	fmt.Printf("   medicamentos: %d eventos creados, %d salteados\n", sum.Medications.Created, sum.Medications.Skipped)
}
