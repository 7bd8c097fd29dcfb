package main

// Run history migrations for the configured store:
//   go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"os"

	"smartmail-backend/internal/shared/config"
	"smartmail-backend/internal/shared/storage/db"
	"smartmail-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())

	var (
		sqlDB   *sql.DB
		dialect db.Dialect
		err     error
	)
	switch cfg.HistoryStore {
	case "postgres":
		dialect = db.DialectPostgres
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	case "sqlite":
		dialect = db.DialectSQLite
		sqlDB, err = db.ConnectSQLite(ctx, cfg.SQLitePath, opts)
	default:
		telemetry.Info("migrate.skipped", map[string]any{"history_store": cfg.HistoryStore})
		return
	}
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"dialect": string(dialect)})
}
