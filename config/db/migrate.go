package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mentorloop/api/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies pending goose migrations using the shared pool.
func Migrate(ctx context.Context) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrationsFS)

	sqlDB := stdlib.OpenDBFromPool(DB)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.InfoLogger.Infof("Migrations applied, schema version %d", version)
	return nil
}
