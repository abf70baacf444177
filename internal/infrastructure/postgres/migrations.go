package postgres

import (
	"context"
	"fmt"

	"dashboard/backend/internal/infrastructure/postgres/migrations"
	"dashboard/backend/internal/logging"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// Migrate applies pending goose migrations from the embedded schema.
func (db *Database) Migrate(ctx context.Context, log logging.Logger) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(database.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	for _, res := range results {
		log.Info(ctx, "migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
