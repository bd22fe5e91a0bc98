package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/greenleaf-study/greenleaf/internal/ciutil"
	"github.com/greenleaf-study/greenleaf/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

const migrationTable = "schema_migrations"

// slogGooseLogger adapts goose's logger to slog. Fatalf does not exit so
// the caller decides how to stop.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// configureGoose points goose at the embedded postgres migrations.
func configureGoose(logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(migrationTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// runMigrations executes one goose command against db.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("command", command),
		slog.String("correlation_id", uuid.NewString()))

	switch command {
	case "up", "down", "status", "reset", "version":
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	if err := configureGoose(log); err != nil {
		return err
	}

	start := time.Now()
	log.Info("starting migration")
	if err := goose.RunContext(ctx, command, db, postgres.MigrationsDir); err != nil {
		log.Error("migration failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration finished", slog.Duration("duration", time.Since(start)))
	return nil
}

// createMigration writes a new sequential SQL migration into the source
// tree's postgres migrations directory. It needs no database connection.
func createMigration(name string, logger *slog.Logger) error {
	log := logger.With(slog.String("component", "migrations"))
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(nil)
	goose.SetSequential(true)

	dir, err := ciutil.FindMigrationsDir(log)
	if err != nil {
		return err
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration %q: %w", name, err)
	}
	log.Info("migration created", slog.String("name", name), slog.String("dir", dir))
	return nil
}
