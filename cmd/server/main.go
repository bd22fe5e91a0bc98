// Package main runs the greenleaf API server: it loads configuration,
// connects to PostgreSQL, applies migrations on request and serves the
// REST API until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/greenleaf-study/greenleaf/internal/config"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
	"github.com/greenleaf-study/greenleaf/internal/redact"
	"github.com/spf13/pflag"
)

// cliOptions are the command line flags of the server binary.
type cliOptions struct {
	configFile    string
	envFile       string
	migrate       string
	migrationName string
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := pflag.NewFlagSet("greenleaf-server", pflag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "path to a config file (default ./config.yaml when present)")
	fs.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.StringVar(&opts.migrate, "migrate", "", "run a migration command and exit: up|down|status|reset|version|create")
	fs.StringVar(&opts.migrationName, "name", "", "migration name for --migrate=create")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if opts.migrate == "create" && opts.migrationName == "" {
		return cliOptions{}, errors.New("--name is required with --migrate=create")
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("server exited with error", slog.String("error", redact.Error(err)))
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: opts.configFile, EnvFile: opts.envFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("day_boundary", cfg.Streak.DayBoundary),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled))

	if opts.migrate == "create" {
		return createMigration(opts.migrationName, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer func() { _ = db.Close() }()
		return runMigrations(ctx, db, opts.migrate, log)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
