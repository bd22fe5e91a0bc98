package postgres

import "embed"

// MigrationsDir is the directory inside Migrations holding goose files.
const MigrationsDir = "migrations"

// Migrations holds the goose SQL migrations for the server schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS
