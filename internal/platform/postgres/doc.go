// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx driver. It also embeds the goose
// migrations that create the schema.
package postgres
