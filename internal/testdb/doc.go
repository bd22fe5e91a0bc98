//go:build integration

// Package testdb opens the integration test database, migrates it and
// isolates each test in a rolled-back transaction.
package testdb
