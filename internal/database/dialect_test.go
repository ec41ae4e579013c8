package database

import (
	"strings"
	"testing"
)

func TestSQLiteDialect(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "sqlite3" {
			t.Errorf("DriverName() = %v, want sqlite3", got)
		}
	})

	t.Run("RewriteQuery leaves placeholders alone", func(t *testing.T) {
		query := "SELECT state_value FROM local_state WHERE state_key = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want %v", got, query)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "sqlite" {
			t.Errorf("MigrationsSubdir() = %v, want sqlite", got)
		}
	})

	t.Run("DSN uses path", func(t *testing.T) {
		if got := dialect.DSN(DialectConfig{Path: "./practice.db"}); got != "./practice.db" {
			t.Errorf("DSN() = %v, want ./practice.db", got)
		}
	})
}

func TestPostgresDialect(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "postgres" {
			t.Errorf("DriverName() = %v, want postgres", got)
		}
	})

	t.Run("RewriteQuery numbers placeholders", func(t *testing.T) {
		query := "INSERT INTO local_state (state_key, state_value) VALUES (?, ?)"
		got := dialect.RewriteQuery(query)
		if !strings.Contains(got, "$1") || !strings.Contains(got, "$2") {
			t.Errorf("RewriteQuery() = %v, want numbered placeholders", got)
		}
		if strings.Contains(got, "?") {
			t.Errorf("RewriteQuery() = %v, still contains ?", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "postgres" {
			t.Errorf("MigrationsSubdir() = %v, want postgres", got)
		}
	})
}

func TestMySQLDialect(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "mysql" {
			t.Errorf("DriverName() = %v, want mysql", got)
		}
	})

	t.Run("RewriteQuery leaves placeholders alone", func(t *testing.T) {
		query := "SELECT state_value FROM local_state WHERE state_key = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want %v", got, query)
		}
	})

	t.Run("UpsertLocalState targets duplicate key", func(t *testing.T) {
		if got := dialect.UpsertLocalState(); !strings.Contains(got, "ON DUPLICATE KEY UPDATE") {
			t.Errorf("UpsertLocalState() = %v, want ON DUPLICATE KEY UPDATE clause", got)
		}
	})
}
