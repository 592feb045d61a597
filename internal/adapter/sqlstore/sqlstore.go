// Package sqlstore implements the ledger on PostgreSQL or SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// DB wraps a *sql.DB and implements domain.Ledger.
type DB struct {
	sql    *sql.DB
	driver string
}

// Open connects to the database, pings, and runs migrations. For SQLite the
// dsn is a file path or ":memory:".
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case Postgres:
	case SQLite:
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	s, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == SQLite {
		// One connection keeps ":memory:" a single database and serialises writers.
		s.SetMaxOpenConns(1)
	} else {
		s.SetMaxOpenConns(10)
		s.SetMaxIdleConns(5)
		s.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(pingCtx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s, driver: driver}
	if err := d.migrate(pingCtx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	seq := "seq BIGSERIAL PRIMARY KEY"
	if d.driver == SQLite {
		seq = "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS meal_logs (id TEXT PRIMARY KEY, user_id TEXT NOT NULL, item TEXT NOT NULL, calories DOUBLE PRECISION NOT NULL, protein DOUBLE PRECISION NOT NULL, category TEXT NOT NULL, created_at_ms BIGINT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_meal_logs_user_created ON meal_logs(user_id, created_at_ms);",
		"CREATE TABLE IF NOT EXISTS weights (" + seq + ", user_id TEXT NOT NULL, day TEXT NOT NULL, value DOUBLE PRECISION NOT NULL, unit TEXT NOT NULL CHECK(unit IN ('kg','lb')), created_at_ms BIGINT NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_weights_user ON weights(user_id);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$\d+`)

// q rewrites $N placeholders for drivers that only take "?". Queries must
// use their placeholders in argument order.
func (d *DB) q(query string) string {
	if d.driver == SQLite {
		return placeholder.ReplaceAllString(query, "?")
	}
	return query
}
