// Package sqlite provides a SQLite-backed execution store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aircode610/MouseTron/pkg/storage/sqldriver"
)

var dialect = sqldriver.Dialect{
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS tool_executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			steps TEXT NOT NULL,
			step_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_executions_timestamp ON tool_executions(timestamp)`,
	},
}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqldriver.Driver
}

// NewDriver opens (and migrates) the SQLite database at dbPath. dbPath can be
// a file path or ":memory:".
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database; a single
	// connection also serializes writers on a file database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	d := &Driver{Driver: &sqldriver.Driver{DB: db, Dialect: dialect}}
	if err := d.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}
