// Package sqldriver implements storage.Driver on top of database/sql. The
// sqlite and postgres packages supply the connection and a Dialect.
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aircode610/MouseTron/pkg/storage"
)

// Dialect captures the SQL differences between backends.
type Dialect struct {
	// Schema statements are executed in order by Migrate.
	Schema []string

	// Numbered placeholders ($1, $2) instead of "?".
	Numbered bool
}

// Driver implements storage.Driver using a *sql.DB.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

var _ storage.Driver = (*Driver)(nil)

// Migrate creates the tool_executions table and its index.
func (d *Driver) Migrate(ctx context.Context) error {
	for _, stmt := range d.Dialect.Schema {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (d *Driver) rebind(query string) string {
	if !d.Dialect.Numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Put stores steps as a new execution.
func (d *Driver) Put(ctx context.Context, steps []string) (*storage.Execution, error) {
	if len(steps) == 0 {
		return nil, storage.ErrEmptySteps
	}

	payload, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("encoding steps: %w", err)
	}

	now := time.Now().UTC()
	exec := &storage.Execution{
		Timestamp: now,
		Steps:     append([]string(nil), steps...),
		StepCount: len(steps),
	}

	row := d.DB.QueryRowContext(ctx,
		d.rebind("INSERT INTO tool_executions (timestamp, steps, step_count) VALUES (?, ?, ?) RETURNING id"),
		now.Format(time.RFC3339Nano), string(payload), len(steps),
	)
	if err := row.Scan(&exec.ID); err != nil {
		return nil, fmt.Errorf("inserting execution: %w", err)
	}

	return exec, nil
}

const selectColumns = "SELECT id, timestamp, steps, step_count FROM tool_executions"

// Get retrieves one execution by id.
func (d *Driver) Get(ctx context.Context, id int64) (*storage.Execution, error) {
	row := d.DB.QueryRowContext(ctx, d.rebind(selectColumns+" WHERE id = ?"), id)

	exec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	return exec, err
}

// Recent returns up to limit executions, newest first.
func (d *Driver) Recent(ctx context.Context, limit int) ([]*storage.Execution, error) {
	if limit <= 0 {
		limit = storage.DefaultRecentLimit
	}
	return d.query(ctx, d.rebind(selectColumns+" ORDER BY id DESC LIMIT ?"), limit)
}

// All returns every execution, newest first.
func (d *Driver) All(ctx context.Context) ([]*storage.Execution, error) {
	return d.query(ctx, selectColumns+" ORDER BY id DESC")
}

// Stats summarizes the stored history.
func (d *Driver) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := &storage.Stats{}

	if err := d.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM tool_executions").Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("counting executions: %w", err)
	}
	if err := d.DB.QueryRowContext(ctx, "SELECT COUNT(DISTINCT steps) FROM tool_executions").Scan(&stats.UniqueCombinations); err != nil {
		return nil, fmt.Errorf("counting combinations: %w", err)
	}
	if stats.Total == 0 {
		return stats, nil
	}

	var steps string
	err := d.DB.QueryRowContext(ctx,
		"SELECT steps, COUNT(*) AS n FROM tool_executions GROUP BY steps ORDER BY n DESC, MIN(id) ASC LIMIT 1",
	).Scan(&steps, &stats.MostCommonCount)
	if err != nil {
		return nil, fmt.Errorf("finding most common combination: %w", err)
	}
	if err := json.Unmarshal([]byte(steps), &stats.MostCommon); err != nil {
		return nil, fmt.Errorf("decoding steps: %w", err)
	}

	return stats, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.DB.Close()
}

func (d *Driver) query(ctx context.Context, query string, args ...any) ([]*storage.Execution, error) {
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	out := []*storage.Execution{}
	for rows.Next() {
		exec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, exec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating executions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*storage.Execution, error) {
	var (
		exec      storage.Execution
		timestamp string
		steps     string
	)
	if err := s.Scan(&exec.ID, &timestamp, &steps, &exec.StepCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning execution: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp of execution %d: %w", exec.ID, err)
	}
	exec.Timestamp = ts

	if err := json.Unmarshal([]byte(steps), &exec.Steps); err != nil {
		return nil, fmt.Errorf("decoding steps of execution %d: %w", exec.ID, err)
	}
	return &exec, nil
}
