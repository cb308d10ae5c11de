// Package storage persists the raw execution history received by the API:
// one row per completed execution with its ordered tool names.
//
// The memory engine learns from executions; storage only keeps an audit
// trail that the history command and GET /api/tools read back.
package storage

import (
	"context"
	"time"
)

// DefaultRecentLimit is used when a non-positive limit is passed to Recent.
const DefaultRecentLimit = 10

// Execution is one stored execution.
type Execution struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Steps     []string  `json:"steps"`
	StepCount int       `json:"step_count"`
}

// Stats summarizes the stored history.
type Stats struct {
	Total              int      `json:"total"`
	UniqueCombinations int      `json:"unique_combinations"`
	MostCommon         []string `json:"most_common,omitempty"`
	MostCommonCount    int      `json:"most_common_count,omitempty"`
}

// Driver defines the interface for persisting and reading executions.
type Driver interface {
	// Put stores steps as a new execution and returns it with its assigned id.
	Put(ctx context.Context, steps []string) (*Execution, error)

	// Get retrieves one execution by id.
	Get(ctx context.Context, id int64) (*Execution, error)

	// Recent returns up to limit executions, newest first.
	Recent(ctx context.Context, limit int) ([]*Execution, error)

	// All returns every execution, newest first.
	All(ctx context.Context) ([]*Execution, error)

	// Stats summarizes the stored history.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the store and releases any resources.
	Close() error
}
