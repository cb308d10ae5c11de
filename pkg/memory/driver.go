// Package memory provides the tool-usage memory layer for MouseTron.
//
// The memory observes the ordered tool names of every completed agent
// execution (a block) and learns which tool combinations and single tools are
// worth recommending next. Scoring is deterministic: frequency and recency
// only.
//
// The [Driver] interface is intentionally minimal: RecordExecution feeds one
// block into memory, GenerateRecommendations reads the current state without
// mutating it, and Close flushes and releases resources. Drivers perform no
// internal locking; callers serialize access.
//
// Drivers are pluggable via configuration:
//
//	[memory]
//	containers_dir = "~/.mousetron/containers"
package memory

import (
	"context"
)

// Driver handles recording of tool executions and generation of
// recommendations.
type Driver interface {
	// RecordExecution records one completed execution. Tool names are in
	// invocation order and duplicates are permitted.
	RecordExecution(ctx context.Context, toolNames []string) error

	// GenerateRecommendations returns the three ranked recommendation lists.
	// It never mutates tracking state.
	GenerateRecommendations(ctx context.Context) (*Recommendations, error)

	// Close flushes state and releases driver resources.
	Close() error
}

// Item is the externally visible recommendation unit.
type Item struct {
	// ToolName is the tool name, or the member names joined by ", " for a
	// multi-tool combination.
	ToolName string `json:"tool_name" validate:"required"`

	// Description is looked up from the tool catalog. Empty when unknown.
	Description string `json:"description"`

	// Tools lists the members of a multi-tool combination in order.
	Tools []Item `json:"tools,omitempty" validate:"omitempty,dive"`
}

// Recommendations holds the three ranked lists, each in rank order.
type Recommendations struct {
	Recent  []Item `json:"recent"`
	Stable  []Item `json:"stable"`
	Singles []Item `json:"singles"`
}
