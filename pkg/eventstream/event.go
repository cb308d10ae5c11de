// Package eventstream defines the events MouseTron emits after recording an
// execution, and the publisher interface backends implement.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/aircode610/MouseTron/pkg/memory"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExecutionRecorded is emitted after an execution is recorded.
	EventTypeExecutionRecorded = "mousetron.execution.recorded"
)

// ExecutionRecordedEvent is a transport-neutral event payload for a recorded
// execution and the recommendations it produced.
type ExecutionRecordedEvent struct {
	SchemaVersion   int                     `json:"schema_version"`
	EventType       string                  `json:"event_type"`
	EventID         string                  `json:"event_id"`
	EmittedAt       time.Time               `json:"emitted_at"`
	Execution       ExecutionMeta           `json:"execution"`
	Recommendations *memory.Recommendations `json:"recommendations,omitempty"`
}

// ExecutionMeta describes the recorded execution.
type ExecutionMeta struct {
	// ID is the execution history id, when the execution was stored.
	ID        int64    `json:"id,omitempty"`
	Tools     []string `json:"tools"`
	StepCount int      `json:"step_count"`
}

// NewExecutionRecordedEvent builds a v1 event with a fresh event id.
func NewExecutionRecordedEvent(executionID int64, tools []string, recs *memory.Recommendations) *ExecutionRecordedEvent {
	return &ExecutionRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeExecutionRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Execution: ExecutionMeta{
			ID:        executionID,
			Tools:     append([]string(nil), tools...),
			StepCount: len(tools),
		},
		Recommendations: recs,
	}
}
