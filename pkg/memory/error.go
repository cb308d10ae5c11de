package memory

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNotConfigured is returned when memory operations are attempted
// but no memory driver has been configured.
var ErrNotConfigured = errors.New("memory not configured")

// ErrEmptyExecution is returned when an execution carries no tool names.
var ErrEmptyExecution = errors.New("execution has no tool names")

// LookupError is returned when a tool id is referenced by a container but is
// unknown to the tool index. It indicates persisted-state corruption.
type LookupError struct {
	ID int
}

func (e *LookupError) Error() string {
	return "unknown tool id: " + strconv.Itoa(e.ID)
}

// ConfigError is returned when memory is constructed with an invalid
// configuration. It is fatal to startup.
type ConfigError struct {
	Field string
	Value int

	// Rule describes the violated constraint. Empty means "must be > 0".
	Rule string
}

func (e *ConfigError) Error() string {
	rule := e.Rule
	if rule == "" {
		rule = "must be > 0"
	}
	return fmt.Sprintf("invalid memory configuration: %s %s (got %d)", e.Field, rule, e.Value)
}
