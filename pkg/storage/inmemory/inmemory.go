// Package inmemory provides a process-local execution store used when no
// database is configured.
package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aircode610/MouseTron/pkg/storage"
)

// Driver implements storage.Driver using an in-memory slice.
type Driver struct {
	// mu guards executions and nextID
	mu sync.RWMutex

	// executions are kept in insertion order, oldest first
	executions []*storage.Execution
	nextID     int64
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{nextID: 1}
}

// Put stores steps as a new execution.
func (s *Driver) Put(_ context.Context, steps []string) (*storage.Execution, error) {
	if len(steps) == 0 {
		return nil, storage.ErrEmptySteps
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exec := &storage.Execution{
		ID:        s.nextID,
		Timestamp: time.Now().UTC(),
		Steps:     append([]string(nil), steps...),
		StepCount: len(steps),
	}
	s.nextID++
	s.executions = append(s.executions, exec)

	return copyExecution(exec), nil
}

// Get retrieves one execution by id.
func (s *Driver) Get(_ context.Context, id int64) (*storage.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, exec := range s.executions {
		if exec.ID == id {
			return copyExecution(exec), nil
		}
	}
	return nil, storage.NotFoundError{ID: id}
}

// Recent returns up to limit executions, newest first.
func (s *Driver) Recent(_ context.Context, limit int) ([]*storage.Execution, error) {
	if limit <= 0 {
		limit = storage.DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newestFirst(limit), nil
}

// All returns every execution, newest first.
func (s *Driver) All(_ context.Context) ([]*storage.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newestFirst(len(s.executions)), nil
}

// Stats summarizes the stored history.
func (s *Driver) Stats(_ context.Context) (*storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &storage.Stats{Total: len(s.executions)}

	type combo struct {
		steps []string
		count int
		first int
	}
	combos := make(map[string]*combo)
	for i, exec := range s.executions {
		key := strings.Join(exec.Steps, "\x00")
		c, ok := combos[key]
		if !ok {
			c = &combo{steps: exec.Steps, first: i}
			combos[key] = c
		}
		c.count++
	}
	stats.UniqueCombinations = len(combos)

	var best *combo
	for _, c := range combos {
		if best == nil || c.count > best.count || (c.count == best.count && c.first < best.first) {
			best = c
		}
	}
	if best != nil {
		stats.MostCommon = append([]string(nil), best.steps...)
		stats.MostCommonCount = best.count
	}

	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}

func (s *Driver) newestFirst(limit int) []*storage.Execution {
	out := make([]*storage.Execution, 0, min(limit, len(s.executions)))
	for i := len(s.executions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyExecution(s.executions[i]))
	}
	return out
}

func copyExecution(e *storage.Execution) *storage.Execution {
	c := *e
	c.Steps = append([]string(nil), e.Steps...)
	return &c
}
