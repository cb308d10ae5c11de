package testutils

import (
	"context"
	"sync"

	"github.com/aircode610/MouseTron/pkg/memory"
)

// MockMemoryDriver is a test memory driver that records calls and returns
// configurable results.
type MockMemoryDriver struct {
	mu sync.Mutex

	// Recorded accumulates every tool name list passed to RecordExecution.
	Recorded [][]string

	// Recommendations is returned by GenerateRecommendations.
	Recommendations *memory.Recommendations

	// RecordErr is returned by RecordExecution when set.
	RecordErr error

	// FailGenerate causes GenerateRecommendations to return an error.
	FailGenerate bool

	Closed bool
}

// NewMockMemoryDriver creates a new mock memory driver with empty lists.
func NewMockMemoryDriver() *MockMemoryDriver {
	return &MockMemoryDriver{
		Recorded: make([][]string, 0),
		Recommendations: &memory.Recommendations{
			Recent:  []memory.Item{},
			Stable:  []memory.Item{},
			Singles: []memory.Item{},
		},
	}
}

func (m *MockMemoryDriver) RecordExecution(_ context.Context, toolNames []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.Recorded = append(m.Recorded, append([]string(nil), toolNames...))
	return nil
}

func (m *MockMemoryDriver) GenerateRecommendations(_ context.Context) (*memory.Recommendations, error) {
	if m.FailGenerate {
		return nil, memory.ErrNotConfigured
	}
	return m.Recommendations, nil
}

func (m *MockMemoryDriver) Close() error {
	m.Closed = true
	return nil
}
