package testutils

import (
	"context"
	"sync"

	"github.com/aircode610/MouseTron/pkg/eventstream"
)

// RecordingPublisher collects published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ExecutionRecordedEvent

	// Err is returned by Publish when set.
	Err error
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(_ context.Context, event *eventstream.ExecutionRecordedEvent) error {
	if p.Err != nil {
		return p.Err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of published events.
func (p *RecordingPublisher) Events() []*eventstream.ExecutionRecordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.ExecutionRecordedEvent(nil), p.events...)
}

func (p *RecordingPublisher) Close() error {
	return nil
}
