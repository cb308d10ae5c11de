package eventstream

import "context"

// Publisher publishes execution events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *ExecutionRecordedEvent) error
	Close() error
}
