// Package eventstream publishes memory write events to an optional
// downstream stream.
package eventstream

import "context"

// Publisher publishes memory events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *MemoryEvent) error
	Close() error
}
