package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/mentor/pkg/eventstream"
)

// MockPublisher records published memory events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []*eventstream.MemoryEvent

	// Err fails every publish after recording the event.
	Err error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.MemoryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Events = append(m.Events, event)
	return m.Err
}

// Types returns the event types published so far, in order.
func (m *MockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.EventType
	}
	return types
}

func (m *MockPublisher) Close() error {
	return nil
}
