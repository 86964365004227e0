// Package nop provides the publisher used when no event stream is configured.
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/mentor/pkg/eventstream"
)

// Publisher drops events after validating them. It counts what it accepted
// so tests can assert that memory writes emitted events.
type Publisher struct {
	accepted atomic.Int64
	closed   atomic.Bool
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, event *eventstream.MemoryEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.closed.Load() {
		return eventstream.ErrClosed
	}

	p.accepted.Add(1)
	return nil
}

// Accepted is the number of events published so far.
func (p *Publisher) Accepted() int64 {
	return p.accepted.Load()
}

func (p *Publisher) Close() error {
	p.closed.Store(true)
	return nil
}
