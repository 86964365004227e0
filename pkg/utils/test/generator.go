package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/papercomputeco/mentor/pkg/generation"
)

// MockGenerator returns queued responses in order. Once the queue is
// drained it answers with Default.
type MockGenerator struct {
	mu sync.Mutex

	Responses []string
	Default   string

	// Err fails every call.
	Err error

	// Delay is waited out before answering, honoring ctx.
	Delay time.Duration

	Prompts    []string
	LastParams generation.Params
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Default: "mock response"}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, p generation.Params) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.LastParams = p
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	if len(m.Responses) > 0 {
		resp := m.Responses[0]
		m.Responses = m.Responses[1:]
		return resp, nil
	}
	return m.Default, nil
}

// Calls returns the number of prompts received.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockGenerator) Close() error {
	return nil
}
