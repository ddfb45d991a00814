package process

import (
	"context"
	"sync"
)

// MockRunner is a Runner for tests. RunFunc decides the outcome of each call;
// when it is nil every command succeeds with empty output.
type MockRunner struct {
	RunFunc func(ctx context.Context, cmd Command) (*Result, error)

	mu    sync.Mutex
	calls []Command
}

func (m *MockRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return &Result{}, nil
}

// Calls returns a copy of every command received so far.
func (m *MockRunner) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.calls))
	copy(out, m.calls)
	return out
}
