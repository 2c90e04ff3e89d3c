package extraction

import (
	"context"
	"sync"
)

// MockGateway is a Gateway for tests. ExtractFunc, when set, decides the
// answer; otherwise Result and Err are returned.
type MockGateway struct {
	ExtractFunc func(ctx context.Context, doc Document) (*Result, error)
	Result      *Result
	Err         error

	mu    sync.Mutex
	calls []Document
}

// Name identifies the gateway in logs.
func (m *MockGateway) Name() string {
	return "mock"
}

// Extract records the call and returns the configured answer.
func (m *MockGateway) Extract(ctx context.Context, doc Document) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, doc)
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, doc)
	}
	return m.Result, m.Err
}

// Calls returns the documents passed to Extract.
func (m *MockGateway) Calls() []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Document, len(m.calls))
	copy(out, m.calls)
	return out
}
