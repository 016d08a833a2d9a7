package llm

import (
	"context"
	"sync"
)

// MockOracle is a configurable Oracle for tests.
type MockOracle struct {
	// GenerateJSONFunc is called when GenerateJSON is invoked.
	// If nil, returns "{}" and nil error.
	GenerateJSONFunc func(ctx context.Context, req *JSONRequest) (string, error)

	ProviderName string
	ModelName    string

	mu       sync.Mutex
	calls    int
	requests []*JSONRequest
}

// NewMockOracle creates a mock that always returns response.
func NewMockOracle(response string) *MockOracle {
	return &MockOracle{
		GenerateJSONFunc: func(context.Context, *JSONRequest) (string, error) {
			return response, nil
		},
	}
}

// GenerateJSON implements Oracle.
func (m *MockOracle) GenerateJSON(ctx context.Context, req *JSONRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, req)
	}
	return "{}", nil
}

// Provider implements Oracle.
func (m *MockOracle) Provider() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Model implements Oracle.
func (m *MockOracle) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Calls returns how many times GenerateJSON ran.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or nil.
func (m *MockOracle) LastRequest() *JSONRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

var _ Oracle = (*MockOracle)(nil)
