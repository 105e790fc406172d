package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned answer of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays canned responses in order and records every
// request in Calls. Once the queue is empty it answers with Fallback, or
// with ErrProviderUnavailable when Fallback is nil. Responses are not
// checked against the request schema.
type MockProvider struct {
	Fallback func(Request) MockResponse

	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider queues responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var (
		next MockResponse
		ok   = len(m.responses) > 0
	)
	if ok {
		next, m.responses = m.responses[0], m.responses[1:]
	}
	fallback := m.Fallback
	m.mu.Unlock()

	switch {
	case ok:
	case fallback != nil:
		next = fallback(req)
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Name() string { return string(ProviderMock) }

// AddResponse queues one more response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	m.responses = append(m.responses, resp)
	m.mu.Unlock()
}

// CallCount returns how many times Generate was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Pending returns how many queued responses are left.
func (m *MockProvider) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.responses)
}
