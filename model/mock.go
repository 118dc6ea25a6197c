package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a scripted in-memory Model useful for tests & examples.
//
// Replies are consumed in FIFO order. When the queue is empty the handler is
// consulted; without a handler the model echoes the last user message.
type MockModel struct {
	info Info

	mu       sync.Mutex
	queue    []mockReply
	handler  func(Request) (string, error)
	requests []Request
}

type mockReply struct {
	text string
	err  error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: provider},
	}
}

// AddResponse queues a canned completion.
func (m *MockModel) AddResponse(text string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{text: text})
	return m
}

// AddError queues a failing call.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockReply{err: err})
	return m
}

// SetHandler installs a fallback used once the queue is drained.
func (m *MockModel) SetHandler(fn func(Request) (string, error)) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
	return m
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Generate invocations.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockModel) next(req Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return r.text, r.err
	}
	h := m.handler
	m.mu.Unlock()

	if h != nil {
		return h(req)
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	return fmt.Sprintf("Mock response to: %s", req.LastUserText()), nil
}

// Generate implements Model; emits optional streaming rune chunks then the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}
		full, err := m.next(req)
		if err != nil {
			errCh <- err
			return
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Text: full, FinishReason: "stop"}:
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
