package model

import (
	"context"
	"sync"
)

// MockChatModel is a test implementation of ChatModel.
//
// It returns canned responses in order (repeating the last one when
// exhausted), records every call, and can inject errors. Safe for
// concurrent use.
//
// Example:
//
//	mock := &MockChatModel{Responses: []ChatOut{{Text: `{"ok":true}`}}}
//	out, _ := mock.Chat(ctx, ChatRequest{Messages: msgs})
type MockChatModel struct {
	// Responses is the sequence of responses to return.
	Responses []ChatOut

	// Err, if set, is returned by Chat instead of a response.
	Err error

	// Calls records every Chat invocation.
	Calls []ChatRequest

	mu        sync.Mutex
	callIndex int
}

// Chat implements the ChatModel interface.
func (m *MockChatModel) Chat(ctx context.Context, req ChatRequest) (ChatOut, error) {
	if ctx.Err() != nil {
		return ChatOut{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.Err != nil {
		return ChatOut{}, m.Err
	}
	if len(m.Responses) == 0 {
		return ChatOut{}, nil
	}

	resp := m.Responses[m.callIndex]
	if m.callIndex < len(m.Responses)-1 {
		m.callIndex++
	}
	return resp, nil
}

// CallCount returns how many times Chat has been invoked.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockEmbedder is a test implementation of Embedder. It returns Vector
// for every call (or Err when set) and records embedded texts.
type MockEmbedder struct {
	Vector []float32
	Err    error

	mu    sync.Mutex
	Texts []string
}

// Embed implements the Embedder interface.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Texts = append(m.Texts, text)
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]float32, len(m.Vector))
	copy(out, m.Vector)
	return out, nil
}
