// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/journal-club/internal/llm"
	"github.com/pdiddy/journal-club/pkg/types"
)

// Reply computes the content for one request, or an error.
type Reply func(req llm.Request) (string, error)

// Model records every request and answers with Reply. The response history
// follows the same rules as the real providers.
type Model struct {
	ModelName string
	Reply     Reply

	mu       sync.Mutex
	requests []llm.Request
}

// Text returns a Model that always answers text.
func Text(name, text string) *Model {
	return &Model{ModelName: name, Reply: func(llm.Request) (string, error) { return text, nil }}
}

// Failing returns a Model that always fails with err.
func Failing(name string, err error) *Model {
	return &Model{ModelName: name, Reply: func(llm.Request) (string, error) { return "", err }}
}

// Name implements llm.Model.
func (m *Model) Name() string {
	if m.ModelName == "" {
		return "llmtest"
	}
	return m.ModelName
}

// Call implements llm.Model.
func (m *Model) Call(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	if m.Reply == nil {
		return llm.Response{}, fmt.Errorf("llmtest: no reply configured")
	}
	content, err := m.Reply(req)
	if err != nil {
		return llm.Response{}, err
	}

	h := req.History
	if turns := h.Turns(); len(turns) == 0 || turns[0].Role != types.TurnSystem {
		h = types.NewHistory(types.Turn{Role: types.TurnSystem, Content: req.Instructions}).Append(h.Turns()...)
	}
	return llm.Response{
		Content: content,
		History: h.Append(types.Turn{Role: types.TurnAssistant, Content: content}),
	}, nil
}

// Requests returns the recorded requests in call order.
func (m *Model) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// Calls returns the number of recorded requests.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
