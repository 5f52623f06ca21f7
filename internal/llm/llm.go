// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm invokes language models. A Model takes role instructions, a
// conversation history and an optional output schema, and returns the reply
// together with the extended history.
//
// Providers: OpenAI and Azure OpenAI through openai-go, Anthropic through the
// Messages API.
package llm

import (
	"context"

	"github.com/pdiddy/journal-club/pkg/types"
)

// Model is one configured model endpoint.
type Model interface {
	// Call sends one request to the model. It makes exactly one call unless
	// the endpoint was configured with provider-level retries.
	Call(ctx context.Context, req Request) (Response, error)

	// Name identifies the endpoint in logs and metrics (e.g. "azure:gpt-4o-mini").
	Name() string
}

// Request is one model call.
type Request struct {
	// Instructions is the system prompt of the invoking role.
	Instructions string

	// History is the conversation so far; its last turn is normally the
	// user turn being answered.
	History types.History

	// Schema, when set, requires a JSON reply conforming to it.
	Schema *Schema
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Response is the reply to a Request.
type Response struct {
	// Content is the assistant text. For structured requests it is the raw
	// JSON document.
	Content string

	// History is the request history with the assistant turn appended. A
	// leading system turn carrying the instructions is added when the
	// request history had none.
	History types.History

	Usage Usage
}

// conversation returns the turns sent after the system prompt. System turns
// inside the history belong to whichever role started it; the invoking role's
// instructions replace them on the wire.
func conversation(h types.History) []types.Turn {
	turns := h.Turns()
	out := turns[:0]
	for _, t := range turns {
		if t.Role == types.TurnSystem {
			continue
		}
		out = append(out, t)
	}
	return out
}

// respond builds the Response history for content.
func respond(req Request, content string, usage Usage) Response {
	h := req.History
	if first := h.Turns(); len(first) == 0 || first[0].Role != types.TurnSystem {
		h = types.NewHistory(types.Turn{Role: types.TurnSystem, Content: req.Instructions}).Append(h.Turns()...)
	}
	return Response{
		Content: content,
		History: h.Append(types.Turn{Role: types.TurnAssistant, Content: content}),
		Usage:   usage,
	}
}
