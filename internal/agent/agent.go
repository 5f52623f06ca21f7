// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent binds journal club personas to model endpoints.
//
// An Agent is immutable and stateless: each Invoke makes exactly one model
// call and returns the output with a new conversation history. Histories
// are values; the caller decides which history a later agent sees.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/journal-club/internal/failure"
	"github.com/pdiddy/journal-club/internal/llm"
	"github.com/pdiddy/journal-club/internal/metrics"
	"github.com/pdiddy/journal-club/pkg/types"
)

// Agent is a Role bound to a Model, optionally with a required output schema.
type Agent struct {
	role    Role
	model   llm.Model
	schema  *llm.Schema
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithSchema requires structured output conforming to s.
func WithSchema(s *llm.Schema) Option {
	return func(a *Agent) { a.schema = s }
}

// WithMetrics records each invocation in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Agent) { a.log = log }
}

// New binds role to model.
func New(role Role, model llm.Model, opts ...Option) *Agent {
	a := &Agent{role: role, model: model, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With().Str("role", role.Name).Str("model", model.Name()).Logger()
	return a
}

// Role returns the bound role.
func (a *Agent) Role() Role { return a.role }

// Input is what an agent is invoked with: a conversation ending in the user
// turn to answer.
type Input struct {
	history types.History
}

// Prompt starts a new conversation with text as the only user turn.
func Prompt(text string) Input {
	return Input{history: types.NewHistory(types.Turn{Role: types.TurnUser, Content: text})}
}

// Continue extends h with a user turn. h itself is not modified.
func Continue(h types.History, text string) Input {
	return Input{history: h.Append(types.Turn{Role: types.TurnUser, Content: text})}
}

// History returns the conversation the agent will be invoked with.
func (in Input) History() types.History { return in.history }

// Output is the result of one invocation.
type Output struct {
	Text    string
	History types.History
}

// Invoke calls the model once. Failures are never retried here.
func (a *Agent) Invoke(ctx context.Context, in Input) (Output, error) {
	if in.history.Len() == 0 {
		return Output{}, errors.New("agent invoked with an empty conversation")
	}

	start := time.Now()
	resp, err := a.model.Call(ctx, llm.Request{
		Instructions: a.role.Instructions,
		History:      in.history,
		Schema:       a.schema,
	})
	elapsed := time.Since(start)
	a.metrics.ModelCall(a.role.Name, callStatus(err), elapsed, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if err != nil {
		a.log.Warn().Err(err).Dur("elapsed", elapsed).Msg("model call failed")
		return Output{}, err
	}

	a.log.Debug().
		Dur("elapsed", elapsed).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("model call")
	return Output{Text: resp.Content, History: resp.History}, nil
}

// InvokeInto calls the model once and decodes the structured reply into
// target. The agent must have been built with WithSchema.
func (a *Agent) InvokeInto(ctx context.Context, in Input, target any) (types.History, error) {
	if a.schema == nil {
		return types.History{}, fmt.Errorf("agent %s has no output schema", a.role.Name)
	}
	out, err := a.Invoke(ctx, in)
	if err != nil {
		return types.History{}, err
	}
	if err := a.schema.Decode(out.Text, target); err != nil {
		a.log.Warn().Err(err).Msg("structured output rejected")
		return types.History{}, err
	}
	return out.History, nil
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, failure.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}
