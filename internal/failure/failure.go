// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package failure defines the error taxonomy of the journal club pipeline.
//
// Errors fall into two categories. A FatalError aborts the whole run: the
// listing could not be fetched, the selector failed, the channel does not
// exist, or the run was cancelled. An ItemError is confined to one paper:
// the batch runner reports it and moves on to the next candidate.
package failure

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrFetch             = errors.New("repository fetch failed")
	ErrNotFound          = errors.New("paper not found")
	ErrModelInvocation   = errors.New("model invocation failed")
	ErrRateLimited       = errors.New("model rate limited")
	ErrSchemaValidation  = errors.New("structured output does not match schema")
	ErrChannelResolution = errors.New("channel resolution failed")
)

// FetchError reports that the repository listing or a full text was unavailable.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Op, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NotFoundError reports an identifier the repository does not know.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("paper %s not found", e.ID) }
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || target == ErrFetch
}

// ModelInvocationError reports a failed model call.
type ModelInvocationError struct {
	Model      string
	StatusCode int
	Err        error
}

func (e *ModelInvocationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model %s: HTTP %d: %v", e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}
func (e *ModelInvocationError) Unwrap() error { return e.Err }
func (e *ModelInvocationError) Is(target error) bool {
	return target == ErrModelInvocation
}

// RateLimitError reports that the model endpoint refused the call with
// HTTP 429. Callers should back off; nothing in the pipeline retries.
type RateLimitError struct {
	Model string
	Err   error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("model %s rate limited: %v", e.Model, e.Err)
}
func (e *RateLimitError) Unwrap() error { return e.Err }
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited || target == ErrModelInvocation
}

// SchemaValidationError reports structured output that did not match the
// requested schema.
type SchemaValidationError struct {
	Schema string
	Err    error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("output does not match schema %s: %v", e.Schema, e.Err)
}
func (e *SchemaValidationError) Unwrap() error { return e.Err }
func (e *SchemaValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}

// ChannelResolutionError reports a channel name that could not be resolved.
type ChannelResolutionError struct {
	Channel string
	Err     error
}

func (e *ChannelResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("channel %q not found", e.Channel)
	}
	return fmt.Sprintf("resolving channel %q: %v", e.Channel, e.Err)
}
func (e *ChannelResolutionError) Unwrap() error { return e.Err }
func (e *ChannelResolutionError) Is(target error) bool {
	return target == ErrChannelResolution
}

// FatalError aborts the whole run.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// Fatal marks err as fatal for the run. It returns nil for a nil err.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return err
	}
	return &FatalError{Err: err}
}

// ItemError is a failure confined to one paper.
type ItemError struct {
	PaperID string
	Stage   string
	Err     error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.PaperID, e.Stage, e.Err)
}
func (e *ItemError) Unwrap() error { return e.Err }

// Item attaches the paper id and stage to err. It returns nil for a nil err.
func Item(paperID, stage string, err error) error {
	if err == nil {
		return nil
	}
	return &ItemError{PaperID: paperID, Stage: stage, Err: err}
}

// IsFatal reports whether err must abort the run rather than be recorded
// against a single paper. Cancellation and channel resolution failures are
// always fatal, even when wrapped in an ItemError. A deadline is not: a
// per-call timeout only fails the paper it belongs to.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return errors.Is(err, ErrChannelResolution)
}

// Message returns the message published for a failed paper: the underlying
// cause without the ItemError prefix.
func Message(err error) string {
	var ie *ItemError
	if errors.As(err, &ie) && ie.Err != nil {
		return ie.Err.Error()
	}
	return err.Error()
}
