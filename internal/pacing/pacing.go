// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pacing enforces minimum intervals between dependent external calls
// so the pipeline stays under the model and messaging rate limits.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates an external call. Wait blocks until the call may proceed or
// ctx is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Interval lets one call through per interval. The first Wait also blocks
// for a full interval, so the first call never bursts straight after
// whatever preceded the pacer's construction.
type Interval struct {
	limiter *rate.Limiter
	every   time.Duration
}

// NewInterval returns a pacer allowing one call every d. A non-positive d
// returns None.
func NewInterval(d time.Duration) Pacer {
	if d <= 0 {
		return None{}
	}
	l := rate.NewLimiter(rate.Every(d), 1)
	// Drain the initial token.
	l.Allow()
	return &Interval{limiter: l, every: d}
}

// Wait blocks until the next slot.
func (p *Interval) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Every returns the configured interval.
func (p *Interval) Every() time.Duration { return p.every }

// None never waits. It still honours cancellation.
type None struct{}

// Wait returns ctx.Err().
func (None) Wait(ctx context.Context) error { return ctx.Err() }
