// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntervalNonPositiveIsNone(t *testing.T) {
	assert.IsType(t, None{}, NewInterval(0))
	assert.IsType(t, None{}, NewInterval(-time.Second))
}

func TestIntervalSpacesCalls(t *testing.T) {
	p := NewInterval(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, p.Wait(ctx))
	}
	// The first Wait blocks too, so three calls take three intervals.
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestIntervalHonoursCancellation(t *testing.T) {
	p := NewInterval(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Wait(ctx))
}

func TestNone(t *testing.T) {
	assert.NoError(t, None{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, None{}.Wait(ctx), context.Canceled)
}
