// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func est(day, hour int) time.Time {
	return time.Date(2025, 1, day, hour, 0, 0, 0, eastern)
}

func TestLatestMailing(t *testing.T) {
	// January 2025: Wed 1, Thu 2, Fri 3, Sat 4, Sun 5, Mon 6.
	tests := []struct {
		name      string
		now       time.Time
		from, to  time.Time
		announced time.Time
	}{
		{name: "thursday evening", now: est(2, 21), from: est(1, 14), to: est(2, 14), announced: est(2, 20)},
		{name: "thursday morning", now: est(2, 10), from: time.Date(2024, 12, 31, 14, 0, 0, 0, eastern), to: est(1, 14), announced: est(1, 20)},
		{name: "at announcement", now: est(2, 20), from: est(1, 14), to: est(2, 14), announced: est(2, 20)},
		{name: "friday evening", now: est(3, 21), from: est(1, 14), to: est(2, 14), announced: est(2, 20)},
		{name: "saturday", now: est(4, 12), from: est(1, 14), to: est(2, 14), announced: est(2, 20)},
		{name: "sunday evening", now: est(5, 21), from: est(2, 14), to: est(3, 14), announced: est(5, 20)},
		{name: "monday morning", now: est(6, 9), from: est(2, 14), to: est(3, 14), announced: est(5, 20)},
		{name: "monday evening", now: est(6, 21), from: est(3, 14), to: est(6, 14), announced: est(6, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := latestMailing(tt.now.UTC())
			assert.True(t, tt.from.Equal(m.from), "from %s", m.from)
			assert.True(t, tt.to.Equal(m.to), "to %s", m.to)
			assert.True(t, tt.announced.Equal(m.announced), "announced %s", m.announced)
		})
	}
}

func TestMailingContains(t *testing.T) {
	m := mailingClosing(est(2, 0))
	assert.True(t, m.contains(est(1, 14)))
	assert.True(t, m.contains(est(2, 13)))
	assert.False(t, m.contains(est(2, 14)))
	assert.False(t, m.contains(est(1, 13)))
}

func TestMailingAcrossDaylightSaving(t *testing.T) {
	// DST starts Sunday 2025-03-09; Monday's cutoff is 14:00 EDT (18:00 UTC).
	m := latestMailing(time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 7, 19, 0, 0, 0, time.UTC), m.from.UTC())
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), m.to.UTC())
}
