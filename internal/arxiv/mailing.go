// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"time"
	_ "time/tzdata"
)

// arXiv closes submissions at 14:00 US Eastern on weekdays and announces
// them at 20:00 the same evening, except that the batch closing on Friday is
// announced on Sunday. Holiday schedules are not modelled.
const (
	cutoffHour   = 14
	announceHour = 20
)

var eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// mailing is one announced batch: the papers submitted in [from, to).
type mailing struct {
	from      time.Time
	to        time.Time
	announced time.Time
}

func (m mailing) contains(t time.Time) bool {
	return !t.Before(m.from) && t.Before(m.to)
}

// latestMailing returns the most recent mailing announced at or before now.
func latestMailing(now time.Time) mailing {
	now = now.In(eastern)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, eastern)
	for ; ; day = day.AddDate(0, 0, -1) {
		if !weekday(day) {
			continue
		}
		if m := mailingClosing(day); !m.announced.After(now) {
			return m
		}
	}
}

// mailingClosing returns the mailing whose submission window closes on day.
func mailingClosing(day time.Time) mailing {
	prev := day.AddDate(0, 0, -1)
	for !weekday(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	announceDay := day
	if day.Weekday() == time.Friday {
		announceDay = day.AddDate(0, 0, 2)
	}
	return mailing{
		from:      at(prev, cutoffHour),
		to:        at(day, cutoffHour),
		announced: at(announceDay, announceHour),
	}
}

func at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, eastern)
}

func weekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
