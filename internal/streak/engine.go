// Package streak decides how a day's completion starts, extends, lapses or
// reverts a streak. Every function is pure: the caller supplies the subject
// and the current instant and persists whatever comes back.
package streak

import (
	"sort"
	"time"

	"github.com/lifedash/backend/internal/calendar"
)

// Subject is the streak-bearing part of a record such as a habit.
// LongestStreak >= CurrentStreak always holds, and LastCompletedAt is set
// whenever CompletedToday is true.
type Subject struct {
	CompletedToday  bool
	CurrentStreak   int
	LongestStreak   int
	LastCompletedAt *time.Time
}

type Engine struct {
	cal calendar.Calendar
}

func NewEngine(cal calendar.Calendar) *Engine {
	return &Engine{cal: cal}
}

// Calendar exposes the reference calendar so callers bucket days the same way.
func (e *Engine) Calendar() calendar.Calendar {
	return e.cal
}

// DailyReset lapses a subject whose completion belongs to an earlier day.
// A one-day gap keeps the streak alive; a longer gap zeroes it. The longest
// streak is never touched.
func (e *Engine) DailyReset(s Subject, now time.Time) Subject {
	if !s.CompletedToday {
		return s
	}

	today := e.cal.DayOf(now)
	lastDay, ok := e.cal.DayOfPtr(s.LastCompletedAt)
	if ok && lastDay.Equal(today) {
		return s
	}

	s.CompletedToday = false
	if !ok || today.Sub(lastDay) > 1 {
		s.CurrentStreak = 0
	}
	return s
}

// Expire zeroes the streak of a subject that is not completed today and whose
// last completion is two or more days old. A nil LastCompletedAt is left
// alone: undoing today's completion clears it while the streak is still live.
func (e *Engine) Expire(s Subject, now time.Time) Subject {
	if s.CompletedToday || s.CurrentStreak == 0 {
		return s
	}
	lastDay, ok := e.cal.DayOfPtr(s.LastCompletedAt)
	if !ok {
		return s
	}
	if e.cal.DayOf(now).Sub(lastDay) > 1 {
		s.CurrentStreak = 0
	}
	return s
}

// Toggle marks or unmarks completion for today. Marking then unmarking on the
// same day restores the original counters.
func (e *Engine) Toggle(s Subject, now time.Time) Subject {
	today := e.cal.DayOf(now)
	lastDay, ok := e.cal.DayOfPtr(s.LastCompletedAt)
	sameDay := ok && lastDay.Equal(today)

	if !s.CompletedToday {
		if !sameDay {
			s.CurrentStreak++
		}
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		completedAt := now
		s.LastCompletedAt = &completedAt
		s.CompletedToday = true
		return s
	}

	// Undo. A stale flag from another day must not cost the streak a day.
	if sameDay && s.CurrentStreak > 0 {
		s.CurrentStreak--
	}
	s.LastCompletedAt = nil
	s.CompletedToday = false
	return s
}

// ConsecutiveDays counts the unbroken run of calendar days, ending today, on
// which at least one event occurred. Several events on one day count once.
// No event today means no streak.
func (e *Engine) ConsecutiveDays(events []time.Time, now time.Time) int {
	if len(events) == 0 {
		return 0
	}

	sorted := make([]time.Time, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	expected := e.cal.DayOf(now)
	streak := 0
	for _, t := range sorted {
		day := e.cal.DayOf(t)
		switch {
		case day.Equal(expected):
			streak++
			expected = expected.AddDays(-1)
		case day.Equal(expected.AddDays(1)) && streak > 0:
			// Another event on the day just counted.
			continue
		case expected.Before(day):
			// Future-dated relative to the walk; skip it.
			continue
		default:
			return streak
		}
	}
	return streak
}
