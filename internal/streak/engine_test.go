package streak

import (
	"testing"
	"time"

	"github.com/lifedash/backend/internal/calendar"
)

func newTestEngine() *Engine {
	return NewEngine(calendar.New(time.UTC))
}

func at(day, hour int) time.Time {
	return time.Date(2026, time.March, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestToggleScenario(t *testing.T) {
	e := newTestEngine()
	s := Subject{
		CompletedToday:  false,
		CurrentStreak:   3,
		LongestStreak:   5,
		LastCompletedAt: ptr(at(9, 10)),
	}

	marked := e.Toggle(s, at(10, 9))
	if marked.CurrentStreak != 4 || marked.LongestStreak != 5 || !marked.CompletedToday {
		t.Fatalf("after mark: %+v, want current=4 longest=5 completed", marked)
	}
	if marked.LastCompletedAt == nil || !marked.LastCompletedAt.Equal(at(10, 9)) {
		t.Fatalf("after mark: LastCompletedAt = %v", marked.LastCompletedAt)
	}

	unmarked := e.Toggle(marked, at(10, 11))
	if unmarked.CurrentStreak != 3 || unmarked.CompletedToday {
		t.Fatalf("after unmark: %+v, want current=3 not completed", unmarked)
	}
	if unmarked.LastCompletedAt != nil {
		t.Fatalf("after unmark: LastCompletedAt = %v, want nil", unmarked.LastCompletedAt)
	}
	if unmarked.LongestStreak != 5 {
		t.Fatalf("after unmark: LongestStreak = %d, want 5", unmarked.LongestStreak)
	}
}

func TestToggleTwiceSameDayRestoresCounters(t *testing.T) {
	e := newTestEngine()
	now := at(10, 8)

	subjects := []Subject{
		{},
		{CurrentStreak: 2, LongestStreak: 2, LastCompletedAt: ptr(at(9, 22))},
		{CurrentStreak: 7, LongestStreak: 12, LastCompletedAt: ptr(at(9, 1))},
		{CurrentStreak: 1, LongestStreak: 4},
	}

	for i, s := range subjects {
		got := e.Toggle(e.Toggle(s, now), now)
		if got.CurrentStreak != s.CurrentStreak {
			t.Errorf("case %d: CurrentStreak = %d, want %d", i, got.CurrentStreak, s.CurrentStreak)
		}
		if got.CompletedToday {
			t.Errorf("case %d: still completed", i)
		}
		if got.LastCompletedAt != nil {
			t.Errorf("case %d: LastCompletedAt = %v, want nil", i, got.LastCompletedAt)
		}
		// Longest may only grow when the mark produced a new best.
		if got.LongestStreak < s.LongestStreak {
			t.Errorf("case %d: LongestStreak shrank to %d", i, got.LongestStreak)
		}
	}
}

func TestToggleLongestStreakNeverDecreases(t *testing.T) {
	e := newTestEngine()
	s := Subject{}
	prev := s.LongestStreak

	// Mark every morning, and on odd days undo and redo in the evening.
	for day := 1; day <= 20; day++ {
		steps := []time.Time{at(day, 7)}
		if day%2 == 1 {
			steps = append(steps, at(day, 19), at(day, 20))
		}
		s = e.DailyReset(s, steps[0])
		for _, now := range steps {
			s = e.Toggle(s, now)
			if s.LongestStreak < prev {
				t.Fatalf("day %d: longest went %d -> %d", day, prev, s.LongestStreak)
			}
			if s.LongestStreak < s.CurrentStreak {
				t.Fatalf("day %d: longest %d < current %d", day, s.LongestStreak, s.CurrentStreak)
			}
			prev = s.LongestStreak
		}
	}

	if s.CurrentStreak != 20 || s.LongestStreak != 20 {
		t.Errorf("after 20 days: %+v, want 20/20", s)
	}
}

func TestToggleUndoOfStaleFlagKeepsStreak(t *testing.T) {
	e := newTestEngine()
	s := Subject{
		CompletedToday:  true,
		CurrentStreak:   6,
		LongestStreak:   6,
		LastCompletedAt: ptr(at(9, 20)),
	}

	got := e.Toggle(s, at(10, 9))
	if got.CurrentStreak != 6 {
		t.Errorf("CurrentStreak = %d, want 6", got.CurrentStreak)
	}
	if got.CompletedToday || got.LastCompletedAt != nil {
		t.Errorf("undo left completion state: %+v", got)
	}
}

func TestToggleMarkWhenAlreadyCompletedEarlierToday(t *testing.T) {
	e := newTestEngine()
	s := Subject{
		CurrentStreak:   2,
		LongestStreak:   3,
		LastCompletedAt: ptr(at(10, 6)),
	}

	got := e.Toggle(s, at(10, 9))
	if got.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", got.CurrentStreak)
	}
	if !got.CompletedToday {
		t.Error("expected completed")
	}
}

func TestToggleUndoNeverGoesNegative(t *testing.T) {
	e := newTestEngine()
	s := Subject{CompletedToday: true, LastCompletedAt: ptr(at(10, 6))}

	got := e.Toggle(s, at(10, 9))
	if got.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", got.CurrentStreak)
	}
}

func TestDailyReset(t *testing.T) {
	e := newTestEngine()
	now := at(10, 9)

	tests := []struct {
		name          string
		in            Subject
		wantCompleted bool
		wantCurrent   int
	}{
		{
			name:          "not completed is a no-op",
			in:            Subject{CurrentStreak: 4, LongestStreak: 4, LastCompletedAt: ptr(at(1, 9))},
			wantCompleted: false,
			wantCurrent:   4,
		},
		{
			name:          "completed today is a no-op",
			in:            Subject{CompletedToday: true, CurrentStreak: 4, LongestStreak: 4, LastCompletedAt: ptr(at(10, 0))},
			wantCompleted: true,
			wantCurrent:   4,
		},
		{
			name:          "completed yesterday keeps streak",
			in:            Subject{CompletedToday: true, CurrentStreak: 4, LongestStreak: 9, LastCompletedAt: ptr(at(9, 23))},
			wantCompleted: false,
			wantCurrent:   4,
		},
		{
			name:          "two days ago breaks streak",
			in:            Subject{CompletedToday: true, CurrentStreak: 4, LongestStreak: 9, LastCompletedAt: ptr(at(8, 12))},
			wantCompleted: false,
			wantCurrent:   0,
		},
		{
			name:          "a week ago breaks streak",
			in:            Subject{CompletedToday: true, CurrentStreak: 1, LongestStreak: 1, LastCompletedAt: ptr(at(3, 12))},
			wantCompleted: false,
			wantCurrent:   0,
		},
		{
			name:          "completed flag without timestamp counts as never",
			in:            Subject{CompletedToday: true, CurrentStreak: 2, LongestStreak: 2},
			wantCompleted: false,
			wantCurrent:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.DailyReset(tt.in, now)
			if got.CompletedToday != tt.wantCompleted {
				t.Errorf("CompletedToday = %v, want %v", got.CompletedToday, tt.wantCompleted)
			}
			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.LongestStreak != tt.in.LongestStreak {
				t.Errorf("LongestStreak changed: %d -> %d", tt.in.LongestStreak, got.LongestStreak)
			}
		})
	}
}

func TestDailyResetUsesCalendarDayNotRollingWindow(t *testing.T) {
	e := newTestEngine()
	// 23:59 yesterday to 00:01 today is two minutes but a new day.
	s := Subject{CompletedToday: true, CurrentStreak: 3, LongestStreak: 3, LastCompletedAt: ptr(time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC))}

	got := e.DailyReset(s, time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC))
	if got.CompletedToday {
		t.Error("expected lapse at midnight")
	}
	if got.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3", got.CurrentStreak)
	}
}

func TestDailyResetHonoursReferenceZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	e := NewEngine(calendar.New(la))

	// 2026-03-10 05:00 UTC is still 2026-03-09 in Los Angeles.
	last := time.Date(2026, 3, 10, 5, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	s := Subject{CompletedToday: true, CurrentStreak: 1, LongestStreak: 1, LastCompletedAt: &last}

	if got := e.DailyReset(s, now); !got.CompletedToday {
		t.Error("same local day should not lapse")
	}
}

func TestExpire(t *testing.T) {
	e := newTestEngine()
	now := at(10, 9)

	stale := Subject{CurrentStreak: 5, LongestStreak: 5, LastCompletedAt: ptr(at(7, 9))}
	if got := e.Expire(stale, now); got.CurrentStreak != 0 {
		t.Errorf("stale: CurrentStreak = %d, want 0", got.CurrentStreak)
	}

	alive := Subject{CurrentStreak: 5, LongestStreak: 5, LastCompletedAt: ptr(at(9, 9))}
	if got := e.Expire(alive, now); got.CurrentStreak != 5 {
		t.Errorf("alive: CurrentStreak = %d, want 5", got.CurrentStreak)
	}

	undone := Subject{CurrentStreak: 5, LongestStreak: 5}
	if got := e.Expire(undone, now); got.CurrentStreak != 5 {
		t.Errorf("undone: CurrentStreak = %d, want 5", got.CurrentStreak)
	}

	// Expire then Toggle starts a fresh streak instead of extending a dead one.
	if got := e.Toggle(e.Expire(stale, now), now); got.CurrentStreak != 1 || got.LongestStreak != 5 {
		t.Errorf("restart: %+v, want current=1 longest=5", got)
	}
}

func TestConsecutiveDays(t *testing.T) {
	e := newTestEngine()
	now := at(10, 12)

	tests := []struct {
		name   string
		events []time.Time
		want   int
	}{
		{"empty", nil, 0},
		{"gap on day two", []time.Time{at(10, 8), at(9, 8), at(7, 8)}, 2},
		{"nothing today", []time.Time{at(9, 8), at(8, 8), at(7, 8)}, 0},
		{"duplicates count once", []time.Time{at(10, 8), at(10, 9), at(9, 1), at(9, 23), at(8, 5)}, 3},
		{"unsorted input", []time.Time{at(8, 5), at(10, 8), at(9, 1)}, 3},
		{"only today", []time.Time{at(10, 0)}, 1},
		{"future events ignored", []time.Time{at(11, 8), at(10, 8), at(9, 8)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ConsecutiveDays(tt.events, now); got != tt.want {
				t.Errorf("ConsecutiveDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConsecutiveDaysDoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	events := []time.Time{at(8, 1), at(10, 1), at(9, 1)}
	e.ConsecutiveDays(events, at(10, 12))

	if !events[0].Equal(at(8, 1)) || !events[1].Equal(at(10, 1)) {
		t.Errorf("input reordered: %v", events)
	}
}
