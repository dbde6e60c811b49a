package rollup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifedash/backend/internal/calendar"
	"github.com/lifedash/backend/internal/models"
)

func day(d, h int) time.Time {
	return time.Date(2026, time.March, d, h, 0, 0, 0, time.UTC)
}

func TestBuildWeekShapeWithNoEvents(t *testing.T) {
	b := NewBuilder(calendar.New(time.UTC))

	for _, now := range []time.Time{day(1, 0), day(10, 23), day(31, 12)} {
		week := b.BuildWeek(nil, nil, nil, now)
		require.Len(t, week, WeekLength)

		for i, bucket := range week {
			assert.Zero(t, bucket.TasksCompleted)
			assert.Zero(t, bucket.LearningMinutes)
			assert.Zero(t, bucket.HabitsCompleted)
			if i > 0 {
				assert.Less(t, week[i-1].Date, bucket.Date, "buckets must be oldest first")
			}
		}
		assert.Equal(t, now.Format("2006-01-02"), week[WeekLength-1].Date)
	}
}

func TestBuildWeekBucketsEvents(t *testing.T) {
	b := NewBuilder(calendar.New(time.UTC))
	now := day(10, 18) // Tuesday

	tasks := []Event{
		{OccurredAt: day(10, 9), Magnitude: 1, Completed: true},
		{OccurredAt: day(10, 11), Magnitude: 1, Completed: true},
		{OccurredAt: day(10, 12), Magnitude: 1, Completed: false},
		{OccurredAt: day(4, 8), Magnitude: 1, Completed: true},
		{OccurredAt: day(3, 23), Magnitude: 1, Completed: true}, // outside window
	}
	learning := []Event{
		{OccurredAt: day(9, 7), Magnitude: 45},
		{OccurredAt: day(9, 20), Magnitude: 30},
		{OccurredAt: day(6, 20), Magnitude: 15},
		{OccurredAt: day(11, 1), Magnitude: 99}, // future
	}
	habits := []Event{
		{OccurredAt: day(10, 6), Magnitude: 1, Completed: true},
		{OccurredAt: day(10, 7), Magnitude: 1, Completed: true},
		{OccurredAt: day(8, 7), Magnitude: 1, Completed: true},
	}

	week := b.BuildWeek(tasks, learning, habits, now)
	require.Len(t, week, WeekLength)

	assert.Equal(t, "2026-03-04", week[0].Date)
	assert.Equal(t, "Wed", week[0].Label)
	assert.Equal(t, 1, week[0].TasksCompleted)

	assert.Equal(t, "2026-03-06", week[2].Date)
	assert.Equal(t, 15, week[2].LearningMinutes)

	assert.Equal(t, "2026-03-08", week[4].Date)
	assert.Equal(t, 1, week[4].HabitsCompleted)

	assert.Equal(t, "2026-03-09", week[5].Date)
	assert.Equal(t, 75, week[5].LearningMinutes)

	last := week[6]
	assert.Equal(t, "Tue", last.Label)
	assert.Equal(t, 2, last.TasksCompleted)
	assert.Equal(t, 2, last.HabitsCompleted)
	assert.Zero(t, last.LearningMinutes)

	total := Totals(week)
	assert.Equal(t, 3, total.TasksCompleted)
	assert.Equal(t, 90, total.LearningMinutes)
	assert.Equal(t, 3, total.HabitsCompleted)
}

func TestBuildWeekUsesReferenceZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	b := NewBuilder(calendar.New(tokyo))

	// 2026-03-09 16:00 UTC is 2026-03-10 01:00 in Tokyo.
	learning := []Event{{OccurredAt: time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC), Magnitude: 20}}
	week := b.BuildWeek(nil, learning, nil, time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-03-10", week[6].Date)
	assert.Equal(t, 20, week[6].LearningMinutes)
}

func TestEventMappers(t *testing.T) {
	completed := day(9, 8)
	habits := []models.Habit{
		{ID: 1, LastCompletedAt: &completed},
		{ID: 2},
	}
	assert.Len(t, HabitEvents(habits), 1)

	tasks := []models.Task{{Completed: true, UpdatedAt: day(9, 1)}, {Completed: false, UpdatedAt: day(9, 2)}}
	events := TaskEvents(tasks)
	require.Len(t, events, 2)
	assert.True(t, events[0].Completed)
	assert.False(t, events[1].Completed)

	entries := []models.LearningEntry{{DurationMinutes: 40, LoggedAt: day(9, 3)}}
	require.Len(t, LearningEvents(entries), 1)
	assert.Equal(t, 40, LearningEvents(entries)[0].Magnitude)

	act := ToActivity([]DayBucket{{Label: "Mon", Date: "2026-03-09", TasksCompleted: 2}})
	assert.Equal(t, 2, act[0].TasksCompleted)
}
