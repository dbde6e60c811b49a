// Package rollup buckets dated activity into the trailing seven calendar days
// for the dashboard chart.
package rollup

import (
	"time"

	"github.com/lifedash/backend/internal/calendar"
)

// WeekLength is the number of buckets BuildWeek always returns.
const WeekLength = 7

// Event is one dated piece of activity. Magnitude is minutes for learning
// and 1 for tasks and habits. Completed only matters for task events.
type Event struct {
	OccurredAt time.Time
	Magnitude  int
	Completed  bool
}

// DayBucket is one chart row. LearningMinutes is in real minutes; any
// rescaling for display happens in the client.
type DayBucket struct {
	Label           string `json:"label"`
	Date            string `json:"date"`
	TasksCompleted  int    `json:"tasks_completed"`
	LearningMinutes int    `json:"learning_minutes"`
	HabitsCompleted int    `json:"habits_completed"`
}

type Builder struct {
	cal calendar.Calendar
}

func NewBuilder(cal calendar.Calendar) *Builder {
	return &Builder{cal: cal}
}

// BuildWeek returns the days now-6 .. now, oldest first. Output size does not
// depend on input size, and empty days report zeros.
func (b *Builder) BuildWeek(tasks, learning, habits []Event, now time.Time) []DayBucket {
	today := b.cal.DayOf(now)
	first := today.AddDays(-(WeekLength - 1))

	week := make([]DayBucket, WeekLength)
	for i := range week {
		d := first.AddDays(i)
		week[i] = DayBucket{Label: d.ShortName(), Date: d.String()}
	}

	slot := func(t time.Time) (int, bool) {
		i := b.cal.DayOf(t).Sub(first)
		return i, i >= 0 && i < WeekLength
	}

	for _, ev := range tasks {
		if !ev.Completed {
			continue
		}
		if i, ok := slot(ev.OccurredAt); ok {
			week[i].TasksCompleted++
		}
	}
	for _, ev := range learning {
		if i, ok := slot(ev.OccurredAt); ok {
			week[i].LearningMinutes += ev.Magnitude
		}
	}
	for _, ev := range habits {
		if i, ok := slot(ev.OccurredAt); ok {
			week[i].HabitsCompleted++
		}
	}

	return week
}

// Totals sums a week of buckets.
func Totals(week []DayBucket) DayBucket {
	var total DayBucket
	for _, b := range week {
		total.TasksCompleted += b.TasksCompleted
		total.LearningMinutes += b.LearningMinutes
		total.HabitsCompleted += b.HabitsCompleted
	}
	return total
}
