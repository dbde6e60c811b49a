package rollup

import "github.com/lifedash/backend/internal/models"

// TaskEvents uses UpdatedAt as the completion instant; tasks keep no
// separate completion timestamp.
func TaskEvents(tasks []models.Task) []Event {
	events := make([]Event, 0, len(tasks))
	for _, t := range tasks {
		events = append(events, Event{OccurredAt: t.UpdatedAt, Magnitude: 1, Completed: t.Completed})
	}
	return events
}

func LearningEvents(entries []models.LearningEntry) []Event {
	events := make([]Event, 0, len(entries))
	for _, e := range entries {
		events = append(events, Event{OccurredAt: e.LoggedAt, Magnitude: e.DurationMinutes, Completed: e.Completed})
	}
	return events
}

// HabitEvents yields one event per habit at its latest completion. Earlier
// completions are not retained, so older days undercount.
func HabitEvents(habits []models.Habit) []Event {
	events := make([]Event, 0, len(habits))
	for _, h := range habits {
		if h.LastCompletedAt == nil {
			continue
		}
		events = append(events, Event{OccurredAt: *h.LastCompletedAt, Magnitude: 1, Completed: true})
	}
	return events
}

// ToActivity converts buckets to their wire form.
func ToActivity(week []DayBucket) []models.DayActivity {
	out := make([]models.DayActivity, len(week))
	for i, b := range week {
		out[i] = models.DayActivity(b)
	}
	return out
}
