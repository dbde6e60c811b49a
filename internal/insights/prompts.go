package insights

import (
	"fmt"
	"strings"

	"github.com/lifedash/backend/internal/models"
)

func SystemPrompt() string {
	return `You are a supportive productivity coach reviewing one person's last seven days.
You receive daily counts of completed tasks, learning minutes and habits completed, plus
their current streaks and level. Be specific about the numbers, encouraging but honest,
and never invent activity that is not in the data.

Respond with a single JSON object and nothing else:
{
  "headline": "one sentence, at most 80 characters",
  "highlights": ["2 to 4 short observations grounded in the data"],
  "suggestion": "one concrete action for the coming week"
}`
}

// BuildUserPrompt renders the dashboard as a compact table the model can read.
func BuildUserPrompt(d models.DashboardResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week ending %s (%s)\n\n", d.Date, d.Timezone)
	b.WriteString("day | date | tasks done | learning min | habits done\n")
	for _, day := range d.Week {
		fmt.Fprintf(&b, "%s | %s | %d | %d | %d\n",
			day.Label, day.Date, day.TasksCompleted, day.LearningMinutes, day.HabitsCompleted)
	}

	s := d.Summary
	b.WriteString("\nCurrent state:\n")
	fmt.Fprintf(&b, "- tasks: %d of %d completed\n", s.TasksCompleted, s.TasksTotal)
	fmt.Fprintf(&b, "- habits completed today: %d of %d\n", s.HabitsCompletedToday, s.HabitsTotal)
	fmt.Fprintf(&b, "- best habit streak: %d days\n", s.BestHabitStreak)
	fmt.Fprintf(&b, "- learning streak: %d days, %d minutes this week\n", s.LearningStreak, s.LearningMinutesWeek)
	fmt.Fprintf(&b, "- active goals: %d\n", s.ActiveGoals)
	fmt.Fprintf(&b, "- level %d (%d XP, %d/%d into the level)\n",
		d.Progress.Level, d.Progress.TotalXP, d.Progress.XPIntoLevel, d.Progress.XPForNextLevel)
	return b.String()
}
