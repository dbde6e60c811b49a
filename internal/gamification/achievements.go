package gamification

import "github.com/lifedash/backend/internal/models"

// AchievementDef defines a single achievement.
type AchievementDef struct {
	Name        string
	Description string
}

// Achievements maps achievement keys to their definitions.
var Achievements = map[string]AchievementDef{
	"habit_streak_3":    {Name: "Getting Started", Description: "Keep a habit for 3 days in a row"},
	"habit_streak_7":    {Name: "Week Warrior", Description: "Keep a habit for 7 days in a row"},
	"habit_streak_30":   {Name: "Monthly Master", Description: "Keep a habit for 30 days in a row"},
	"habit_streak_100":  {Name: "Centurion", Description: "Keep a habit for 100 days in a row"},
	"learning_streak_7": {Name: "Study Week", Description: "Log learning 7 days in a row"},
	"learning_10h":      {Name: "Apprentice", Description: "Log 10 hours of learning"},
	"learning_100h":     {Name: "Scholar", Description: "Log 100 hours of learning"},
	"goal_first":        {Name: "First Summit", Description: "Complete your first goal"},
	"goal_10":           {Name: "Goal Getter", Description: "Complete 10 goals"},
	"xp_1000":           {Name: "Rising Star", Description: "Earn 1,000 total XP"},
	"xp_10000":          {Name: "Powerhouse", Description: "Earn 10,000 total XP"},
}

// CheckAchievements returns achievement keys the user has qualified for given
// their lifetime totals. The caller is responsible for filtering out the ones
// already earned.
func CheckAchievements(t models.ActivityTotals) []string {
	var earned []string

	// Habit streak milestones
	for _, m := range []struct {
		min int
		key string
	}{{3, "habit_streak_3"}, {7, "habit_streak_7"}, {30, "habit_streak_30"}, {100, "habit_streak_100"}} {
		if t.LongestHabitStreak >= m.min {
			earned = append(earned, m.key)
		}
	}

	// Learning
	if t.LearningStreak >= 7 {
		earned = append(earned, "learning_streak_7")
	}
	if t.LearningMinutesTotal >= 10*60 {
		earned = append(earned, "learning_10h")
	}
	if t.LearningMinutesTotal >= 100*60 {
		earned = append(earned, "learning_100h")
	}

	// Goals
	if t.GoalsCompleted >= 1 {
		earned = append(earned, "goal_first")
	}
	if t.GoalsCompleted >= 10 {
		earned = append(earned, "goal_10")
	}

	// XP milestones
	if t.TotalXP >= 1000 {
		earned = append(earned, "xp_1000")
	}
	if t.TotalXP >= 10000 {
		earned = append(earned, "xp_10000")
	}

	return earned
}
