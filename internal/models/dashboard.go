package models

// DayActivity mirrors rollup.DayBucket on the wire.
type DayActivity struct {
	Label           string `json:"label"`
	Date            string `json:"date"`
	TasksCompleted  int    `json:"tasks_completed"`
	LearningMinutes int    `json:"learning_minutes"`
	HabitsCompleted int    `json:"habits_completed"`
}

type DashboardSummary struct {
	TasksTotal           int `json:"tasks_total"`
	TasksCompleted       int `json:"tasks_completed"`
	HabitsTotal          int `json:"habits_total"`
	HabitsCompletedToday int `json:"habits_completed_today"`
	BestHabitStreak      int `json:"best_habit_streak"`
	LearningStreak       int `json:"learning_streak"`
	LearningMinutesWeek  int `json:"learning_minutes_week"`
	ActiveGoals          int `json:"active_goals"`
}

type DashboardResponse struct {
	Date     string           `json:"date"`
	Timezone string           `json:"timezone"`
	Week     []DayActivity    `json:"week"`
	Summary  DashboardSummary `json:"summary"`
	Progress LevelInfo        `json:"progress"`
}

type WeeklyInsight struct {
	Headline   string   `json:"headline"`
	Highlights []string `json:"highlights"`
	Suggestion string   `json:"suggestion"`
	Model      string   `json:"model"`
}
