package models

import "time"

// LearningEntry is one logged study session. LoggedAt is the day the minutes
// count towards; XP is granted once, when the entry is completed.
type LearningEntry struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Subject         string     `json:"subject"`
	Title           string     `json:"title"`
	Notes           string     `json:"notes,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Completed       bool       `json:"completed"`
	XPAwarded       int        `json:"xp_awarded"`
	LoggedAt        time.Time  `json:"logged_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateLearningEntryRequest struct {
	Subject         string     `json:"subject" validate:"required,max=100"`
	Title           string     `json:"title" validate:"required,max=255"`
	Notes           string     `json:"notes" validate:"max=5000"`
	DurationMinutes int        `json:"duration_minutes" validate:"gte=0,lte=1440"`
	Completed       bool       `json:"completed"`
	LoggedAt        *time.Time `json:"logged_at"`
}

type LearningCompleteResponse struct {
	Entry                LearningEntry `json:"entry"`
	XPGained             int           `json:"xp_gained"`
	TotalXP              int64         `json:"total_xp"`
	Level                int           `json:"level"`
	AchievementsUnlocked []string      `json:"achievements_unlocked"`
}

type LearningStatsResponse struct {
	CurrentStreak  int            `json:"current_streak"`
	TotalMinutes   int            `json:"total_minutes"`
	TotalEntries   int            `json:"total_entries"`
	CompletedCount int            `json:"completed_count"`
	MinutesBySubj  map[string]int `json:"minutes_by_subject"`
}
