package models

import "time"

// Habit is a daily streak subject owned by a user.
type Habit struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Color           string     `json:"color,omitempty"`
	CompletedToday  bool       `json:"completed_today"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastCompletedAt *time.Time `json:"last_completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type CreateHabitRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Color       string `json:"color" validate:"omitempty,max=20"`
}

type UpdateHabitRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Color       *string `json:"color" validate:"omitempty,max=20"`
}

type ToggleHabitResponse struct {
	Habit                Habit    `json:"habit"`
	AchievementsUnlocked []string `json:"achievements_unlocked"`
}
