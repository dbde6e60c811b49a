package models

import "time"

// DefaultGoalXPReward is granted when a goal is created without an explicit reward.
const DefaultGoalXPReward = 100

// Goal is either active or completed; completion is one-way.
type Goal struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category,omitempty"`
	CurrentValue int        `json:"current_value"`
	TargetValue  int        `json:"target_value"`
	Unit         string     `json:"unit,omitempty"`
	XPReward     int        `json:"xp_reward"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateGoalRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=2000"`
	Category    string     `json:"category" validate:"max=50"`
	TargetValue int        `json:"target_value" validate:"required,gt=0"`
	Unit        string     `json:"unit" validate:"max=30"`
	XPReward    *int       `json:"xp_reward" validate:"omitempty,gte=0,lte=100000"`
	Deadline    *time.Time `json:"deadline"`
}

type GoalProgressRequest struct {
	CurrentValue int `json:"current_value" validate:"gte=0"`
}

type GoalProgressResponse struct {
	Goal                 Goal     `json:"goal"`
	XPGained             int      `json:"xp_gained"`
	TotalXP              int64    `json:"total_xp"`
	Level                int      `json:"level"`
	AchievementsUnlocked []string `json:"achievements_unlocked"`
}
