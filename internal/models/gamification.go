package models

import "time"

// ── Core Gamification Structs ─────────────────────────────

type XPEvent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EventType string    `json:"event_type"`
	XPAmount  int       `json:"xp_amount"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Achievement struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Achievement string    `json:"achievement"`
	EarnedAt    time.Time `json:"earned_at"`
}

// XP event types.
const (
	XPEventLearning = "learning_complete"
	XPEventGoal     = "goal_complete"
)

// ActivityTotals feeds the achievement check. Each field is a lifetime figure.
type ActivityTotals struct {
	TotalXP              int64
	LongestHabitStreak   int
	LearningStreak       int
	LearningMinutesTotal int
	GoalsCompleted       int
}

// ── Response Types ────────────────────────────────────────

type LevelInfo struct {
	Level          int   `json:"level"`
	TotalXP        int64 `json:"total_xp"`
	XPIntoLevel    int64 `json:"xp_into_level"`
	XPForNextLevel int64 `json:"xp_for_next_level"`
}

type GamificationResponse struct {
	LevelInfo
	Achievements []AchievementEntry `json:"achievements"`
	RecentXP     []XPEvent          `json:"recent_xp"`
}

type AchievementEntry struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}
