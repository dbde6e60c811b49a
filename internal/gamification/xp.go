package gamification

import "github.com/lifedash/backend/internal/models"

const (
	// XPPerLevel is the flat XP span of every level.
	XPPerLevel = 1000

	// MinLearningXP is the floor granted for any completed learning session.
	MinLearningXP = 10
)

// XPForLearningSession returns max(10, floor(minutes/30*10)). Non-positive
// durations get the floor.
func XPForLearningSession(durationMinutes int) int {
	if durationMinutes <= 0 {
		return MinLearningXP
	}
	xp := durationMinutes * 10 / 30
	if xp < MinLearningXP {
		return MinLearningXP
	}
	return xp
}

// LevelForXP is the one canonical level formula: floor(xp/1000) + 1.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(xp/XPPerLevel) + 1
}

// LevelProgress returns how far into the current level xp is, out of span.
func LevelProgress(xp int64) (into, span int64) {
	if xp < 0 {
		return 0, XPPerLevel
	}
	return xp % XPPerLevel, XPPerLevel
}

// Level builds the level badge view for a total.
func Level(xp int64) models.LevelInfo {
	into, span := LevelProgress(xp)
	return models.LevelInfo{
		Level:          LevelForXP(xp),
		TotalXP:        xp,
		XPIntoLevel:    into,
		XPForNextLevel: span,
	}
}

// ReconcileLevel compares a stored level column against the derived one.
func ReconcileLevel(stored int, xp int64) (derived int, drifted bool) {
	derived = LevelForXP(xp)
	return derived, stored != derived
}

// GoalTransition is the outcome of reporting progress on a goal.
type GoalTransition struct {
	Goal      models.Goal
	Completed bool // true only on the active -> completed edge
	XPGained  int
}

// ApplyGoalProgress records a new value. The goal completes the first time the
// value reaches the target and grants its reward then; a completed goal keeps
// accepting values but never completes or pays again.
func ApplyGoalProgress(goal models.Goal, newValue int) GoalTransition {
	if newValue < 0 {
		newValue = 0
	}
	goal.CurrentValue = newValue

	if goal.Completed || goal.CurrentValue < goal.TargetValue {
		return GoalTransition{Goal: goal}
	}

	goal.Completed = true
	return GoalTransition{Goal: goal, Completed: true, XPGained: XPForGoal(goal)}
}

// XPForGoal is the stored reward; negative rewards pay nothing.
func XPForGoal(goal models.Goal) int {
	if goal.XPReward < 0 {
		return 0
	}
	return goal.XPReward
}
