// Package dashboard assembles the seven-day activity chart and the summary
// cards from the other domain services.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/lifedash/backend/internal/models"
	"github.com/lifedash/backend/internal/rollup"
	"github.com/lifedash/backend/internal/streak"
)

type TaskSource interface {
	UpdatedSince(ctx context.Context, userID int64, since time.Time) ([]models.Task, error)
	Counts(ctx context.Context, userID int64) (total, completed int, err error)
}

type LearningSource interface {
	LoggedSince(ctx context.Context, userID int64, since time.Time) ([]models.LearningEntry, error)
}

// HabitSource lists habits with day rollover already applied.
type HabitSource interface {
	ListHabits(ctx context.Context, userID int64) ([]models.Habit, error)
}

type GoalSource interface {
	CountActive(ctx context.Context, userID int64) (int, error)
}

type ProgressSource interface {
	Progress(ctx context.Context, userID int64) (models.LevelInfo, error)
	Totals(ctx context.Context, userID int64) (models.ActivityTotals, error)
}

type InsightWriter interface {
	WeeklyReview(ctx context.Context, d models.DashboardResponse) (*models.WeeklyInsight, error)
}

type Service struct {
	tasks    TaskSource
	learning LearningSource
	habits   HabitSource
	goals    GoalSource
	progress ProgressSource
	insights InsightWriter
	engine   *streak.Engine
	builder  *rollup.Builder
	now      func() time.Time
}

func NewService(tasks TaskSource, learning LearningSource, habits HabitSource, goals GoalSource,
	progress ProgressSource, insights InsightWriter, engine *streak.Engine) *Service {
	return &Service{
		tasks:    tasks,
		learning: learning,
		habits:   habits,
		goals:    goals,
		progress: progress,
		insights: insights,
		engine:   engine,
		builder:  rollup.NewBuilder(engine.Calendar()),
		now:      time.Now,
	}
}

func (s *Service) GetDashboard(ctx context.Context, userID int64) (*models.DashboardResponse, error) {
	now := s.now()
	cal := s.engine.Calendar()
	today := cal.DayOf(now)
	since := cal.StartOf(today.AddDays(-(rollup.WeekLength - 1)))

	tasks, err := s.tasks.UpdatedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	entries, err := s.learning.LoggedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load learning: %w", err)
	}
	habits, err := s.habits.ListHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load habits: %w", err)
	}

	week := s.builder.BuildWeek(
		rollup.TaskEvents(tasks),
		rollup.LearningEvents(entries),
		rollup.HabitEvents(habits),
		now,
	)

	summary := models.DashboardSummary{
		HabitsTotal:         len(habits),
		LearningMinutesWeek: rollup.Totals(week).LearningMinutes,
	}
	for _, h := range habits {
		if h.CompletedToday {
			summary.HabitsCompletedToday++
		}
		if h.CurrentStreak > summary.BestHabitStreak {
			summary.BestHabitStreak = h.CurrentStreak
		}
	}

	summary.TasksTotal, summary.TasksCompleted, err = s.tasks.Counts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	summary.ActiveGoals, err = s.goals.CountActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count goals: %w", err)
	}

	totals, err := s.progress.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.LearningStreak = totals.LearningStreak

	level, err := s.progress.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.DashboardResponse{
		Date:     today.String(),
		Timezone: cal.Location().String(),
		Week:     rollup.ToActivity(week),
		Summary:  summary,
		Progress: level,
	}, nil
}

func (s *Service) GetInsights(ctx context.Context, userID int64) (*models.WeeklyInsight, error) {
	d, err := s.GetDashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.insights.WeeklyReview(ctx, *d)
}
