package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifedash/backend/internal/auth"
	"github.com/lifedash/backend/internal/calendar"
	"github.com/lifedash/backend/internal/models"
	"github.com/lifedash/backend/internal/streak"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return testNow.Add(-time.Duration(n) * 24 * time.Hour) }

func ptr(t time.Time) *time.Time { return &t }

type fakeTasks struct {
	tasks []models.Task
	since time.Time
}

func (f *fakeTasks) UpdatedSince(_ context.Context, _ int64, since time.Time) ([]models.Task, error) {
	f.since = since
	var out []models.Task
	for _, t := range f.tasks {
		if !t.UpdatedAt.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) Counts(context.Context, int64) (int, int, error) {
	done := 0
	for _, t := range f.tasks {
		if t.Completed {
			done++
		}
	}
	return len(f.tasks), done, nil
}

type fakeLearning struct{ entries []models.LearningEntry }

func (f fakeLearning) LoggedSince(_ context.Context, _ int64, since time.Time) ([]models.LearningEntry, error) {
	var out []models.LearningEntry
	for _, e := range f.entries {
		if !e.LoggedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeHabits struct{ habits []models.Habit }

func (f fakeHabits) ListHabits(context.Context, int64) ([]models.Habit, error) { return f.habits, nil }

type fakeGoals struct{ active int }

func (f fakeGoals) CountActive(context.Context, int64) (int, error) { return f.active, nil }

type fakeProgress struct{}

func (fakeProgress) Progress(context.Context, int64) (models.LevelInfo, error) {
	return models.LevelInfo{Level: 2, TotalXP: 1250, XPIntoLevel: 250, XPForNextLevel: 1000}, nil
}

func (fakeProgress) Totals(context.Context, int64) (models.ActivityTotals, error) {
	return models.ActivityTotals{LearningStreak: 2}, nil
}

type fakeInsights struct{ err error }

func (f fakeInsights) WeeklyReview(_ context.Context, d models.DashboardResponse) (*models.WeeklyInsight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.WeeklyInsight{Headline: "Week of " + d.Date, Highlights: []string{"ok"}, Suggestion: "rest", Model: "mock"}, nil
}

func newTestService(tasks *fakeTasks, insights InsightWriter) *Service {
	svc := NewService(
		tasks,
		fakeLearning{entries: []models.LearningEntry{
			{LoggedAt: testNow, DurationMinutes: 30},
			{LoggedAt: daysAgo(1), DurationMinutes: 45},
			{LoggedAt: daysAgo(10), DurationMinutes: 120},
		}},
		fakeHabits{habits: []models.Habit{
			{CompletedToday: true, CurrentStreak: 4, LastCompletedAt: ptr(testNow)},
			{CurrentStreak: 6, LastCompletedAt: ptr(daysAgo(1))},
			{},
		}},
		fakeGoals{active: 2},
		fakeProgress{},
		insights,
		streak.NewEngine(calendar.New(time.UTC)),
	)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestGetDashboard(t *testing.T) {
	tasks := &fakeTasks{tasks: []models.Task{
		{Completed: true, UpdatedAt: testNow},
		{Completed: true, UpdatedAt: daysAgo(6)},
		{Completed: false, UpdatedAt: daysAgo(2)},
		{Completed: true, UpdatedAt: daysAgo(9)},
	}}
	svc := newTestService(tasks, fakeInsights{})

	d, err := svc.GetDashboard(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", d.Date)
	assert.Equal(t, "UTC", d.Timezone)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), tasks.since)

	require.Len(t, d.Week, 7)
	assert.Equal(t, "2026-03-04", d.Week[0].Date)
	assert.Equal(t, "Wed", d.Week[0].Label)
	assert.Equal(t, 1, d.Week[0].TasksCompleted)
	assert.Equal(t, "Tue", d.Week[6].Label)
	assert.Equal(t, 1, d.Week[6].TasksCompleted)
	assert.Equal(t, 30, d.Week[6].LearningMinutes)
	assert.Equal(t, 1, d.Week[6].HabitsCompleted)
	assert.Equal(t, 45, d.Week[5].LearningMinutes)
	assert.Equal(t, 1, d.Week[5].HabitsCompleted)
	assert.Zero(t, d.Week[4].TasksCompleted, "open tasks never count")

	assert.Equal(t, models.DashboardSummary{
		TasksTotal:           4,
		TasksCompleted:       3,
		HabitsTotal:          3,
		HabitsCompletedToday: 1,
		BestHabitStreak:      6,
		LearningStreak:       2,
		LearningMinutesWeek:  75,
		ActiveGoals:          2,
	}, d.Summary)
	assert.Equal(t, 2, d.Progress.Level)
}

func TestDashboardHandlers(t *testing.T) {
	h := NewHandler(newTestService(&fakeTasks{}, fakeInsights{}))

	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), 1))
	rec = httptest.NewRecorder()
	h.GetDashboard(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"week":[`)

	req = httptest.NewRequest(http.MethodGet, "/dashboard/insights", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), 1))
	rec = httptest.NewRecorder()
	h.GetInsights(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"headline":"Week of 2026-03-10"`)
}

func TestInsightsFailure(t *testing.T) {
	h := NewHandler(newTestService(&fakeTasks{}, fakeInsights{err: errors.New("upstream down")}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard/insights", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	h.GetInsights(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
