package goals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifedash/backend/internal/auth"
	"github.com/lifedash/backend/internal/database"
	"github.com/lifedash/backend/internal/models"
)

type fakeStore struct {
	goals  map[int64]models.Goal
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{goals: map[int64]models.Goal{}}
}

func (f *fakeStore) List(_ context.Context, userID int64) ([]models.Goal, error) {
	out := []models.Goal{}
	for id := int64(1); id <= f.nextID; id++ {
		if g, ok := f.goals[id]; ok && g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, userID int64, req models.CreateGoalRequest, reward int) (*models.Goal, error) {
	f.nextID++
	g := models.Goal{ID: f.nextID, UserID: userID, Title: req.Title, TargetValue: req.TargetValue, XPReward: reward}
	f.goals[g.ID] = g
	return &g, nil
}

func (f *fakeStore) Delete(_ context.Context, userID, id int64) error {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return models.ErrNotFound
	}
	delete(f.goals, id)
	return nil
}

func (f *fakeStore) LockGoal(_ context.Context, _ database.DBTX, userID, id int64) (*models.Goal, error) {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return nil, models.ErrNotFound
	}
	return &g, nil
}

func (f *fakeStore) SaveProgress(_ context.Context, _ database.DBTX, g models.Goal, complete bool, at time.Time) (*models.Goal, bool, error) {
	cur := f.goals[g.ID]
	cur.CurrentValue = g.CurrentValue
	if complete {
		if cur.Completed {
			return nil, false, nil
		}
		cur.Completed = true
		cur.CompletedAt = &at
	}
	f.goals[g.ID] = cur
	return &cur, complete, nil
}

type fakeTx struct{}

func (fakeTx) InTx(_ context.Context, fn func(q database.DBTX) error) error { return fn(nil) }

type fakeLedger struct {
	xp     int64
	awards int
}

func (l *fakeLedger) CreditXP(_ context.Context, _ database.DBTX, _ int64, _ string, amount int, _ map[string]interface{}) (int64, error) {
	l.xp += int64(amount)
	return l.xp, nil
}

func (l *fakeLedger) AwardAfter(context.Context, int64) []string {
	l.awards++
	return []string{"goal_first"}
}

func TestCreateGoalDefaultReward(t *testing.T) {
	svc := NewService(newFakeStore(), fakeTx{}, &fakeLedger{})

	g, err := svc.CreateGoal(context.Background(), 1, models.CreateGoalRequest{Title: "Run 100km", TargetValue: 100})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGoalXPReward, g.XPReward)

	reward := 250
	g, err = svc.CreateGoal(context.Background(), 1, models.CreateGoalRequest{Title: "Read 12 books", TargetValue: 12, XPReward: &reward})
	require.NoError(t, err)
	assert.Equal(t, 250, g.XPReward)

	_, err = svc.CreateGoal(context.Background(), 1, models.CreateGoalRequest{Title: "Nothing", TargetValue: 0})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateProgressGrantsOnce(t *testing.T) {
	ledger := &fakeLedger{xp: 950}
	svc := NewService(newFakeStore(), fakeTx{}, ledger)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, 1, models.CreateGoalRequest{Title: "Ship", TargetValue: 10})
	require.NoError(t, err)

	resp, err := svc.UpdateProgress(ctx, 1, g.ID, models.GoalProgressRequest{CurrentValue: 4})
	require.NoError(t, err)
	assert.False(t, resp.Goal.Completed)
	assert.Zero(t, resp.XPGained)
	assert.Equal(t, int64(950), resp.TotalXP)

	resp, err = svc.UpdateProgress(ctx, 1, g.ID, models.GoalProgressRequest{CurrentValue: 10})
	require.NoError(t, err)
	assert.True(t, resp.Goal.Completed)
	assert.Equal(t, 100, resp.XPGained)
	assert.Equal(t, int64(1050), resp.TotalXP)
	assert.Equal(t, 2, resp.Level)
	assert.Equal(t, []string{"goal_first"}, resp.AchievementsUnlocked)

	resp, err = svc.UpdateProgress(ctx, 1, g.ID, models.GoalProgressRequest{CurrentValue: 15})
	require.NoError(t, err)
	assert.True(t, resp.Goal.Completed)
	assert.Equal(t, 15, resp.Goal.CurrentValue)
	assert.Zero(t, resp.XPGained)
	assert.Equal(t, int64(1050), ledger.xp)
	assert.Equal(t, 1, ledger.awards)
}

func TestUpdateProgressValidatesAndScopes(t *testing.T) {
	svc := NewService(newFakeStore(), fakeTx{}, &fakeLedger{})
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, 1, models.CreateGoalRequest{Title: "Ship", TargetValue: 10})
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, 1, g.ID, models.GoalProgressRequest{CurrentValue: -1})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UpdateProgress(ctx, 2, g.ID, models.GoalProgressRequest{CurrentValue: 3})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGoalHandlers(t *testing.T) {
	h := NewHandler(NewService(newFakeStore(), fakeTx{}, &fakeLedger{}))
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), 1)))
		})
	})
	r.HandleFunc("/goals", h.ListGoals).Methods("GET")
	r.HandleFunc("/goals", h.CreateGoal).Methods("POST")
	r.HandleFunc("/goals/{id}/progress", h.UpdateProgress).Methods("PUT")
	r.HandleFunc("/goals/{id}", h.DeleteGoal).Methods("DELETE")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/goals", strings.NewReader(`{"title":"Meditate","target_value":3}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/goals/1/progress", strings.NewReader(`{"current_value":3}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"xp_gained":100`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/goals/9/progress", strings.NewReader(`{"current_value":3}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/goals", nil))
	assert.Contains(t, rec.Body.String(), `"completed":true`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/goals/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
