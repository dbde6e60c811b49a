package habits

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lifedash/backend/internal/metrics"
	"github.com/lifedash/backend/internal/models"
	"github.com/lifedash/backend/internal/streak"
)

const (
	maxSwapAttempts = 3
	sweepBatchSize  = 500
)

type Repository interface {
	List(ctx context.Context, userID int64) ([]models.Habit, error)
	Get(ctx context.Context, userID, id int64) (*models.Habit, error)
	Create(ctx context.Context, userID int64, req models.CreateHabitRequest) (*models.Habit, error)
	Update(ctx context.Context, userID, id int64, req models.UpdateHabitRequest) (*models.Habit, error)
	Delete(ctx context.Context, userID, id int64) error
	SwapStreak(ctx context.Context, prior models.Habit, next streak.Subject) (bool, error)
	ListLapseCandidates(ctx context.Context, todayStart, yesterdayStart time.Time, limit int) ([]models.Habit, error)
}

// Awarder grants achievements after a successful completion.
type Awarder interface {
	AwardAfter(ctx context.Context, userID int64) []string
}

type Service struct {
	store  Repository
	engine *streak.Engine
	awards Awarder
	now    func() time.Time
}

func NewService(store Repository, engine *streak.Engine, awards Awarder) *Service {
	return &Service{store: store, engine: engine, awards: awards, now: time.Now}
}

func subjectOf(h models.Habit) streak.Subject {
	return streak.Subject{
		CompletedToday:  h.CompletedToday,
		CurrentStreak:   h.CurrentStreak,
		LongestStreak:   h.LongestStreak,
		LastCompletedAt: h.LastCompletedAt,
	}
}

func withSubject(h models.Habit, s streak.Subject) models.Habit {
	h.CompletedToday = s.CompletedToday
	h.CurrentStreak = s.CurrentStreak
	h.LongestStreak = s.LongestStreak
	h.LastCompletedAt = s.LastCompletedAt
	return h
}

func sameSubject(a, b streak.Subject) bool {
	if a.CompletedToday != b.CompletedToday || a.CurrentStreak != b.CurrentStreak || a.LongestStreak != b.LongestStreak {
		return false
	}
	if a.LastCompletedAt == nil || b.LastCompletedAt == nil {
		return a.LastCompletedAt == nil && b.LastCompletedAt == nil
	}
	return a.LastCompletedAt.Equal(*b.LastCompletedAt)
}

func recordLapse(before, after streak.Subject) {
	if before.CompletedToday && !after.CompletedToday {
		metrics.StreakLapses.WithLabelValues("reset").Inc()
	}
	if before.CurrentStreak > 0 && after.CurrentStreak == 0 {
		metrics.StreakLapses.WithLabelValues("broken").Inc()
	}
}

// ── Queries ─────────────────────────────────────────────

// ListHabits returns the user's habits with day rollover applied and saved.
func (s *Service) ListHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	habits, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i, h := range habits {
		prior := subjectOf(h)
		next := s.engine.DailyReset(prior, now)
		if sameSubject(prior, next) {
			continue
		}

		ok, err := s.store.SwapStreak(ctx, h, next)
		if err != nil {
			return nil, err
		}
		if ok {
			recordLapse(prior, next)
			habits[i] = withSubject(h, next)
			continue
		}

		// Someone else wrote first; show what they wrote.
		metrics.CASRetries.WithLabelValues("habit").Inc()
		fresh, err := s.store.Get(ctx, userID, h.ID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		habits[i] = withSubject(*fresh, s.engine.DailyReset(subjectOf(*fresh), now))
	}
	return habits, nil
}

// ── Mutations ───────────────────────────────────────────

func (s *Service) CreateHabit(ctx context.Context, userID int64, req models.CreateHabitRequest) (*models.Habit, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, userID, req)
}

func (s *Service) UpdateHabit(ctx context.Context, userID, id int64, req models.UpdateHabitRequest) (*models.Habit, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, userID, id, req)
}

func (s *Service) DeleteHabit(ctx context.Context, userID, id int64) error {
	return s.store.Delete(ctx, userID, id)
}

// Toggle flips today's completion. The stored state is first rolled over to
// today so a lapsed streak is not extended, then written with a
// compare-and-swap that is retried against fresh state on conflict.
func (s *Service) Toggle(ctx context.Context, userID, id int64) (*models.ToggleHabitResponse, error) {
	for attempt := 1; attempt <= maxSwapAttempts; attempt++ {
		h, err := s.store.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}

		now := s.now()
		prior := subjectOf(*h)
		rolled := s.engine.Expire(s.engine.DailyReset(prior, now), now)
		next := s.engine.Toggle(rolled, now)

		ok, err := s.store.SwapStreak(ctx, *h, next)
		if err != nil {
			return nil, err
		}
		if !ok {
			metrics.CASRetries.WithLabelValues("habit").Inc()
			log.Printf("[habits] toggle conflict on habit %d (attempt %d)", id, attempt)
			continue
		}

		recordLapse(prior, rolled)
		updated := withSubject(*h, next)
		resp := &models.ToggleHabitResponse{Habit: updated, AchievementsUnlocked: []string{}}
		if next.CompletedToday {
			metrics.HabitToggles.WithLabelValues("mark").Inc()
			if s.awards != nil {
				resp.AchievementsUnlocked = s.awards.AwardAfter(ctx, userID)
			}
		} else {
			metrics.HabitToggles.WithLabelValues("undo").Inc()
		}
		return resp, nil
	}
	return nil, fmt.Errorf("toggle habit %d: %w", id, models.ErrConflict)
}

// ── Background Worker ───────────────────────────────────

// StartLapseWorker rolls stale habit state forward on every tick so streaks
// lapse for users who have not opened the app. It blocks until ctx is done.
func (s *Service) StartLapseWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[habits] Lapse worker started (every %s)", interval)
	s.sweepLapses(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[habits] Lapse worker shutting down")
			return
		case <-ticker.C:
			s.sweepLapses(ctx)
		}
	}
}

func (s *Service) sweepLapses(ctx context.Context) {
	n, err := s.SweepLapses(ctx)
	if err != nil {
		log.Printf("[habits] lapse sweep failed after %d updates: %v", n, err)
		return
	}
	if n > 0 {
		log.Printf("[habits] lapse sweep updated %d habits", n)
	}
}

// SweepLapses applies DailyReset and Expire to every stale habit and returns
// how many rows it rewrote. Rows that change concurrently are skipped; the
// next sweep or view picks them up.
func (s *Service) SweepLapses(ctx context.Context) (int, error) {
	now := s.now()
	cal := s.engine.Calendar()
	today := cal.DayOf(now)
	todayStart := cal.StartOf(today)
	yesterdayStart := cal.StartOf(today.AddDays(-1))

	updated := 0
	for {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		batch, err := s.store.ListLapseCandidates(ctx, todayStart, yesterdayStart, sweepBatchSize)
		if err != nil {
			return updated, err
		}

		wrote := 0
		for _, h := range batch {
			prior := subjectOf(h)
			next := s.engine.Expire(s.engine.DailyReset(prior, now), now)
			if sameSubject(prior, next) {
				continue
			}
			ok, err := s.store.SwapStreak(ctx, h, next)
			if err != nil {
				return updated, err
			}
			if !ok {
				metrics.CASRetries.WithLabelValues("habit").Inc()
				continue
			}
			recordLapse(prior, next)
			wrote++
		}
		updated += wrote

		if len(batch) < sweepBatchSize || wrote == 0 {
			return updated, nil
		}
	}
}
