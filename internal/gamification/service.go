package gamification

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/lifedash/backend/internal/database"
	"github.com/lifedash/backend/internal/metrics"
	"github.com/lifedash/backend/internal/models"
	"github.com/lifedash/backend/internal/streak"
)

const recentXPLimit = 10

// Repository is the persistence the ledger needs.
type Repository interface {
	CreditXP(ctx context.Context, q database.DBTX, userID int64, eventType string, amount int, metadata map[string]interface{}) (int64, error)
	UserXP(ctx context.Context, userID int64) (xp int64, level int, err error)
	SetLevel(ctx context.Context, userID int64, level int) error
	RecentXPEvents(ctx context.Context, userID int64, limit int) ([]models.XPEvent, error)
	EarnedAchievements(ctx context.Context, userID int64) ([]models.Achievement, error)
	AwardAchievement(ctx context.Context, userID int64, key string) (bool, error)
	ActivityTotals(ctx context.Context, userID int64) (models.ActivityTotals, []time.Time, error)
}

type Service struct {
	store  Repository
	engine *streak.Engine
	now    func() time.Time
}

func NewService(store Repository, engine *streak.Engine) *Service {
	return &Service{store: store, engine: engine, now: time.Now}
}

// ── XP ──────────────────────────────────────────────────

// CreditXP adds XP inside the caller's transaction and returns the new total.
// Metrics are left to the caller so a rolled-back credit is never counted.
func (s *Service) CreditXP(ctx context.Context, q database.DBTX, userID int64, source string, amount int, metadata map[string]interface{}) (int64, error) {
	if amount <= 0 {
		xp, _, err := s.store.UserXP(ctx, userID)
		return xp, err
	}
	return s.store.CreditXP(ctx, q, userID, source, amount, metadata)
}

// RecordAward counts committed XP.
func RecordAward(source string, amount int) {
	if amount > 0 {
		metrics.XPAwarded.WithLabelValues(source).Add(float64(amount))
	}
}

// Progress returns the level badge, correcting a drifted level column.
func (s *Service) Progress(ctx context.Context, userID int64) (models.LevelInfo, error) {
	xp, stored, err := s.store.UserXP(ctx, userID)
	if err != nil {
		return models.LevelInfo{}, err
	}

	if derived, drifted := ReconcileLevel(stored, xp); drifted {
		log.Printf("[gamification] level drift for user %d: stored=%d derived=%d xp=%d", userID, stored, derived, xp)
		if err := s.store.SetLevel(ctx, userID, derived); err != nil {
			log.Printf("[gamification] failed to correct level for user %d: %v", userID, err)
		}
	}
	return Level(xp), nil
}

// ── Achievements ────────────────────────────────────────

// CheckAndAward evaluates the user's lifetime totals and awards anything newly
// earned. It returns only the keys unlocked by this call.
func (s *Service) CheckAndAward(ctx context.Context, userID int64) ([]string, error) {
	totals, err := s.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}

	earned, err := s.store.EarnedAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(earned))
	for _, a := range earned {
		have[a.Achievement] = true
	}

	unlocked := []string{}
	for _, key := range CheckAchievements(totals) {
		if have[key] {
			continue
		}
		inserted, err := s.store.AwardAchievement(ctx, userID, key)
		if err != nil {
			log.Printf("[gamification] failed to award %s to user %d: %v", key, userID, err)
			continue
		}
		// a concurrent request may have inserted it first
		if inserted {
			unlocked = append(unlocked, key)
			metrics.AchievementsUnlocked.Inc()
		}
	}
	return unlocked, nil
}

// AwardAfter runs CheckAndAward for a caller that has already succeeded and
// should not fail because of it.
func (s *Service) AwardAfter(ctx context.Context, userID int64) []string {
	unlocked, err := s.CheckAndAward(ctx, userID)
	if err != nil {
		log.Printf("[gamification] achievement check for user %d: %v", userID, err)
		return []string{}
	}
	return unlocked
}

func (s *Service) Totals(ctx context.Context, userID int64) (models.ActivityTotals, error) {
	totals, learned, err := s.store.ActivityTotals(ctx, userID)
	if err != nil {
		return totals, fmt.Errorf("activity totals: %w", err)
	}
	totals.LearningStreak = s.engine.ConsecutiveDays(learned, s.now())
	return totals, nil
}

// ── Profile ─────────────────────────────────────────────

func (s *Service) GetProfile(ctx context.Context, userID int64) (*models.GamificationResponse, error) {
	info, err := s.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}

	earned, err := s.store.EarnedAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]models.AchievementEntry, 0, len(earned))
	for _, a := range earned {
		def, ok := Achievements[a.Achievement]
		if !ok {
			continue
		}
		entries = append(entries, models.AchievementEntry{
			Key:         a.Achievement,
			Name:        def.Name,
			Description: def.Description,
			EarnedAt:    a.EarnedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].EarnedAt.Before(entries[j].EarnedAt) })

	recent, err := s.store.RecentXPEvents(ctx, userID, recentXPLimit)
	if err != nil {
		return nil, err
	}

	return &models.GamificationResponse{
		LevelInfo:    info,
		Achievements: entries,
		RecentXP:     recent,
	}, nil
}
