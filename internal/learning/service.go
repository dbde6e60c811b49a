package learning

import (
	"context"
	"strings"
	"time"

	"github.com/lifedash/backend/internal/database"
	"github.com/lifedash/backend/internal/gamification"
	"github.com/lifedash/backend/internal/models"
	"github.com/lifedash/backend/internal/streak"
)

type Repository interface {
	List(ctx context.Context, userID int64) ([]models.LearningEntry, error)
	Create(ctx context.Context, q database.DBTX, e models.LearningEntry) (*models.LearningEntry, error)
	LockEntry(ctx context.Context, q database.DBTX, userID, id int64) (*models.LearningEntry, error)
	MarkComplete(ctx context.Context, q database.DBTX, userID, id int64, xp int, at time.Time) (*models.LearningEntry, bool, error)
	Delete(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64) (*models.LearningStatsResponse, []time.Time, error)
}

type Ledger interface {
	CreditXP(ctx context.Context, q database.DBTX, userID int64, source string, amount int, metadata map[string]interface{}) (int64, error)
	AwardAfter(ctx context.Context, userID int64) []string
}

type Service struct {
	store  Repository
	tx     database.Transactor
	ledger Ledger
	engine *streak.Engine
	now    func() time.Time
}

func NewService(store Repository, tx database.Transactor, ledger Ledger, engine *streak.Engine) *Service {
	return &Service{store: store, tx: tx, ledger: ledger, engine: engine, now: time.Now}
}

func (s *Service) ListEntries(ctx context.Context, userID int64) ([]models.LearningEntry, error) {
	return s.store.List(ctx, userID)
}

// LogEntry stores a session. An entry logged as already completed earns its
// XP immediately.
func (s *Service) LogEntry(ctx context.Context, userID int64, req models.CreateLearningEntryRequest) (*models.LearningCompleteResponse, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Title = strings.TrimSpace(req.Title)
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	entry := models.LearningEntry{
		UserID:          userID,
		Subject:         req.Subject,
		Title:           req.Title,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		LoggedAt:        now,
	}
	if req.LoggedAt != nil {
		entry.LoggedAt = *req.LoggedAt
	}
	if req.Completed {
		entry.Completed = true
		entry.XPAwarded = gamification.XPForLearningSession(req.DurationMinutes)
		entry.CompletedAt = &now
	}

	var saved *models.LearningEntry
	var total int64
	err := s.tx.InTx(ctx, func(q database.DBTX) error {
		var err error
		saved, err = s.store.Create(ctx, q, entry)
		if err != nil {
			return err
		}
		total, err = s.ledger.CreditXP(ctx, q, userID, models.XPEventLearning, entry.XPAwarded, map[string]interface{}{
			"entry_id": saved.ID,
			"minutes":  saved.DurationMinutes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, userID, saved, entry.XPAwarded, total), nil
}

// Complete marks an entry completed and credits its XP. Completing an
// already completed entry succeeds without crediting again.
func (s *Service) Complete(ctx context.Context, userID, id int64) (*models.LearningCompleteResponse, error) {
	var saved *models.LearningEntry
	var gained int
	var total int64
	err := s.tx.InTx(ctx, func(q database.DBTX) error {
		entry, err := s.store.LockEntry(ctx, q, userID, id)
		if err != nil {
			return err
		}
		saved = entry
		if !entry.Completed {
			xp := gamification.XPForLearningSession(entry.DurationMinutes)
			done, ok, err := s.store.MarkComplete(ctx, q, userID, id, xp, s.now())
			if err != nil {
				return err
			}
			if ok {
				saved, gained = done, xp
			}
		}
		total, err = s.ledger.CreditXP(ctx, q, userID, models.XPEventLearning, gained, map[string]interface{}{
			"entry_id": id,
			"minutes":  saved.DurationMinutes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, userID, saved, gained, total), nil
}

func (s *Service) respond(ctx context.Context, userID int64, entry *models.LearningEntry, gained int, total int64) *models.LearningCompleteResponse {
	resp := &models.LearningCompleteResponse{
		Entry:                *entry,
		XPGained:             gained,
		TotalXP:              total,
		Level:                gamification.LevelForXP(total),
		AchievementsUnlocked: []string{},
	}
	gamification.RecordAward(models.XPEventLearning, gained)
	resp.AchievementsUnlocked = s.ledger.AwardAfter(ctx, userID)
	return resp
}

func (s *Service) DeleteEntry(ctx context.Context, userID, id int64) error {
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) Stats(ctx context.Context, userID int64) (*models.LearningStatsResponse, error) {
	stats, logged, err := s.store.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.CurrentStreak = s.engine.ConsecutiveDays(logged, s.now())
	return stats, nil
}
