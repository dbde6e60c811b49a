package goals

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/lifedash/backend/internal/database"
	"github.com/lifedash/backend/internal/gamification"
	"github.com/lifedash/backend/internal/models"
)

type Repository interface {
	List(ctx context.Context, userID int64) ([]models.Goal, error)
	Create(ctx context.Context, userID int64, req models.CreateGoalRequest, reward int) (*models.Goal, error)
	Delete(ctx context.Context, userID, id int64) error
	LockGoal(ctx context.Context, q database.DBTX, userID, id int64) (*models.Goal, error)
	SaveProgress(ctx context.Context, q database.DBTX, g models.Goal, complete bool, at time.Time) (*models.Goal, bool, error)
}

// Ledger credits XP and awards achievements.
type Ledger interface {
	CreditXP(ctx context.Context, q database.DBTX, userID int64, source string, amount int, metadata map[string]interface{}) (int64, error)
	AwardAfter(ctx context.Context, userID int64) []string
}

type Service struct {
	store  Repository
	tx     database.Transactor
	ledger Ledger
	now    func() time.Time
}

func NewService(store Repository, tx database.Transactor, ledger Ledger) *Service {
	return &Service{store: store, tx: tx, ledger: ledger, now: time.Now}
}

func (s *Service) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	return s.store.List(ctx, userID)
}

func (s *Service) CreateGoal(ctx context.Context, userID int64, req models.CreateGoalRequest) (*models.Goal, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	reward := models.DefaultGoalXPReward
	if req.XPReward != nil {
		reward = *req.XPReward
	}
	return s.store.Create(ctx, userID, req, reward)
}

func (s *Service) DeleteGoal(ctx context.Context, userID, id int64) error {
	return s.store.Delete(ctx, userID, id)
}

// UpdateProgress records a new current value. Reaching the target completes
// the goal and credits its reward in the same transaction; later updates
// never pay again.
func (s *Service) UpdateProgress(ctx context.Context, userID, id int64, req models.GoalProgressRequest) (*models.GoalProgressResponse, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	var (
		saved    *models.Goal
		gained   int
		totalXP  int64
		newlyHit bool
	)
	err := s.tx.InTx(ctx, func(q database.DBTX) error {
		goal, err := s.store.LockGoal(ctx, q, userID, id)
		if err != nil {
			return err
		}

		tr := gamification.ApplyGoalProgress(*goal, req.CurrentValue)
		saved, newlyHit, err = s.store.SaveProgress(ctx, q, tr.Goal, tr.Completed, s.now())
		if err != nil {
			return err
		}
		if tr.Completed && !newlyHit {
			// completed by someone else between read and write
			tr.Goal.Completed = true
			saved, _, err = s.store.SaveProgress(ctx, q, tr.Goal, false, s.now())
			if err != nil {
				return err
			}
		}

		if newlyHit {
			gained = tr.XPGained
		}
		totalXP, err = s.ledger.CreditXP(ctx, q, userID, models.XPEventGoal, gained, map[string]interface{}{
			"goal_id": goal.ID,
			"target":  goal.TargetValue,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &models.GoalProgressResponse{
		Goal:                 *saved,
		XPGained:             gained,
		TotalXP:              totalXP,
		Level:                gamification.LevelForXP(totalXP),
		AchievementsUnlocked: []string{},
	}
	if newlyHit {
		gamification.RecordAward(models.XPEventGoal, gained)
		log.Printf("[goals] user %d completed goal %d (+%d XP)", userID, id, gained)
		resp.AchievementsUnlocked = s.ledger.AwardAfter(ctx, userID)
	}
	return resp, nil
}
