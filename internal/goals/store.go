package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lifedash/backend/internal/database"
	"github.com/lifedash/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const goalColumns = `id, user_id, title, description, category, current_value, target_value,
	unit, xp_reward, completed, completed_at, deadline, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(row scanner) (*models.Goal, error) {
	var g models.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.CurrentValue, &g.TargetValue,
		&g.Unit, &g.XPReward, &g.Completed, &g.CompletedAt, &g.Deadline, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) List(ctx context.Context, userID int64) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1
		 ORDER BY completed, deadline NULLS LAST, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *Store) CountActive(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goals WHERE user_id = $1 AND NOT completed`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count goals: %w", err)
	}
	return n, nil
}

func (s *Store) Create(ctx context.Context, userID int64, req models.CreateGoalRequest, reward int) (*models.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx,
		`INSERT INTO goals (user_id, title, description, category, target_value, unit, xp_reward, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+goalColumns,
		userID, req.Title, req.Description, req.Category, req.TargetValue, req.Unit, reward, req.Deadline,
	))
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *Store) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// LockGoal reads a goal and holds its row lock until q's transaction ends.
func (s *Store) LockGoal(ctx context.Context, q database.DBTX, userID, id int64) (*models.Goal, error) {
	g, err := scanGoal(q.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock goal: %w", err)
	}
	return g, nil
}

// SaveProgress stores the goal's current value. With complete set it also
// flips the goal to completed, guarded so only one writer can do that; the
// bool reports whether this call was the one.
func (s *Store) SaveProgress(ctx context.Context, q database.DBTX, g models.Goal, complete bool, at time.Time) (*models.Goal, bool, error) {
	if !complete {
		saved, err := scanGoal(q.QueryRowContext(ctx,
			`UPDATE goals SET current_value = $3, updated_at = NOW()
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+goalColumns,
			g.ID, g.UserID, g.CurrentValue,
		))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, models.ErrNotFound
		}
		if err != nil {
			return nil, false, fmt.Errorf("save goal progress: %w", err)
		}
		return saved, false, nil
	}

	saved, err := scanGoal(q.QueryRowContext(ctx,
		`UPDATE goals SET current_value = $3, completed = TRUE, completed_at = $4, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND completed = FALSE
		 RETURNING `+goalColumns,
		g.ID, g.UserID, g.CurrentValue, at,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("complete goal: %w", err)
	}
	return saved, true, nil
}
