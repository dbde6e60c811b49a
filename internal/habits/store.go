package habits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lifedash/backend/internal/models"
	"github.com/lifedash/backend/internal/streak"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const habitColumns = `id, user_id, name, description, color, completed_today,
	current_streak, longest_streak, last_completed_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanHabit(row scanner) (*models.Habit, error) {
	var h models.Habit
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Color, &h.CompletedToday,
		&h.CurrentStreak, &h.LongestStreak, &h.LastCompletedAt, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHabits(rows *sql.Rows) ([]models.Habit, error) {
	defer rows.Close()
	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

func (s *Store) List(ctx context.Context, userID int64) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return scanHabits(rows)
}

func (s *Store) Get(ctx context.Context, userID, id int64) (*models.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

func (s *Store) Create(ctx context.Context, userID int64, req models.CreateHabitRequest) (*models.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx,
		`INSERT INTO habits (user_id, name, description, color)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+habitColumns,
		userID, req.Name, req.Description, req.Color,
	))
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return h, nil
}

func (s *Store) Update(ctx context.Context, userID, id int64, req models.UpdateHabitRequest) (*models.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx,
		`UPDATE habits SET
		    name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    color = COALESCE($5, color),
		    updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+habitColumns,
		id, userID, req.Name, req.Description, req.Color,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return h, nil
}

func (s *Store) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SwapStreak writes next only if the row still holds prior's streak state.
// It reports false when another writer got there first.
func (s *Store) SwapStreak(ctx context.Context, prior models.Habit, next streak.Subject) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET
		    completed_today = $3, current_streak = $4, longest_streak = $5,
		    last_completed_at = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		   AND completed_today = $7 AND current_streak = $8 AND longest_streak = $9
		   AND last_completed_at IS NOT DISTINCT FROM $10`,
		prior.ID, prior.UserID,
		next.CompletedToday, next.CurrentStreak, next.LongestStreak, next.LastCompletedAt,
		prior.CompletedToday, prior.CurrentStreak, prior.LongestStreak, prior.LastCompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("swap habit streak: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListLapseCandidates returns habits across all users whose stored state may
// be stale: flagged complete before today, or carrying a streak whose last
// completion is older than yesterday.
func (s *Store) ListLapseCandidates(ctx context.Context, todayStart, yesterdayStart time.Time, limit int) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits
		 WHERE (completed_today AND last_completed_at < $1)
		    OR (NOT completed_today AND current_streak > 0 AND last_completed_at < $2)
		 ORDER BY id
		 LIMIT $3`,
		todayStart, yesterdayStart, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list lapse candidates: %w", err)
	}
	return scanHabits(rows)
}
