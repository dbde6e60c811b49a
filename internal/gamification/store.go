package gamification

import (
	"context"
	"database/sql"
	"encoding/json"
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

// ── XP Operations ───────────────────────────────────────

// CreditXP adds amount to the user's lifetime XP, rewrites the stored level
// from the new total and logs an xp_events row. q may be a transaction.
func (s *Store) CreditXP(ctx context.Context, q database.DBTX, userID int64, eventType string, amount int, metadata map[string]interface{}) (int64, error) {
	var total int64
	err := q.QueryRowContext(ctx,
		`UPDATE users SET xp = xp + $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING xp`,
		userID, amount,
	).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("credit xp: %w", err)
	}

	if _, err := q.ExecContext(ctx, `UPDATE users SET level = $2 WHERE id = $1`, userID, LevelForXP(total)); err != nil {
		return 0, fmt.Errorf("update level: %w", err)
	}

	var metaJSON *string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			m := string(b)
			metaJSON = &m
		}
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO xp_events (user_id, event_type, xp_amount, metadata)
		 VALUES ($1, $2, $3, $4)`,
		userID, eventType, amount, metaJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("log xp event: %w", err)
	}
	return total, nil
}

func (s *Store) UserXP(ctx context.Context, userID int64) (int64, int, error) {
	var xp int64
	var level int
	err := s.db.QueryRowContext(ctx, `SELECT xp, level FROM users WHERE id = $1`, userID).Scan(&xp, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, models.ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get user xp: %w", err)
	}
	return xp, level, nil
}

func (s *Store) SetLevel(ctx context.Context, userID int64, level int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET level = $2, updated_at = NOW() WHERE id = $1`, userID, level)
	return err
}

func (s *Store) RecentXPEvents(ctx context.Context, userID int64, limit int) ([]models.XPEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_type, xp_amount, COALESCE(metadata::text, ''), created_at
		 FROM xp_events WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get xp events: %w", err)
	}
	defer rows.Close()

	events := []models.XPEvent{}
	for rows.Next() {
		var e models.XPEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.XPAmount, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan xp event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ── Achievements ────────────────────────────────────────

func (s *Store) EarnedAchievements(ctx context.Context, userID int64) ([]models.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, achievement, earned_at FROM achievements
		 WHERE user_id = $1 ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get achievements: %w", err)
	}
	defer rows.Close()

	var out []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Achievement, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AwardAchievement reports whether the row was newly inserted.
func (s *Store) AwardAchievement(ctx context.Context, userID int64, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO achievements (user_id, achievement) VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement) DO NOTHING`,
		userID, key,
	)
	if err != nil {
		return false, fmt.Errorf("award achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ActivityTotals gathers lifetime figures for the achievement check. The
// learning streak is left to the caller, which gets the raw log times.
func (s *Store) ActivityTotals(ctx context.Context, userID int64) (models.ActivityTotals, []time.Time, error) {
	var t models.ActivityTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT u.xp,
		        COALESCE((SELECT MAX(longest_streak) FROM habits WHERE user_id = u.id), 0),
		        COALESCE((SELECT SUM(duration_minutes) FROM learning_entries WHERE user_id = u.id), 0),
		        (SELECT COUNT(*) FROM goals WHERE user_id = u.id AND completed)
		 FROM users u WHERE u.id = $1`,
		userID,
	).Scan(&t.TotalXP, &t.LongestHabitStreak, &t.LearningMinutesTotal, &t.GoalsCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return t, nil, models.ErrNotFound
	}
	if err != nil {
		return t, nil, fmt.Errorf("activity totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT logged_at FROM learning_entries
		 WHERE user_id = $1 AND logged_at >= NOW() - INTERVAL '400 days'
		 ORDER BY logged_at DESC`,
		userID,
	)
	if err != nil {
		return t, nil, fmt.Errorf("learning days: %w", err)
	}
	defer rows.Close()

	var logged []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return t, nil, err
		}
		logged = append(logged, at)
	}
	return t, logged, rows.Err()
}
