package learning

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

const entryColumns = `id, user_id, subject, title, notes, duration_minutes, completed,
	xp_awarded, logged_at, completed_at, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*models.LearningEntry, error) {
	var e models.LearningEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Subject, &e.Title, &e.Notes, &e.DurationMinutes, &e.Completed,
		&e.XPAwarded, &e.LoggedAt, &e.CompletedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) List(ctx context.Context, userID int64) ([]models.LearningEntry, error) {
	return s.query(ctx,
		`SELECT `+entryColumns+` FROM learning_entries WHERE user_id = $1 ORDER BY logged_at DESC, id DESC`,
		userID,
	)
}

func (s *Store) LoggedSince(ctx context.Context, userID int64, since time.Time) ([]models.LearningEntry, error) {
	return s.query(ctx,
		`SELECT `+entryColumns+` FROM learning_entries WHERE user_id = $1 AND logged_at >= $2
		 ORDER BY logged_at DESC`,
		userID, since,
	)
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]models.LearningEntry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list learning entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LearningEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan learning entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *Store) Create(ctx context.Context, q database.DBTX, e models.LearningEntry) (*models.LearningEntry, error) {
	saved, err := scanEntry(q.QueryRowContext(ctx,
		`INSERT INTO learning_entries
		    (user_id, subject, title, notes, duration_minutes, completed, xp_awarded, logged_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+entryColumns,
		e.UserID, e.Subject, e.Title, e.Notes, e.DurationMinutes, e.Completed, e.XPAwarded, e.LoggedAt, e.CompletedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create learning entry: %w", err)
	}
	return saved, nil
}

func (s *Store) LockEntry(ctx context.Context, q database.DBTX, userID, id int64) (*models.LearningEntry, error) {
	e, err := scanEntry(q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM learning_entries WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock learning entry: %w", err)
	}
	return e, nil
}

// MarkComplete flips an open entry to completed. It reports false if the
// entry was already completed.
func (s *Store) MarkComplete(ctx context.Context, q database.DBTX, userID, id int64, xp int, at time.Time) (*models.LearningEntry, bool, error) {
	e, err := scanEntry(q.QueryRowContext(ctx,
		`UPDATE learning_entries SET completed = TRUE, xp_awarded = $3, completed_at = $4
		 WHERE id = $1 AND user_id = $2 AND completed = FALSE
		 RETURNING `+entryColumns,
		id, userID, xp, at,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("complete learning entry: %w", err)
	}
	return e, true, nil
}

func (s *Store) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM learning_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete learning entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Stats returns the aggregate figures and every log time, newest first.
func (s *Store) Stats(ctx context.Context, userID int64) (*models.LearningStatsResponse, []time.Time, error) {
	stats := &models.LearningStatsResponse{MinutesBySubj: map[string]int{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0), COUNT(*), COUNT(*) FILTER (WHERE completed)
		 FROM learning_entries WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalMinutes, &stats.TotalEntries, &stats.CompletedCount)
	if err != nil {
		return nil, nil, fmt.Errorf("learning totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, SUM(duration_minutes) FROM learning_entries
		 WHERE user_id = $1 GROUP BY subject`,
		userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("learning by subject: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var subject string
		var minutes int
		if err := rows.Scan(&subject, &minutes); err != nil {
			return nil, nil, err
		}
		stats.MinutesBySubj[subject] = minutes
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	timeRows, err := s.db.QueryContext(ctx,
		`SELECT logged_at FROM learning_entries WHERE user_id = $1 ORDER BY logged_at DESC`,
		userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("learning days: %w", err)
	}
	defer timeRows.Close()

	var logged []time.Time
	for timeRows.Next() {
		var at time.Time
		if err := timeRows.Scan(&at); err != nil {
			return nil, nil, err
		}
		logged = append(logged, at)
	}
	return stats, logged, timeRows.Err()
}
