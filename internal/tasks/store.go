package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lifedash/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const taskColumns = `id, user_id, title, description, priority, completed, due_date, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Completed,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1
		 ORDER BY completed, due_date NULLS LAST, created_at DESC`,
		userID,
	)
}

// UpdatedSince lists tasks touched at or after since; the rollup reads
// completion days from updated_at.
func (s *Store) UpdatedSince(ctx context.Context, userID int64, since time.Time) ([]models.Task, error) {
	return s.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND updated_at >= $2
		 ORDER BY updated_at DESC`,
		userID, since,
	)
}

func (s *Store) Counts(ctx context.Context, userID int64) (total, completed int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks WHERE user_id = $1`,
		userID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, completed, nil
}

func (s *Store) query(ctx context.Context, q string, args ...interface{}) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, description, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+taskColumns,
		userID, req.Title, req.Description, req.Priority, req.DueDate,
	))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, userID, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx,
		`UPDATE tasks SET
		    title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    priority = COALESCE($5, priority),
		    completed = COALESCE($6, completed),
		    due_date = COALESCE($7, due_date),
		    updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		id, userID, req.Title, req.Description, req.Priority, req.Completed, req.DueDate,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
