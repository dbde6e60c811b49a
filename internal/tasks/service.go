package tasks

import (
	"context"
	"strings"

	"github.com/lifedash/backend/internal/models"
)

type Repository interface {
	List(ctx context.Context, userID int64) ([]models.Task, error)
	Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, userID, id int64, req models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type Service struct {
	store Repository
}

func NewService(store Repository) *Service {
	return &Service{store: store}
}

func (s *Service) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.store.List(ctx, userID)
}

func (s *Service) CreateTask(ctx context.Context, userID int64, req models.CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, userID, req)
}

func (s *Service) UpdateTask(ctx context.Context, userID, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, userID, id, req)
}

func (s *Service) DeleteTask(ctx context.Context, userID, id int64) error {
	return s.store.Delete(ctx, userID, id)
}
