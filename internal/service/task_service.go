package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
	"github.com/candemiralp/leadflow/internal/repository"
	"go.uber.org/zap"
)

// TaskService lets agents move their tasks through the
// ASSIGNED → IN_PROGRESS → COMPLETED lifecycle.
type TaskService struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, logger *zap.Logger) (*TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TaskService{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *TaskService) Start(ctx context.Context, id string) (*domain.Task, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: task id is required", domain.ErrValidation)
	}

	if err := s.tasks.Start(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, id)
}

func (s *TaskService) Complete(ctx context.Context, id string) (*domain.Task, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: task id is required", domain.ErrValidation)
	}

	if err := s.tasks.Complete(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, id)
}

func (s *TaskService) ListByAgent(ctx context.Context, agentID string, page, pageSize int) ([]domain.Task, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return nil, 0, fmt.Errorf("%w: agent id is required", domain.ErrValidation)
	}

	return s.tasks.ListByAgent(ctx, agentID, page, pageSize)
}
