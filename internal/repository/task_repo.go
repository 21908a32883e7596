package repository

import (
	"context"
	"errors"
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
	"gorm.io/gorm"
)

// AgentTaskCount is one row of the per-agent status aggregation for a
// distribution.
type AgentTaskCount struct {
	AgentID   string            `gorm:"column:agent_id"`
	AgentName string            `gorm:"column:agent_name"`
	Status    domain.TaskStatus `gorm:"column:status"`
	Count     int               `gorm:"column:count"`
}

type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []*domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByAgent(ctx context.Context, agentID string, page, pageSize int) ([]domain.Task, int64, error)
	Start(ctx context.Context, id string, at time.Time) error
	Complete(ctx context.Context, id string, at time.Time) error
	CountByAgent(ctx context.Context, distributionID string) ([]AgentTaskCount, error)
}

type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

func (r *GormTaskRepo) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	models := make([]TaskModel, 0, len(tasks))
	modelIndexes := make([]int, 0, len(tasks))
	for i, t := range tasks {
		model := taskModelFromDomain(t)
		if model != nil {
			models = append(models, *model)
			modelIndexes = append(modelIndexes, i)
		}
	}

	if len(models) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).CreateInBatches(&models, 100).Error; err != nil {
		return err
	}

	for i := range models {
		idx := modelIndexes[i]
		if idx < len(tasks) && tasks[idx] != nil {
			*tasks[idx] = *taskModelToDomain(&models[i])
		}
	}

	return nil
}

func (r *GormTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var model TaskModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return taskModelToDomain(&model), nil
}

func (r *GormTaskRepo) ListByAgent(ctx context.Context, agentID string, page, pageSize int) ([]domain.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&TaskModel{}).Where("agent_id = ?", agentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = max(page, 1)
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []TaskModel
	err := query.
		Order("assigned_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	tasks := make([]domain.Task, 0, len(models))
	for i := range models {
		tasks = append(tasks, *taskModelToDomain(&models[i]))
	}

	return tasks, total, nil
}

// Start moves an ASSIGNED task to IN_PROGRESS. The status guard rejects
// repeated or out-of-order transitions with ErrConflict.
func (r *GormTaskRepo) Start(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ? AND status = ?", id, domain.TaskStatusAssigned).
		Updates(map[string]any{
			"status":     domain.TaskStatusInProgress,
			"started_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionConflict(ctx, id)
	}
	return nil
}

// Complete moves an IN_PROGRESS task to COMPLETED.
func (r *GormTaskRepo) Complete(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ? AND status = ?", id, domain.TaskStatusInProgress).
		Updates(map[string]any{
			"status":       domain.TaskStatusCompleted,
			"completed_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionConflict(ctx, id)
	}
	return nil
}

// CountByAgent aggregates task counts per agent and status for one
// distribution, ordered by agent enrollment time so summaries mirror the
// allocation order.
func (r *GormTaskRepo) CountByAgent(ctx context.Context, distributionID string) ([]AgentTaskCount, error) {
	var counts []AgentTaskCount
	err := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Select("tasks.agent_id, agents.name AS agent_name, tasks.status, COUNT(*) AS count").
		Joins("JOIN agents ON agents.id = tasks.agent_id").
		Where("tasks.distribution_id = ?", distributionID).
		Group("tasks.agent_id, agents.name, agents.enrolled_at, tasks.status").
		Order("agents.enrolled_at ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormTaskRepo) transitionConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}
