package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/candemiralp/leadflow/internal/domain"
	"gorm.io/gorm"
)

type AgentRepository interface {
	Create(ctx context.Context, a *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	ListActive(ctx context.Context) ([]domain.Agent, error)
}

type GormAgentRepo struct {
	db *gorm.DB
}

func NewGormAgentRepo(db *gorm.DB) *GormAgentRepo {
	return &GormAgentRepo{db: db}
}

func (r *GormAgentRepo) Create(ctx context.Context, a *domain.Agent) error {
	model := agentModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolationError(err) {
			return domain.ErrConflict
		}
		return err
	}
	if a != nil {
		*a = *agentModelToDomain(model)
	}
	return nil
}

func (r *GormAgentRepo) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	var model AgentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return agentModelToDomain(&model), nil
}

// ListActive returns the active agents ordered by enrollment time ascending,
// the snapshot a distribution pass allocates against.
func (r *GormAgentRepo) ListActive(ctx context.Context) ([]domain.Agent, error) {
	var models []AgentModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("enrolled_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	agents := make([]domain.Agent, 0, len(models))
	for i := range models {
		agents = append(agents, *agentModelToDomain(&models[i]))
	}

	return agents, nil
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
