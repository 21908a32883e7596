package repository

import (
	"context"
	"errors"

	"github.com/candemiralp/leadflow/internal/domain"
	"gorm.io/gorm"
)

// ListParams filters and pages distribution listings.
type ListParams struct {
	Status   *domain.DistributionStatus
	Page     int
	PageSize int
}

type DistributionRepository interface {
	Create(ctx context.Context, d *domain.Distribution) error
	GetByID(ctx context.Context, id string) (*domain.Distribution, error)
	List(ctx context.Context, params ListParams) ([]domain.Distribution, int64, error)
	Complete(ctx context.Context, id string, sum domain.Summary) error
	Fail(ctx context.Context, id string, reason string) error
}

type GormDistributionRepo struct {
	db *gorm.DB
}

func NewGormDistributionRepo(db *gorm.DB) *GormDistributionRepo {
	return &GormDistributionRepo{db: db}
}

func (r *GormDistributionRepo) Create(ctx context.Context, d *domain.Distribution) error {
	model := distributionModelFromDomain(d)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if d != nil {
		*d = *distributionModelToDomain(model)
	}
	return nil
}

func (r *GormDistributionRepo) GetByID(ctx context.Context, id string) (*domain.Distribution, error) {
	var model DistributionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return distributionModelToDomain(&model), nil
}

func (r *GormDistributionRepo) List(ctx context.Context, params ListParams) ([]domain.Distribution, int64, error) {
	query := r.db.WithContext(ctx).Model(&DistributionModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []DistributionModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	distributions := make([]domain.Distribution, 0, len(models))
	for i := range models {
		distributions = append(distributions, *distributionModelToDomain(&models[i]))
	}

	return distributions, total, nil
}

// Complete transitions a PROCESSING distribution to COMPLETED, persisting the
// allocation summary. The status guard on the update makes a second
// transition attempt visible as ErrConflict instead of silently overwriting a
// terminal state.
func (r *GormDistributionRepo) Complete(ctx context.Context, id string, sum domain.Summary) error {
	result := r.db.WithContext(ctx).
		Model(&DistributionModel{}).
		Where("id = ? AND status = ?", id, domain.DistributionStatusProcessing).
		Updates(map[string]any{
			"status":           domain.DistributionStatusCompleted,
			"agent_count":      sum.AgentCount,
			"items_per_agent":  sum.ItemsPerAgent,
			"remainder_items":  sum.RemainderItems,
			"processing_error": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionConflict(ctx, id)
	}
	return nil
}

// Fail transitions a PROCESSING distribution to FAILED with the fault text.
func (r *GormDistributionRepo) Fail(ctx context.Context, id string, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&DistributionModel{}).
		Where("id = ? AND status = ?", id, domain.DistributionStatusProcessing).
		Updates(map[string]any{
			"status":           domain.DistributionStatusFailed,
			"processing_error": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.transitionConflict(ctx, id)
	}
	return nil
}

func (r *GormDistributionRepo) transitionConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&DistributionModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}
