package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
)

// Repository exposes catalog persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, service *models.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	List(ctx context.Context, params listServicesParams) ([]models.Service, int64, error)
	Update(ctx context.Context, service *models.Service) error
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
}

type listServicesParams struct {
	Category        enums.ServiceCategory
	IncludeInactive bool
	Offset          int
	Limit           int
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listServicesParams) ([]models.Service, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Service{})
	if !params.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Service
	if err := query.Order("created_at DESC, id DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) Update(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *repositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
