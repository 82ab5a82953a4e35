package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/pagination"
)

// Service manages the laundry service catalog.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Service, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Service, error)
	Items(ctx context.Context, id uuid.UUID) ([]models.ServiceItem, error)
	Create(ctx context.Context, input CreateServiceInput) (*models.Service, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateServiceInput) (*models.Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires catalog dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Service, int64, error) {
	var category enums.ServiceCategory
	if filter.Category != "" {
		parsed, err := enums.ParseServiceCategory(filter.Category)
		if err != nil {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid service category").
				WithDetails(map[string]any{"category": filter.Category})
		}
		category = parsed
	}

	n := params.Normalize()
	rows, total, err := s.repo.List(ctx, listServicesParams{
		Category:        category,
		IncludeInactive: filter.IncludeInactive,
		Offset:          n.Offset(),
		Limit:           n.Limit,
	})
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	return rows, total, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return s.find(ctx, id)
}

// Items returns the price list. Inactive entries stay fetchable by id but
// are rejected here so clients cannot order against a retired service.
func (s *service) Items(ctx context.Context, id uuid.UUID) ([]models.ServiceItem, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service is no longer available")
	}
	return entry.Items, nil
}

func (s *service) Create(ctx context.Context, input CreateServiceInput) (*models.Service, error) {
	category, err := enums.ParseServiceCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service category").
			WithDetails(map[string]any{"category": input.Category})
	}
	if input.BasePrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	entry := &models.Service{
		Name:               input.Name,
		Description:        input.Description,
		Category:           category,
		BasePrice:          input.BasePrice,
		EstimatedTimeHours: input.EstimatedTimeHours,
		ImageURL:           input.ImageURL,
		Items:              itemsToModel(input.Items),
		IsActive:           true,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "service_id", entry.ID.String()), "catalog.service_created")
	}
	return entry, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateServiceInput) (*models.Service, error) {
	entry, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		entry.Name = *input.Name
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}
	if input.Category != nil {
		category, err := enums.ParseServiceCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service category").
				WithDetails(map[string]any{"category": *input.Category})
		}
		entry.Category = category
	}
	if input.BasePrice != nil {
		if input.BasePrice.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
		}
		entry.BasePrice = *input.BasePrice
	}
	if input.EstimatedTimeHours != nil {
		entry.EstimatedTimeHours = *input.EstimatedTimeHours
	}
	if input.ImageURL != nil {
		entry.ImageURL = input.ImageURL
	}
	if input.Items != nil {
		if len(input.Items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
		}
		if err := validateItems(input.Items); err != nil {
			return nil, err
		}
		entry.Items = itemsToModel(input.Items)
	}
	if input.IsActive != nil {
		entry.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service")
	}
	return entry, nil
}

// Delete deactivates the catalog entry. Rows stay in place so existing
// orders keep their service reference.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}
	deactivated, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate service")
	}
	if !deactivated {
		if _, err := s.find(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find service")
	}
	return entry, nil
}

func validateItems(items []ServiceItemInput) error {
	for _, item := range items {
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item prices cannot be negative").
				WithDetails(map[string]any{"item": item.Name})
		}
	}
	return nil
}
