package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/laundryease/backend/pkg/db/models"
)

// ServiceItemInput is one priced garment type in a create or update payload.
type ServiceItemInput struct {
	Name  string          `json:"name" validate:"required,min=1,max=100"`
	Price decimal.Decimal `json:"price" validate:"required"`
}

// CreateServiceInput holds the fields for a new catalog entry.
type CreateServiceInput struct {
	Name               string             `json:"name" validate:"required,min=2,max=100"`
	Description        string             `json:"description" validate:"required,max=1000"`
	Category           string             `json:"category" validate:"required"`
	BasePrice          decimal.Decimal    `json:"basePrice" validate:"required"`
	EstimatedTimeHours int                `json:"estimatedTimeHours" validate:"required,gt=0"`
	ImageURL           *string            `json:"imageUrl" validate:"omitempty,url"`
	Items              []ServiceItemInput `json:"items" validate:"omitempty,dive"`
}

// UpdateServiceInput carries partial catalog updates. Nil means unchanged.
type UpdateServiceInput struct {
	Name               *string            `json:"name" validate:"omitempty,min=2,max=100"`
	Description        *string            `json:"description" validate:"omitempty,max=1000"`
	Category           *string            `json:"category"`
	BasePrice          *decimal.Decimal   `json:"basePrice"`
	EstimatedTimeHours *int               `json:"estimatedTimeHours" validate:"omitempty,gt=0"`
	ImageURL           *string            `json:"imageUrl" validate:"omitempty,url"`
	Items              []ServiceItemInput `json:"items" validate:"omitempty,dive"`
	IsActive           *bool              `json:"isActive"`
}

// ListFilter narrows a catalog listing.
type ListFilter struct {
	Category        string
	IncludeInactive bool
}

func itemsToModel(items []ServiceItemInput) []models.ServiceItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.ServiceItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.ServiceItem{Name: item.Name, Price: item.Price})
	}
	return out
}
