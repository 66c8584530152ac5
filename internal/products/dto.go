package products

import (
	"github.com/shopspring/decimal"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// CreateProductInput is the admin payload for a new catalog item.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category" validate:"required"`
	Price       string  `json:"price" validate:"required"`
	Unit        string  `json:"unit,omitempty"`
	ImagePath   *string `json:"image_path,omitempty"`
}

// UpdateProductInput carries partial catalog edits.
type UpdateProductInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Price       *string `json:"price,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	ImagePath   *string `json:"image_path,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ListFilters narrows the catalog listing.
type ListFilters struct {
	Category      *enums.ProductCategory
	IncludeHidden bool
}

func (in CreateProductInput) toModel(category enums.ProductCategory, price decimal.Decimal) *models.Product {
	unit := in.Unit
	if unit == "" {
		unit = "each"
	}
	return &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    category,
		Price:       price,
		Unit:        unit,
		ImagePath:   in.ImagePath,
		IsActive:    true,
	}
}
