package usecase

import (
	"context"

	"boutique/internal/domain/entity"
)

// ProductInput carries the catalog fields for create and update.
type ProductInput struct {
	Type        string  `json:"type" validate:"required"`
	Size        string  `json:"size" validate:"required"`
	Color       string  `json:"color" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Material    string  `json:"material"`
	Gender      string  `json:"gender"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
}

// ProductUsecase defines the interface for catalog operations. Reads are
// public; mutations are restricted to administrators at the delivery layer.
type ProductUsecase interface {
	// GetProduct returns a single catalog entry.
	GetProduct(ctx context.Context, id uint) (*entity.Product, error)

	// ListProducts returns the catalog, newest first. A non-empty
	// searchValue keeps only products whose type contains it.
	ListProducts(ctx context.Context, searchValue string) ([]*entity.Product, error)

	// CreateProduct adds a catalog entry.
	CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error)

	// UpdateProduct modifies a catalog entry. Carts holding the product see
	// the new price on their next read.
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*entity.Product, error)

	// DeleteProduct removes a catalog entry.
	DeleteProduct(ctx context.Context, id uint) error
}
