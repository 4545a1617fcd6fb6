package repository

import (
	"context"
	"errors"

	"boutique/internal/domain/entity"
)

// ErrProductNotFound is returned when a catalog entry is not found.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the standard operations for catalog persistence.
type ProductRepository interface {
	// FindByID retrieves a single product.
	FindByID(ctx context.Context, id uint) (*entity.Product, error)

	// List retrieves the full catalog ordered by date added, newest first.
	List(ctx context.Context) ([]*entity.Product, error)

	// Search retrieves products whose type contains the given value,
	// case-insensitively, in the same order as List.
	Search(ctx context.Context, value string) ([]*entity.Product, error)

	// Create persists a new product and fills in its generated ID.
	Create(ctx context.Context, product *entity.Product) error

	// Update modifies an existing product.
	Update(ctx context.Context, product *entity.Product) error

	// Delete removes a product from the catalog.
	Delete(ctx context.Context, id uint) error
}
