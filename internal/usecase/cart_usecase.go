package usecase

import (
	"context"

	"boutique/internal/domain/entity"

	"github.com/google/uuid"
)

// AddToCartInput adds a product to the caller's cart.
type AddToCartInput struct {
	UserID    uuid.UUID `json:"-"`
	ProductID uint      `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateQuantityInput replaces the quantity on one line item.
type UpdateQuantityInput struct {
	UserID   uuid.UUID `json:"-"`
	ItemID   uint      `json:"itemId" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// CartUsecase defines the interface for cart operations. The cart is the
// consistency boundary: every mutation recomputes line prices and the total
// from live catalog prices before persisting, then refreshes the cache.
type CartUsecase interface {
	// GetCart returns the caller's cart, from cache when fresh.
	GetCart(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)

	// AddItem adds a product to the cart, merging quantity into an existing
	// line for the same product.
	AddItem(ctx context.Context, input AddToCartInput) (*entity.Cart, error)

	// UpdateItemQuantity replaces the quantity on a line item.
	UpdateItemQuantity(ctx context.Context, input UpdateQuantityInput) (*entity.Cart, error)

	// RemoveItem deletes a line item.
	RemoveItem(ctx context.Context, userID uuid.UUID, itemID uint) (*entity.Cart, error)

	// ClearCart removes every line item.
	ClearCart(ctx context.Context, userID uuid.UUID) error

	// GetTotalQuantity returns the summed quantity across the cart, answered
	// from cache when possible and otherwise by a store-side aggregate.
	GetTotalQuantity(ctx context.Context, userID uuid.UUID) (int, error)
}
