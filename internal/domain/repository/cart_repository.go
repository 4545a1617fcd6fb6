package repository

import (
	"context"
	"errors"

	"boutique/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for cart persistence.
var (
	// ErrCartNotFound is returned when a user has no cart.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound is returned when a line item is not found.
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository persists the cart aggregate. All reads hydrate line items
// with the current catalog unit price; the aggregate's derived total is
// recomputed by the caller before Save.
type CartRepository interface {
	// FindByUserID loads a user's cart with its items and live unit prices.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)

	// FindByItemID loads the cart owning the given line item, fully hydrated.
	FindByItemID(ctx context.Context, itemID uint) (*entity.Cart, error)

	// Create persists an empty cart for a user and fills in its generated ID.
	Create(ctx context.Context, cart *entity.Cart) error

	// Save upserts the cart row and its line items in one statement batch.
	// Items present in the aggregate are inserted or updated; it does not
	// delete rows (DeleteItem / ClearItems handle removal explicitly).
	Save(ctx context.Context, cart *entity.Cart) error

	// DeleteItem removes a single line item.
	DeleteItem(ctx context.Context, itemID uint) error

	// ClearItems removes every line item from a cart.
	ClearItems(ctx context.Context, cartID uint) error

	// SumQuantityByUserID computes the total quantity across a user's cart
	// directly in the store, without materializing line items.
	SumQuantityByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}
