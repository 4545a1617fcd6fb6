package service

import (
	"context"

	"boutique/internal/domain/entity"
)

// CartCache is a read-through cache for cart aggregates, keyed by user.
//
// Get returns (nil, nil) on a miss; an error is reserved for transport
// failures. Set is best effort and callers may log-and-continue on failure,
// but Remove must be treated as durable: a cart mutation that cannot
// invalidate the cache must fail rather than leave a stale entry behind.
type CartCache interface {
	Get(ctx context.Context, userID string) (*entity.Cart, error)
	Set(ctx context.Context, userID string, cart *entity.Cart) error
	Remove(ctx context.Context, userID string) error
}
