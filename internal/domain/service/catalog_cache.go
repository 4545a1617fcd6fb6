package service

import (
	"context"

	"boutique/internal/domain/entity"
)

// CatalogCache caches catalog list reads, keyed by the search value ("" for
// the unfiltered list). Get returns (nil, nil) on a miss. Invalidate drops
// every catalog entry, filtered lists included, so a mutation can never leave
// a stale search result behind.
type CatalogCache interface {
	Get(ctx context.Context, searchValue string) ([]*entity.Product, error)
	Set(ctx context.Context, searchValue string, products []*entity.Product) error
	Invalidate(ctx context.Context) error
}
