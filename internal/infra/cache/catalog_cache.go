package cache

import (
	"context"
	"encoding/json"
	"time"

	"boutique/internal/domain/entity"
	"boutique/internal/domain/service"
	"boutique/internal/errors"

	"github.com/redis/go-redis/v9"
)

const (
	catalogAllKey       = "Clothes_All"
	catalogSearchPrefix = "Clothes_Search_"
	catalogKeyPattern   = "Clothes_*"

	catalogSlidingTTL  = time.Minute
	catalogAbsoluteTTL = 5 * time.Minute
)

// catalogEnvelope wraps a cached product list with its absolute deadline,
// the same dual-TTL scheme the cart cache uses.
type catalogEnvelope struct {
	Products []*entity.Product `json:"products"`
	Deadline time.Time         `json:"deadline"`
}

// catalogCache implements service.CatalogCache on Redis.
type catalogCache struct {
	client *redis.Client
}

// NewCatalogCache is the constructor for catalogCache.
func NewCatalogCache(client *redis.Client) service.CatalogCache {
	return &catalogCache{client: client}
}

// Get returns the cached list for a search value, or (nil, nil) on a miss.
func (c *catalogCache) Get(ctx context.Context, searchValue string) ([]*entity.Product, error) {
	key := catalogKey(searchValue)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "catalog cache get")
	}

	var envelope catalogEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.client.Del(ctx, key)

		return nil, nil
	}

	remaining := time.Until(envelope.Deadline)
	if remaining <= 0 {
		c.client.Del(ctx, key)

		return nil, nil
	}

	ttl := catalogSlidingTTL
	if remaining < ttl {
		ttl = remaining
	}
	c.client.Expire(ctx, key, ttl)

	return envelope.Products, nil
}

// Set stores a product list under the search value's key.
func (c *catalogCache) Set(ctx context.Context, searchValue string, products []*entity.Product) error {
	envelope := catalogEnvelope{
		Products: products,
		Deadline: time.Now().Add(catalogAbsoluteTTL),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, "catalog cache marshal")
	}

	if err := c.client.Set(ctx, catalogKey(searchValue), payload, catalogSlidingTTL).Err(); err != nil {
		return errors.Wrap(err, "catalog cache set")
	}

	return nil
}

// Invalidate drops every catalog key, the filtered lists included. A scan is
// needed because the set of live search keys is unbounded.
func (c *catalogCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, catalogKeyPattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "catalog cache invalidate")
		}
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "catalog cache scan")
	}

	return nil
}

func catalogKey(searchValue string) string {
	if searchValue == "" {
		return catalogAllKey
	}

	return catalogSearchPrefix + searchValue
}
