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
	cartKeyPrefix = "Cart_"

	// cartSlidingTTL is the Redis key TTL, refreshed on every read.
	cartSlidingTTL = time.Minute
	// cartAbsoluteTTL bounds an entry's total lifetime regardless of reads.
	cartAbsoluteTTL = 5 * time.Minute
)

// cartEnvelope wraps the cached cart with its absolute deadline. Redis key
// expiry gives the sliding window; the deadline inside the value enforces the
// absolute one, since refreshing a key's TTL cannot know when it was written.
type cartEnvelope struct {
	Cart     *entity.Cart `json:"cart"`
	Deadline time.Time    `json:"deadline"`
}

// cartCache implements service.CartCache on Redis.
type cartCache struct {
	client *redis.Client
}

// NewCartCache is the constructor for cartCache.
func NewCartCache(client *redis.Client) service.CartCache {
	return &cartCache{client: client}
}

// Get returns the cached cart for a user, or (nil, nil) on a miss. A hit
// refreshes the sliding TTL, capped so the key never outlives the absolute
// deadline.
func (c *cartCache) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	payload, err := c.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "cart cache get")
	}

	var envelope cartEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		// A corrupt entry is treated as a miss; drop it so it cannot
		// poison later reads.
		c.client.Del(ctx, cartKey(userID))

		return nil, nil
	}

	remaining := time.Until(envelope.Deadline)
	if remaining <= 0 {
		c.client.Del(ctx, cartKey(userID))

		return nil, nil
	}

	ttl := cartSlidingTTL
	if remaining < ttl {
		ttl = remaining
	}
	// Best effort: a failed TTL refresh only shortens the entry's life.
	c.client.Expire(ctx, cartKey(userID), ttl)

	return envelope.Cart, nil
}

// Set stores a cart under the user's key with a fresh absolute deadline.
func (c *cartCache) Set(ctx context.Context, userID string, cart *entity.Cart) error {
	envelope := cartEnvelope{
		Cart:     cart,
		Deadline: time.Now().Add(cartAbsoluteTTL),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, "cart cache marshal")
	}

	if err := c.client.Set(ctx, cartKey(userID), payload, cartSlidingTTL).Err(); err != nil {
		return errors.Wrap(err, "cart cache set")
	}

	return nil
}

// Remove drops the cached cart for a user. Deleting an absent key is not an
// error, so Remove is safe to call unconditionally after any cart mutation.
func (c *cartCache) Remove(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return errors.Wrap(err, "cart cache remove")
	}

	return nil
}

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}
