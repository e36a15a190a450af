package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix matches the storage key the storefront has always
// used for persisted carts.
const DefaultKeyPrefix = "khavho_cart"

// RedisRepository persists each cart as a single JSON blob under
// "<prefix>:<cart id>". Carts never expire automatically, so entries
// are written without a TTL.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a redis-backed cart repository. An empty
// prefix selects DefaultKeyPrefix.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(cartID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, cartID)
}

// Load reads the persisted cart, returning (nil, nil) when none exists.
func (r *RedisRepository) Load(ctx context.Context, cartID string) (*Cart, error) {
	data, err := r.client.Get(ctx, r.key(cartID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", cartID, err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", cartID, err)
	}
	return &cart, nil
}

// Save writes the full cart, replacing any previous value.
func (r *RedisRepository) Save(ctx context.Context, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", cart.ID, err)
	}
	if err := r.client.Set(ctx, r.key(cart.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cart %s: %w", cart.ID, err)
	}
	return nil
}

// Delete removes the persisted cart. Deleting an absent cart is not an
// error.
func (r *RedisRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, r.key(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", cartID, err)
	}
	return nil
}
