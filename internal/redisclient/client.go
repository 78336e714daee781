package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/decrement_stock.lua
var decrementStockScript string

type Client struct {
	rdb             *redis.Client
	decrementScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:             rdb,
		decrementScript: redis.NewScript(decrementStockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// DecrementStock atomically decrements the inventory mirror for a product.
// Returns the mirrored quantity after the decrement, or ok=false when the
// product has no mirror entry (the database stays authoritative either way).
func (c *Client) DecrementStock(ctx context.Context, productID int64, by int) (int64, bool, error) {
	key := fmt.Sprintf("inventory:%d", productID)

	result, err := c.decrementScript.Run(ctx, c.rdb, []string{key}, by).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("decrement stock script failed: %w", err)
	}

	quantity, ok := result.(int64)
	if !ok {
		return 0, false, fmt.Errorf("unexpected script result type %T", result)
	}
	return quantity, true, nil
}

// InitInventory seeds the inventory mirror for a product
func (c *Client) InitInventory(ctx context.Context, productID int64, quantity int) error {
	key := fmt.Sprintf("inventory:%d", productID)
	return c.rdb.Set(ctx, key, quantity, 0).Err()
}

// GetInventory reads the mirrored quantity for a product
func (c *Client) GetInventory(ctx context.Context, productID int64) (int64, error) {
	key := fmt.Sprintf("inventory:%d", productID)
	return c.rdb.Get(ctx, key).Int64()
}

// AcquirePayLock takes the per-cart-entry lock guarding the pay workflow.
// Returns false when another pay for the same entry holds it.
func (c *Client) AcquirePayLock(ctx context.Context, cartEntryID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:pay:cart:%d", cartEntryID), "1", ttl).Result()
}

// ReleasePayLock releases the pay lock for a cart entry
func (c *Client) ReleasePayLock(ctx context.Context, cartEntryID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:pay:cart:%d", cartEntryID)).Err()
}
