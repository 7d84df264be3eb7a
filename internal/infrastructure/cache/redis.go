// Package cache implementa la caché de lectura del stock actual sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/pkg/config"
)

var _ inventory.StockCache = (*RedisStockCache)(nil)

// NewRedisClient abre el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr(), err)
	}
	return rdb, nil
}

// setIfNewer guarda {v, q} en el hash si la versión cacheada es menor (o la clave no existe).
// ARGV: versión, cantidad, TTL en ms (0 = sin expiración).
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'q', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// RedisStockCache guarda el stock actual por tienda y producto con TTL.
// Cada clave es un hash {v: versión del balance, q: cantidad}.
type RedisStockCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStockCache construye la caché. ttl <= 0 deja las claves sin expiración.
func NewRedisStockCache(rdb *redis.Client, ttl time.Duration) *RedisStockCache {
	return &RedisStockCache{rdb: rdb, ttl: ttl}
}

func stockKey(productID, storeID string) string {
	return "stock:" + storeID + ":" + productID
}

// Get devuelve ok=false si la clave no existe.
func (c *RedisStockCache) Get(ctx context.Context, productID, storeID string) (int, bool, error) {
	qty, err := c.rdb.HGet(ctx, stockKey(productID, storeID), "q").Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis hget: %w", err)
	}
	return qty, true, nil
}

// Set escribe la cantidad si version supera la cacheada (ver inventory.StockCache).
func (c *RedisStockCache) Set(ctx context.Context, productID, storeID string, version int64, qty int) error {
	ttl := int64(0)
	if c.ttl > 0 {
		ttl = c.ttl.Milliseconds()
	}
	err := setIfNewer.Run(ctx, c.rdb, []string{stockKey(productID, storeID)}, version, qty, ttl).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis set stock: %w", err)
	}
	return nil
}

func (c *RedisStockCache) Invalidate(ctx context.Context, productID, storeID string) error {
	if err := c.rdb.Del(ctx, stockKey(productID, storeID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
