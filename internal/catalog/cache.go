package catalog

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/medipos/apotek-backend/pkg/database"
)

// SearchCache caches catalog search results keyed by normalized query.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]database.MasterMedicine, bool, error)
	Set(ctx context.Context, key string, value []database.MasterMedicine, ttl time.Duration) error
}

type NoopSearchCache struct{}

func (NoopSearchCache) Get(_ context.Context, _ string) ([]database.MasterMedicine, bool, error) {
	return nil, false, nil
}

func (NoopSearchCache) Set(_ context.Context, _ string, _ []database.MasterMedicine, _ time.Duration) error {
	return nil
}

type RedisSearchCache struct {
	client *redis.Client
}

func NewRedisSearchCache(addr string, password string, db int) *RedisSearchCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSearchCache{client: client}
}

func (c *RedisSearchCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSearchCache) Close() error {
	return c.client.Close()
}

func (c *RedisSearchCache) Get(ctx context.Context, key string) ([]database.MasterMedicine, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var medicines []database.MasterMedicine
	if err := json.Unmarshal([]byte(val), &medicines); err != nil {
		return nil, false, err
	}
	return medicines, true, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, key string, value []database.MasterMedicine, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
