package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/port"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb}
}

func (c *Cache) GetArtifactDetails(ctx context.Context, id uuid.UUID) ([]byte, error) {
	val, err := c.client.Get(ctx, getCacheKey(id.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *Cache) SetArtifactDetails(ctx context.Context, id uuid.UUID, data []byte, validUntil time.Time) {
	ttl := time.Until(validUntil)
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, getCacheKey(id.String()), data, ttl).Err(); err != nil {
		// cache writes are best-effort
		log.Printf("failed caching details for artifact #%s: %v", id, err)
	}
}

func (c *Cache) DeleteArtifactDetails(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, getCacheKey(id.String())).Err(); err != nil {
		return err
	}
	return nil
}

func getCacheKey(id string) string {
	return "artifact:" + id
}
