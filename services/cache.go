package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/redis/go-redis/v9"
)

// GenerationCache stores parsed training content keyed by prompt hash.
// Prompts are deterministic, so identical drafts hit the cache instead of
// spending another provider call.
type GenerationCache interface {
	Get(ctx context.Context, key string) (*models.GeneratedTraining, bool)
	Set(ctx context.Context, key string, training *models.GeneratedTraining)
}

// CacheKey derives the cache key for a prompt
func CacheKey(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(hash[:])
}

// MemoryGenerationCache is the in-process cache used when no Redis URL is
// configured
type MemoryGenerationCache struct {
	mutex   sync.RWMutex
	entries map[string]*models.GeneratedTraining
}

func NewMemoryGenerationCache() *MemoryGenerationCache {
	return &MemoryGenerationCache{
		entries: make(map[string]*models.GeneratedTraining),
	}
}

func (c *MemoryGenerationCache) Get(ctx context.Context, key string) (*models.GeneratedTraining, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	training, ok := c.entries[key]
	return training, ok
}

func (c *MemoryGenerationCache) Set(ctx context.Context, key string, training *models.GeneratedTraining) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = training
}

// RedisGenerationCache shares generation results across instances
type RedisGenerationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGenerationCache(url string) (*RedisGenerationCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisGenerationCache{
		client: redis.NewClient(opts),
		ttl:    24 * time.Hour,
	}, nil
}

func (c *RedisGenerationCache) Get(ctx context.Context, key string) (*models.GeneratedTraining, bool) {
	data, err := c.client.Get(ctx, "generation:"+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Error("Failed to read generation cache", "key", key, "error", err)
		}
		return nil, false
	}

	var training models.GeneratedTraining
	if err := json.Unmarshal(data, &training); err != nil {
		slog.Error("Failed to decode cached generation", "key", key, "error", err)
		return nil, false
	}
	slog.Info("Generation cache hit", "key", key)
	return &training, true
}

func (c *RedisGenerationCache) Set(ctx context.Context, key string, training *models.GeneratedTraining) {
	data, err := json.Marshal(training)
	if err != nil {
		slog.Error("Failed to encode generation for cache", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, "generation:"+key, data, c.ttl).Err(); err != nil {
		slog.Error("Failed to write generation cache", "key", key, "error", err)
	}
}
