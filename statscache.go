package interviewquiz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statsCacheKeyPrefix = "user:stats:"
	statsCacheTTL       = 24 * time.Hour
	statsCacheRetries   = 5
)

// StatsCache is a read-through cache in front of the store's user stats.
// Readers fill it with Add, writers refresh it with Set.
type StatsCache interface {
	// Get returns (nil, nil) on a miss
	Get(ctx context.Context, userID string) (*UserStats, error)
	// Add stores stats only when nothing is cached for the user
	Add(ctx context.Context, userID string, stats *UserStats) error
	// Set stores stats unless the cache already holds stats with more quizzes taken
	Set(ctx context.Context, userID string, stats *UserStats) error
	Delete(ctx context.Context, userID string) error
}

// newerStats reports whether cached must not be replaced by stats
func newerStats(cached, stats *UserStats) bool {
	return cached != nil && cached.QuizzesTaken > stats.QuizzesTaken
}

// RedisStatsCache keeps user stats in Redis
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache connects to addr and checks the connection
func NewRedisStatsCache(ctx context.Context, addr string) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisStatsCache{client: client, ttl: statsCacheTTL}, nil
}

func (c *RedisStatsCache) Get(ctx context.Context, userID string) (*UserStats, error) {
	return getStats(ctx, c.client, statsCacheKeyPrefix+userID)
}

func (c *RedisStatsCache) Add(ctx context.Context, userID string, stats *UserStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, statsCacheKeyPrefix+userID, data, c.ttl).Err()
}

// Set writes under WATCH so two recorders finishing out of order keep the later stats
func (c *RedisStatsCache) Set(ctx context.Context, userID string, stats *UserStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	key := statsCacheKeyPrefix + userID

	update := func(tx *redis.Tx) error {
		cached, err := getStats(ctx, tx, key)
		if err != nil {
			return err
		}
		if newerStats(cached, stats) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < statsCacheRetries; i++ {
		err := c.client.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	// Lost every race. Dropping the entry is always safe.
	return c.client.Del(ctx, key).Err()
}

func (c *RedisStatsCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, statsCacheKeyPrefix+userID).Err()
}

// Close closes the Redis client
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

func getStats(ctx context.Context, client redis.Cmdable, key string) (*UserStats, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats UserStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
