package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// Summary aggregates are derived data, so a short TTL plus explicit
// invalidation on every booking mutation keeps them honest.
const bookingSummaryTTL = 5 * time.Minute

// InitRedis initializes the Redis client
func InitRedis(redisURL string) error {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

func bookingSummaryKey(userID uint) string {
	return fmt.Sprintf("booking:summary:%d", userID)
}

// CacheBookingSummary stores a user's booking summary payload.
func CacheBookingSummary(ctx context.Context, userID uint, summary interface{}) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, bookingSummaryKey(userID), data, bookingSummaryTTL).Err()
}

// GetBookingSummary retrieves a cached summary. Returns redis.Nil
// when there is no cached entry.
func GetBookingSummary(ctx context.Context, userID uint) ([]byte, error) {
	data, err := RedisClient.Get(ctx, bookingSummaryKey(userID)).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// InvalidateBookingSummary drops the cached summary after a mutation.
func InvalidateBookingSummary(ctx context.Context, userID uint) error {
	return RedisClient.Del(ctx, bookingSummaryKey(userID)).Err()
}
