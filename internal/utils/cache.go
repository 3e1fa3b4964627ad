package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Integer to string conversion
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// DeleteCachePrefix deletes every key starting with prefix
func DeleteCachePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	iter := rdb.Scan(ctx, 0, prefix+"*", 0).Iterator() // Scan for matching keys
	for iter.Next(ctx) {
		// Delete each matching key
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err() // Surface any scan error
}

// OverviewCachePrefix is the key prefix shared by all of a user's cached
// month overviews
func OverviewCachePrefix(userID uint) string {
	return "overview:user:" + strconv.Itoa(int(userID)) + ":month:"
}

// OverviewCacheKey builds the cache key for a user's monthly budget overview
func OverviewCacheKey(userID uint, month string) string {
	return OverviewCachePrefix(userID) + month
}

// BreakdownCacheKey builds the cache key for a user's category breakdown.
// Pass "all" as month for the all-time breakdown.
func BreakdownCacheKey(userID uint, month string) string {
	return "breakdown:user:" + strconv.Itoa(int(userID)) + ":month:" + month
}
