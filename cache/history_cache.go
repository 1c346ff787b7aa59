package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"wavefm/db"
	"wavefm/model"

	"github.com/go-redis/redis/v8"
)

// Listening history is a capped Redis list per user: newest entry first,
// trimmed on every push so it can't grow without bound.

// historyKey builds the Redis key for a user's listening history.
func historyKey(userID int64) string {
	return fmt.Sprintf("history:%d", userID)
}

// PushHistory prepends an entry to the user's listening history and trims
// the list to limit entries.
func PushHistory(ctx context.Context, userID int64, entry model.HistoryEntry, limit int64) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	pipe := db.RedisClient.Pipeline()
	pipe.LPush(ctx, historyKey(userID), data)
	pipe.LTrim(ctx, historyKey(userID), 0, limit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push history entry: %w", err)
	}
	return nil
}

// GetHistory returns up to count recent history entries, newest first.
func GetHistory(ctx context.Context, userID int64, count int64) ([]model.HistoryEntry, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	raw, err := db.RedisClient.LRange(ctx, historyKey(userID), 0, count-1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue // skip malformed entries rather than failing the read
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ClearHistory removes a user's listening history.
func ClearHistory(ctx context.Context, userID int64) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return db.RedisClient.Del(ctx, historyKey(userID)).Err()
}
