package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wavefm/db"
	"wavefm/model"

	"github.com/go-redis/redis/v8"
)

// ErrNotCached is returned by IncrementSongPlays when the song has no cache
// entry, so callers don't mistake a skipped increment for a persisted one.
var ErrNotCached = errors.New("song not in cache")

// Catalog responses are cached per source so a browse page doesn't hammer
// the external APIs, and so song detail lookups can resolve external IDs
// without a re-fetch.

// catalogKey builds the cache key for one source's result set.
func catalogKey(source, genre string, limit int) string {
	return fmt.Sprintf("catalog:%s:%s:%d", source, genre, limit)
}

// songKey builds the cache key for a single external song.
func songKey(id string) string {
	return fmt.Sprintf("song:%s", id)
}

// GetCatalog returns the cached song list for a source query, or nil on miss.
func GetCatalog(ctx context.Context, source, genre string, limit int) ([]*model.Song, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := db.RedisClient.Get(ctx, catalogKey(source, genre, limit)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog cache: %w", err)
	}

	var songs []*model.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("failed to decode cached catalog: %w", err)
	}
	return songs, nil
}

// SetCatalog stores a source's result set and indexes each song by ID so
// GetSong can resolve it later. Both expire together.
func SetCatalog(ctx context.Context, source, genre string, limit int, songs []*model.Song, ttl time.Duration) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	data, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	pipe := db.RedisClient.Pipeline()
	pipe.Set(ctx, catalogKey(source, genre, limit), data, ttl)
	for _, song := range songs {
		songData, err := json.Marshal(song)
		if err != nil {
			continue
		}
		pipe.Set(ctx, songKey(song.ID), songData, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// GetSong resolves a cached external song by ID, or nil on miss.
func GetSong(ctx context.Context, id string) (*model.Song, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := db.RedisClient.Get(ctx, songKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read song cache: %w", err)
	}

	var song model.Song
	if err := json.Unmarshal(data, &song); err != nil {
		return nil, fmt.Errorf("failed to decode cached song: %w", err)
	}
	return &song, nil
}

// IncrementSongPlays bumps the play counter on a cached external song.
// Uploaded songs track plays in MySQL; this keeps the browsing counters
// moving for catalog songs until the cache entry expires. Returns
// ErrNotCached when the song has no entry to bump.
func IncrementSongPlays(ctx context.Context, id string) error {
	song, err := GetSong(ctx, id)
	if err != nil {
		return err
	}
	if song == nil {
		return ErrNotCached
	}

	song.Plays++
	data, err := json.Marshal(song)
	if err != nil {
		return fmt.Errorf("failed to encode cached song: %w", err)
	}
	// Preserve the remaining TTL.
	ttl, err := db.RedisClient.TTL(ctx, songKey(id)).Result()
	if err != nil || ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return db.RedisClient.Set(ctx, songKey(id), data, ttl).Err()
}
