package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TranscriptCache stores recognized text keyed by audio digest and locale.
type TranscriptCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTranscriptCache(client *redis.Client, ttl time.Duration) *TranscriptCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TranscriptCache{client: client, ttl: ttl}
}

// Key derives the cache key for audio in locale.
func Key(audio []byte, locale string) string {
	sum := sha256.Sum256(audio)
	return locale + ":" + hex.EncodeToString(sum[:])
}

func (c *TranscriptCache) Get(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.client == nil || key == "" {
		return "", false, nil
	}
	text, err := c.client.Get(ctx, c.prefixed(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *TranscriptCache) Set(ctx context.Context, key, text string) error {
	if c == nil || c.client == nil || key == "" || text == "" {
		return nil
	}
	return c.client.Set(ctx, c.prefixed(key), text, c.ttl).Err()
}

func (c *TranscriptCache) prefixed(key string) string {
	return "transcript:" + key
}
