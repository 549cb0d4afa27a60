package recognize

import (
	"context"
	"log/slog"

	"github.com/ncecere/speech_gateway/internal/cache"
	"github.com/ncecere/speech_gateway/internal/storage/scratch"
)

// CacheRecorder receives hit/miss results.
type CacheRecorder interface {
	RecordCacheLookup(hit bool)
}

// Cached consults the transcript cache before the wrapped recognizer.
// Cache failures are logged and never fail recognition.
type Cached struct {
	next     Recognizer
	cache    *cache.TranscriptCache
	recorder CacheRecorder
}

func NewCached(next Recognizer, transcripts *cache.TranscriptCache, recorder CacheRecorder) *Cached {
	return &Cached{next: next, cache: transcripts, recorder: recorder}
}

func (c *Cached) Recognize(ctx context.Context, path, locale string) (string, error) {
	audio, err := scratch.ReadFile(path)
	if err != nil {
		return "", err
	}
	key := cache.Key(audio, locale)

	text, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "transcript cache lookup failed", slog.Any("error", err))
	}
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(hit)
	}
	if hit {
		return text, nil
	}

	text, err = c.next.Recognize(ctx, path, locale)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, text); err != nil {
		slog.WarnContext(ctx, "transcript cache store failed", slog.Any("error", err))
	}
	return text, nil
}
