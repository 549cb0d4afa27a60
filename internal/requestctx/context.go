package requestctx

import (
	"context"
	"log/slog"
	"time"
)

type contextKey string

// Key is the typed context key used for storing the request Context.
var Key contextKey = "speech-gateway/requestctx"

// Context carries per-request identifiers for logging.
type Context struct {
	RequestID string
	StartedAt time.Time
}

// WithContext embeds the request context into the parent context.
func WithContext(parent context.Context, rc *Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, Key, rc)
}

// FromContext retrieves the request context if present.
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(Key).(*Context)
	return rc, ok
}

// LogAttrs returns slog attributes identifying the request in ctx.
func LogAttrs(ctx context.Context) []slog.Attr {
	rc, ok := FromContext(ctx)
	if !ok || rc == nil {
		return nil
	}
	return []slog.Attr{
		slog.String("request_id", rc.RequestID),
		slog.Duration("elapsed", time.Since(rc.StartedAt)),
	}
}
