package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/requestctx"
)

// WriteError writes msg as a plain-text error body.
func WriteError(c *fiber.Ctx, status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = "unknown error"
		}
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(status).SendString(msg)
}

// WriteAppError maps err to its status and message. Unclassified errors are
// logged and reported without internals.
func WriteAppError(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		attrs := append(requestctx.LogAttrs(c.UserContext()), slog.String("path", c.Path()), slog.Any("error", err))
		slog.LogAttrs(c.UserContext(), slog.LevelError, "unclassified request failure", attrs...)
		return WriteError(c, status, "")
	}
	if status >= http.StatusInternalServerError {
		attrs := append(requestctx.LogAttrs(c.UserContext()),
			slog.String("path", c.Path()),
			slog.String("kind", appErr.Kind.String()),
			slog.Any("error", err))
		slog.LogAttrs(c.UserContext(), slog.LevelError, "request failed", attrs...)
	}
	return WriteError(c, status, appErr.Message)
}
