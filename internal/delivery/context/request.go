// Package context carries per-request values (request id and the
// request-scoped logger) from the HTTP layer into usecases and repositories.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

type key int

const (
	requestIDKey key = iota
	loggerKey
)

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = echo.HeaderXRequestID

// echo's own store uses string keys.
const echoRequestIDKey = "request_id"

// Bind attaches the request id and a logger tagged with it to both the echo
// context and the request's context.Context.
func Bind(c echo.Context, requestID string, logger *slog.Logger) {
	c.Set(echoRequestIDKey, requestID)

	ctx := context.WithValue(c.Request().Context(), requestIDKey, requestID)
	ctx = context.WithValue(ctx, loggerKey, logger)
	c.SetRequest(c.Request().WithContext(ctx))
}

// RequestID returns the id bound to the request, or "" outside the middleware chain.
func RequestID(c echo.Context) string {
	if id, ok := c.Get(echoRequestIDKey).(string); ok {
		return id
	}

	return RequestIDFrom(c.Request().Context())
}

// RequestIDFrom returns the request id carried by ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// Logger returns the request-scoped logger, or fallback when ctx has none.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
