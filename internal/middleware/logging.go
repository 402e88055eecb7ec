// Package middleware provides the Fiber middleware shared by every route.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"dashkeeper/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals written by the middleware chain.
const (
	LocalRequestID = "requestid"
	LocalUsername  = "username"
	LocalTraceID   = "traceID"
)

// ContextMiddleware injects the request ID, the acting user and the trace ID from
// Fiber locals into the request context, where the context-aware logger picks them up.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(enrich(c.UserContext(), c))
		return c.Next()
	}
}

func enrich(ctx context.Context, c *fiber.Ctx) context.Context {
	if rid, ok := c.Locals(LocalRequestID).(string); ok && rid != "" {
		ctx = observability.WithCorrelationID(ctx, rid)
	}
	if user, ok := c.Locals(LocalUsername).(string); ok && user != "" {
		ctx = observability.WithUsername(ctx, user)
	}
	if tid, ok := c.Locals(LocalTraceID).(string); ok && tid != "" {
		ctx = context.WithValue(ctx, observability.TraceIDKey, tid)
	}
	return ctx
}

// SetUsername records the authenticated user on c and its request context.
func SetUsername(c *fiber.Ctx, username string) {
	c.Locals(LocalUsername, username)
	c.SetUserContext(observability.WithUsername(c.UserContext(), username))
}

// Username returns the authenticated user recorded by SetUsername.
func Username(c *fiber.Ctx) string {
	user, _ := c.Locals(LocalUsername).(string)
	return user
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = observability.Logger
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get("User-Agent")),
		}

		// The user is only known once AuthRequired has run further down the chain.
		ctx := enrich(c.UserContext(), c)
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			logger.ErrorContext(ctx, "request failed", fields...)
		} else {
			logger.InfoContext(ctx, "request processed", fields...)
		}

		return err
	}
}
