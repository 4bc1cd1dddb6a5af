// Package middleware provides optional interceptors for arbor binders.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/arborhq/arbor"
)

// LoggingInterceptor creates an interceptor that logs handled requests
// using slog. It logs the start and end of each call, including the matched
// route pattern, duration, and error status.
func LoggingInterceptor(logger *slog.Logger) arbor.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req any, info arbor.RouteInfo, handler arbor.HandlerFunc) (any, error) {
		start := time.Now()

		logger.InfoContext(ctx, "request started",
			slog.String("method", info.Method),
			slog.String("route", info.Pattern),
		)

		res, err := handler(ctx, req)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "request failed",
				slog.String("method", info.Method),
				slog.String("route", info.Pattern),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "request completed",
				slog.String("method", info.Method),
				slog.String("route", info.Pattern),
				slog.Duration("duration", duration),
			)
		}

		return res, err
	}
}
