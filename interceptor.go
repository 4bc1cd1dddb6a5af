package arbor

import (
	"context"
)

// HandlerFunc represents the next handler in an interceptor chain.
type HandlerFunc func(ctx context.Context, req any) (res any, err error)

// Interceptor wraps handler execution for every request served by a Binder.
//
//	func logging(ctx context.Context, req any, info RouteInfo, handler arbor.HandlerFunc) (any, error) {
//		start := time.Now()
//		res, err := handler(ctx, req)
//		slog.Info("handled", "route", info.Pattern, "took", time.Since(start))
//		return res, err
//	}
//
// Interceptors can inspect or replace the request, short-circuit with an
// error, or add context values. req is the decoded *Request value.
type Interceptor func(ctx context.Context, req any, info RouteInfo, handler HandlerFunc) (res any, err error)

// buildChain combines the interceptors around the final handler.
// The first interceptor in the slice is the outermost (runs first).
func buildChain(interceptors []Interceptor, info RouteInfo, final HandlerFunc) HandlerFunc {
	chain := final
	for i := len(interceptors) - 1; i >= 0; i-- {
		current := interceptors[i]
		next := chain
		chain = func(ctx context.Context, req any) (any, error) {
			return current(ctx, req, info, next)
		}
	}
	return chain
}
