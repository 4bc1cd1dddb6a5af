package arbor

import (
	"context"
	"net/http"
)

type contextKey struct {
	name string
}

var (
	requestKey   = &contextKey{"request"}
	writerKey    = &contextKey{"writer"}
	routeInfoKey = &contextKey{"route_info"}
)

// RouteInfo identifies the bound route serving the current request.
type RouteInfo struct {
	Method  string
	Pattern string
}

// RequestFromContext returns the HTTP request from the context.
func RequestFromContext(ctx context.Context) *http.Request {
	if r, ok := ctx.Value(requestKey).(*http.Request); ok {
		return r
	}
	return nil
}

// SetHeader sets an HTTP response header.
// It requires that the handler was invoked via a Binder.
func SetHeader(ctx context.Context, key, value string) {
	if w, ok := ctx.Value(writerKey).(http.ResponseWriter); ok {
		w.Header().Set(key, value)
	}
}

// RouteFromContext returns the method and pattern of the current route.
func RouteFromContext(ctx context.Context) (info RouteInfo, ok bool) {
	if ri, ok := ctx.Value(routeInfoKey).(*RouteInfo); ok {
		return *ri, true
	}
	return RouteInfo{}, false
}

func newContext(ctx context.Context, w http.ResponseWriter, r *http.Request, info *RouteInfo) context.Context {
	ctx = context.WithValue(ctx, writerKey, w)
	ctx = context.WithValue(ctx, requestKey, r)
	ctx = context.WithValue(ctx, routeInfoKey, info)
	return ctx
}
