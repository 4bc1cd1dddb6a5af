package arbor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"
	"sync/atomic"

	"github.com/arborhq/arbor/internal/meta"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Binder registers declared endpoints against an http.ServeMux and produces
// the http.Handler the server runs. It owns the glue between the transport
// and the typed handler functions: body decoding, parameter decoding,
// validation, interceptors, and error mapping.
//
// All Bind calls must complete before Handler is called; Handler freezes
// every bound resource tree.
type Binder struct {
	mux                *http.ServeMux
	logger             *slog.Logger
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []Interceptor
	middlewares        []func(http.Handler) http.Handler
	maxRequestBodySize uint64
	roots              map[*Resource]struct{}
	bound              []*meta.EndpointMetadata
	built              atomic.Bool
}

// NewBinder creates an empty binder with a 1MB request body limit.
func NewBinder() *Binder {
	return &Binder{
		mux:                http.NewServeMux(),
		maxRequestBodySize: 1 << 20,
		roots:              make(map[*Resource]struct{}),
	}
}

// WithLogger sets a custom logger. If not set, slog.Default() is used.
func (b *Binder) WithLogger(logger *slog.Logger) *Binder {
	b.logger = logger
	return b
}

// WithErrorTransformer adds a custom error transformer.
// It returns the binder for chaining.
func (b *Binder) WithErrorTransformer(fn ErrorTransformer) *Binder {
	b.errorTransformer = fn
	return b
}

// WithMaskInternalErrors enables masking of internal error messages,
// useful in production to avoid leaking sensitive information.
func (b *Binder) WithMaskInternalErrors() *Binder {
	b.maskInternalErrors = true
	return b
}

// WithInterceptor adds an interceptor. Interceptors run in the order added,
// wrapping every handler bound to this binder.
func (b *Binder) WithInterceptor(i Interceptor) *Binder {
	b.interceptors = append(b.interceptors, i)
	return b
}

// WithMiddleware adds an HTTP middleware to wrap the handler.
// Middleware is applied in the order added (first added is outermost).
func (b *Binder) WithMiddleware(mw func(http.Handler) http.Handler) *Binder {
	b.middlewares = append(b.middlewares, mw)
	return b
}

// WithMaxRequestBodySize sets the maximum request body size for all bound
// handlers. A value of 0 means no limit. Default is 1MB.
func (b *Binder) WithMaxRequestBodySize(size uint64) *Binder {
	b.maxRequestBodySize = size
	return b
}

// Handler returns the http.Handler for use with http.ListenAndServe,
// wrapped in the configured middleware. It freezes every resource tree a
// bound endpoint belongs to; binding after Handler panics.
func (b *Binder) Handler() http.Handler {
	b.built.Store(true)
	for root := range b.roots {
		root.Freeze()
	}
	var h http.Handler = b.mux
	// Apply middleware in reverse order so first added is outermost.
	for i := len(b.middlewares) - 1; i >= 0; i-- {
		h = b.middlewares[i](h)
	}
	return h
}

// Request carries everything a handler can see about one request: the
// decoded body, the decoded query parameters, and the bound path values.
// Values are request-scoped and never shared across requests.
type Request[Req, P any] struct {
	Body   Req
	Params P

	raw *http.Request
}

// PathValue returns the value bound to a dynamic segment, by name.
func (r *Request[Req, P]) PathValue(name string) string {
	return r.raw.PathValue(name)
}

// HTTP returns the underlying request for access to headers and context.
func (r *Request[Req, P]) HTTP() *http.Request { return r.raw }

// Bind registers fn as the handler for ep. The route pattern is the
// endpoint's declaration pattern with dynamic segments as ServeMux
// wildcards, e.g. "GET /api/users/{id}".
func Bind[Req, Res, P any](b *Binder, ep *Endpoint[Req, Res, P], fn func(ctx context.Context, req *Request[Req, P]) (Res, error)) {
	if b.built.Load() {
		panic("arbor: Bind called after Handler; bind all endpoints during initialization")
	}
	b.roots[ep.resource.root] = struct{}{}
	b.bound = append(b.bound, ep.md)

	info := RouteInfo{Method: ep.method, Pattern: ep.md.Pattern}

	// ServeMux itself panics on a duplicate method+pattern, which is the
	// right outcome for a configuration mistake.
	b.mux.HandleFunc(ep.method+" "+ep.md.Pattern, func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				b.log().Error("PANIC recovered",
					slog.Any("panic", rec),
					slog.String("route", info.Pattern),
					slog.String("stack", string(stack)))
				writeError(w, Errorf(CodeInternal, "internal server error (panic): %v", rec), b.logger)
			}
		}()

		ctx := newContext(r.Context(), w, r, &info)

		if b.maxRequestBodySize > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, int64(b.maxRequestBodySize))
		}

		req := &Request[Req, P]{raw: r}

		if err := decodeBody(r, &req.Body); err != nil {
			b.handleError(w, err)
			return
		}
		if err := decodeParams(&req.Params, r.URL.Query()); err != nil {
			b.handleError(w, err)
			return
		}
		// Parameters are fully checked by the codec; validator tags on
		// the body are the application's contract.
		if err := validateValue(req.Body); err != nil {
			b.handleError(w, err)
			return
		}

		final := func(ctx context.Context, reqAny any) (any, error) {
			typed, ok := reqAny.(*Request[Req, P])
			if !ok {
				return nil, Errorf(CodeInternal, "interceptor modified request type incorrectly")
			}
			return fn(ctx, typed)
		}
		chain := buildChain(b.interceptors, info, final)

		res, err := chain(ctx, req)
		if err != nil {
			var fe *FailureError
			if errors.As(err, &fe) {
				if _, declared := ep.findFailure(fe.Status); declared {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(fe.Status)
					if err := encodeJSON(w, fe.Payload); err != nil {
						b.log().Error("failed to encode failure payload",
							slog.Int("status", fe.Status), slog.Any("error", err))
					}
					return
				}
				// An undeclared status is a programming mistake; refusing
				// to pass it through keeps the declared set truthful.
				b.log().Error("handler returned undeclared failure status",
					slog.Int("status", fe.Status), slog.String("route", info.Pattern))
				b.handleError(w, Errorf(CodeInternal, "undeclared failure status %d", fe.Status))
				return
			}
			b.handleError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := encodeJSON(w, res); err != nil {
			// Response may be partially written, nothing we can do.
			b.log().Error("failed to encode response",
				slog.String("route", info.Pattern), slog.Any("error", err))
		}
	})
}

// Manifest returns metadata for every bound endpoint, for documentation or
// code-generation tooling.
func (b *Binder) Manifest() []*meta.EndpointMetadata {
	out := make([]*meta.EndpointMetadata, len(b.bound))
	copy(out, b.bound)
	return out
}

func (b *Binder) log() *slog.Logger {
	if b.logger != nil {
		return b.logger
	}
	return slog.Default()
}

func (b *Binder) handleError(w http.ResponseWriter, err error) {
	var svcErr *Error
	if b.errorTransformer != nil {
		svcErr = b.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = DefaultErrorTransformer(err)
	}
	if b.maskInternalErrors && svcErr.Code == CodeInternal {
		svcErr = NewError(CodeInternal, "internal server error")
	}
	writeError(w, svcErr, b.logger)
}

// decodeBody decodes a JSON request body into dst. Bodiless methods and an
// empty body leave dst at its zero value.
func decodeBody[Req any](r *http.Request, dst *Req) error {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil
	}
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Errorf(CodeInvalidArgument, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
	}
	return nil
}

// validateValue runs struct validation when v is a struct (or non-nil
// pointer to one); unit types like Empty and None pass through.
func validateValue(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.NumField() == 0 {
		return nil
	}
	if err := validate.Struct(rv.Interface()); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return err
	}
	return nil
}
