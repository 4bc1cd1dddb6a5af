package arbor

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/arborhq/arbor/internal/meta"
)

// Empty represents a void request or response body.
// The zero value is nil, which serializes to JSON null.
type Empty *struct{}

// None is the parameter type for endpoints that take no query parameters.
type None struct{}

// Endpoint is one declared operation: an HTTP method on a resource (plus an
// optional extra path segment), with the request body, response body and
// query-parameter types fixed by the type parameters. Endpoints are built
// once at declaration time and register themselves into their resource.
//
// Use Fails to append failure cases; everything else is fixed at
// construction.
type Endpoint[Req, Res, P any] struct {
	resource *Resource
	method   string
	sub      string // "" when the endpoint lives on the resource itself
	failures []FailureCase
	md       *meta.EndpointMetadata
}

// Get declares a GET endpoint on r. An optional sub-path segment hosts
// sibling endpoints that do not deserve their own resource node.
func Get[Req, Res, P any](r *Resource, sub ...string) *Endpoint[Req, Res, P] {
	return newEndpoint[Req, Res, P](r, http.MethodGet, sub)
}

// Post declares a POST endpoint on r.
func Post[Req, Res, P any](r *Resource, sub ...string) *Endpoint[Req, Res, P] {
	return newEndpoint[Req, Res, P](r, http.MethodPost, sub)
}

// Put declares a PUT endpoint on r.
func Put[Req, Res, P any](r *Resource, sub ...string) *Endpoint[Req, Res, P] {
	return newEndpoint[Req, Res, P](r, http.MethodPut, sub)
}

// Patch declares a PATCH endpoint on r.
func Patch[Req, Res, P any](r *Resource, sub ...string) *Endpoint[Req, Res, P] {
	return newEndpoint[Req, Res, P](r, http.MethodPatch, sub)
}

// Delete declares a DELETE endpoint on r.
func Delete[Req, Res, P any](r *Resource, sub ...string) *Endpoint[Req, Res, P] {
	return newEndpoint[Req, Res, P](r, http.MethodDelete, sub)
}

// Head declares a HEAD endpoint on r.
func Head[Req, Res, P any](r *Resource, sub ...string) *Endpoint[Req, Res, P] {
	return newEndpoint[Req, Res, P](r, http.MethodHead, sub)
}

func newEndpoint[Req, Res, P any](r *Resource, method string, sub []string) *Endpoint[Req, Res, P] {
	if len(sub) > 1 {
		panic("arbor: at most one sub-path segment per endpoint")
	}
	var subSeg string
	if len(sub) == 1 {
		subSeg = mustSegment(sub[0]).String()
	}

	var req Req
	var res Res
	var params P
	paramType := reflect.TypeOf(params)
	checkParamStruct(paramType)

	pattern := r.Pattern()
	if subSeg != "" {
		pattern += Separator + subSeg
	}

	md := &meta.EndpointMetadata{
		Method:   method,
		Pattern:  pattern,
		Sub:      subSeg,
		Request:  reflect.TypeOf(req),
		Response: reflect.TypeOf(res),
		Params:   paramType,
	}
	r.register(md)

	return &Endpoint[Req, Res, P]{
		resource: r,
		method:   method,
		sub:      subSeg,
		md:       md,
	}
}

// Fails appends failure cases to the endpoint's declared set. A status code
// already present in the set panics: the code is the sole discriminator at
// response time, so reuse would make a branch unreachable.
func (e *Endpoint[Req, Res, P]) Fails(cases ...FailureCase) *Endpoint[Req, Res, P] {
	e.resource.checkMutable()
	for _, fc := range cases {
		for _, existing := range e.failures {
			if existing.Status == fc.Status {
				panic("arbor: failure status " + strconv.Itoa(fc.Status) + " declared twice on " +
					e.method + " " + e.md.Pattern)
			}
		}
		e.failures = append(e.failures, fc)
		e.md.Failures = append(e.md.Failures, fc.Status)
	}
	return e
}

// Resource returns the endpoint's owning resource.
func (e *Endpoint[Req, Res, P]) Resource() *Resource { return e.resource }

// Method returns the endpoint's HTTP method.
func (e *Endpoint[Req, Res, P]) Method() string { return e.method }

// Pattern returns the endpoint's declaration-time path pattern, with
// dynamic segments rendered as "{name}".
func (e *Endpoint[Req, Res, P]) Pattern() string { return e.md.Pattern }

// Metadata returns the endpoint's untyped runtime metadata.
func (e *Endpoint[Req, Res, P]) Metadata() *meta.EndpointMetadata { return e.md }

// findFailure returns the declared case for status, if any.
func (e *Endpoint[Req, Res, P]) findFailure(status int) (FailureCase, bool) {
	for _, fc := range e.failures {
		if fc.Status == status {
			return fc, true
		}
	}
	return FailureCase{}, false
}

// At instantiates the endpoint against a resolved resource, producing the
// call-scoped value the client invokes. The resolved chain must end at the
// endpoint's owning resource.
func (e *Endpoint[Req, Res, P]) At(rv *Resolved) (*ResolvedEndpoint[Req, Res, P], error) {
	path, err := rv.Path()
	if err != nil {
		return nil, err
	}
	if rv.Resource() != e.resource {
		return nil, Errorf(CodeInvalidArgument, "resolved path %s does not end at the endpoint's resource", path)
	}
	if e.sub != "" {
		path = path.Append(Segment{text: e.sub})
	}
	return &ResolvedEndpoint[Req, Res, P]{endpoint: e, path: path}, nil
}

// ResolvedEndpoint is the call-time instantiation of an endpoint: its
// declaration paired with a concrete path. Values are request-scoped.
type ResolvedEndpoint[Req, Res, P any] struct {
	endpoint *Endpoint[Req, Res, P]
	path     Path
}

// Path returns the concrete path the call will target.
func (re *ResolvedEndpoint[Req, Res, P]) Path() Path { return re.path }
