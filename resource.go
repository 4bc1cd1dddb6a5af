package arbor

import (
	"strings"
	"sync/atomic"

	"github.com/arborhq/arbor/internal/meta"
)

// Resource is one node in a declared path tree. Resources are created at
// initialization time (typically as package-level variables), register
// themselves into their parent, and are frozen before any request is served.
//
// Declaration errors — invalid slugs, a slug reused by an ancestor,
// declaration after freeze — panic immediately: they are programming
// mistakes in the API declaration, not runtime conditions.
type Resource struct {
	slug    Segment
	dynamic bool
	parent  *Resource
	root    *Resource

	children  []*Resource
	endpoints []*meta.EndpointMetadata

	// frozen lives on the root and covers the whole tree.
	frozen atomic.Bool
}

// NewRoot declares the root of a resource tree. Its slug becomes the first
// path segment of every endpoint in the tree.
func NewRoot(slug string) *Resource {
	r := &Resource{slug: mustSegment(slug)}
	r.root = r
	return r
}

// Static declares a fixed-slug child of r.
func (r *Resource) Static(slug string) *Resource {
	return r.addChild(mustSegment(slug), false)
}

// Dynamic declares a child whose segment is bound to a concrete value per
// call. In patterns it renders as "{name}".
func (r *Resource) Dynamic(name string) *Resource {
	return r.addChild(mustSegment(name), true)
}

func (r *Resource) addChild(slug Segment, dynamic bool) *Resource {
	r.checkMutable()
	for anc := r; anc != nil; anc = anc.parent {
		if anc.slug == slug {
			panic("arbor: slug " + slug.String() + " already used by an ancestor resource")
		}
	}
	child := &Resource{
		slug:    slug,
		dynamic: dynamic,
		parent:  r,
		root:    r.root,
	}
	r.children = append(r.children, child)
	return child
}

// Freeze marks the whole tree read-only. Any later resource or endpoint
// declaration panics. Freeze is idempotent and must be called (directly or
// via Binder.Handler) before the tree is shared across goroutines.
func (r *Resource) Freeze() {
	r.root.frozen.Store(true)
}

func (r *Resource) checkMutable() {
	if r.root.frozen.Load() {
		panic("arbor: resource tree is frozen; declare resources and endpoints during initialization")
	}
}

// Slug returns the resource's own segment text. For dynamic resources this
// is the placeholder name, not a bound value.
func (r *Resource) Slug() string { return r.slug.String() }

// IsDynamic reports whether the resource's segment is bound per call.
func (r *Resource) IsDynamic() bool { return r.dynamic }

// Parent returns the parent resource, or nil for a root.
func (r *Resource) Parent() *Resource { return r.parent }

// Children returns the declared child resources.
func (r *Resource) Children() []*Resource {
	out := make([]*Resource, len(r.children))
	copy(out, r.children)
	return out
}

// Pattern renders the declaration-time path, with dynamic segments as
// "{name}" placeholders: "/api/users/{id}".
func (r *Resource) Pattern() string {
	var b strings.Builder
	r.writePattern(&b)
	return b.String()
}

func (r *Resource) writePattern(b *strings.Builder) {
	if r.parent != nil {
		r.parent.writePattern(b)
	}
	b.WriteString(Separator)
	if r.dynamic {
		b.WriteString("{")
		b.WriteString(r.slug.String())
		b.WriteString("}")
	} else {
		b.WriteString(r.slug.String())
	}
}

// register appends an endpoint's metadata to the resource. Called exactly
// once per endpoint, from the endpoint constructor.
func (r *Resource) register(md *meta.EndpointMetadata) {
	r.checkMutable()
	for _, existing := range r.endpoints {
		if existing.Method == md.Method && existing.Sub == md.Sub {
			panic("arbor: duplicate endpoint " + md.Method + " " + md.Pattern + " on resource")
		}
	}
	r.endpoints = append(r.endpoints, md)
}

// Endpoints returns metadata for the endpoints declared on this resource.
func (r *Resource) Endpoints() []*meta.EndpointMetadata {
	out := make([]*meta.EndpointMetadata, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}
