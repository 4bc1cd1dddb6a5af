package arbor

// Resolved pairs a resource declaration with a concrete path built at call
// time. It is produced by walking from a root through its children, binding
// every dynamic segment to a value along the way; the chain cannot skip a
// dynamic level because each step starts from the previous step's resource.
//
// Resolved values are call-scoped. The first error on the chain sticks:
// later steps are no-ops and the error surfaces from Err or Path.
type Resolved struct {
	resource *Resource
	path     Path
	err      error
}

// Resolve starts a resolution chain at a root resource.
// It panics if called on a non-root resource.
func (r *Resource) Resolve() *Resolved {
	if r.parent != nil {
		panic("arbor: Resolve must start at a root resource")
	}
	return &Resolved{resource: r, path: NewPath(r.slug)}
}

// Static continues the chain into a static child of the current resource.
func (rv *Resolved) Static(child *Resource) *Resolved {
	if rv.err != nil {
		return rv
	}
	if err := rv.checkChild(child); err != nil {
		return &Resolved{resource: rv.resource, path: rv.path, err: err}
	}
	if child.dynamic {
		return &Resolved{resource: rv.resource, path: rv.path,
			err: Errorf(CodeInvalidArgument, "resource %q is dynamic; use Bind with a value", child.Slug())}
	}
	return &Resolved{resource: child, path: rv.path.Append(child.slug)}
}

// Bind continues the chain into a dynamic child, substituting id for the
// placeholder segment. The id must be a valid path segment; since it is
// only known at call time, a bad id is an error here, not a panic.
func (rv *Resolved) Bind(child *Resource, id string) *Resolved {
	if rv.err != nil {
		return rv
	}
	if err := rv.checkChild(child); err != nil {
		return &Resolved{resource: rv.resource, path: rv.path, err: err}
	}
	if !child.dynamic {
		return &Resolved{resource: rv.resource, path: rv.path,
			err: Errorf(CodeInvalidArgument, "resource %q is static; use Static", child.Slug())}
	}
	seg, err := NewSegment(id)
	if err != nil {
		return &Resolved{resource: rv.resource, path: rv.path,
			err: Errorf(CodeInvalidArgument, "invalid value for segment {%s}: %v", child.Slug(), err)}
	}
	return &Resolved{resource: child, path: rv.path.Append(seg)}
}

func (rv *Resolved) checkChild(child *Resource) error {
	if child == nil {
		return NewError(CodeInvalidArgument, "nil resource in resolution chain")
	}
	if child.parent != rv.resource {
		return Errorf(CodeInvalidArgument, "resource %q is not a child of %q", child.Slug(), rv.resource.Slug())
	}
	return nil
}

// Resource returns the resource the chain currently points at.
func (rv *Resolved) Resource() *Resource { return rv.resource }

// Err returns the first error encountered on the chain, if any.
func (rv *Resolved) Err() error { return rv.err }

// Path returns the concrete path built so far.
func (rv *Resolved) Path() (Path, error) {
	if rv.err != nil {
		return Path{}, rv.err
	}
	return rv.path, nil
}
