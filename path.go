package arbor

import (
	"strings"
)

// Separator joins path segments in the rendered path string.
const Separator = "/"

// Segment is one validated element of a path. The zero value is invalid;
// construct segments with NewSegment.
type Segment struct {
	text string
}

// NewSegment validates s and returns it as a Segment.
// A segment must be non-empty and must not contain the path separator.
func NewSegment(s string) (Segment, error) {
	if s == "" {
		return Segment{}, NewError(CodeInvalidArgument, "path segment must not be empty")
	}
	if strings.Contains(s, Separator) {
		return Segment{}, Errorf(CodeInvalidArgument, "path segment %q must not contain %q", s, Separator)
	}
	return Segment{text: s}, nil
}

// mustSegment is the declaration-time variant: invalid slugs in a resource
// declaration are programming mistakes and abort initialization.
func mustSegment(s string) Segment {
	seg, err := NewSegment(s)
	if err != nil {
		panic("arbor: " + err.Error())
	}
	return seg
}

// String returns the segment text.
func (s Segment) String() string { return s.text }

// Path is an ordered, non-empty sequence of segments. Path values are
// immutable; Append returns a new value.
type Path struct {
	segments []Segment
}

// NewPath creates a path from one or more segments.
func NewPath(first Segment, rest ...Segment) Path {
	segs := make([]Segment, 0, 1+len(rest))
	segs = append(segs, first)
	segs = append(segs, rest...)
	return Path{segments: segs}
}

// Append returns a new path with seg added at the end.
func (p Path) Append(seg Segment) Path {
	segs := make([]Segment, 0, len(p.segments)+1)
	segs = append(segs, p.segments...)
	segs = append(segs, seg)
	return Path{segments: segs}
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []Segment {
	segs := make([]Segment, len(p.segments))
	copy(segs, p.segments)
	return segs
}

// String renders the path as "/a/b/c".
func (p Path) String() string {
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteString(Separator)
		b.WriteString(seg.text)
	}
	return b.String()
}

// Equal reports whether two paths have the same segments in the same order.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if seg != other.segments[i] {
			return false
		}
	}
	return true
}
