// Package meta holds the untyped runtime view of a declared endpoint.
// It is internal so external packages cannot forge endpoint metadata,
// which keeps the resource registry's invariants enforceable.
package meta

import "reflect"

// EndpointMetadata describes one declared endpoint: its HTTP method, the
// owning resource's pattern (plus optional sub-path segment), the declared
// body types, and the declared failure statuses in declaration order.
type EndpointMetadata struct {
	Method   string
	Pattern  string // full pattern incl. sub, e.g. "/api/users/{id}/archive"
	Sub      string // optional extra path segment, "" if none
	Request  reflect.Type
	Response reflect.Type
	Params   reflect.Type
	Failures []int
}
