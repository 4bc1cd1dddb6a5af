package arbor

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// FailureCase declares one non-success outcome of an endpoint: the HTTP
// status code that signals it and the payload type carried in the body.
// Within one endpoint every case must use a distinct status code, because
// the code is the only signal the client has to pick a decoder.
//
// The set of cases is an ordered list matched by status at response time.
type FailureCase struct {
	Status int
	Type   reflect.Type

	decode func([]byte) (any, error)
}

// Failure declares a failure case with payload type F signaled by status.
func Failure[F any](status int) FailureCase {
	var zero F
	return FailureCase{
		Status: status,
		Type:   reflect.TypeOf(zero),
		decode: func(body []byte) (any, error) {
			var payload F
			if err := json.Unmarshal(body, &payload); err != nil {
				return nil, err
			}
			return payload, nil
		},
	}
}

// FailureError is returned by the client when the server responded with a
// declared failure status, and returned by server handlers to produce one.
type FailureError struct {
	Status  int
	Payload any
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("declared failure (status %d): %+v", e.Status, e.Payload)
}

// Fail builds a FailureError carrying payload. The endpoint the handler is
// bound to must declare a failure case for status, otherwise the binder
// reports an internal error instead of leaking an undeclared status.
func Fail[F any](status int, payload F) *FailureError {
	return &FailureError{Status: status, Payload: payload}
}

// AsFailure extracts the typed payload of a declared failure from err.
// It reports false when err is not a FailureError or carries another type.
func AsFailure[F any](err error) (F, bool) {
	var zero F
	var fe *FailureError
	if !errors.As(err, &fe) {
		return zero, false
	}
	payload, ok := fe.Payload.(F)
	if !ok {
		return zero, false
	}
	return payload, true
}

// UnexpectedStatusError is returned by the client when the server responded
// with a status that is neither a success nor a declared failure.
type UnexpectedStatusError struct {
	Status int
	Body   []byte
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Status)
}
