package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request to the experiment server.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNetworkFailure
	KindMalformedResponse
	KindServerRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkFailure:
		return "network_failure"
	case KindMalformedResponse:
		return "malformed_response"
	case KindServerRejected:
		return "server_rejected"
	default:
		return "none"
	}
}

// RequestError is returned by every API call that did not succeed.
// Status is only set for KindServerRejected.
type RequestError struct {
	Op     string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindServerRejected:
		return fmt.Sprintf("%s: server rejected request with status %d", e.Op, e.Status)
	case KindMalformedResponse:
		return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// KindOf reports the classification of err, or KindNone when err did not
// come from a request.
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return KindNone
}
