package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call. The board treats every kind the same
// way (rollback and notify); the split exists for logging and tests.
type Kind int

const (
	// KindTransport covers network failures: connection refused, DNS,
	// timeouts. No HTTP status was received.
	KindTransport Kind = iota
	// KindRejected covers non-success HTTP statuses other than 404.
	KindRejected
	// KindNotFound covers 404 responses, i.e. operating on an
	// identifier the server no longer recognizes.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error is the single error type returned by all Client calls.
type Error struct {
	Op      string // e.g. "createTask"
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // response body summary, if any
	Err     error  // underlying transport error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a client error with KindNotFound.
func IsNotFound(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindNotFound
}

// IsTransport reports whether err is a client error with KindTransport.
func IsTransport(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == KindTransport
}
