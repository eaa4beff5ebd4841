package transport

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a transport failure.
type Kind int

const (
	// KindTransport covers network failures, timeouts, unparseable bodies
	// and non-auth HTTP errors.
	KindTransport Kind = iota
	// KindUnauthorized is a 401/403 from the server.
	KindUnauthorized
	// KindCancelled means the request was superseded. Callers must treat it
	// as "ignore, not a real error".
	KindCancelled
)

// Error is a typed transport failure. Status is 0 when no HTTP response was
// received.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindCancelled:
		return "request cancelled"
	case e.Kind == KindUnauthorized:
		return fmt.Sprintf("not authorized (%d): %s", e.Status, e.Detail)
	case e.Status > 0:
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Detail)
	default:
		return "request failed: " + e.Detail
	}
}

func (e *Error) Unwrap() error { return e.cause }

// IsCancelled reports whether err is a superseded-request failure.
func IsCancelled(err error) bool {
	var te *Error
	if errors.As(err, &te) && te.Kind == KindCancelled {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// IsUnauthorized reports whether err is a 401/403 failure.
func IsUnauthorized(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == KindUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
