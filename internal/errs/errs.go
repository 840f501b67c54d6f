// Package errs implements the error taxonomy shared across the routing
// service (spec §7): every component returns a typed error tagged with a
// Kind, and the HTTP surface is the single place that maps a Kind to a
// status code.
package errs

import (
	"fmt"
	"net/http"
)

// Kind identifies one entry of the error taxonomy.
type Kind string

const (
	InvalidInput        Kind = "InvalidInput"
	CodeNotFound        Kind = "CodeNotFound"
	GeocoderUnavailable Kind = "GeocoderUnavailable"
	StoreError          Kind = "StoreError"
	ClassifierDegraded  Kind = "ClassifierDegraded"
	Deadline            Kind = "Deadline"
	ServiceUnavailable  Kind = "ServiceUnavailable"
	RateLimited         Kind = "RateLimited"
)

// Error is a typed error carrying a taxonomy Kind plus a human message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a tagged error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a tagged error around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Status maps a taxonomy Kind to its HTTP status (spec §7).
// GeocoderUnavailable never escapes the resolver, so it has no externally
// meaningful status; Status reports 500 for it (and any unknown Kind)
// defensively should one ever leak. ClassifierDegraded maps to 200,
// because a degraded classifier still answers with a fallback Assessment.
func Status(kind Kind) int {
	switch kind {
	case InvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case StoreError:
		return http.StatusInternalServerError
	case Deadline:
		return http.StatusGatewayTimeout
	case ServiceUnavailable:
		return http.StatusServiceUnavailable
	case RateLimited:
		return http.StatusTooManyRequests
	case ClassifierDegraded:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// As extracts a *Error from err, if any.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
