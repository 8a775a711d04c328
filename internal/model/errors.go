package model

import (
	"errors"
	"net/http"
)

// Domain errors shared by the stores, the gateway and the HTTP layer.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrImmutableField  = errors.New("field is not mutable")
	ErrInvalid         = errors.New("invalid input")
	ErrTooLarge        = errors.New("payload too large")
)

// RemoteError is a failed Remote Gateway call. Message is the human-readable text
// reported by the remote side and is passed through unchanged.
type RemoteError struct {
	Op      string
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return http.StatusText(e.Status)
	}
	return "remote call failed"
}

// Unwrap maps well-known statuses back to the domain errors so errors.Is keeps working across the wire.
func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusConflict:
		return ErrDuplicateID
	}
	return nil
}
