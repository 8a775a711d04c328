package service

import (
	"errors"
	"fmt"

	"metrodoc/internal/model"
)

// Error is a failure whose Message is safe to show to API clients. Kind is one of the model
// sentinel errors and decides the HTTP status.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrIDRequired         = newError(model.ErrInvalid, "id is required")
	ErrReaderNil          = newError(model.ErrInvalid, "file is required")
	ErrUnsupportedType    = newError(model.ErrInvalid, "unsupported file type")
	ErrDocumentNotFound   = newError(model.ErrNotFound, "Document not found")
	ErrNotificationAbsent = newError(model.ErrNotFound, "Notification not found")
	ErrUserNotFound       = newError(model.ErrNotFound, "User not found")
	ErrInvalidCredentials = newError(model.ErrUnauthenticated, "Invalid email or password")
	ErrUserExists         = newError(model.ErrDuplicateID, "User already exists")
)

// invalid turns a model validation error into a client-facing one.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: model.ErrInvalid, Message: err.Error()}
}
