package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"metrodoc/internal/http/middleware"
	"metrodoc/internal/model"
	"metrodoc/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool          `json:"success"`
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}


// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_LIMIT", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		Success:   false,
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

var statusCodes = map[int]string{
	fiber.StatusBadRequest:            "BAD_REQUEST",
	fiber.StatusUnauthorized:          "UNAUTHORIZED",
	fiber.StatusNotFound:              "NOT_FOUND",
	fiber.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	fiber.StatusConflict:              "CONFLICT",
	fiber.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	fiber.StatusServiceUnavailable:    "SERVICE_UNAVAILABLE",
}

// MapHTTPStatus maps an error to its HTTP status and machine-readable code.
func MapHTTPStatus(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusOK, ""
	case errors.As(err, &fe):
		return fe.Code, codeFor(fe.Code)
	case errors.Is(err, model.ErrImmutableField):
		return fiber.StatusBadRequest, "IMMUTABLE_FIELD"
	case errors.Is(err, model.ErrInvalid):
		return fiber.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, model.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, model.ErrDuplicateID):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, model.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, model.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func codeFor(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= fiber.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// clientMessage returns the text shown to API clients. Server faults never expose details.
func clientMessage(err error, status int) string {
	if status >= fiber.StatusInternalServerError {
		return "internal server error"
	}
	var se *service.Error
	if errors.As(err, &se) {
		return se.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return "resource not found"
		case fiber.StatusMethodNotAllowed:
			return "method not allowed"
		case fiber.StatusUnauthorized:
			return fe.Message
		}
		return strings.ToLower(http.StatusText(fe.Code))
	}
	// Model validation errors are written for users.
	return err.Error()
}

// respondError writes err in the standard envelope and keeps it for the access log.
func respondError(c *fiber.Ctx, err error) error {
	status, code := MapHTTPStatus(err)
	c.Locals(middleware.ErrorLocalKey, err)
	return writeError(c, status, code, clientMessage(err, status))
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, err)
	}
}
