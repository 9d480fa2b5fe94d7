package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a service error that already knows its HTTP status. Message is
// safe to show to callers.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatusCode() int { return e.Status }

func New(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message, nil) }

func NotFound(message string) *Error { return New(http.StatusNotFound, message, nil) }

func Conflict(message string) *Error { return New(http.StatusConflict, message, nil) }

func Unauthorized() *Error { return New(http.StatusUnauthorized, "Unauthorized", nil) }

// StatusOf returns the status carried by err, or def when err carries none.
func StatusOf(err error, def int) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return def
}
