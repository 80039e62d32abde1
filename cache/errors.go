package cache

import (
	"errors"
	"net/http"
)

// Sentinel errors for cache operations.
var (
	ErrNilStore       = errors.New("cache: store is nil")
	ErrInvalidKey     = errors.New("cache: key is invalid")
	ErrSweeperRunning = errors.New("cache: sweeper already running")
	ErrSweeperStopped = errors.New("cache: sweeper not running")
)

// StatusError is a handler failure that carries an HTTP status.
// Handlers return it to fail a request with something other than 500.
// Errors are never cached.
type StatusError struct {
	Code    int
	Message string
	Err     error
}

// NewStatusError creates a StatusError with the given code and message.
func NewStatusError(code int, message string) *StatusError {
	return &StatusError{Code: code, Message: message}
}

// NotFound is shorthand for a 404 StatusError.
func NotFound(message string) *StatusError {
	return NewStatusError(http.StatusNotFound, message)
}

// BadRequest is shorthand for a 400 StatusError.
func BadRequest(message string) *StatusError {
	return NewStatusError(http.StatusBadRequest, message)
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// statusOf maps an error to an HTTP status and client-facing message.
func statusOf(err error) (int, string) {
	var se *StatusError
	if errors.As(err, &se) {
		code := se.Code
		if code == 0 {
			code = http.StatusInternalServerError
		}
		return code, se.Message
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
