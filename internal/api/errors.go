package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionInvalid matches any error caused by an authentication-rejected
// response.
var ErrSessionInvalid = errors.New("session invalid")

var errBaseURLRequired = errors.New("api base url is required")

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *Error) Is(target error) bool {
	return target == ErrSessionInvalid && e.Status == http.StatusUnauthorized
}

// PublicMessage is the backend's own message when it sent one.
func PublicMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusOf returns the HTTP status of an *Error, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// SessionInvalid is the signal raised to listeners when the backend rejects
// the bearer token.
type SessionInvalid struct {
	Method string
	Path   string
	Status int
}
