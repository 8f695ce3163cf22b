package owm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when geocoding yields no location
	ErrNotFound = errors.New("location not found")
	// ErrUnavailable wraps transport failures talking to the upstream API
	ErrUnavailable = errors.New("weather service unavailable")
)

// APIError is an upstream failure with a message safe to show to users
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message without the wrapped cause
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "Could not find a place name for the coordinates"
	}
	return "An unexpected error occurred. Please try again later."
}

func statusError(status int) *APIError {
	var msg string
	switch status {
	case http.StatusUnauthorized:
		msg = "Invalid API key"
	case http.StatusNotFound:
		msg = "City not found"
	case http.StatusTooManyRequests:
		msg = "Too many requests. Please try again later."
	default:
		msg = fmt.Sprintf("HTTP error: %d", status)
	}
	return &APIError{Status: status, Message: msg}
}
