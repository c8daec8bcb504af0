package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the URL shortener application.
// Each boundary error carries a stable kind for API responses; handlers map
// them onto HTTP status codes without exposing internals.

// ErrShortCodeNotFound is returned when a short code doesn't exist in the database
var ErrShortCodeNotFound = errors.New("short code not found")

// ErrInvalidURL is returned when the provided URL is not an absolute URL
// with a scheme and a host
var ErrInvalidURL = errors.New("invalid URL format")

// ErrCodeTaken is returned when a requested custom short code is already in use
var ErrCodeTaken = errors.New("short code already taken")

// ErrShortCodeGenerationFailed is returned when we can't generate a unique short code
var ErrShortCodeGenerationFailed = errors.New("failed to generate unique short code")

// ErrClickRecordingFailed is returned when click recording fails
type ErrClickRecordingFailed struct {
	ShortCode string
	Reason    string
}

func (e ErrClickRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record click for code %s: %s", e.ShortCode, e.Reason)
}
