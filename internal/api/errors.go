package api

import (
	"errors"
	"fmt"
)

// AuthError indicates the service rejected the configured credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "Authentication failed: " + e.Message
}

// APIError is a non-auth failure reported in the service envelope.
type APIError struct {
	Message string
	Code    int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %s (code: %d)", e.Message, e.Code)
}

// TransportError wraps a network-level failure reaching the service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "Request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
