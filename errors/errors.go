// Package errors provides standardized error handling patterns for the driver.
// It includes the typed errors surfaced through result sinks, standard error
// variables, and helper functions for consistent error wrapping across the system.
package errors

import (
	"errors"
	"fmt"
)

// Standard error variables for common conditions
var (
	// Connection lifecycle errors
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrClosed           = errors.New("connection closed")

	// Request construction errors
	ErrEmptyScript   = errors.New("empty script")
	ErrAcceptTooLong = errors.New("accept type exceeds 255 bytes")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ServerError is returned through a result sink when the server answers a
// request with a status code outside the success, no-content and
// partial-content classes. It carries the server-supplied message verbatim.
type ServerError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (status %d)", e.Code)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
}

// ConnectionClosedError terminates every pending command when the connection
// closes. All commands cancelled by one close event share the same detail.
type ConnectionClosedError struct {
	Code   int    // close status code reported by the transport, 0 if unknown
	Reason string // close reason reported by the transport, may be empty
}

// Error implements the error interface
func (e *ConnectionClosedError) Error() string {
	if e.Reason == "" {
		return "connection closed"
	}
	return fmt.Sprintf("connection closed: %s", e.Reason)
}

// Unwrap allows errors.Is(err, ErrClosed) checks on close errors.
func (e *ConnectionClosedError) Unwrap() error {
	return ErrClosed
}

// TransportError wraps a socket-level failure reported by the transport.
// It is informational: a transport error does not by itself terminate
// pending commands.
type TransportError struct {
	Err error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsServerError unwraps a ServerError from an error chain.
func AsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsConnectionClosed reports whether an error was caused by a connection close.
func IsConnectionClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}
