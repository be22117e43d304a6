package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error represents a transport failure: no HTTP response was obtained.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the failure was a deadline or network timeout.
func (e *Error) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// RemoteError reports that the publisher answered with a non-success status.
type RemoteError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *RemoteError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("remote error for %s: status %d: %s", e.URL, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("remote error for %s: status %d", e.URL, e.StatusCode)
}

// StatusOf returns the HTTP status carried by err, or 0 when there is none.
func StatusOf(err error) int {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode
	}
	return 0
}
