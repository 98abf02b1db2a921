package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoToken indicates an authenticated endpoint was called without a
// session credential available.
var ErrNoToken = errors.New("no session token")

// ConnError indicates the request could not complete at the transport
// level; the server never produced a response.
type ConnError struct {
	BaseURL string
	Err     error
}

func (e *ConnError) Error() string {
	if isConnectionRefused(e.Err) {
		return fmt.Sprintf("API server not running at %s", e.BaseURL)
	}
	return fmt.Sprintf("sending request to %s: %v", e.BaseURL, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// APIError indicates the server answered but rejected the request, either
// with a non-2xx status or a success:false envelope. Message carries the
// server-provided display text when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
}

func isConnectionRefused(err error) bool {
	return err != nil && strings.Contains(err.Error(), "connection refused")
}
