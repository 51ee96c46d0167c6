package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// DecodeError reports a 2xx response whose body did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UserMessage turns an error from this package into a short string fit
// for direct display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return statusMessage(httpErr.StatusCode)
	}

	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return "unexpected response from server"
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "network error: " + urlErr.Err.Error()
	}
	return err.Error()
}

func statusMessage(code int) string {
	switch {
	case code == http.StatusUnauthorized:
		return "session expired, sign in again"
	case code == http.StatusForbidden:
		return "you do not have permission to do that"
	case code == http.StatusNotFound:
		return "not found"
	case code == http.StatusTooManyRequests:
		return "too many requests, try again later"
	case code >= 500:
		return fmt.Sprintf("server error (HTTP %d)", code)
	default:
		return fmt.Sprintf("request failed (HTTP %d)", code)
	}
}
