package electoralapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/oauth2"
)

var (
	// ErrAuthentication is returned when no bearer token could be obtained or the
	// commission API rejected the token.
	ErrAuthentication = errors.New("electoral commission authentication failed")

	// ErrTransient marks timeouts, connection failures and 5xx responses.
	ErrTransient = errors.New("electoral commission API temporarily unavailable")
)

// HTTPError is a non-200 response from the commission API.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func NewHTTPError(statusCode int, url, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, URL: url, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// IsRetryable reports whether err is a timeout, connection failure or 5xx-class
// response. 4xx responses and cancellations are never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrAuthentication) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
