package portalapi

import (
	"context"
	"errors"
	"fmt"
)

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response, or a 2xx response whose body is not the
// expected JSON (Err is then the decode error). Message carries the
// envelope's message or error field when the server sent one.
type HTTPError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP error! status: %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP error! status: %d", e.Op, e.Status)
}

// ApplicationError is a 2xx response whose envelope reported success:false.
type ApplicationError struct {
	Op      string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// UserMessage renders err the way the portal UI shows it: server text when
// there is some, a short generic description otherwise.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var appErr *ApplicationError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return fmt.Sprintf("HTTP error! status: %d", httpErr.Status)
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if errors.Is(netErr.Err, context.DeadlineExceeded) {
			return "Request timed out"
		}
		return "Network error"
	}

	if fallback != "" {
		return fallback
	}
	return err.Error()
}

const msgMalformedBody = "Invalid response from server"

// malformedBody reports a response whose body could not be decoded.
func malformedBody(op string, status int, err error) *HTTPError {
	return &HTTPError{Op: op, Status: status, Message: msgMalformedBody, Err: fmt.Errorf("decode JSON: %w", err)}
}
