package client

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized matches any 401 response. The session has already been
	// cleared when it is returned.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotAuthenticated is returned without touching the network when an
	// authenticated endpoint is called while signed out.
	ErrNotAuthenticated = errors.New("not signed in")
)

// APIError is a non-2xx response from the backend. Message is the backend's
// "error" field verbatim when present.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsValidation reports a 4xx other than 401, to be shown next to the input.
func (e *APIError) IsValidation() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusUnauthorized
}

// IsNotFound reports a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsServer reports a 5xx.
func (e *APIError) IsServer() bool {
	return e.StatusCode >= 500
}

// FieldErrors renders Details as "field: message" lines in field order.
func (e *APIError) FieldErrors() []string {
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+e.Details[k])
	}
	return lines
}

// TransportError wraps failures that never produced a response: connection
// refused, DNS, timeouts. These are not retried automatically.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to connect to server: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request hit the client timeout.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	if errors.As(e.Err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(e.Err.Error(), "Client.Timeout")
}

// Describe turns any client error into the single line shown to the user.
func Describe(err error) string {
	var apiErr *APIError
	var tErr *TransportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return "not signed in: run 'campusctl auth login'"
	case errors.Is(err, ErrUnauthorized):
		return "session expired or invalid: run 'campusctl auth login'"
	case errors.As(err, &tErr):
		if tErr.Timeout() {
			return "request timed out; try again"
		}
		return tErr.Error()
	case errors.As(err, &apiErr):
		if apiErr.IsServer() && apiErr.Message == "" {
			return "the server failed to handle the request; previous data is unchanged"
		}
		return apiErr.Error()
	}
	return err.Error()
}
