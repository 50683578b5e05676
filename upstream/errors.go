package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse marks a response body that was not valid JSON. It is a
// fatal error class: never retried.
var ErrMalformedResponse = errors.New("malformed upstream response")

// APIError is a non-2xx response from the maintenance backend.
type APIError struct {
	Status  int    // HTTP status
	Code    string // server error code, when present
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream: %d %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
}

// AsAPIError unwraps err to an *APIError if one is present.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuth reports whether err is an HTTP 401 from the backend.
func IsAuth(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// Retryable classifies errors for the query layer's retry policy. 401 and 404
// are permanent client errors, and a malformed body will not fix itself;
// everything else (network faults, 5xx, timeouts) is considered transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	if apiErr, ok := AsAPIError(err); ok {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusNotFound:
			return false
		}
		return apiErr.Status >= 500
	}
	return true
}
