package client

import (
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx HTTP response returned by the server.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// IsBadRequest reports whether the server rejected the input (400).
func (e *HTTPError) IsBadRequest() bool {
	return e != nil && e.StatusCode == http.StatusBadRequest
}
