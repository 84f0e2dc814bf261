package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rzbill/xstream/internal/store"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeStoreError maps store errors to status codes: invalid input is the
// caller's fault (400), everything else is logged and reported as 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, logger logpkg.Logger, op string, err error) {
	if errors.Is(err, store.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.WithContext(r.Context()).WithError(err).Error(op+" failed", logpkg.Operation(op))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// parseCount parses the count query parameter.
//
// Returns 0 (store default) for empty or non-positive values and an
// invalid-input error for anything that is not an integer.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: count must be an integer, got %q", store.ErrInvalidInput, s)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// parseTimestamp parses the optional ms query parameter of xadd.
//
// Returns 0 (use the wall clock) for empty strings.
func parseTimestamp(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	ms, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: ms must be a non-negative integer, got %q", store.ErrInvalidInput, s)
	}
	return ms, nil
}
