package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Now-Tiger/Flow/internal/contract"
	"github.com/Now-Tiger/Flow/internal/domain"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, contract.ErrorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decoding body: %w", domain.ErrValidation, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after body", domain.ErrValidation)
	}
	return nil
}

// messages overrides the client-facing text for a sentinel on one route.
type messages map[error]string

var errorTable = []struct {
	target  error
	status  int
	message string
}{
	{domain.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, "Not found"},
	{domain.ErrConflict, http.StatusBadRequest, "Conflict"},
	{domain.ErrParse, http.StatusInternalServerError, "Failed to parse task generation response"},
	{domain.ErrGenerationFailed, http.StatusInternalServerError, "Failed to generate tasks"},
	{domain.ErrPersistence, http.StatusInternalServerError, "Internal server error"},
}

// classify maps err onto a status and a fixed message. Error details never
// reach the client.
func classify(err error, override messages) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			if msg, ok := override[e.target]; ok {
				return e.status, msg
			}
			return e.status, e.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// fail writes the mapped error and logs server-side failures with detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, override messages) {
	status, msg := classify(err, override)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "http_error",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}
	respondError(w, status, msg)
}
