package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"finsight/internal/core"
	"finsight/internal/log"
)

// userIDHeader carries the caller identity. Every /api route requires it.
const userIDHeader = "X-User-ID"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors onto HTTP statuses. Validation problems are
// the caller's fault, missing or foreign records read as not found, and
// everything else is a 500 whose cause is logged but never exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case core.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundMessage(err)})
	default:
		s.logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// notFoundMessage renders missing and foreign records with the same body
// so a 404 never reveals whether the id exists under another user.
func notFoundMessage(err error) string {
	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var ae *core.AuthorizationError
	if errors.As(err, &ae) {
		return (&core.NotFoundError{Entity: ae.Entity, ID: ae.ID}).Error()
	}
	return "not found"
}

// requireUserID extracts the caller identity or writes a 400.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing " + userIDHeader + " header"})
		return "", false
	}
	return userID, true
}

// queryInt parses an integer query parameter, falling back when absent or
// malformed.
func queryInt(r *http.Request, key string, fallback int) int {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
