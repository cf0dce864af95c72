// Package api implements the HTTP surface of the audit chain service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"auditchain/internal/domain"
)

// Error is the JSON body returned for every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Error{Code: status, Message: message})
}

// writeDomainError maps domain error types onto HTTP statuses. Unknown
// errors become opaque 500s; their detail belongs in the server log, not
// the response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.As(err, new(*domain.ValidationError)):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, new(*domain.AccessDeniedError)):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, new(*domain.NotFoundError)):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, new(*domain.ConflictError)):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
