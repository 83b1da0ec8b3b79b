package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/auth"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// DecodeJSON reads the request body into v, writing a 400 on failure.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorBody("invalid request body", err.Error()))
		return v, false
	}
	return v, true
}

// WriteError maps the error taxonomy to HTTP statuses at the transport
// edge; nothing below the handlers knows about status codes.
//
//	ValidationError -> 400, NotFound -> 404, Forbidden -> 403,
//	PartialFailure -> 207, PersistenceError/other -> 500
func WriteError(w http.ResponseWriter, err error) {
	var validation *apperrors.ValidationError
	var partial *apperrors.PartialFailure
	var persistence *apperrors.PersistenceError

	switch {
	case errors.As(err, &validation):
		WriteJSON(w, http.StatusBadRequest, errorBody("validation_failed", validation.Error()))
	case errors.Is(err, apperrors.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorBody("not_found", err.Error()))
	case errors.Is(err, apperrors.ErrForbidden):
		WriteJSON(w, http.StatusForbidden, errorBody("forbidden", err.Error()))
	case errors.Is(err, auth.ErrEmailExists):
		WriteJSON(w, http.StatusConflict, errorBody("email_exists", err.Error()))
	case errors.Is(err, auth.ErrWeakPassword):
		WriteJSON(w, http.StatusBadRequest, errorBody("weak_password", err.Error()))
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteJSON(w, http.StatusUnauthorized, errorBody("invalid_credentials", err.Error()))
	case errors.As(err, &partial):
		// Distinct from total failure: the caller retries only the
		// missing sub-writes.
		body := map[string]interface{}{
			"error":             "partial_failure",
			"error_description": partial.Error(),
			"completed":         partial.Completed,
		}
		failed := make(map[string]string, len(partial.Failed))
		for key, ferr := range partial.Failed {
			failed[key] = ferr.Error()
		}
		body["failed"] = failed
		WriteJSON(w, http.StatusMultiStatus, body)
	case errors.As(err, &persistence):
		// Transient backend failure; mutations are idempotent, retry.
		WriteJSON(w, http.StatusInternalServerError, errorBody("persistence_failed", ""))
	default:
		WriteJSON(w, http.StatusInternalServerError, errorBody("internal_error", ""))
	}
}

func errorBody(code, description string) map[string]string {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	return body
}
