package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"loan-amortizer/apperrors"
	"loan-amortizer/service"
)

// maxBodyBytes bounds request bodies; a full batch fits comfortably.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// respondJSON encodes data into a buffer first so a failed encoding does not
// leave a half-written success response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&buf).Encode(data); err != nil {
			slog.Error("Error encoding response", "error", err)
			status = http.StatusInternalServerError
			buf.Reset()
			json.NewEncoder(&buf).Encode(ErrorResponse{Error: "internal server error"})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("Error writing response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, details any) {
	respondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// respondServiceError maps service and calculator errors to a status code.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, apperrors.ErrInvalidID),
		errors.Is(err, apperrors.ErrTooManyLoans):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperrors.ErrScheduleNotFound):
		respondError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, apperrors.ErrNonTerminating),
		errors.Is(err, apperrors.ErrNoViableTerm):
		respondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

// decodeJSON reads a JSON request body into v. It writes the error response
// itself and reports false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		respondError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		slog.Debug("Error decoding request body", "error", err)
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
