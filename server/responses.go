package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/rs/zerolog"
)

const (
	msgUnexpected    = "An unexpected error occurred"
	msgNotConfigured = "App not configured"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// statusFor maps the error taxonomy onto HTTP. Client errors carry their own message;
// server errors are logged and answered with a generic message.
func statusFor(r *http.Request, err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, errors.ErrValidation):
		return http.StatusBadRequest, errors.Message(err, "Invalid request")
	case errors.Is(err, errors.ErrAuthentication), errors.Is(err, errors.ErrExpired):
		return http.StatusUnauthorized, errors.Message(err, "Authentication failed")
	case errors.Is(err, errors.ErrConfiguration):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Configuration error")
		return http.StatusInternalServerError, msgNotConfigured
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(fallback)
		return http.StatusInternalServerError, fallback
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, message := statusFor(r, err, fallback)
	writeJSONError(w, message, status)
}
