package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
)

// Error types reported in the "type" field of failed responses
const (
	ErrorTypeInput  = "input_error"
	ErrorTypeServer = "server_error"
)

// Error kinds recorded in the server log for failures reported as server_error
const (
	kindDataUnavailable = "data_unavailable"
	kindInternal        = "internal"
)

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ClassifyError maps an error to its HTTP status and response body.
// Only input errors are reported to the caller; everything else, including
// missing market data, is a detail-free server_error.
func ClassifyError(err error) (int, ErrorResponse) {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, ErrorResponse{Type: ErrorTypeInput, Error: inputErr.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Type: ErrorTypeServer, Error: "Internal server error"}
}

// errorKind distinguishes data failures from other server errors in the log
func errorKind(err error) string {
	if domain.IsDataUnavailable(err) || errors.Is(err, domain.ErrInsufficientData) {
		return kindDataUnavailable
	}
	return kindInternal
}

// WriteJSON encodes data with the given status
func WriteJSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError classifies err and writes the failure envelope.
// Server errors are logged with full detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error, log zerolog.Logger) {
	status, body := ClassifyError(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("kind", errorKind(err)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	} else {
		log.Debug().Err(err).Str("type", body.Type).Msg("Request rejected")
	}
	WriteJSON(w, status, body, log)
}
