package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zkaiera/last30days-skill/internal/domain"
)

// ErrorCode is a machine-readable error class in API responses.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeInvalidSources   ErrorCode = "invalid_sources"
	CodeMockUnavailable  ErrorCode = "mock_unavailable"
	CodeInternal         ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler maps a sentinel to a status; the full wrapped message is
// safe to return because request validation errors carry no internals.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

var requestErrorHandlers = []errorHandler{
	sentinelHandler(domain.ErrEmptyTopic, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrInvalidDays, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrConflictingDepth, http.StatusBadRequest, CodeValidationFailed),
	sentinelHandler(domain.ErrInvalidSources, http.StatusUnprocessableEntity, CodeInvalidSources),
	sentinelHandler(domain.ErrMockUnavailable, http.StatusBadRequest, CodeMockUnavailable),
}
