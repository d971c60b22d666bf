package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/domain"
	logpkg "github.com/digitalbridge/mongoes/internal/logger"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeUnknownEntity     = "unknown_entity"
	CodeNotFound          = "not_found"
	CodeIndexNotFound     = "index_not_found"
	CodeInvalidDocument   = "invalid_document"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeSearchDisabled    = "search_disabled"
	CodeSearchUnavailable = "search_unavailable"
	CodeSearchError       = "search_error"
	CodeInternalError     = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fault   string `json:"fault,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownEntity,
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrFormat,
		domain.ErrTransport,
		domain.ErrServer,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidInputHandler passes validation messages through; they are written for the client.
func invalidInputHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	return true
}

// searchFaultHandler reports search backend failures with their fault code.
func searchFaultHandler(w http.ResponseWriter, err error, msg string) bool {
	var se *domain.ServerError
	if errors.As(err, &se) {
		status, code := http.StatusBadGateway, CodeSearchError
		if se.Fault == domain.FaultIndexMissing {
			status, code = http.StatusNotFound, CodeIndexNotFound
		}
		writeJSON(w, status, ErrorResponse{Code: code, Message: msg, Fault: se.Fault})
		return true
	}
	var te *domain.TransportError
	if errors.As(err, &te) {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Code: CodeSearchUnavailable, Message: msg, Fault: te.Fault,
		})
		return true
	}
	return false
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrUnknownEntity, http.StatusNotFound, CodeUnknownEntity),
		invalidInputHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrFormat, http.StatusUnprocessableEntity, CodeInvalidDocument),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, CodeForbidden),
		searchFaultHandler,
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
