package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"atelier/internal/domain"
	"atelier/internal/service"
)

// Handler handles canvas API requests
type Handler struct {
	graph  *service.GraphService
	layout *service.LayoutService
	logger *log.Logger
}

// New creates a new handler
func New(graph *service.GraphService, layout *service.LayoutService, logger *log.Logger) *Handler {
	return &Handler{graph: graph, layout: layout, logger: logger}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Helper methods

// statusFor maps an error to the HTTP status of its sentinel
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status of its sentinel. Server faults are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, "method", r.Method, "path", r.URL.Path, "err", err)
	}
	h.writeError(w, message, err.Error(), status)
}

// decode reads a JSON request body. An empty body leaves v untouched when
// optional is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", "err", err)
	}
}
