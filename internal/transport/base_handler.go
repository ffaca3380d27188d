package transport

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/dayflow-hq/dayflow/internal"
	"github.com/dayflow-hq/dayflow/pkg/logger"
)

// Envelope is the uniform success body: {success, message, data}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginatedEnvelope extends Envelope with pagination metadata for list
// endpoints.
type PaginatedEnvelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

type errorBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteSuccess writes the standard success envelope.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WritePaginated writes a list response with pagination metadata.
func (h *BaseHandler) WritePaginated(w http.ResponseWriter, message string, data interface{}, p Pagination) {
	h.writeJSON(w, http.StatusOK, PaginatedEnvelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: p,
	})
}

// WriteError writes a failure envelope with the given status.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.writeJSON(w, status, errorBody{Success: false, Message: message})
}

// HandleServiceError maps domain errors onto the failure envelope. AppErrors
// carry their own status; anything else is an unexpected 500 with the detail
// kept server-side.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.Logger.Error("service error", "type", appErr.Type, "code", appErr.Code, "message", appErr.Message, "cause", appErr.Cause)
		body := errorBody{Success: false, Message: appErr.GetDetailedMessage()}
		if details, ok := appErr.Details.(internal.ValidationErrors); ok {
			body.Errors = details.Errors
		}
		h.writeJSON(w, appErr.StatusCode, body)
		return
	}

	h.Logger.Error("unexpected service error", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, errorBody{Success: false, Message: "internal server error"})
}

func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
