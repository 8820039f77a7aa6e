package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is written as JSON

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/logging"
	"github.com/JonMunkholm/leadsync/internal/tracker"
)

var (
	errAPIKeyRequired  = errors.New("tracker api key is required")
	errHistoryDisabled = errors.New("run history is not configured")
	errNoFile          = errors.New("no file provided")
	errInvalidMode     = errors.New("invalid hierarchy mode")
	errInvalidForm     = errors.New("invalid form value")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func newErrorResponse(err error) ErrorResponse {
	msg := core.MapError(err)
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// respondError logs the technical error server-side and writes the mapped
// user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	resp := newErrorResponse(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", resp.Code,
	)

	writeJSON(w, r, statusCode, resp)
}

// statusFor picks the HTTP status for a handler error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrMissingRequiredColumn),
		errors.Is(err, core.ErrEmptyCompanyName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyFile), errors.Is(err, errNoFile),
		errors.Is(err, errAPIKeyRequired), errors.Is(err, errInvalidMode),
		errors.Is(err, errInvalidForm):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errHistoryDisabled):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Warn("json encode error", "error", err)
	}
}
