// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Message is the body of every non-validation error response.
type Message struct {
	Message string `json:"message"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg} with status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Message{Message: msg})
}

// RouteNotFound answers unknown routes.
func RouteNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteMessage(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// ErrorLogger maps errors to JSON responses and logs the ones the caller
// cannot act on.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// LogServerError logs err and writes 500 {"message":"Server error"}.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.Log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	WriteMessage(w, http.StatusInternalServerError, "Server error")
}

// Write classifies err with the apperr taxonomy and writes the matching
// response. Anything unclassified is logged under msg as a server error.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var ve *apperr.ValidationError
	if stderrors.As(err, &ve) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"errors": ve.Fields})
		return
	}

	status, fallback := Status(err)
	if status == http.StatusInternalServerError {
		e.LogServerError(w, r, msg, err)
		return
	}
	text := apperr.Message(err)
	if text == "" {
		text = fallback
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		e.Log.Debug(msg, zap.Error(err), zap.String("path", r.URL.Path))
	}
	WriteMessage(w, status, text)
}

// Status maps err to an HTTP status and a default message.
func Status(err error) (int, string) {
	switch {
	case stderrors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case stderrors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case stderrors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case stderrors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case stderrors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "Already exists"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
