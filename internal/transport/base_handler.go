package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// Log prefers the request-scoped logger set by middleware.
func (h *BaseHandler) Log(r *http.Request) *slog.Logger {
	if lg, ok := logger.Lookup(r.Context()); ok {
		return lg
	}
	return h.Logger
}

func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a bare status/message error for transport-level failures.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	code := internal.ErrCodeValidationFailed
	errType := internal.ErrorTypeValidation
	switch status {
	case http.StatusUnauthorized:
		errType, code = internal.ErrorTypeUnauthorized, internal.ErrCodeInvalidToken
	case http.StatusForbidden:
		errType, code = internal.ErrorTypeForbidden, internal.ErrCodeAdminRequired
	case http.StatusNotFound:
		errType, code = internal.ErrorTypeNotFound, "NOT_FOUND"
	case http.StatusInternalServerError:
		errType, code = internal.ErrorTypeInternal, "INTERNAL_ERROR"
	}
	h.WriteAppError(w, &internal.AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		StatusCode: status,
	})
}

func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps domain errors to responses; anything that is not an
// *AppError is reported as a 500 without leaking its message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("service error", "error", err)
		}
		h.WriteAppError(w, appErr)
		return
	}

	h.Logger.Error("unexpected service error", "error", err)
	h.WriteAppError(w, internal.NewInternalError("internal server error", err))
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}

// DecodeJSON decodes the request body, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// RequestConfirmer confirms when the request carries ?confirm=true or X-Confirm: true.
func RequestConfirmer(r *http.Request) internal.Confirmer {
	return internal.ConfirmFunc(func(context.Context, string) bool {
		for _, v := range []string{r.URL.Query().Get("confirm"), r.Header.Get("X-Confirm")} {
			if ok, err := strconv.ParseBool(v); err == nil && ok {
				return true
			}
		}
		return false
	})
}
