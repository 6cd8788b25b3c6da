package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/mastersight/internal"
	"github.com/frahmantamala/mastersight/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes the {"error": code} body clients expect.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, code internal.ErrorCode) {
	h.WriteJSON(w, status, internal.Response{Error: code})
}

// HandleServiceError maps AppErrors to their status and code. Anything else is
// logged with its cause and reported as a generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromOr(r.Context(), h.Logger)

	if appErr, ok := internal.IsAppError(err); ok && appErr.Type != internal.ErrorTypeInternal {
		log.Debug("request rejected",
			"path", r.URL.Path,
			"status", appErr.StatusCode,
			"code", appErr.Code)
		h.WriteError(w, appErr.StatusCode, appErr.Code)
		return
	}

	log.Error("unexpected error",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	h.WriteError(w, http.StatusInternalServerError, internal.ErrCodeInternal)
}

// DecodeJSON reads a bounded JSON body into dst. An empty body leaves dst untouched.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return internal.ErrInvalidBody.WithCause(err)
	}
	return nil
}

// Identity returns the session identity placed in the context by the session middleware.
func (h *BaseHandler) Identity(r *http.Request) (internal.Identity, error) {
	id, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		return internal.Identity{}, internal.ErrUnauthorized
	}
	return id, nil
}

// QueryInt64 parses a positive integer query parameter. Missing or invalid
// values yield onErr.
func (h *BaseHandler) QueryInt64(r *http.Request, name string, onErr *internal.AppError) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, onErr
	}
	return v, nil
}
