package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/mastersight/pkg/logger"
)

const maxLoggedBody = 4 << 10

// sensitiveFields are field names that should be filtered from logs
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"cookie",
	"secret",
	"cpf",
	"session",
	"credential",
}

// LoggingMiddleware logs each request and its response. JSON bodies are
// logged with sensitive fields masked; other bodies are summarised.
func LoggingMiddleware(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.FromOr(r.Context(), log)

			logRequest(reqLog, r)

			body := &bytes.Buffer{}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&limitedBuffer{buf: body, max: maxLoggedBody})

			next.ServeHTTP(ww, r)

			logResponse(r.Context(), reqLog, ww, body, time.Since(start))
		})
	}
}

func logRequest(log *slog.Logger, r *http.Request) {
	var logged string
	if r.Body != nil && isJSON(r.Header.Get("Content-Type")) {
		bodyBytes, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		logged = filterSensitiveBody(bodyBytes)
	} else if r.ContentLength > 0 {
		logged = "[" + r.Header.Get("Content-Type") + "]"
	}

	log.Info("incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", filterSensitiveQuery(r.URL.RawQuery),
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterSensitiveHeaders(r.Header),
		"body", logged,
	)
}

func logResponse(ctx context.Context, log *slog.Logger, ww middleware.WrapResponseWriter, body *bytes.Buffer, duration time.Duration) {
	statusCode := ww.Status()
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	var logged string
	if isJSON(ww.Header().Get("Content-Type")) {
		logged = filterSensitiveBody(body.Bytes())
	}

	log.Log(ctx, level, "response",
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", ww.BytesWritten(),
		"body", logged,
	)
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/json")
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// filterSensitiveHeaders masks sensitive headers
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

// filterSensitiveQuery masks values of sensitive query parameters such as
// the reset token on /auth/validate-token.
func filterSensitiveQuery(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	for i, part := range parts {
		key, _, found := strings.Cut(part, "=")
		if found && isSensitive(key) {
			parts[i] = key + "=[FILTERED]"
		}
	}
	return strings.Join(parts, "&")
}

// filterSensitiveBody masks sensitive fields in a JSON body
func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED - Contains sensitive data]"
		}
		return string(body)
	}

	filtered, err := json.Marshal(filterSensitiveJSON(data))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}
	return string(filtered)
}

// filterSensitiveJSON recursively masks sensitive keys
func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
			} else {
				filtered[key] = filterSensitiveJSON(value)
			}
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}

// limitedBuffer keeps the first max bytes and silently drops the rest.
type limitedBuffer struct {
	buf *bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}
