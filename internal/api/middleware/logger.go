package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

type logFieldsCtxKey struct{}

// AddLogField adds a field to the request log. The field map travels in the
// request context, so it survives any ResponseWriter re-wrapping done by
// middleware registered after Logger.
func AddLogField(r *http.Request, key string, value interface{}) {
	if fields, ok := r.Context().Value(logFieldsCtxKey{}).(map[string]interface{}); ok {
		fields[key] = value
	}
}

// Logger returns a middleware that logs HTTP requests
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			extra := make(map[string]interface{})
			r = r.WithContext(context.WithValue(r.Context(), logFieldsCtxKey{}, extra))

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				if val := r.Context().Value(RequestIDKey); val != nil {
					requestID = val.(string)
				}
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"query":      r.URL.RawQuery,
				"status":     wrapped.statusCode,
				"duration":   duration.Milliseconds(),
				"bytes":      wrapped.written,
				"ip":         r.RemoteAddr,
				"user_agent": r.UserAgent(),
				"request_id": requestID,
			}

			for k, v := range extra {
				fields[k] = v
			}

			log.WithFields(fields).Info("HTTP request")
		})
	}
}
