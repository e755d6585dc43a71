package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logging logs every request with its duration, status and payload size.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			logger.Info("request started", appendLoggerFields(r.Context(),
				"method", r.Method,
				"path", r.URL.Path,
				"peer", r.RemoteAddr,
			)...)

			next.ServeHTTP(recorder, r)

			duration := time.Since(start)
			if recorder.status >= http.StatusInternalServerError {
				logger.Error("request failed", appendLoggerFields(r.Context(),
					"method", r.Method,
					"path", r.URL.Path,
					"status", recorder.status,
					"duration", duration.String(),
					"duration_ms", duration.Milliseconds(),
					"response_size_bytes", recorder.bytes,
				)...)
			} else {
				logger.Info("request completed", appendLoggerFields(r.Context(),
					"method", r.Method,
					"path", r.URL.Path,
					"status", recorder.status,
					"duration", duration.String(),
					"duration_ms", duration.Milliseconds(),
					"response_size_bytes", recorder.bytes,
				)...)
			}
		})
	}
}

func appendLoggerFields(ctx context.Context, base ...any) []any {
	if requestID, ok := RequestIDFromContext(ctx); ok && requestID != "" {
		base = append(base, "request_id", requestID)
	}
	return base
}
