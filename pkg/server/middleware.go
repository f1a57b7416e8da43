package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
)

// contextKey is a private type for request-scoped context values.
type contextKey string

const contextKeyRequestID contextKey = "request_id"

// statusRecorder captures the status code written by a handler so the
// logging and metrics middleware can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMiddleware wraps an API handler with request ID assignment,
// rate limiting, request body capping, and structured request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, requestID))
		w.Header().Set("X-Request-ID", requestID)

		if !s.limiter.Allow() {
			rateLimitedTotal.Inc()
			WriteError(w, r, http.StatusTooManyRequests, hwerrors.ErrCodeRateLimitExceeded,
				"rate limit exceeded, retry later", true, nil)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		duration := time.Since(start)
		requestDuration.WithLabelValues(r.Method, routeLabel(r.URL.Path)).Observe(duration.Seconds())
		slog.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", duration,
			"request_id", requestID,
		)
	}
}

// routeLabel collapses per-resource paths into a fixed set of route
// templates so metric cardinality stays bounded.
func routeLabel(path string) string {
	const deployablePrefix = "/v1alpha1/deployables/"
	if !strings.HasPrefix(path, deployablePrefix) {
		return path
	}

	switch {
	case strings.HasSuffix(path, "/dependencies"):
		return deployablePrefix + ":name/dependencies"
	case strings.HasSuffix(path, "/labels"):
		return deployablePrefix + ":name/labels"
	default:
		return deployablePrefix + ":name"
	}
}
