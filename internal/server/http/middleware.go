package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rzbill/xstream/internal/metrics"
	"github.com/rzbill/xstream/internal/telemetry"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

const requestIDHeader = "X-Request-Id"

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID propagates an incoming X-Request-Id or mints a UUID, echoes it
// on the response and stores it for logpkg.Logger.WithContext.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)
		ctx := logpkg.ContextWithRequestID(r.Context(), rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs every request at debug level and records it in m when
// metrics are enabled.
func requestLogger(logger logpkg.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			route := routePattern(r)
			if m != nil {
				m.ObserveHTTP(route, r.Method, status, elapsed)
			}
			l := logger.WithContext(r.Context())
			if tid := telemetry.TraceIDFromContext(r.Context()); tid != "" {
				l = l.With(logpkg.Str("trace_id", tid))
			}
			l.Debug("http.request",
				logpkg.Str("method", r.Method),
				logpkg.Str("path", r.URL.Path),
				logpkg.Str("route", route),
				logpkg.Int("status", status),
				logpkg.Int("bytes", ww.BytesWritten()),
				logpkg.Int64("dur_ms", elapsed.Milliseconds()),
			)
		})
	}
}

// routePattern returns the matched chi pattern, e.g. /xadd/{stream}.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
