// Package telemetry provides low-overhead request instrumentation. Every
// request feeds the latency histogram; only slow requests are logged.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"shiftdb/pkg/logger"
	"shiftdb/pkg/metrics"
)

var slowThreshold = 200 * time.Millisecond

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware wraps the provided handler and records request timing and
// status.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		dur := time.Since(start)

		metrics.RequestDuration.
			WithLabelValues(r.Method, strconv.Itoa(srw.status)).
			Observe(dur.Seconds())

		if dur > slowThreshold {
			logger.Warn("slow_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", srw.status),
				zap.Duration("duration", dur))
		}
	})
}
