package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"mynth/internal/httputil"
	"mynth/internal/uuidv7"
)

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLog tags every request with a time-ordered id and logs it on
// completion with status and duration.
func RequestLog(idGen *uuidv7.Generator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID, err := idGen.NextString()
			if err != nil {
				// Never fail a request over a log id
				logger.Warn("failed to generate request id", "error", err)
			} else {
				r = httputil.WithRequestID(r, requestID)
				w.Header().Set("X-Request-ID", requestID)
			}

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
