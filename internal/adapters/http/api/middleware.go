package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

// instrument records request count and latency for endpoint and logs each
// request at debug level.
func instrument(endpoint string, log logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		took := time.Since(start)
		status := rec.status()
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(status), float64(took.Microseconds())/1000)
		log.Debug(r.Context(), "request served",
			logger.String("endpoint", endpoint),
			logger.String("method", r.Method),
			logger.Int("status", status),
			logger.Duration("took", took))
	}
}

// statusRecorder remembers the first status written. A handler that writes a
// body without calling WriteHeader answered 200.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.code == 0 {
		s.code = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) status() int {
	if s.code == 0 {
		return http.StatusOK
	}
	return s.code
}
