// Package fallback provides the handlers that take over every request the
// resolver did not map to a static file.
package fallback

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	typeFile  = "file"
	typeProxy = "proxy"

	// statusCanceled labels requests whose client went away before a
	// response was written
	statusCanceled = "canceled"
)

// statusRecorder keeps the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}

	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}

	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) label() string {
	if s.status == 0 {
		return statusCanceled
	}

	return strconv.Itoa(s.status)
}

func serveCounted(w http.ResponseWriter, r *http.Request, counter *prometheus.CounterVec, kind string, serve func(http.ResponseWriter, *http.Request)) {
	rec := &statusRecorder{ResponseWriter: w}
	serve(rec, r)

	counter.WithLabelValues(kind, rec.label()).Inc()
}
