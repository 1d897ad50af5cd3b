package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder captures the status code and response size for logging and
// tracing. WriteHeader is idempotent so late error writes cannot clobber the
// recorded status.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func recordStatus(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w}
}

func (rec *statusRecorder) Status() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status != 0 {
		return
	}
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(p []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += n
	return n, err
}

// Logging writes one access-log line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := recordStatus(w)
		next.ServeHTTP(rec, r)

		log.Printf(
			"%s %s %s %d %dB %s",
			r.RemoteAddr,
			r.Method,
			r.URL.Path,
			rec.Status(),
			rec.bytes,
			time.Since(start),
		)
	})
}
