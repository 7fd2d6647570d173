package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/kijiji-watch/internal/metrics"
)

// Prometheus records duration and count for every request except the scrape
// endpoint itself.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		metrics.RecordRequest(r.Method, r.URL.Path, ww.Status(), time.Since(start).Seconds())
	})
}
