package middleware

import "net/http"

// maxBodyBytes caps request bodies at 1 MiB. The largest legitimate body the
// API accepts is a search definition, which is a few hundred bytes.
const maxBodyBytes = 1 << 20

// LimitBody wraps the request body so reads past the cap fail with 413.
func LimitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
