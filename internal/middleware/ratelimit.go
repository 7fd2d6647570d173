package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles requests per client IP with a token bucket each.
// Meant for the login endpoint, where brute forcing the API token is the
// only thing worth throttling.
type LoginLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
	perMinute float64
	burst     int
}

// NewLoginLimiter allows perMinute requests per IP with the given burst.
func NewLoginLimiter(perMinute float64, burst int) *LoginLimiter {
	return &LoginLimiter{
		buckets:   make(map[string]*rate.Limiter),
		perMinute: perMinute,
		burst:     burst,
	}
}

func (l *LoginLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(rate.Limit(l.perMinute/60.0), l.burst)
		l.buckets[ip] = b
	}
	return b
}

func clientIP(r *http.Request) string {
	// First hop of X-Forwarded-For when behind a proxy.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Handler rejects over-limit requests with 429.
func (l *LoginLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.bucket(clientIP(r)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
