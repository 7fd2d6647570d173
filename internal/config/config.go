package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	APIToken string

	// DBPath is the sqlite database file. Its directory is created on startup.
	DBPath string

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// ImmediateStart runs every active search once at startup before the timers take over.
	ImmediateStart bool

	// ReconcileInterval is how often the scanner re-diffs its timers against the
	// searches table (default 60s). Set via RECONCILE_INTERVAL_SECONDS.
	ReconcileInterval time.Duration

	// DispatchDelay is the pause between successive Discord sends within one scan
	// (default 1s). Set via DISPATCH_DELAY_MS.
	DispatchDelay time.Duration

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed for CORS (e.g. https://app.example.com, http://localhost:3000).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string
}

func Load() Config {
	return Config{
		Port:     getEnv("PORT", "8080"),
		APIToken: getEnv("API_TOKEN", "dev-token"),

		DBPath: getEnv("DB_PATH", "./data/kijiji_bot.db"),

		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		Env:            getEnv("ENV", "dev"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		ImmediateStart:    getEnvBool("SCAN_IMMEDIATE_START", true),
		ReconcileInterval: time.Duration(getEnvInt("RECONCILE_INTERVAL_SECONDS", 60)) * time.Second,
		DispatchDelay:     time.Duration(getEnvInt("DISPATCH_DELAY_MS", 1000)) * time.Millisecond,

		// Optional TLS configuration for HTTPS.
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
