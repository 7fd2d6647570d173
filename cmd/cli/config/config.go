package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"

// APIURL returns the base URL for the Kijiji Watch API.
// It can be overridden with the KIJIJI_WATCH_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("KIJIJI_WATCH_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

func tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kijiji-watch", "token"), nil
}

// SaveToken stores the JWT for subsequent CLI commands.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// ReadToken returns the stored JWT. The KIJIJI_WATCH_TOKEN environment
// variable takes precedence over the token file.
func ReadToken() (string, error) {
	if v := os.Getenv("KIJIJI_WATCH_TOKEN"); v != "" {
		return v, nil
	}
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("no stored token (run: kijiji login): %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("stored token is empty (run: kijiji login)")
	}
	return token, nil
}
