package webhooks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/crucial707/kijiji-watch/internal/models"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func withTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("KIJIJI_WATCH_API_URL", srv.URL)
	t.Setenv("KIJIJI_WATCH_TOKEN", "test-jwt")
	return srv
}

func TestListWebhooks_TableOutput(t *testing.T) {
	webhooks := []models.Webhook{
		{ID: 1, Name: "alerts", URL: "https://discord.com/api/webhooks/1/a"},
		{ID: 2, Name: "furniture", URL: "https://discord.com/api/webhooks/2/b"},
	}

	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/webhooks" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(webhooks)
	})

	cmd := listWebhooksCmd()

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "alerts") || !strings.Contains(out, "furniture") {
		t.Fatalf("expected webhook names in output, got: %s", out)
	}
}

func TestTestWebhook(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/webhooks/5/test" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
	})

	cmd := testWebhookCmd()

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{"5"})
	})

	if !strings.Contains(out, "Test message sent") {
		t.Fatalf("expected test confirmation, got: %s", out)
	}
}
