package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/kijiji-watch/internal/repo"
	"github.com/go-chi/chi/v5"
)

// WebhookTester sends a test message to a webhook URL.
type WebhookTester interface {
	TestWebhook(ctx context.Context, webhookURL string) error
}

// WebhookHandler handles Discord webhook CRUD plus test sends.
type WebhookHandler struct {
	Repo   *repo.WebhookRepo
	Tester WebhookTester
}

// ListWebhooks returns all registered webhooks.
func (h *WebhookHandler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// CreateWebhook registers a webhook. Body: {"name": "...", "url": "https://discord.com/api/webhooks/..."}.
func (h *WebhookHandler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if input.Name == "" {
		fields["name"] = "required"
	}
	if input.URL == "" {
		fields["url"] = "required"
	} else if !strings.HasPrefix(input.URL, "https://") {
		fields["url"] = "must be an https URL"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	id, err := h.Repo.Create(r.Context(), input.Name, input.URL)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	wh, err := h.Repo.GetByID(r.Context(), id)
	if err != nil || wh == nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(wh)
}

// DeleteWebhook removes a webhook. Searches pointing at it keep their
// reference; purge cleans those up.
func (h *WebhookHandler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, "invalid webhook id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TestWebhook sends a test message to the webhook so the admin can verify it works.
func (h *WebhookHandler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, "invalid webhook id", http.StatusBadRequest)
		return
	}

	wh, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if wh == nil {
		JSONError(w, "webhook not found", http.StatusNotFound)
		return
	}

	if err := h.Tester.TestWebhook(r.Context(), wh.URL); err != nil {
		JSONError(w, "test message failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
}
