package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crucial707/kijiji-watch/internal/models"
)

// CategorySource lists the categories available for search filtering.
type CategorySource interface {
	Categories() []models.Category
}

// CategoryHandler serves the category list for the admin UI's dropdown.
type CategoryHandler struct {
	Source CategorySource
}

// ListCategories returns the known Kijiji categories.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Source.Categories())
}
