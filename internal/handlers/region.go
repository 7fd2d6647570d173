package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/kijiji-watch/internal/repo"
	"github.com/go-chi/chi/v5"
)

// RegionHandler handles region CRUD.
type RegionHandler struct {
	Repo *repo.RegionRepo
}

// ListRegions returns all registered regions.
func (h *RegionHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// CreateRegion registers a region. Body: {"name": "Edmonton", "url": "https://www.kijiji.ca/b-buy-sell/edmonton/..."}.
func (h *RegionHandler) CreateRegion(w http.ResponseWriter, r *http.Request) {
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
	} else if !strings.Contains(input.URL, "kijiji.ca") {
		fields["url"] = "must be a kijiji.ca URL"
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

	region, err := h.Repo.GetByID(r.Context(), id)
	if err != nil || region == nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(region)
}

// DeleteRegion removes a region.
func (h *RegionHandler) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, "invalid region id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
