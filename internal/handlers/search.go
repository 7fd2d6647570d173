package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crucial707/kijiji-watch/internal/models"
	"github.com/crucial707/kijiji-watch/internal/repo"
	"github.com/go-chi/chi/v5"
)

// ScanController is the slice of the scanner the API needs: pick up schedule
// changes without waiting for the next tick, and run a search on demand.
type ScanController interface {
	Reconcile(ctx context.Context)
	PerformSearch(ctx context.Context, searchID int64)
}

// SearchHandler handles saved-search CRUD.
type SearchHandler struct {
	Repo    *repo.SearchRepo
	Scanner ScanController
}

type searchInput struct {
	Name            string `json:"name"`
	Keyword         string `json:"keyword"`
	RegionID        int64  `json:"region_id"`
	WebhookID       int64  `json:"webhook_id"`
	IntervalMinutes int    `json:"interval_minutes"`
	MinPrice        *int64 `json:"min_price"`
	MaxPrice        *int64 `json:"max_price"`
	Category        string `json:"category"`
	NoDuplicates    bool   `json:"no_duplicates"`
	Radius          int    `json:"radius"`
	IsActive        *bool  `json:"is_active"`
}

func (in searchInput) validate() map[string]string {
	fields := make(map[string]string)
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.RegionID <= 0 {
		fields["region_id"] = "required"
	}
	if in.WebhookID <= 0 {
		fields["webhook_id"] = "required"
	}
	if in.IntervalMinutes <= 0 {
		fields["interval_minutes"] = "must be positive"
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		fields["min_price"] = "must not be negative"
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		fields["max_price"] = "must not be negative"
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		fields["max_price"] = "must be >= min_price"
	}
	return fields
}

func (in searchInput) toModel() models.Search {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return models.Search{
		Name:            in.Name,
		Keyword:         in.Keyword,
		RegionID:        in.RegionID,
		WebhookID:       in.WebhookID,
		IntervalMinutes: in.IntervalMinutes,
		MinPrice:        in.MinPrice,
		MaxPrice:        in.MaxPrice,
		Category:        in.Category,
		NoDuplicates:    in.NoDuplicates,
		Radius:          in.Radius,
		IsActive:        active,
	}
}

// ListSearches returns all saved searches with joined region and webhook names.
func (h *SearchHandler) ListSearches(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// GetSearch returns one search by id.
func (h *SearchHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, "invalid search id", http.StatusBadRequest)
		return
	}

	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if s == nil {
		JSONError(w, "search not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// CreateSearch creates a saved search, schedules it, and kicks off its first scan.
func (h *SearchHandler) CreateSearch(w http.ResponseWriter, r *http.Request) {
	var input searchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := input.validate(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	id, err := h.Repo.Create(r.Context(), input.toModel())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil || s == nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.Scanner != nil && s.IsActive {
		h.Scanner.Reconcile(r.Context())
		// First scan runs in the background so the request returns promptly.
		go h.Scanner.PerformSearch(context.Background(), id)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(s)
}

// UpdateSearch replaces a search's definition. The schedule is re-diffed so
// interval edits take effect without a restart.
func (h *SearchHandler) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, "invalid search id", http.StatusBadRequest)
		return
	}

	var input searchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := input.validate(); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	existing, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if existing == nil {
		JSONError(w, "search not found", http.StatusNotFound)
		return
	}

	if err := h.Repo.Update(r.Context(), id, input.toModel()); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.Scanner != nil {
		h.Scanner.Reconcile(r.Context())
	}

	s, _ := h.Repo.GetByID(r.Context(), id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// ToggleSearch flips a search between active and paused.
func (h *SearchHandler) ToggleSearch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, "invalid search id", http.StatusBadRequest)
		return
	}

	existing, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if existing == nil {
		JSONError(w, "search not found", http.StatusNotFound)
		return
	}

	if err := h.Repo.ToggleActive(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.Scanner != nil {
		h.Scanner.Reconcile(r.Context())
	}

	s, _ := h.Repo.GetByID(r.Context(), id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// DeleteSearch removes a search and its recorded results, and unschedules it.
func (h *SearchHandler) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		JSONError(w, "invalid search id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.Scanner != nil {
		h.Scanner.Reconcile(r.Context())
	}

	w.WriteHeader(http.StatusNoContent)
}
