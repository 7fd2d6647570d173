package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crucial707/kijiji-watch/internal/repo"
)

// MaintenanceHandler handles database housekeeping.
type MaintenanceHandler struct {
	Searches *repo.SearchRepo
	Scanner  ScanController
}

// Purge deletes searches whose region or webhook no longer exists, along with
// their recorded results, then re-diffs the schedules.
func (h *MaintenanceHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.Searches.PurgeOrphaned(r.Context()); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if h.Scanner != nil {
		h.Scanner.Reconcile(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "purged"})
}
