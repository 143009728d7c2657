package api

import (
	"net/http"

	"github.com/ayusman/handcursor/internal/store"
)

// SettingsHandler exposes the tunables persisted by the last run.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// ServeHTTP handles GET /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	settings, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
