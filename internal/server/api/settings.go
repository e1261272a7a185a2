package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/airmouse/internal/input"
	"github.com/ayusman/airmouse/internal/store"
)

// SettingsHandler serves /api/settings.
type SettingsHandler struct {
	ctrl Controller
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(ctrl Controller) *SettingsHandler {
	return &SettingsHandler{ctrl: ctrl}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Settings())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles PUT /api/settings. Absent fields keep their current value.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req store.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	applied, err := h.ctrl.UpdateSettings(req)
	if err != nil {
		if errors.Is(err, input.ErrUnknownMode) {
			writeError(w, http.StatusBadRequest, "input_mode must be shell or plugin")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply settings")
		return
	}

	writeJSON(w, http.StatusOK, applied)
}
