package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/airmouse/internal/gesture"
	"github.com/ayusman/airmouse/internal/store"
)

// maxHistoryLimit caps the limit query parameter.
const maxHistoryLimit = 1000

// ActionHandler serves the history of performed actions at /api/actions.
type ActionHandler struct {
	store *store.Store
}

// NewActionHandler creates a new ActionHandler with the given store.
func NewActionHandler(s *store.Store) *ActionHandler {
	return &ActionHandler{store: s}
}

type actionResponse struct {
	ID        string         `json:"id"`
	Action    gesture.Action `json:"action"`
	CreatedAt string         `json:"created_at"`
}

type listActionsResponse struct {
	Actions []actionResponse `json:"actions"`
	Total   int              `json:"total"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/actions?limit=N, newest first.
func (h *ActionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.store.History().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}
	total, err := h.store.History().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count actions")
		return
	}

	response := listActionsResponse{
		Actions: make([]actionResponse, 0, len(entries)),
		Total:   total,
	}
	for _, e := range entries {
		response.Actions = append(response.Actions, actionResponse{
			ID:        e.ID,
			Action:    e.Action,
			CreatedAt: formatTime(e.CreatedAt),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// clear handles DELETE /api/actions.
func (h *ActionHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.History().Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear actions")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
