package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/airmouse/internal/input"
)

// StatusHandler serves GET /api/status.
type StatusHandler struct {
	ctrl Controller
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(ctrl Controller) *StatusHandler {
	return &StatusHandler{ctrl: ctrl}
}

// ServeHTTP implements the http.Handler interface.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Status(r.Context()))
}

// TapHandler serves POST /api/debug/tap, which sends one click through the
// input executor.
type TapHandler struct {
	ctrl Controller
}

// NewTapHandler creates a TapHandler.
func NewTapHandler(ctrl Controller) *TapHandler {
	return &TapHandler{ctrl: ctrl}
}

type tapRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// ServeHTTP implements the http.Handler interface.
func (h *TapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}
	if *req.X < 0 || *req.Y < 0 {
		writeError(w, http.StatusBadRequest, "x and y must not be negative")
		return
	}

	if err := h.ctrl.Tap(r.Context(), *req.X, *req.Y); err != nil {
		if errors.Is(err, input.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "Input target not ready")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"x": *req.X, "y": *req.Y})
}
