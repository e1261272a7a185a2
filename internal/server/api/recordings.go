package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/airmouse/internal/detector"
	"github.com/ayusman/airmouse/internal/pipeline"
	"github.com/ayusman/airmouse/internal/store"
)

// RecordingHandler serves stored sample recordings and their replay.
type RecordingHandler struct {
	store *store.Store
	ctrl  Controller
}

// NewRecordingHandler creates a RecordingHandler. ctrl supplies the live
// pipeline configuration for replays; without it replay is unavailable.
func NewRecordingHandler(s *store.Store, ctrl Controller) *RecordingHandler {
	return &RecordingHandler{store: s, ctrl: ctrl}
}

type createRecordingRequest struct {
	Name    string            `json:"name"`
	Samples []detector.Sample `json:"samples"`
}

type recordingResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SampleCount int               `json:"sample_count"`
	DurationMs  int64             `json:"duration_ms"`
	CreatedAt   string            `json:"created_at"`
	Samples     []detector.Sample `json:"samples,omitempty"`
}

type listRecordingsResponse struct {
	Recordings []recordingResponse `json:"recordings"`
}

func toRecordingResponse(rec *store.Recording) recordingResponse {
	return recordingResponse{
		ID:          rec.ID,
		Name:        rec.Name,
		SampleCount: rec.SampleCount,
		DurationMs:  rec.DurationMs,
		CreatedAt:   formatTime(rec.CreatedAt),
		Samples:     rec.Samples,
	}
}

// ServeHTTP routes /api/recordings, /api/recordings/{id} and
// /api/recordings/{id}/replay.
func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/recordings")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "replay":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.replay(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// list handles GET /api/recordings.
func (h *RecordingHandler) list(w http.ResponseWriter, r *http.Request) {
	recordings, err := h.store.Recordings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recordings")
		return
	}

	response := listRecordingsResponse{
		Recordings: make([]recordingResponse, 0, len(recordings)),
	}
	for _, rec := range recordings {
		response.Recordings = append(response.Recordings, toRecordingResponse(rec))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/recordings.
func (h *RecordingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "samples are required")
		return
	}
	for i := 1; i < len(req.Samples); i++ {
		if req.Samples[i].TimestampMs < req.Samples[i-1].TimestampMs {
			writeError(w, http.StatusBadRequest, "samples must be ordered by timestamp_ms")
			return
		}
	}

	rec, err := h.store.Recordings().Create(req.Name, req.Samples)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create recording")
		return
	}

	writeJSON(w, http.StatusCreated, toRecordingResponse(rec))
}

// get handles GET /api/recordings/{id}, including the samples.
func (h *RecordingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Recordings().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recording")
		return
	}

	writeJSON(w, http.StatusOK, toRecordingResponse(rec))
}

// delete handles DELETE /api/recordings/{id}.
func (h *RecordingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Recordings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete recording")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// replay handles POST /api/recordings/{id}/replay[?interval_ms=N]. The
// samples run through a fresh pipeline built from the live configuration;
// the live pipeline is not touched.
func (h *RecordingHandler) replay(w http.ResponseWriter, r *http.Request, id string) {
	if h.ctrl == nil {
		writeError(w, http.StatusServiceUnavailable, "Replay is not available")
		return
	}

	var interval int64
	if raw := r.URL.Query().Get("interval_ms"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "interval_ms must be a positive integer")
			return
		}
		interval = n
	}

	rec, err := h.store.Recordings().Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recording")
		return
	}

	report, err := pipeline.Replay(h.ctrl.PipelineConfig(), rec.Samples, interval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replay recording")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
