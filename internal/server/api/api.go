// Package api provides the JSON HTTP handlers of the AirMouse service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/airmouse/internal/app"
	"github.com/ayusman/airmouse/internal/pipeline"
	"github.com/ayusman/airmouse/internal/store"
)

// timeFormat is used for every timestamp in API responses.
const timeFormat = "2006-01-02T15:04:05Z07:00"

// Controller is the part of the running service the API drives.
// *app.App implements it.
type Controller interface {
	Status(ctx context.Context) app.Status
	Settings() store.Settings
	UpdateSettings(u store.SettingsUpdate) (store.Settings, error)
	Tap(ctx context.Context, x, y int) error
	PipelineConfig() pipeline.Config
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func formatTime(t time.Time) string {
	return t.Format(timeFormat)
}
