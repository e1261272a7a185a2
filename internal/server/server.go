// Package server provides the HTTP server of the AirMouse service: the JSON
// API, the overlay pointer feed and the camera preview stream.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/airmouse/internal/capture"
	"github.com/ayusman/airmouse/internal/server/api"
	"github.com/ayusman/airmouse/internal/store"
)

// Config holds the server configuration. Routes whose dependencies are
// nil are not registered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller api.Controller
	Hub        *PointerHub
	Preview    *capture.Preview
}

// Server represents the HTTP server for the AirMouse service.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/actions", api.NewActionHandler(s.config.Store))

		recordings := api.NewRecordingHandler(s.config.Store, s.config.Controller)
		s.mux.Handle("/api/recordings", recordings)
		s.mux.Handle("/api/recordings/", recordings)
	}

	if s.config.Controller != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(s.config.Controller))
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Controller))
		s.mux.Handle("/api/debug/tap", api.NewTapHandler(s.config.Controller))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/pointer", s.config.Hub)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
