// Package plugin discovers and runs external input plugins for the AirMouse pointer system.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the manifest lists the given action.
// A manifest without an action list accepts everything.
func (m Manifest) Supports(action string) bool {
	if len(m.Actions) == 0 {
		return true
	}
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params"`
}

// PointerParams are the coordinates carried by click, long-press and swipe
// requests. X2, Y2 and DurationMs are only set for swipes and long presses.
type PointerParams struct {
	X          int   `json:"x"`
	Y          int   `json:"y"`
	X2         int   `json:"x2,omitempty"`
	Y2         int   `json:"y2,omitempty"`
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
