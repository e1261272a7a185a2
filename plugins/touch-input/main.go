// Package main provides a pointer injection plugin for the local desktop.
// It clicks, long-presses and swipes via xdotool on Linux and cliclick on macOS.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PointerParams defines the coordinates of a pointer action in pixels.
type PointerParams struct {
	X          int   `json:"x"`
	Y          int   `json:"y"`
	X2         int   `json:"x2"`
	Y2         int   `json:"y2"`
	DurationMs int64 `json:"duration_ms"`
}

const defaultLongPressMs = 1000

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var params PointerParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid params: %v", err))
			return
		}
	}

	name, args, err := commandFor(runtime.GOOS, req.Action, params)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v: %s", req.Action, err, string(output)))
		return
	}

	writeSuccessResponse()
}

// commandFor builds the injection command for an action on the given OS.
func commandFor(goos, action string, p PointerParams) (string, []string, error) {
	if p.X < 0 || p.Y < 0 {
		return "", nil, fmt.Errorf("negative coordinates (%d, %d)", p.X, p.Y)
	}

	holdMs := p.DurationMs
	if holdMs <= 0 {
		holdMs = defaultLongPressMs
	}

	switch goos {
	case "linux":
		return xdotoolCommand(action, p, holdMs)
	case "darwin":
		return cliclickCommand(action, p, holdMs)
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

func xdotoolCommand(action string, p PointerParams, holdMs int64) (string, []string, error) {
	x, y := strconv.Itoa(p.X), strconv.Itoa(p.Y)
	seconds := strconv.FormatFloat(float64(holdMs)/1000, 'f', 3, 64)

	switch action {
	case "click":
		return "xdotool", []string{"mousemove", x, y, "click", "1"}, nil
	case "long-press":
		return "xdotool", []string{"mousemove", x, y, "mousedown", "1", "sleep", seconds, "mouseup", "1"}, nil
	case "swipe":
		return "xdotool", []string{
			"mousemove", x, y, "mousedown", "1",
			"sleep", seconds,
			"mousemove", strconv.Itoa(p.X2), strconv.Itoa(p.Y2), "mouseup", "1",
		}, nil
	default:
		return "", nil, fmt.Errorf("unknown action: %s", action)
	}
}

func cliclickCommand(action string, p PointerParams, holdMs int64) (string, []string, error) {
	at := fmt.Sprintf("%d,%d", p.X, p.Y)
	wait := "w:" + strconv.FormatInt(holdMs, 10)

	switch action {
	case "click":
		return "cliclick", []string{"c:" + at}, nil
	case "long-press":
		return "cliclick", []string{"dd:" + at, wait, "du:" + at}, nil
	case "swipe":
		to := fmt.Sprintf("%d,%d", p.X2, p.Y2)
		return "cliclick", []string{"dd:" + at, wait, "m:" + to, "du:" + to}, nil
	default:
		return "", nil, fmt.Errorf("unknown action: %s", action)
	}
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}
