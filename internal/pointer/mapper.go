// Package pointer maps smoothed hand coordinates to an on-screen pointer position.
package pointer

import (
	"fmt"
	"log"
	"math"
)

// Screen describes the target display in pixels.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate checks that both dimensions are positive.
func (s Screen) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("screen dimensions must be positive, got %dx%d", s.Width, s.Height)
	}
	return nil
}

// Center returns the middle of the screen.
func (s Screen) Center() (float64, float64) {
	return float64(s.Width) / 2, float64(s.Height) / 2
}

// Target converts a normalized camera coordinate into screen space.
// The camera is mounted rotated by 90 degrees and mirrored relative to the
// display, so camera Y drives screen X and camera X drives screen Y.
func (s Screen) Target(handX, handY float64) (float64, float64) {
	return (1 - handY) * float64(s.Width), (1 - handX) * float64(s.Height)
}

// Clamp limits a position to the screen bounds.
func (s Screen) Clamp(x, y float64) (float64, float64) {
	return clamp(x, 0, float64(s.Width)), clamp(y, 0, float64(s.Height))
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// State is the authoritative pointer position and visibility intent.
type State struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Activated bool    `json:"activated"`
}

// Pixel returns the position truncated to whole pixels.
func (s State) Pixel() (int, int) {
	return int(s.X), int(s.Y)
}

// Mapper moves the pointer relative to an anchor captured when tracking starts.
//
// Mapping relative to the anchor instead of the absolute hand position keeps
// the pointer in place when tracking resumes after a loss.
type Mapper struct {
	screen      Screen
	sensitivity float64
	deadzone    float64

	anchored bool
	anchorX  float64
	anchorY  float64
	baseX    float64
	baseY    float64

	state State
}

// NewMapper creates a Mapper with the pointer at the center of the screen.
func NewMapper(screen Screen, sensitivity, deadzone float64) *Mapper {
	x, y := screen.Center()
	return &Mapper{
		screen:      screen,
		sensitivity: sensitivity,
		deadzone:    deadzone,
		state:       State{X: x, Y: y},
	}
}

// Update feeds a smoothed screen-space hand position.
// It returns the resulting pointer state and whether the pointer moved.
func (m *Mapper) Update(smoothedX, smoothedY float64) (State, bool) {
	if !m.anchored {
		m.anchorX = smoothedX
		m.anchorY = smoothedY
		m.baseX = m.state.X
		m.baseY = m.state.Y
		m.anchored = true
		log.Printf("Pointer anchor set: hand (%.1f, %.1f), pointer (%.1f, %.1f)",
			m.anchorX, m.anchorY, m.baseX, m.baseY)
		return m.state, false
	}

	dx := (smoothedX - m.anchorX) * m.sensitivity
	dy := (smoothedY - m.anchorY) * m.sensitivity

	if math.Hypot(dx, dy) <= m.deadzone {
		return m.state, false
	}

	x, y := m.screen.Clamp(m.baseX+dx, m.baseY+dy)
	if x == m.state.X && y == m.state.Y {
		return m.state, false
	}

	m.state.X = x
	m.state.Y = y
	return m.state, true
}

// ResetAnchor forces the next Update to capture a new anchor.
// The pointer itself does not move.
func (m *Mapper) ResetAnchor() {
	m.anchored = false
}

// Anchored reports whether an anchor is currently held.
func (m *Mapper) Anchored() bool {
	return m.anchored
}

// SetActivated records the visibility intent on the pointer state.
func (m *Mapper) SetActivated(activated bool) {
	m.state.Activated = activated
}

// State returns the current pointer state.
func (m *Mapper) State() State {
	return m.state
}

// Screen returns the screen the mapper clamps to.
func (m *Mapper) Screen() Screen {
	return m.screen
}
