// Package gesture classifies pinch gestures into click, long-press and swipe actions.
package gesture

import (
	"fmt"
	"math"
)

// Classification constants.
const (
	// ClickMaxDurationMs is the longest pinch that still counts as a click.
	ClickMaxDurationMs = 500
	// SwipeDurationMs is the duration of every emitted swipe.
	SwipeDurationMs = 300
	// LongPressDurationMs is how long executors hold a long press.
	LongPressDurationMs = 1000
)

// Config holds the pixel thresholds used for classification.
type Config struct {
	// SwipeThreshold is the pointer displacement in pixels above which a
	// pinch becomes a swipe.
	SwipeThreshold float64

	// ClickOffset is added to the Y coordinate of clicks and long presses.
	// The anchor landmark sits slightly above the fingertip, so taps would
	// otherwise land high.
	ClickOffset int

	// ScreenHeight bounds the offset Y coordinate. Zero disables the bound.
	ScreenHeight int
}

// DefaultConfig returns the thresholds used on a phone-sized display.
func DefaultConfig() Config {
	return Config{
		SwipeThreshold: 60,
		ClickOffset:    15,
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.SwipeThreshold < 0 || math.IsNaN(c.SwipeThreshold) {
		return fmt.Errorf("swipe threshold must be non-negative, got %v", c.SwipeThreshold)
	}
	if c.ScreenHeight < 0 {
		return fmt.Errorf("screen height must be non-negative, got %d", c.ScreenHeight)
	}
	return nil
}

// Point is a pointer position in pixels.
type Point struct {
	X float64
	Y float64
}

// Phase is the state of the pinch machine.
type Phase int

const (
	// Idle means no pinch is in progress.
	Idle Phase = iota
	// Pinching means a pinch session is open.
	Pinching
)

func (p Phase) String() string {
	if p == Pinching {
		return "pinching"
	}
	return "idle"
}

// session is the pinch in progress.
type session struct {
	startMs int64
	start   Point
}

// Machine turns pinch edges into actions.
// Actions are only produced on the falling edge of a pinch.
type Machine struct {
	config  Config
	phase   Phase
	current session
}

// NewMachine creates an idle Machine.
func NewMachine(config Config) *Machine {
	return &Machine{config: config}
}

// Update feeds the pinch flag observed at nowMs with the pointer at pos.
// It returns an action and true when a pinch just ended.
func (m *Machine) Update(pinching bool, nowMs int64, pos Point) (Action, bool) {
	switch {
	case pinching && m.phase == Idle:
		m.phase = Pinching
		m.current = session{startMs: nowMs, start: pos}
		return Action{}, false

	case !pinching && m.phase == Pinching:
		m.phase = Idle
		action := m.classify(nowMs, pos)
		action.TimestampMs = nowMs
		return action, true
	}

	return Action{}, false
}

// classify decides what the finished pinch session was.
func (m *Machine) classify(nowMs int64, pos Point) Action {
	start := m.current.start
	duration := nowMs - m.current.startMs
	displacement := math.Hypot(pos.X-start.X, pos.Y-start.Y)

	if displacement > m.config.SwipeThreshold {
		return Swipe(int(start.X), int(start.Y), int(pos.X), int(pos.Y), SwipeDurationMs)
	}

	x := int(start.X)
	y := int(start.Y) + m.config.ClickOffset
	if m.config.ScreenHeight > 0 && y > m.config.ScreenHeight {
		y = m.config.ScreenHeight
	}

	if duration < ClickMaxDurationMs {
		return Click(x, y)
	}
	return LongPress(x, y)
}

// Cancel drops the pinch in progress without emitting an action.
func (m *Machine) Cancel() {
	m.phase = Idle
	m.current = session{}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}
