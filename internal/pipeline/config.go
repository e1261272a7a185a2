package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/airmouse/internal/filter"
	"github.com/ayusman/airmouse/internal/gesture"
	"github.com/ayusman/airmouse/internal/pointer"
)

// ErrInvalidConfig is returned by New and Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Default tuning values.
const (
	DefaultSensitivity     = 1.0
	DefaultDeadzone        = 30.0
	DefaultEventBufferSize = 64
)

// Config is the static configuration of a Pipeline.
type Config struct {
	Screen            pointer.Screen `json:"screen"`
	Sensitivity       float64        `json:"sensitivity"`
	Deadzone          float64        `json:"deadzone"`
	SwipeThreshold    float64        `json:"swipe_threshold"`
	ClickOffset       int            `json:"click_offset"`
	HandLossTimeoutMs int64          `json:"hand_loss_timeout_ms"`
	Filter            filter.Config  `json:"filter"`

	// EventBufferSize is the capacity of the Events channel.
	EventBufferSize int `json:"-"`
}

// DefaultConfig returns the default tuning for the given screen.
func DefaultConfig(screen pointer.Screen) Config {
	g := gesture.DefaultConfig()
	return Config{
		Screen:            screen,
		Sensitivity:       DefaultSensitivity,
		Deadzone:          DefaultDeadzone,
		SwipeThreshold:    g.SwipeThreshold,
		ClickOffset:       g.ClickOffset,
		HandLossTimeoutMs: pointer.DefaultHandLossTimeoutMs,
		Filter:            filter.DefaultConfig(),
		EventBufferSize:   DefaultEventBufferSize,
	}
}

// Validate reports the first problem with the configuration.
func (c Config) Validate() error {
	if err := c.Screen.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !(c.Sensitivity > 0) || math.IsInf(c.Sensitivity, 0) {
		return fmt.Errorf("%w: sensitivity must be positive, got %v", ErrInvalidConfig, c.Sensitivity)
	}
	if !(c.Deadzone >= 0) {
		return fmt.Errorf("%w: deadzone must be non-negative, got %v", ErrInvalidConfig, c.Deadzone)
	}
	if c.HandLossTimeoutMs < 0 {
		return fmt.Errorf("%w: hand loss timeout must be non-negative, got %d", ErrInvalidConfig, c.HandLossTimeoutMs)
	}
	if c.EventBufferSize < 0 {
		return fmt.Errorf("%w: event buffer size must be non-negative, got %d", ErrInvalidConfig, c.EventBufferSize)
	}
	if err := c.gesture().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) gesture() gesture.Config {
	return gesture.Config{
		SwipeThreshold: c.SwipeThreshold,
		ClickOffset:    c.ClickOffset,
		ScreenHeight:   c.Screen.Height,
	}
}
