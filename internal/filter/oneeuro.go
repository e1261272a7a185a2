package filter

import (
	"errors"
	"fmt"
	"math"
)

// MinDeltaSeconds is the smallest time step the filter will use.
const MinDeltaSeconds = 0.001

// ErrInvalidConfig is returned when filter parameters are out of range.
var ErrInvalidConfig = errors.New("invalid filter config")

// Config holds the tuning parameters of a OneEuro filter.
type Config struct {
	// MinCutoff is the cutoff frequency in Hz used when the signal is still.
	MinCutoff float64

	// Beta scales how much the signal speed widens the cutoff.
	Beta float64

	// DerivativeCutoff is the cutoff frequency in Hz for the speed estimate.
	DerivativeCutoff float64
}

// DefaultConfig returns the tuning used for pointer tracking.
func DefaultConfig() Config {
	return Config{
		MinCutoff:        1.0,
		Beta:             0.5,
		DerivativeCutoff: 1.0,
	}
}

// Validate checks that all cutoffs are positive and beta is non-negative.
func (c Config) Validate() error {
	if !(c.MinCutoff > 0) {
		return fmt.Errorf("%w: min cutoff must be positive, got %v", ErrInvalidConfig, c.MinCutoff)
	}
	if !(c.Beta >= 0) {
		return fmt.Errorf("%w: beta must be non-negative, got %v", ErrInvalidConfig, c.Beta)
	}
	if !(c.DerivativeCutoff > 0) {
		return fmt.Errorf("%w: derivative cutoff must be positive, got %v", ErrInvalidConfig, c.DerivativeCutoff)
	}
	return nil
}

// OneEuro is a speed-adaptive low-pass filter for one axis.
//
// Slow motion narrows the cutoff, which removes tracking jitter; fast motion
// widens it, which keeps swipes responsive.
type OneEuro struct {
	config     Config
	value      LowPass
	derivative LowPass
	lastTimeMs int64
	hasTime    bool
}

// NewOneEuro creates a filter with the given parameters.
func NewOneEuro(config Config) (*OneEuro, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OneEuro{config: config}, nil
}

// alpha converts a cutoff frequency and a time step in seconds into a smoothing factor.
func alpha(cutoff, dt float64) float64 {
	tau := 1.0 / (2 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau/dt)
}

// Filter smooths a value observed at timestampMs.
//
// On the first sample, and whenever the timestamp does not advance, the
// derivative estimate is left untouched and the value goes through the
// low-pass with the minimum cutoff over a one second step.
func (f *OneEuro) Filter(value float64, timestampMs int64) float64 {
	if !f.hasTime || timestampMs <= f.lastTimeMs {
		if !f.hasTime {
			f.lastTimeMs = timestampMs
			f.hasTime = true
		}
		return f.value.Filter(value, alpha(f.config.MinCutoff, 1.0))
	}

	dt := float64(timestampMs-f.lastTimeMs) / 1000.0
	if dt < MinDeltaSeconds {
		dt = MinDeltaSeconds
	}
	f.lastTimeMs = timestampMs

	dValue := (value - f.value.Last()) / dt
	edValue := f.derivative.Filter(dValue, alpha(f.config.DerivativeCutoff, dt))

	cutoff := f.config.MinCutoff + f.config.Beta*math.Abs(edValue)
	return f.value.Filter(value, alpha(cutoff, dt))
}

// Derivative returns the last smoothed derivative in units per second.
func (f *OneEuro) Derivative() float64 {
	return f.derivative.Last()
}

// Reset forgets all history, including the last timestamp.
func (f *OneEuro) Reset() {
	f.value.Reset()
	f.derivative.Reset()
	f.lastTimeMs = 0
	f.hasTime = false
}
