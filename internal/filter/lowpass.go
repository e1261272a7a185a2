// Package filter provides the signal smoothing used to stabilize hand tracking coordinates.
package filter

// LowPass is a single-pole exponential low-pass filter.
// The smoothing factor is supplied per call, so the filter itself has no
// notion of cutoff frequency.
type LowPass struct {
	last        float64
	initialized bool
}

// Filter feeds a value through the filter and returns the filtered output.
// The first value is returned unchanged.
func (f *LowPass) Filter(value, alpha float64) float64 {
	if !f.initialized {
		f.last = value
		f.initialized = true
		return value
	}

	f.last = alpha*value + (1-alpha)*f.last
	return f.last
}

// Last returns the most recent filtered output, or 0 if nothing was filtered yet.
func (f *LowPass) Last() float64 {
	return f.last
}

// Initialized reports whether the filter has seen at least one value.
func (f *LowPass) Initialized() bool {
	return f.initialized
}

// Reset forgets all history.
func (f *LowPass) Reset() {
	f.last = 0
	f.initialized = false
}
