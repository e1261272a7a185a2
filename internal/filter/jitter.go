package filter

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// JitterStats summarizes the frame-to-frame movement of a track.
type JitterStats struct {
	Samples  int     `json:"samples"`
	MeanStep float64 `json:"mean_step"`
	StdDev   float64 `json:"std_dev"`
	MaxStep  float64 `json:"max_step"`
}

// Jitter computes statistics over the absolute differences between
// consecutive values. Tracks with fewer than two values yield zero stats.
func Jitter(values []float64) JitterStats {
	if len(values) < 2 {
		return JitterStats{Samples: len(values)}
	}

	steps := make([]float64, len(values)-1)
	var maxStep float64
	for i := 1; i < len(values); i++ {
		steps[i-1] = math.Abs(values[i] - values[i-1])
		if steps[i-1] > maxStep {
			maxStep = steps[i-1]
		}
	}

	mean, std := stat.MeanStdDev(steps, nil)
	if math.IsNaN(std) {
		std = 0
	}

	return JitterStats{
		Samples:  len(values),
		MeanStep: mean,
		StdDev:   std,
		MaxStep:  maxStep,
	}
}
