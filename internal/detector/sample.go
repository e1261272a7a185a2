package detector

// DefaultPinchThreshold is the thumb-to-index distance, in normalized frame
// units, below which the hand counts as pinching.
const DefaultPinchThreshold = 0.05

// Sample is one observation of the tracked hand.
// X and Y are the normalized anchor coordinates in [0, 1].
type Sample struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Pinching      bool    `json:"pinching"`
	PinchDistance float64 `json:"pinch_distance"`
	TimestampMs   int64   `json:"timestamp_ms"`
}

// SampleFromHand converts detected landmarks into a Sample.
// A non-positive threshold falls back to DefaultPinchThreshold.
func SampleFromHand(hand *HandLandmarks, timestampMs int64, pinchThreshold float64) Sample {
	if pinchThreshold <= 0 {
		pinchThreshold = DefaultPinchThreshold
	}

	anchor := hand.Anchor()
	distance := hand.PinchDistance()

	return Sample{
		X:             clampUnit(anchor.X),
		Y:             clampUnit(anchor.Y),
		Pinching:      distance < pinchThreshold,
		PinchDistance: distance,
		TimestampMs:   timestampMs,
	}
}

// clampUnit limits a coordinate to [0, 1]. MediaPipe reports landmarks
// slightly outside the frame when the hand is partially visible.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
