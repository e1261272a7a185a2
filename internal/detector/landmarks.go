// Package detector provides hand landmark detection and converts landmarks into pointer samples.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// AnchorLandmark is the landmark that drives the pointer. The index finger
// knuckle stays still while thumb and index tip pinch, so the pointer does
// not drift during a click.
const AnchorLandmark = IndexMCP

// Point3D represents a normalized landmark position. X and Y are in [0, 1]
// relative to the frame; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// distance2D calculates the Euclidean distance between two points in the image plane.
func distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PinchDistance returns the image-plane distance between thumb tip and index tip.
func (h *HandLandmarks) PinchDistance() float64 {
	return distance2D(h.Points[ThumbTip], h.Points[IndexTip])
}

// Anchor returns the landmark used as the pointer position.
func (h *HandLandmarks) Anchor() Point3D {
	return h.Points[AnchorLandmark]
}
