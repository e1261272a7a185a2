package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either a fixed set of hands or, when a script is set, one
// scripted frame per Detect call.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	script [][]HandLandmarks
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetScript queues per-frame results. Each Detect call consumes one entry;
// a nil entry means no hand in that frame. Once the script is exhausted the
// hands set by SetHands are returned.
func (m *MockDetector) SetScript(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// HandAt returns a right hand whose index knuckle sits at (x, y) in
// normalized frame coordinates. When pinching is true the thumb and index
// tips touch; otherwise they are spread well past DefaultPinchThreshold.
func HandAt(x, y float64, pinching bool) HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	at := func(dx, dy float64) Point3D {
		return Point3D{X: x + dx, Y: y + dy}
	}

	hand.Points[Wrist] = at(0, 0.25)
	hand.Points[ThumbCMC] = at(0.06, 0.20)
	hand.Points[ThumbMCP] = at(0.09, 0.14)
	hand.Points[ThumbIP] = at(0.10, 0.08)

	hand.Points[IndexMCP] = at(0, 0)
	hand.Points[IndexPIP] = at(0.01, -0.05)
	hand.Points[IndexDIP] = at(0.02, -0.08)
	hand.Points[IndexTip] = at(0.03, -0.10)

	if pinching {
		hand.Points[ThumbTip] = at(0.04, -0.09)
	} else {
		hand.Points[ThumbTip] = at(0.12, 0.02)
	}

	for i, base := range []int{MiddleMCP, RingMCP, PinkyMCP} {
		dx := -0.04 * float64(i+1)
		hand.Points[base] = at(dx, 0.01)
		hand.Points[base+1] = at(dx, -0.04)
		hand.Points[base+2] = at(dx, -0.07)
		hand.Points[base+3] = at(dx, -0.09)
	}

	return hand
}
