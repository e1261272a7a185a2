package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants.
const (
	// DefaultMotionThreshold is the percentage of changed pixels that counts
	// as motion.
	DefaultMotionThreshold = 1.0
	// blurSize is the Gaussian kernel used to suppress sensor noise.
	blurSize = 21
	// pixelDelta is the grey-level difference at which a pixel counts as changed.
	pixelDelta = 25
)

// MotionDetector compares consecutive frames and reports whether enough of
// the scene changed. It is used to skip hand detection while the camera
// looks at a still, empty scene.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	baseline  gocv.Mat
	primed    bool
}

// NewMotionDetector creates a MotionDetector. threshold is a percentage of
// pixels; a non-positive value selects DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect reports whether frame differs from the previous one by more than
// the threshold, along with the changed percentage. The first frame after
// construction or Reset only primes the baseline and reports no motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	if !m.primed {
		m.swapBaseline(blurred)
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.baseline, &diff)

	changed := gocv.NewMat()
	defer changed.Close()
	gocv.Threshold(diff, &changed, pixelDelta, 255, gocv.ThresholdBinary)

	percent := float64(gocv.CountNonZero(changed)) / float64(changed.Rows()*changed.Cols()) * 100
	m.swapBaseline(blurred)

	return percent > m.threshold, percent
}

// swapBaseline takes ownership of next as the comparison frame.
func (m *MotionDetector) swapBaseline(next gocv.Mat) {
	m.baseline.Close()
	m.baseline = next
	m.primed = true
}

// Reset forgets the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.baseline.Close()
	m.baseline = gocv.NewMat()
	m.primed = false
}

// Close releases the baseline frame. The detector stays usable and
// re-primes on the next Detect.
func (m *MotionDetector) Close() {
	m.Reset()
}

// SetThreshold changes the motion threshold. Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Threshold returns the current motion threshold.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
