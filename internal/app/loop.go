package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airmouse/internal/detector"
)

// loopState is carried by runLoop from one cycle to the next.
type loopState struct {
	activeMode  bool
	handPresent bool
	lastMotion  int64
}

// runLoop is the tracking loop. Every tick it reads one frame, runs hand
// detection and feeds the result to the active pipeline.
//
// While no hand is tracked and the scene has been still for IdleTimeoutMs,
// the loop drops to IdleIntervalMs and skips hand detection until motion
// is seen again. Every cycle without a sample counts as hand loss.
func (a *App) runLoop(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	st := loopState{activeMode: true, lastMotion: a.nowMs()}

	ticker := time.NewTicker(ActiveIntervalMs * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		if interval := a.cycle(&st); interval > 0 {
			ticker.Reset(interval)
		}
	}
}

// cycle runs one loop iteration. It returns the new tick interval when the
// loop switched between active and idle mode, zero otherwise.
func (a *App) cycle(st *loopState) time.Duration {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()

	now := a.nowMs()
	p := a.Pipeline()

	if !a.IsEnabled() {
		st.handPresent = false
		st.lastMotion = now
		p.HandLost(now)
		return 0
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		st.handPresent = false
		p.HandLost(now)
		return 0
	}
	defer frame.Close()

	if err := a.preview.Update(frame); err != nil {
		log.Printf("Preview update failed: %v", err)
	}

	var interval time.Duration
	if motion, _ := a.motion.Detect(frame); motion || st.handPresent {
		st.lastMotion = now
		if !st.activeMode {
			st.activeMode = true
			interval = ActiveIntervalMs * time.Millisecond
			log.Println("Switched to active mode")
		}
	} else if st.activeMode && now-st.lastMotion > IdleTimeoutMs {
		st.activeMode = false
		interval = IdleIntervalMs * time.Millisecond
		log.Println("Switched to idle mode")
	}

	if st.activeMode {
		st.handPresent = a.track(frame, now)
	} else {
		p.HandLost(now)
	}
	return interval
}

// track detects the primary hand in frame and reports it to the pipeline.
// It returns whether a hand was found. Actions are recorded in the history
// from the returned events, so a full event channel never loses them.
func (a *App) track(frame *gocv.Mat, timestampMs int64) bool {
	p := a.Pipeline()

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		p.HandLost(timestampMs)
		return false
	}

	hand := detector.Primary(hands)
	if hand == nil {
		p.HandLost(timestampMs)
		return false
	}

	a.recordActions(p.Process(detector.SampleFromHand(hand, timestampMs, a.config.PinchThreshold)))
	return true
}
