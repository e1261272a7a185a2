package pipeline

import (
	"github.com/ayusman/airmouse/internal/detector"
	"github.com/ayusman/airmouse/internal/filter"
	"github.com/ayusman/airmouse/internal/gesture"
)

// DefaultIntervalMs is the analysis interval of the live loop (20 Hz).
const DefaultIntervalMs = 50

// TrackJitter holds jitter statistics for both screen axes.
type TrackJitter struct {
	X filter.JitterStats `json:"x"`
	Y filter.JitterStats `json:"y"`
}

// Report is the outcome of replaying a recorded sample sequence.
type Report struct {
	Samples  int              `json:"samples"`
	Events   []Event          `json:"events"`
	Actions  []gesture.Action `json:"actions"`
	Raw      TrackJitter      `json:"raw_jitter"`
	Smoothed TrackJitter      `json:"smoothed_jitter"`
	Final    Event            `json:"final"`
}

// Replay runs samples through a fresh Pipeline built from config.
//
// Recordings only contain cycles where a hand was detected. Wherever two
// samples are further apart than one and a half intervals, the missing
// cycles are replayed as HandLost calls, one per intervalMs, the way the
// live loop would have reported them. A non-positive intervalMs selects
// DefaultIntervalMs.
func Replay(config Config, samples []detector.Sample, intervalMs int64) (*Report, error) {
	if intervalMs <= 0 {
		intervalMs = DefaultIntervalMs
	}
	// Every event is collected from return values.
	config.EventBufferSize = 0

	p, err := New(config, nil)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Samples: len(samples),
		Events:  []Event{},
		Actions: []gesture.Action{},
	}

	for i, s := range samples {
		if i > 0 {
			prev := samples[i-1].TimestampMs
			if s.TimestampMs-prev > intervalMs+intervalMs/2 {
				for ts := prev + intervalMs; ts < s.TimestampMs; ts += intervalMs {
					report.Events = append(report.Events, p.HandLost(ts)...)
				}
			}
		}
		report.Events = append(report.Events, p.Process(s)...)
	}

	for _, e := range report.Events {
		if e.Kind == EventAction {
			report.Actions = append(report.Actions, *e.Action)
		}
	}

	report.Raw, report.Smoothed, err = trackJitter(config, samples)
	if err != nil {
		return nil, err
	}

	state := p.State()
	x, y := state.Pixel()
	report.Final = Event{Kind: EventPointer, X: x, Y: y, Activated: state.Activated}
	if len(samples) > 0 {
		report.Final.TimestampMs = samples[len(samples)-1].TimestampMs
	}

	return report, nil
}

// trackJitter compares the screen-space target track with its smoothed version.
func trackJitter(config Config, samples []detector.Sample) (TrackJitter, TrackJitter, error) {
	smoother, err := filter.NewSmoother(config.Filter)
	if err != nil {
		return TrackJitter{}, TrackJitter{}, err
	}

	rawX := make([]float64, 0, len(samples))
	rawY := make([]float64, 0, len(samples))
	smoothX := make([]float64, 0, len(samples))
	smoothY := make([]float64, 0, len(samples))

	for _, s := range samples {
		tx, ty := config.Screen.Target(s.X, s.Y)
		sx, sy := smoother.Filter(tx, ty, s.TimestampMs)
		rawX = append(rawX, tx)
		rawY = append(rawY, ty)
		smoothX = append(smoothX, sx)
		smoothY = append(smoothY, sy)
	}

	raw := TrackJitter{X: filter.Jitter(rawX), Y: filter.Jitter(rawY)}
	smoothed := TrackJitter{X: filter.Jitter(smoothX), Y: filter.Jitter(smoothY)}
	return raw, smoothed, nil
}
