// Package pipeline drives hand samples through smoothing, pointer mapping,
// pinch classification and presence tracking.
//
// A Pipeline is a synchronous state machine: each sample is processed to
// completion under one lock and yields the events it caused. Effects leave
// the pipeline without blocking, through a buffered event channel and an
// ActionSink.
package pipeline

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/ayusman/airmouse/internal/detector"
	"github.com/ayusman/airmouse/internal/filter"
	"github.com/ayusman/airmouse/internal/gesture"
	"github.com/ayusman/airmouse/internal/pointer"
)

// Overlay opacities for an active and an idle pointer.
const (
	ActiveOpacity = 0.8
	IdleOpacity   = 0.3
)

// EventKind identifies what an Event carries.
type EventKind string

const (
	// EventPointer reports a new pointer position.
	EventPointer EventKind = "pointer"
	// EventActivation reports a change of pointer visibility.
	EventActivation EventKind = "activation"
	// EventAction reports a classified pinch action.
	EventAction EventKind = "action"
)

// Event is one emission of the pipeline.
type Event struct {
	Kind        EventKind       `json:"kind"`
	X           int             `json:"x"`
	Y           int             `json:"y"`
	Activated   bool            `json:"activated"`
	Action      *gesture.Action `json:"action,omitempty"`
	TimestampMs int64           `json:"timestamp_ms"`
}

// Opacity returns the overlay opacity for an activation event.
func (e Event) Opacity() float64 {
	if e.Activated {
		return ActiveOpacity
	}
	return IdleOpacity
}

// ActionSink receives classified actions. Submit must not block.
type ActionSink interface {
	Submit(a gesture.Action) bool
}

// Pipeline owns all tracking state for one session.
type Pipeline struct {
	mu       sync.Mutex
	config   Config
	smoother *filter.Smoother
	mapper   *pointer.Mapper
	machine  *gesture.Machine
	presence *pointer.Presence
	sink     ActionSink

	events  chan Event
	dropped atomic.Int64
}

// New creates a Pipeline. sink may be nil, in which case actions are only
// reported as events.
func New(config Config, sink ActionSink) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	smoother, err := filter.NewSmoother(config.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Pipeline{
		config:   config,
		smoother: smoother,
		mapper:   pointer.NewMapper(config.Screen, config.Sensitivity, config.Deadzone),
		machine:  gesture.NewMachine(config.gesture()),
		presence: pointer.NewPresence(config.HandLossTimeoutMs),
		sink:     sink,
		events:   make(chan Event, config.EventBufferSize),
	}, nil
}

// Process runs one detected sample through the pipeline and returns the
// events it produced.
func (p *Pipeline) Process(s detector.Sample) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []Event

	if p.presence.Seen(s.TimestampMs) {
		p.mapper.SetActivated(true)
		events = append(events, Event{Kind: EventActivation, Activated: true, TimestampMs: s.TimestampMs})
		log.Println("Hand acquired, pointer activated")
	}

	tx, ty := p.config.Screen.Target(s.X, s.Y)
	sx, sy := p.smoother.Filter(tx, ty, s.TimestampMs)

	state, moved := p.mapper.Update(sx, sy)
	if moved {
		x, y := state.Pixel()
		events = append(events, Event{Kind: EventPointer, X: x, Y: y, TimestampMs: s.TimestampMs})
	}

	if action, ok := p.machine.Update(s.Pinching, s.TimestampMs, gesture.Point{X: state.X, Y: state.Y}); ok {
		events = append(events, Event{Kind: EventAction, Action: &action, TimestampMs: s.TimestampMs})
		log.Printf("Gesture: %s", action)
		if p.sink != nil {
			p.sink.Submit(action)
		}
	}

	p.publish(events)
	return events
}

// HandLost reports a cycle in which no hand was detected at timestampMs.
// The anchor is released immediately; the pointer is deactivated once the
// hand has been missing for longer than the hand loss timeout.
func (p *Pipeline) HandLost(timestampMs int64) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mapper.ResetAnchor()

	if !p.presence.Lost(timestampMs) {
		return nil
	}

	p.mapper.SetActivated(false)
	log.Println("Hand lost timeout, pointer deactivated")

	events := []Event{{Kind: EventActivation, Activated: false, TimestampMs: timestampMs}}
	p.publish(events)
	return events
}

// Reset ends the current tracking session at timestampMs: the anchor,
// the filter history and any open pinch are dropped without emitting an
// action, and the pointer is deactivated right away. The pointer keeps its
// position.
func (p *Pipeline) Reset(timestampMs int64) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mapper.ResetAnchor()
	p.smoother.Reset()
	p.machine.Cancel()

	if !p.presence.Reset() {
		return nil
	}

	p.mapper.SetActivated(false)
	log.Println("Tracking reset, pointer deactivated")

	events := []Event{{Kind: EventActivation, Activated: false, TimestampMs: timestampMs}}
	p.publish(events)
	return events
}

// publish offers events to the channel without blocking.
func (p *Pipeline) publish(events []Event) {
	for _, e := range events {
		select {
		case p.events <- e:
		default:
			p.dropped.Add(1)
		}
	}
}

// Events returns the channel on which every emitted event is offered.
// Events that do not fit in the buffer are dropped and counted.
func (p *Pipeline) Events() <-chan Event {
	return p.events
}

// Dropped returns how many events did not fit in the event channel.
func (p *Pipeline) Dropped() int64 {
	return p.dropped.Load()
}

// State returns the current pointer state.
func (p *Pipeline) State() pointer.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mapper.State()
}

// Phase returns the pinch phase.
func (p *Pipeline) Phase() gesture.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Phase()
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.config
}
