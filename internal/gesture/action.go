package gesture

import "fmt"

// Kind identifies a discrete interaction produced by a pinch.
type Kind string

const (
	// KindClick is a short pinch without significant movement.
	KindClick Kind = "click"
	// KindLongPress is a held pinch without significant movement.
	KindLongPress Kind = "long-press"
	// KindSwipe is a pinch that moved the pointer past the swipe threshold.
	KindSwipe Kind = "swipe"
)

// Action is a high-level command for an input executor.
// Click and long-press use X and Y only; a swipe goes from (X, Y) to (X2, Y2)
// over DurationMs.
type Action struct {
	Kind        Kind  `json:"kind"`
	X           int   `json:"x"`
	Y           int   `json:"y"`
	X2          int   `json:"x2,omitempty"`
	Y2          int   `json:"y2,omitempty"`
	DurationMs  int64 `json:"duration_ms,omitempty"`
	TimestampMs int64 `json:"timestamp_ms"`
}

// Click builds a click action.
func Click(x, y int) Action {
	return Action{Kind: KindClick, X: x, Y: y}
}

// LongPress builds a long-press action.
func LongPress(x, y int) Action {
	return Action{Kind: KindLongPress, X: x, Y: y}
}

// Swipe builds a swipe action.
func Swipe(x1, y1, x2, y2 int, durationMs int64) Action {
	return Action{Kind: KindSwipe, X: x1, Y: y1, X2: x2, Y2: y2, DurationMs: durationMs}
}

func (a Action) String() string {
	switch a.Kind {
	case KindSwipe:
		return fmt.Sprintf("swipe (%d, %d) -> (%d, %d) in %dms", a.X, a.Y, a.X2, a.Y2, a.DurationMs)
	default:
		return fmt.Sprintf("%s (%d, %d)", a.Kind, a.X, a.Y)
	}
}
