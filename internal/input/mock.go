package input

import (
	"context"
	"sync"

	"github.com/ayusman/airmouse/internal/gesture"
)

// MockExecutor records the actions it is asked to perform.
type MockExecutor struct {
	mu      sync.Mutex
	ready   bool
	err     error
	actions []gesture.Action
	notify  chan gesture.Action
}

// NewMockExecutor creates a ready MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{ready: true, notify: make(chan gesture.Action, 64)}
}

// SetReady sets the value returned by IsReady.
func (m *MockExecutor) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

// SetError makes every action fail with err after being recorded.
func (m *MockExecutor) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Actions returns a copy of the recorded actions.
func (m *MockExecutor) Actions() []gesture.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gesture.Action(nil), m.actions...)
}

// Performed receives each recorded action. Sends never block; actions beyond
// the buffer are only visible through Actions.
func (m *MockExecutor) Performed() <-chan gesture.Action {
	return m.notify
}

// IsReady returns the configured readiness.
func (m *MockExecutor) IsReady(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Click records a click.
func (m *MockExecutor) Click(ctx context.Context, x, y int) error {
	return m.record(gesture.Click(x, y))
}

// LongPress records a long press.
func (m *MockExecutor) LongPress(ctx context.Context, x, y int) error {
	return m.record(gesture.LongPress(x, y))
}

// Swipe records a swipe.
func (m *MockExecutor) Swipe(ctx context.Context, x1, y1, x2, y2 int, durationMs int64) error {
	return m.record(gesture.Swipe(x1, y1, x2, y2, durationMs))
}

func (m *MockExecutor) record(a gesture.Action) error {
	m.mu.Lock()
	m.actions = append(m.actions, a)
	err := m.err
	m.mu.Unlock()

	select {
	case m.notify <- a:
	default:
	}
	return err
}
