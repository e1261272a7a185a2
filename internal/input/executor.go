// Package input delivers pointer actions to the controlled display.
//
// An Executor knows how to click, long-press and swipe on one kind of
// target. The Dispatcher queues actions coming out of the pipeline and runs
// them on a worker goroutine so that slow or failing executors never stall
// the tracking loop.
package input

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/airmouse/internal/gesture"
	"github.com/ayusman/airmouse/internal/plugin"
)

var (
	// ErrNotReady is returned when the executor's target is not reachable.
	ErrNotReady = errors.New("input executor not ready")
	// ErrUnknownMode is returned for an unrecognized input mode.
	ErrUnknownMode = errors.New("unknown input mode")
)

// Mode selects the Executor implementation.
type Mode string

const (
	// ModeShell runs input commands through a shell prefix such as
	// "adb shell input".
	ModeShell Mode = "shell"
	// ModePlugin sends actions to a touch plugin process.
	ModePlugin Mode = "plugin"
)

// DefaultMode is the input mode used when nothing is configured.
const DefaultMode = ModeShell

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeShell, ModePlugin:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Executor injects pointer actions into a display.
type Executor interface {
	IsReady(ctx context.Context) bool
	Click(ctx context.Context, x, y int) error
	LongPress(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2 int, durationMs int64) error
}

// Options configures the executors built by New.
type Options struct {
	// ShellPrefix is the command prefix for ModeShell.
	ShellPrefix []string
	// Plugins and PluginRunner back ModePlugin.
	Plugins      *plugin.Manager
	PluginRunner *plugin.Executor
	// PluginName is the plugin to use in ModePlugin.
	PluginName string
}

// New builds the Executor for mode.
func New(mode Mode, opts Options) (Executor, error) {
	switch mode {
	case ModeShell:
		return NewShellExecutor(opts.ShellPrefix), nil
	case ModePlugin:
		if opts.Plugins == nil || opts.PluginRunner == nil {
			return nil, errors.New("plugin mode needs a plugin manager and runner")
		}
		return NewPluginExecutor(opts.Plugins, opts.PluginRunner, opts.PluginName), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Perform runs a single gesture action on e.
func Perform(ctx context.Context, e Executor, a gesture.Action) error {
	switch a.Kind {
	case gesture.KindClick:
		return e.Click(ctx, a.X, a.Y)
	case gesture.KindLongPress:
		return e.LongPress(ctx, a.X, a.Y)
	case gesture.KindSwipe:
		return e.Swipe(ctx, a.X, a.Y, a.X2, a.Y2, a.DurationMs)
	default:
		return fmt.Errorf("unsupported action kind %q", a.Kind)
	}
}
