package input

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayusman/airmouse/internal/gesture"
	"github.com/ayusman/airmouse/internal/plugin"
)

// DefaultPluginName is the plugin used by ModePlugin when none is named.
const DefaultPluginName = "touch-input"

// PluginExecutor sends actions to a touch plugin over the plugin protocol.
type PluginExecutor struct {
	plugins *plugin.Manager
	runner  *plugin.Executor
	name    string
}

// NewPluginExecutor creates a PluginExecutor for the named plugin.
func NewPluginExecutor(plugins *plugin.Manager, runner *plugin.Executor, name string) *PluginExecutor {
	if name == "" {
		name = DefaultPluginName
	}
	return &PluginExecutor{plugins: plugins, runner: runner, name: name}
}

// Name returns the plugin name.
func (p *PluginExecutor) Name() string {
	return p.name
}

// IsReady reports whether the plugin has been discovered.
func (p *PluginExecutor) IsReady(ctx context.Context) bool {
	_, err := p.plugins.Get(p.name)
	return err == nil
}

// Click taps at (x, y).
func (p *PluginExecutor) Click(ctx context.Context, x, y int) error {
	return p.send(ctx, gesture.KindClick, plugin.PointerParams{X: x, Y: y})
}

// LongPress holds at (x, y).
func (p *PluginExecutor) LongPress(ctx context.Context, x, y int) error {
	return p.send(ctx, gesture.KindLongPress, plugin.PointerParams{
		X: x, Y: y, DurationMs: gesture.LongPressDurationMs,
	})
}

// Swipe drags from (x1, y1) to (x2, y2) over durationMs.
func (p *PluginExecutor) Swipe(ctx context.Context, x1, y1, x2, y2 int, durationMs int64) error {
	return p.send(ctx, gesture.KindSwipe, plugin.PointerParams{
		X: x1, Y: y1, X2: x2, Y2: y2, DurationMs: durationMs,
	})
}

func (p *PluginExecutor) send(ctx context.Context, kind gesture.Kind, params plugin.PointerParams) error {
	plug, err := p.plugins.Get(p.name)
	if err != nil {
		return fmt.Errorf("%w: plugin %s: %v", ErrNotReady, p.name, err)
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	resp, err := p.runner.Execute(ctx, plug, &plugin.Request{Action: string(kind), Params: raw})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s %s failed: %s", p.name, kind, resp.Error)
	}
	return nil
}
