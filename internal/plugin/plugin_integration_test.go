package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestPlugin_TouchInput_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pluginDir := findPluginDir("touch-input")
	if pluginDir == "" {
		t.Skip("touch-input plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("touch-input")
	if err != nil {
		t.Skipf("touch-input executable not built: %v", err)
	}

	for _, action := range []string{"click", "long-press", "swipe"} {
		if !plug.Manifest.Supports(action) {
			t.Errorf("expected manifest to list %q", action)
		}
	}

	// An unknown action is rejected by the plugin itself without touching
	// the desktop, so it is safe to run anywhere.
	unrestricted := *plug
	unrestricted.Manifest.Actions = nil
	req := &Request{
		Action: "scroll",
		Params: json.RawMessage(`{"x": 1, "y": 1}`),
	}

	resp, err := NewExecutor(5000).Execute(context.Background(), &unrestricted, req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for unknown action")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		manifest := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(manifest); err == nil {
			return dir
		}
	}
	return ""
}
