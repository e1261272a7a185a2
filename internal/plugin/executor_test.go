package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScriptPlugin creates a shell-script plugin in a temp dir and returns it.
func writeScriptPlugin(t *testing.T, script string, actions ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "plugin.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       "test-touch",
			Version:    "1.0.0",
			Executable: "plugin.sh",
			Actions:    actions,
		},
		Path:       dir,
		Executable: scriptPath,
	}
}

func clickRequest(t *testing.T, x, y int) *Request {
	t.Helper()
	params, err := json.Marshal(PointerParams{X: x, Y: y})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	return &Request{Action: "click", Params: params}
}

func TestNewExecutor(t *testing.T) {
	executor := NewExecutor(3000)
	if executor.timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", executor.timeout)
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := writeScriptPlugin(t, `cat <<'EOF'
{"success":true,"data":{"message":"tapped"}}
EOF
`, "click", "swipe")

	response, err := NewExecutor(5000).Execute(context.Background(), plugin, clickRequest(t, 10, 20))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success, got error %q", response.Error)
	}

	var data map[string]string
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to parse data: %v", err)
	}
	if data["message"] != "tapped" {
		t.Errorf("expected message 'tapped', got %q", data["message"])
	}
}

func TestExecutor_ExecuteEchoesRequest(t *testing.T) {
	// The plugin reads its request from stdin and reports the action back.
	plugin := writeScriptPlugin(t, `read line
case "$line" in
  *'"x":120'*'"y":340'*) echo '{"success":true}' ;;
  *) echo '{"success":false,"error":"unexpected request"}' ;;
esac
`)

	response, err := NewExecutor(5000).Execute(context.Background(), plugin, clickRequest(t, 120, 340))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !response.Success {
		t.Errorf("expected request to reach the plugin, got %q", response.Error)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := writeScriptPlugin(t, "sleep 5\necho '{\"success\":true}'\n")

	start := time.Now()
	_, err := NewExecutor(100).Execute(context.Background(), plugin, clickRequest(t, 0, 0))
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("expected early termination, took %v", elapsed)
	}
}

func TestExecutor_ContextCancelled(t *testing.T) {
	plugin := writeScriptPlugin(t, "sleep 5\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5000).Execute(ctx, plugin, clickRequest(t, 0, 0)); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestExecutor_UnsupportedAction(t *testing.T) {
	plugin := writeScriptPlugin(t, "echo '{\"success\":true}'\n", "click")

	req := &Request{Action: "swipe", Params: json.RawMessage(`{}`)}
	_, err := NewExecutor(5000).Execute(context.Background(), plugin, req)
	if err == nil || !strings.Contains(err.Error(), "does not support") {
		t.Errorf("expected unsupported action error, got %v", err)
	}
}

func TestExecutor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:    "non-zero exit with stderr",
			script:  "echo 'no display' >&2\nexit 1\n",
			wantErr: "no display",
		},
		{
			name:    "invalid JSON output",
			script:  "echo 'not json'\n",
			wantErr: "failed to parse plugin response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin := writeScriptPlugin(t, tt.script)

			_, err := NewExecutor(5000).Execute(context.Background(), plugin, clickRequest(t, 0, 0))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestManifest_Supports(t *testing.T) {
	m := Manifest{Actions: []string{"click", "swipe"}}
	if !m.Supports("click") || m.Supports("long-press") {
		t.Errorf("unexpected support set for %v", m.Actions)
	}
	if !(Manifest{}).Supports("anything") {
		t.Error("expected empty action list to accept everything")
	}
}
