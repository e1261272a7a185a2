package input

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ayusman/airmouse/internal/gesture"
)

// DefaultShellPrefix drives an Android device over adb.
var DefaultShellPrefix = []string{"adb", "shell", "input"}

// Runner runs a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner runs commands with os/exec.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ShellExecutor issues `input tap` and `input swipe` commands through a
// command prefix.
type ShellExecutor struct {
	prefix []string
	run    Runner
}

// NewShellExecutor creates a ShellExecutor. An empty prefix selects
// DefaultShellPrefix.
func NewShellExecutor(prefix []string) *ShellExecutor {
	if len(prefix) == 0 {
		prefix = DefaultShellPrefix
	}
	return &ShellExecutor{
		prefix: append([]string(nil), prefix...),
		run:    execRunner,
	}
}

// SetRunner replaces the command runner.
func (s *ShellExecutor) SetRunner(r Runner) {
	s.run = r
}

// Prefix returns the command prefix.
func (s *ShellExecutor) Prefix() []string {
	return append([]string(nil), s.prefix...)
}

// IsReady reports whether the target device answers. For an adb prefix this
// is `adb get-state` with the adb options that precede `shell`, such as
// `-s <serial>`; other prefixes are assumed ready.
func (s *ShellExecutor) IsReady(ctx context.Context) bool {
	if filepath.Base(s.prefix[0]) != "adb" {
		return true
	}
	args := append(s.adbOptions(), "get-state")
	out, err := s.run(ctx, s.prefix[0], args...)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "device"
}

// adbOptions returns the prefix arguments between adb and its shell command.
func (s *ShellExecutor) adbOptions() []string {
	for i, arg := range s.prefix[1:] {
		if arg == "shell" {
			return append([]string(nil), s.prefix[1:i+1]...)
		}
	}
	return nil
}

// Click taps at (x, y).
func (s *ShellExecutor) Click(ctx context.Context, x, y int) error {
	return s.input(ctx, "tap", x, y)
}

// LongPress holds at (x, y) as a zero-length swipe.
func (s *ShellExecutor) LongPress(ctx context.Context, x, y int) error {
	return s.input(ctx, "swipe", x, y, x, y, gesture.LongPressDurationMs)
}

// Swipe drags from (x1, y1) to (x2, y2) over durationMs.
func (s *ShellExecutor) Swipe(ctx context.Context, x1, y1, x2, y2 int, durationMs int64) error {
	return s.input(ctx, "swipe", x1, y1, x2, y2, int(durationMs))
}

func (s *ShellExecutor) input(ctx context.Context, verb string, values ...int) error {
	args := append([]string(nil), s.prefix[1:]...)
	args = append(args, verb)
	for _, v := range values {
		args = append(args, strconv.Itoa(v))
	}

	out, err := s.run(ctx, s.prefix[0], args...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s %s failed: %w: %s", s.prefix[0], verb, err, msg)
		}
		return fmt.Errorf("%s %s failed: %w", s.prefix[0], verb, err)
	}
	return nil
}
