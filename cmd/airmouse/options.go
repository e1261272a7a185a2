package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ayusman/airmouse/internal/pointer"
)

// Defaults for command line options.
const (
	DefaultAddr   = ":8080"
	DefaultScreen = "1080x2400"
)

// options holds the command line configuration.
type options struct {
	Addr        string
	CameraID    int
	Screen      pointer.Screen
	Mode        string
	PluginDir   string
	DataDir     string
	ShellPrefix []string
	Tray        bool
}

// parseOptions reads flags from args. Every flag falls back to an
// AIRMOUSE_* environment variable, then to its default.
func parseOptions(args []string, getenv func(string) string, output io.Writer) (options, error) {
	env := func(key, def string) string {
		if v := getenv("AIRMOUSE_" + key); v != "" {
			return v
		}
		return def
	}

	cameraDefault, err := strconv.Atoi(env("CAMERA", "0"))
	if err != nil {
		return options{}, fmt.Errorf("AIRMOUSE_CAMERA: %w", err)
	}
	trayDefault, err := strconv.ParseBool(env("TRAY", "false"))
	if err != nil {
		return options{}, fmt.Errorf("AIRMOUSE_TRAY: %w", err)
	}

	fs := flag.NewFlagSet("airmouse", flag.ContinueOnError)
	fs.SetOutput(output)

	var opts options
	var screen, shell string
	fs.StringVar(&opts.Addr, "addr", env("ADDR", DefaultAddr), "HTTP listen address")
	fs.IntVar(&opts.CameraID, "camera", cameraDefault, "camera device ID")
	fs.StringVar(&screen, "screen", env("SCREEN", DefaultScreen), "target screen size as WIDTHxHEIGHT")
	fs.StringVar(&opts.Mode, "mode", env("MODE", ""), "input mode (shell or plugin); empty keeps the saved setting")
	fs.StringVar(&opts.PluginDir, "plugins", env("PLUGINS", ""), "plugin directory (default <data>/plugins)")
	fs.StringVar(&opts.DataDir, "data", env("DATA", ""), "data directory (default ~/.airmouse)")
	fs.StringVar(&shell, "shell", env("SHELL_PREFIX", ""), "command prefix for shell mode (default \"adb shell input\")")
	fs.BoolVar(&opts.Tray, "tray", trayDefault, "show the system tray menu")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts.Screen, err = parseScreen(screen)
	if err != nil {
		return options{}, err
	}
	if fields := strings.Fields(shell); len(fields) > 0 {
		opts.ShellPrefix = fields
	}

	return opts, nil
}

// parseScreen parses "WIDTHxHEIGHT".
func parseScreen(s string) (pointer.Screen, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return pointer.Screen{}, fmt.Errorf("invalid screen size %q, want WIDTHxHEIGHT", s)
	}

	width, err := strconv.Atoi(w)
	if err != nil {
		return pointer.Screen{}, fmt.Errorf("invalid screen width %q: %w", w, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return pointer.Screen{}, fmt.Errorf("invalid screen height %q: %w", h, err)
	}

	screen := pointer.Screen{Width: width, Height: height}
	return screen, screen.Validate()
}
