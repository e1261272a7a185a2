package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ayusman/airmouse/internal/app"
	"github.com/ayusman/airmouse/internal/pipeline"
	"github.com/ayusman/airmouse/internal/server"
	"github.com/ayusman/airmouse/internal/store"
	"github.com/ayusman/airmouse/internal/tray"
)

func main() {
	opts, err := parseOptions(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	fmt.Println("AirMouse - hand gesture pointer")

	dataDir, err := resolveDataDir(opts.DataDir)
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	pluginDir := opts.PluginDir
	if pluginDir == "" {
		pluginDir = filepath.Join(dataDir, "plugins")
	}

	st, err := store.New(filepath.Join(dataDir, "airmouse.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{
		Store:       st,
		PluginDir:   pluginDir,
		CameraID:    opts.CameraID,
		Screen:      opts.Screen,
		ShellPrefix: opts.ShellPrefix,
	})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	if opts.Mode != "" {
		if _, err := application.UpdateSettings(store.SettingsUpdate{InputMode: &opts.Mode}); err != nil {
			log.Fatalf("Invalid input mode: %v", err)
		}
	}

	hub := server.NewPointerHub()
	application.OnEvent(hub.Publish)
	application.OnRunning(hub.SetRunning)

	var t *tray.Tray
	if opts.Tray {
		t = tray.New(application.IsEnabled())
		application.OnEvent(func(e pipeline.Event) {
			if e.Kind == pipeline.EventAction {
				t.SetLastAction(e.Action)
			}
		})
		application.OnRunning(t.SetRunning)
	}

	webDir := findWebDir(dataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Controller: application,
		Hub:        hub,
		Preview:    application.Preview(),
	})

	if err := application.Start(); err != nil {
		log.Printf("Camera unavailable, tracking disabled: %v", err)
	}

	go func() {
		fmt.Printf("Starting server on %s\n", opts.Addr)
		if err := srv.ListenAndServe(opts.Addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if t != nil {
		t.OnToggle(application.SetEnabled)
		t.OnSettings(func() { openBrowser(settingsURL(opts.Addr)) })
		t.OnQuit(func() {
			if err := application.Close(); err != nil {
				log.Printf("Error closing: %v", err)
			}
		})
		t.Run()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	if err := application.Close(); err != nil {
		log.Printf("Error closing: %v", err)
	}
}

// resolveDataDir returns dir, or ~/.airmouse when dir is empty, creating it.
func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(homeDir, ".airmouse")
	}
	return dir, os.MkdirAll(dir, 0755)
}

// findWebDir searches for the overlay page directory in "web", "../web",
// "../../web" and <dataDir>/web. Returns the first existing directory or
// an empty string.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// settingsURL turns a listen address into a browsable URL.
func settingsURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
