// Package app wires the camera, hand detector, pointer pipeline and input
// executor into the running AirMouse service.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/airmouse/internal/capture"
	"github.com/ayusman/airmouse/internal/detector"
	"github.com/ayusman/airmouse/internal/gesture"
	"github.com/ayusman/airmouse/internal/input"
	"github.com/ayusman/airmouse/internal/pipeline"
	"github.com/ayusman/airmouse/internal/plugin"
	"github.com/ayusman/airmouse/internal/pointer"
	"github.com/ayusman/airmouse/internal/store"
)

// Loop timing constants.
const (
	// ActiveIntervalMs is the analysis interval while a hand may be in view.
	ActiveIntervalMs = pipeline.DefaultIntervalMs
	// IdleIntervalMs is the analysis interval of an empty, still scene.
	IdleIntervalMs = 200
	// IdleTimeoutMs is how long the scene must stay still and empty before
	// the loop slows down to IdleIntervalMs.
	IdleTimeoutMs = 2000
	// PluginTimeoutMs bounds a single plugin process run.
	PluginTimeoutMs = 5000
)

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	PluginDir string
	CameraID  int
	Screen    pointer.Screen

	// MotionThresh is the changed-pixel percentage that wakes the hand
	// detector while no hand is tracked.
	MotionThresh float64

	// PinchThreshold is the thumb-to-index distance below which the hand
	// counts as pinching. Zero selects detector.DefaultPinchThreshold.
	PinchThreshold float64

	// ShellPrefix and PluginName configure the input executors.
	ShellPrefix []string
	PluginName  string

	// CommandTimeout bounds a single input command.
	CommandTimeout time.Duration

	// Camera, Detector and Executor replace the default implementations
	// when set.
	Camera   capture.Camera
	Detector detector.Detector
	Executor input.Executor
}

// Status is a snapshot of the running service.
type Status struct {
	Enabled        bool          `json:"enabled"`
	Running        bool          `json:"running"`
	InputMode      string        `json:"input_mode"`
	ExecutorReady  bool          `json:"executor_ready"`
	Pointer        pointer.State `json:"pointer"`
	Phase          string        `json:"phase"`
	DroppedEvents  int64         `json:"dropped_events"`
	DroppedActions int64         `json:"dropped_actions"`
	FailedActions  int64         `json:"failed_actions"`
	Plugins        []string      `json:"plugins"`
}

// App is the main application that turns camera frames into pointer
// movement and input commands.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	preview    *capture.Preview
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	dispatcher *input.Dispatcher
	epoch      time.Time

	// settingsMu serializes settings writers across their read-modify-write.
	settingsMu sync.Mutex
	// cycleMu is held for one loop cycle, so a cycle never straddles an
	// enable switch or a pipeline swap.
	cycleMu sync.Mutex

	mu        sync.RWMutex
	pipeline  *pipeline.Pipeline
	settings  store.Settings
	drainStop chan struct{}
	drainDone chan struct{}
	stopCh    chan struct{}
	loopDone  chan struct{}

	listenerMu       sync.RWMutex
	eventListeners   []func(pipeline.Event)
	runningListeners []func(running bool)
}

// New creates an App. Persisted settings are loaded from the store when
// one is configured.
func New(config Config) (*App, error) {
	settings := store.DefaultSettings()
	if config.Store != nil {
		loaded, err := config.Store.Settings().Load()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		settings = loaded
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		motion:     capture.NewMotionDetector(config.MotionThresh),
		detector:   config.Detector,
		preview:    capture.NewPreview(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(PluginTimeoutMs),
		epoch:      time.Now(),
		settings:   settings,
	}

	if err := a.pluginMgr.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	mode, err := input.ParseMode(settings.InputMode)
	if err != nil {
		log.Printf("Stored input mode invalid (%v), using %s", err, input.DefaultMode)
		mode = input.DefaultMode
		a.settings.InputMode = string(mode)
	}
	executor, err := a.executorFor(mode)
	if err != nil {
		return nil, err
	}
	a.dispatcher = input.NewDispatcher(executor, input.DefaultQueueSize, config.CommandTimeout)

	p, err := pipeline.New(a.pipelineConfig(a.settings), a.dispatcher)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	a.attach(p)

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// executorFor builds the input executor for mode unless one was injected.
func (a *App) executorFor(mode input.Mode) (input.Executor, error) {
	if a.config.Executor != nil {
		return a.config.Executor, nil
	}
	return input.New(mode, input.Options{
		ShellPrefix:  a.config.ShellPrefix,
		Plugins:      a.pluginMgr,
		PluginRunner: a.pluginExec,
		PluginName:   a.config.PluginName,
	})
}

// pipelineConfig derives the pipeline configuration from user settings.
func (a *App) pipelineConfig(s store.Settings) pipeline.Config {
	cfg := pipeline.DefaultConfig(a.config.Screen)
	cfg.Sensitivity = s.Sensitivity
	return cfg
}

// nowMs returns milliseconds since the App was created, read from the
// monotonic clock.
func (a *App) nowMs() int64 {
	return time.Since(a.epoch).Milliseconds()
}

// attach makes p the active pipeline and starts draining its events.
// Must not be called with a.mu held.
func (a *App) attach(p *pipeline.Pipeline) {
	stop := make(chan struct{})
	done := make(chan struct{})

	a.mu.Lock()
	oldStop, oldDone := a.drainStop, a.drainDone
	a.pipeline = p
	a.drainStop, a.drainDone = stop, done
	a.mu.Unlock()

	if oldStop != nil {
		close(oldStop)
		<-oldDone
	}
	go a.drain(p.Events(), stop, done)
}

// drain delivers pipeline events to the listeners until stop is closed.
func (a *App) drain(events <-chan pipeline.Event, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case e := <-events:
			a.emit(e)
		}
	}
}

// detach stops the event drainer of the active pipeline.
func (a *App) detach() {
	a.mu.Lock()
	drainStop, drainDone := a.drainStop, a.drainDone
	a.drainStop, a.drainDone = nil, nil
	a.mu.Unlock()

	if drainStop != nil {
		close(drainStop)
		<-drainDone
	}
}

// recordActions appends the actions among events to the history.
func (a *App) recordActions(events []pipeline.Event) {
	if a.config.Store == nil {
		return
	}
	for _, e := range events {
		if e.Kind != pipeline.EventAction {
			continue
		}
		if _, err := a.config.Store.History().Record(*e.Action); err != nil {
			log.Printf("Failed to record %s: %v", e.Action, err)
		}
	}
}

// emit notifies event listeners.
func (a *App) emit(e pipeline.Event) {
	a.listenerMu.RLock()
	listeners := a.eventListeners
	a.listenerMu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}

// OnEvent registers fn to receive every pipeline event. Listeners run on
// the event drain goroutine and must return quickly.
func (a *App) OnEvent(fn func(pipeline.Event)) {
	a.listenerMu.Lock()
	defer a.listenerMu.Unlock()
	a.eventListeners = append(a.eventListeners, fn)
}

// OnRunning registers fn to be called when the service starts or stops.
func (a *App) OnRunning(fn func(running bool)) {
	a.listenerMu.Lock()
	defer a.listenerMu.Unlock()
	a.runningListeners = append(a.runningListeners, fn)
}

func (a *App) notifyRunning(running bool) {
	a.listenerMu.RLock()
	listeners := a.runningListeners
	a.listenerMu.RUnlock()

	for _, fn := range listeners {
		fn(running)
	}
}

// Start opens the camera and begins the tracking loop.
func (a *App) Start() error {
	a.mu.Lock()
	if a.stopCh != nil {
		a.mu.Unlock()
		return nil
	}

	if err := a.camera.Open(); err != nil {
		a.mu.Unlock()
		return err
	}
	a.camera.SetFPS(1000 / ActiveIntervalMs)
	a.dispatcher.Start()

	a.stopCh = make(chan struct{})
	a.loopDone = make(chan struct{})
	go a.runLoop(a.stopCh, a.loopDone)
	a.mu.Unlock()

	log.Println("Tracking loop started")
	a.notifyRunning(true)
	return nil
}

// Stop halts the tracking loop and closes the camera. The App can be
// started again.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.loopDone
	a.stopCh, a.loopDone = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	a.dispatcher.Stop()
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Reset()
	a.Pipeline().Reset(a.nowMs())

	log.Println("Tracking loop stopped")
	a.notifyRunning(false)
}

// Close stops the service and releases the detector.
func (a *App) Close() error {
	a.Stop()
	a.detach()

	a.motion.Close()
	return a.detector.Close()
}

// IsRunning reports whether the tracking loop is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// SetEnabled pauses or resumes tracking without closing the camera and
// persists the choice. Pausing ends the tracking session: the anchor and
// any open pinch are dropped and the pointer is deactivated.
func (a *App) SetEnabled(enabled bool) {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()

	a.cycleMu.Lock()
	a.mu.Lock()
	paused := a.settings.Enabled && !enabled
	a.settings.Enabled = enabled
	settings := a.settings
	a.mu.Unlock()
	if paused {
		a.Pipeline().Reset(a.nowMs())
	}
	a.cycleMu.Unlock()

	a.saveSettings(settings)
	log.Printf("Tracking enabled: %v", enabled)
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings.Enabled
}

// Settings returns the current user settings.
func (a *App) Settings() store.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// ApplySettings replaces all user settings. See UpdateSettings.
func (a *App) ApplySettings(s store.Settings) (store.Settings, error) {
	return a.UpdateSettings(store.SettingsUpdate{
		Sensitivity: &s.Sensitivity,
		InputMode:   &s.InputMode,
		Enabled:     &s.Enabled,
	})
}

// UpdateSettings applies u to the current settings, validates and persists
// the result, rebuilds the pipeline with the new sensitivity and switches
// the input executor when the mode changed. Pointer state restarts from
// the screen center.
func (a *App) UpdateSettings(u store.SettingsUpdate) (store.Settings, error) {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()

	current := a.Settings()
	s := u.Apply(current)
	s.Sensitivity = store.NormalizeSensitivity(s.Sensitivity)
	mode, err := input.ParseMode(s.InputMode)
	if err != nil {
		return store.Settings{}, err
	}
	s.InputMode = string(mode)

	p, err := pipeline.New(a.pipelineConfig(s), a.dispatcher)
	if err != nil {
		return store.Settings{}, fmt.Errorf("invalid pipeline config: %w", err)
	}

	if current.InputMode != s.InputMode {
		executor, err := a.executorFor(mode)
		if err != nil {
			return store.Settings{}, err
		}
		a.dispatcher.SetExecutor(executor)
		log.Printf("Input mode switched to %s", mode)
	}

	a.cycleMu.Lock()
	a.mu.Lock()
	a.settings = s
	a.mu.Unlock()
	a.attach(p)
	a.cycleMu.Unlock()

	a.saveSettings(s)
	log.Printf("Settings applied: sensitivity %.1f, mode %s, enabled %v", s.Sensitivity, s.InputMode, s.Enabled)
	return s, nil
}

func (a *App) saveSettings(s store.Settings) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Settings().Save(s); err != nil {
		log.Printf("Failed to save settings: %v", err)
	}
}

// Tap sends a single click at (x, y) through the current executor.
func (a *App) Tap(ctx context.Context, x, y int) error {
	return a.dispatcher.Do(ctx, gesture.Click(x, y))
}

// PipelineConfig returns the configuration of the active pipeline.
func (a *App) PipelineConfig() pipeline.Config {
	return a.Pipeline().Config()
}

// Pipeline returns the active pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pipeline
}

// Status returns a snapshot of the service state. It probes the executor,
// which may run an external command bounded by ctx.
func (a *App) Status(ctx context.Context) Status {
	p := a.Pipeline()
	settings := a.Settings()

	var plugins []string
	for _, pl := range a.pluginMgr.List() {
		plugins = append(plugins, pl.Manifest.Name)
	}

	return Status{
		Enabled:        settings.Enabled,
		Running:        a.IsRunning(),
		InputMode:      settings.InputMode,
		ExecutorReady:  a.dispatcher.Ready(ctx),
		Pointer:        p.State(),
		Phase:          p.Phase().String(),
		DroppedEvents:  p.Dropped(),
		DroppedActions: a.dispatcher.Dropped(),
		FailedActions:  a.dispatcher.Failed(),
		Plugins:        plugins,
	}
}

// Preview returns the camera preview buffer.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Dispatcher returns the input dispatcher.
func (a *App) Dispatcher() *input.Dispatcher {
	return a.dispatcher
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}
