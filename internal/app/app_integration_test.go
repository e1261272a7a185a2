package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/airmouse/internal/capture"
	"github.com/ayusman/airmouse/internal/detector"
	"github.com/ayusman/airmouse/internal/gesture"
	"github.com/ayusman/airmouse/internal/input"
	"github.com/ayusman/airmouse/internal/pipeline"
	"github.com/ayusman/airmouse/internal/pointer"
	"github.com/ayusman/airmouse/internal/store"
	"github.com/ayusman/airmouse/testdata"
)

var testScreen = pointer.Screen{Width: testdata.ScreenWidth, Height: testdata.ScreenHeight}

type testRig struct {
	app      *App
	store    *store.Store
	detector *detector.MockDetector
	executor *input.MockExecutor
	camera   *capture.MockCamera
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	frames := testdata.MovingSquare(8, 160, 120)
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})

	rig := &testRig{
		store:    s,
		detector: detector.NewMockDetector(),
		executor: input.NewMockExecutor(),
		camera:   capture.NewMockCamera(frames, true),
	}

	rig.app, err = New(Config{
		Store:     s,
		PluginDir: t.TempDir(),
		Screen:    testScreen,
		Camera:    rig.camera,
		Detector:  rig.detector,
		Executor:  rig.executor,
	})
	require.NoError(t, err)
	t.Cleanup(func() { rig.app.Close() })

	return rig
}

func repeatHand(n int, hand detector.HandLandmarks) [][]detector.HandLandmarks {
	frames := make([][]detector.HandLandmarks, n)
	for i := range frames {
		frames[i] = []detector.HandLandmarks{hand}
	}
	return frames
}

func TestApp_NewUsesStoredSettings(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Settings().Save(store.Settings{Sensitivity: 2.5, InputMode: "plugin", Enabled: false}))

	a, err := New(Config{
		Store:    s,
		Screen:   testScreen,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.IsEnabled())
	assert.Equal(t, "plugin", a.Settings().InputMode)
	assert.InDelta(t, 2.5, a.PipelineConfig().Sensitivity, 1e-9)
	assert.IsType(t, &input.PluginExecutor{}, a.Dispatcher().Executor())
}

func TestApp_NewRejectsInvalidScreen(t *testing.T) {
	_, err := New(Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)
}

func TestApp_PinchClickEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	rig := newTestRig(t)

	open := detector.HandAt(0.5, 0.5, false)
	pinched := detector.HandAt(0.5, 0.5, true)

	script := append(repeatHand(3, open), repeatHand(3, pinched)...)
	rig.detector.SetScript(script)
	rig.detector.SetHands([]detector.HandLandmarks{open})

	var mu sync.Mutex
	var activations []bool
	rig.app.OnEvent(func(e pipeline.Event) {
		if e.Kind == pipeline.EventActivation {
			mu.Lock()
			activations = append(activations, e.Activated)
			mu.Unlock()
		}
	})

	running := make(chan bool, 2)
	rig.app.OnRunning(func(r bool) { running <- r })

	require.NoError(t, rig.app.Start())
	assert.True(t, rig.app.IsRunning())
	assert.True(t, <-running)

	select {
	case a := <-rig.executor.Performed():
		assert.Equal(t, gesture.Click(testdata.ScreenWidth/2, testdata.ScreenHeight/2+15), a)
	case <-time.After(5 * time.Second):
		t.Fatal("no click performed")
	}

	require.Eventually(t, func() bool {
		n, err := rig.store.History().Count()
		return err == nil && n == 1
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []bool{true}, activations)
	mu.Unlock()

	rig.app.Stop()
	assert.False(t, rig.app.IsRunning())
	assert.False(t, <-running)
	assert.False(t, rig.camera.IsOpen())
}

func TestApp_TimestampsFollowMonotonicClock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	rig := newTestRig(t)
	first := rig.app.nowMs()
	assert.GreaterOrEqual(t, first, int64(0))
	assert.Less(t, first, int64(time.Minute/time.Millisecond), "timestamps must count from the App's epoch, not the Unix epoch")

	events := make(chan pipeline.Event, 16)
	rig.app.OnEvent(func(e pipeline.Event) {
		select {
		case events <- e:
		default:
		}
	})
	rig.detector.SetHands([]detector.HandLandmarks{detector.HandAt(0.5, 0.5, false)})

	require.NoError(t, rig.app.Start())

	select {
	case e := <-events:
		assert.Equal(t, pipeline.EventActivation, e.Kind)
		assert.GreaterOrEqual(t, e.TimestampMs, first)
		assert.LessOrEqual(t, e.TimestampMs, rig.app.nowMs())
	case <-time.After(5 * time.Second):
		t.Fatal("no activation event")
	}
}

func TestApp_HandLossDeactivates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	rig := newTestRig(t)
	rig.detector.SetScript(repeatHand(3, detector.HandAt(0.4, 0.6, false)))

	deactivated := make(chan struct{}, 1)
	rig.app.OnEvent(func(e pipeline.Event) {
		if e.Kind == pipeline.EventActivation && !e.Activated {
			select {
			case deactivated <- struct{}{}:
			default:
			}
		}
	})

	require.NoError(t, rig.app.Start())

	select {
	case <-deactivated:
	case <-time.After(5 * time.Second):
		t.Fatal("pointer was not deactivated after the hand left")
	}
	assert.False(t, rig.app.Pipeline().State().Activated)
}

func TestApp_DisabledSkipsFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	rig := newTestRig(t)
	rig.app.SetEnabled(false)

	require.NoError(t, rig.app.Start())
	time.Sleep(4 * ActiveIntervalMs * time.Millisecond)
	rig.app.Stop()

	assert.Zero(t, rig.camera.Reads())
	assert.Zero(t, rig.detector.Calls())

	stored, err := rig.store.Settings().Load()
	require.NoError(t, err)
	assert.False(t, stored.Enabled)
}

func TestApp_ApplySettings(t *testing.T) {
	rig := newTestRig(t)
	before := rig.app.Pipeline()

	got, err := rig.app.ApplySettings(store.Settings{Sensitivity: 2.46, InputMode: "plugin", Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, store.Settings{Sensitivity: 2.5, InputMode: "plugin", Enabled: true}, got)

	assert.NotSame(t, before, rig.app.Pipeline())
	assert.InDelta(t, 2.5, rig.app.PipelineConfig().Sensitivity, 1e-9)
	// An injected executor survives mode switches.
	assert.Same(t, rig.executor, rig.app.Dispatcher().Executor())

	stored, err := rig.store.Settings().Load()
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = rig.app.ApplySettings(store.Settings{Sensitivity: 1, InputMode: "bluetooth"})
	assert.ErrorIs(t, err, input.ErrUnknownMode)
	assert.Equal(t, got, rig.app.Settings())
}

func TestApp_ApplySettingsSwitchesExecutor(t *testing.T) {
	a, err := New(Config{
		Screen:   testScreen,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &input.ShellExecutor{}, a.Dispatcher().Executor())

	_, err = a.ApplySettings(store.Settings{Sensitivity: 1, InputMode: "plugin", Enabled: true})
	require.NoError(t, err)
	assert.IsType(t, &input.PluginExecutor{}, a.Dispatcher().Executor())
}

func TestApp_Tap(t *testing.T) {
	rig := newTestRig(t)

	require.NoError(t, rig.app.Tap(context.Background(), 10, 20))
	assert.Equal(t, []gesture.Action{gesture.Click(10, 20)}, rig.executor.Actions())

	rig.executor.SetReady(false)
	assert.ErrorIs(t, rig.app.Tap(context.Background(), 10, 20), input.ErrNotReady)
}

func TestApp_Status(t *testing.T) {
	rig := newTestRig(t)

	status := rig.app.Status(context.Background())
	assert.True(t, status.Enabled)
	assert.False(t, status.Running)
	assert.Equal(t, "shell", status.InputMode)
	assert.True(t, status.ExecutorReady)
	assert.Equal(t, pointer.State{X: testdata.ScreenWidth / 2, Y: testdata.ScreenHeight / 2}, status.Pointer)
	assert.Equal(t, gesture.Idle.String(), status.Phase)
	assert.Empty(t, status.Plugins)
}

func TestApp_PreviewFollowsCamera(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	rig := newTestRig(t)
	release := rig.app.Preview().Watch()
	defer release()

	require.NoError(t, rig.app.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	jpeg, _, err := rig.app.Preview().Next(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, jpeg)

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	require.NoError(t, err)
	defer img.Close()
	assert.Equal(t, 160, img.Cols())
}

func TestApp_PauseDropsOpenPinch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	rig := newTestRig(t)
	rig.detector.SetScript(repeatHand(3, detector.HandAt(0.5, 0.5, false)))
	rig.detector.SetHands([]detector.HandLandmarks{detector.HandAt(0.5, 0.5, true)})

	var mu sync.Mutex
	var activations []bool
	rig.app.OnEvent(func(e pipeline.Event) {
		if e.Kind == pipeline.EventActivation {
			mu.Lock()
			activations = append(activations, e.Activated)
			mu.Unlock()
		}
	})

	require.NoError(t, rig.app.Start())
	require.Eventually(t, func() bool {
		return rig.app.Pipeline().Phase() == gesture.Pinching
	}, 5*time.Second, 10*time.Millisecond)
	before := rig.app.Pipeline().State()

	rig.app.SetEnabled(false)
	assert.Equal(t, gesture.Idle, rig.app.Pipeline().Phase())
	assert.False(t, rig.app.Pipeline().State().Activated)

	// The hand moves and opens while tracking is paused.
	rig.detector.SetHands([]detector.HandLandmarks{detector.HandAt(0.2, 0.8, false)})
	calls := rig.detector.Calls()
	rig.app.SetEnabled(true)

	require.Eventually(t, func() bool {
		return rig.detector.Calls() >= calls+5 && rig.app.Pipeline().State().Activated
	}, 5*time.Second, 10*time.Millisecond)

	after := rig.app.Pipeline().State()
	assert.Equal(t, before.X, after.X, "pointer jumped after resume")
	assert.Equal(t, before.Y, after.Y, "pointer jumped after resume")
	assert.Empty(t, rig.executor.Actions())

	n, err := rig.store.History().Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(activations) >= 3
	}, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []bool{true, false, true}, activations[:3])
	mu.Unlock()
}

func TestApp_UpdateSettingsKeepsConcurrentToggle(t *testing.T) {
	rig := newTestRig(t)

	rig.app.SetEnabled(false)
	sensitivity := 2.0
	got, err := rig.app.UpdateSettings(store.SettingsUpdate{Sensitivity: &sensitivity})
	require.NoError(t, err)
	assert.Equal(t, store.Settings{Sensitivity: 2.0, InputMode: "shell", Enabled: false}, got)

	rig.app.SetEnabled(true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := 1.0 + float64(i)/10
			_, err := rig.app.UpdateSettings(store.SettingsUpdate{Sensitivity: &v})
			assert.NoError(t, err)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		rig.app.SetEnabled(false)
	}()
	wg.Wait()

	assert.False(t, rig.app.IsEnabled(), "sensitivity updates overwrote the toggle")
	stored, err := rig.store.Settings().Load()
	require.NoError(t, err)
	assert.Equal(t, rig.app.Settings(), stored)
}

func TestApp_HistoryRecordsActionsWhenEventsOverflow(t *testing.T) {
	rig := newTestRig(t)
	// Nobody drains the event channel.
	rig.app.detach()

	frames := testdata.StillFrames(1, 160, 120)
	defer frames[0].Close()

	const clicks = 70
	var script [][]detector.HandLandmarks
	for i := 0; i < clicks; i++ {
		script = append(script,
			[]detector.HandLandmarks{detector.HandAt(0.5, 0.5, true)},
			[]detector.HandLandmarks{detector.HandAt(0.5, 0.5, false)})
	}
	rig.detector.SetScript(script)

	for i := range script {
		require.True(t, rig.app.track(frames[0], int64(i)*50))
	}

	assert.Positive(t, rig.app.Pipeline().Dropped(), "event channel should have overflowed")

	n, err := rig.store.History().Count()
	require.NoError(t, err)
	assert.Equal(t, clicks, n)
}
