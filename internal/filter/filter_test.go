package filter

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestLowPass_Filter(t *testing.T) {
	t.Run("first value passes through", func(t *testing.T) {
		var f LowPass
		if got := f.Filter(42.0, 0.1); got != 42.0 {
			t.Errorf("expected 42.0, got %f", got)
		}
		if !f.Initialized() {
			t.Error("expected filter to be initialized after first value")
		}
	})

	t.Run("blends with previous output", func(t *testing.T) {
		var f LowPass
		f.Filter(10.0, 0.5)
		got := f.Filter(20.0, 0.25)
		want := 0.25*20.0 + 0.75*10.0
		if math.Abs(got-want) > epsilon {
			t.Errorf("expected %f, got %f", want, got)
		}
		if f.Last() != got {
			t.Errorf("Last() = %f, want %f", f.Last(), got)
		}
	})

	t.Run("reset forgets history", func(t *testing.T) {
		var f LowPass
		f.Filter(10.0, 0.5)
		f.Reset()
		if got := f.Filter(3.0, 0.5); got != 3.0 {
			t.Errorf("expected 3.0 after reset, got %f", got)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero beta", Config{MinCutoff: 1, Beta: 0, DerivativeCutoff: 1}, false},
		{"zero min cutoff", Config{MinCutoff: 0, Beta: 0.5, DerivativeCutoff: 1}, true},
		{"negative beta", Config{MinCutoff: 1, Beta: -0.1, DerivativeCutoff: 1}, true},
		{"zero derivative cutoff", Config{MinCutoff: 1, Beta: 0.5, DerivativeCutoff: 0}, true},
		{"NaN min cutoff", Config{MinCutoff: math.NaN(), Beta: 0.5, DerivativeCutoff: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestOneEuro_FirstSampleIdentity(t *testing.T) {
	f, err := NewOneEuro(DefaultConfig())
	if err != nil {
		t.Fatalf("NewOneEuro() error = %v", err)
	}

	got := f.Filter(123.4, 1000)
	if got != 123.4 {
		t.Errorf("expected first sample to pass through, got %f", got)
	}
}

func TestOneEuro_Convergence(t *testing.T) {
	f, err := NewOneEuro(DefaultConfig())
	if err != nil {
		t.Fatalf("NewOneEuro() error = %v", err)
	}

	f.Filter(0, 0)

	const target = 100.0
	var got float64
	prevErr := math.Inf(1)
	for i := 1; i <= 300; i++ {
		got = f.Filter(target, int64(i)*50)
		errNow := math.Abs(target - got)
		if errNow > prevErr+epsilon {
			t.Fatalf("error grew at step %d: %f > %f", i, errNow, prevErr)
		}
		prevErr = errNow
	}

	if math.Abs(target-got) > 1e-6 {
		t.Errorf("expected output to converge to %f, got %f", target, got)
	}
}

func TestOneEuro_NonPositiveDelta(t *testing.T) {
	t.Run("repeated timestamp does not divide by zero", func(t *testing.T) {
		f, _ := NewOneEuro(DefaultConfig())
		f.Filter(10, 1000)
		got := f.Filter(20, 1000)

		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("expected finite output, got %f", got)
		}
		want := 10 + alpha(1.0, 1.0)*10
		if math.Abs(got-want) > epsilon {
			t.Errorf("expected %f, got %f", want, got)
		}
		if f.Derivative() != 0 {
			t.Errorf("expected derivative untouched, got %f", f.Derivative())
		}
	})

	t.Run("out of order timestamp keeps the later time", func(t *testing.T) {
		f, _ := NewOneEuro(DefaultConfig())
		f.Filter(10, 1000)
		f.Filter(10, 900)

		g, _ := NewOneEuro(DefaultConfig())
		g.Filter(10, 1000)
		g.Filter(10, 1000)

		// Both filters now hold the same value and timestamp.
		a := f.Filter(30, 1050)
		b := g.Filter(30, 1050)
		if math.Abs(a-b) > epsilon {
			t.Errorf("expected identical outputs, got %f and %f", a, b)
		}
	})
}

func TestOneEuro_SpeedAdaptation(t *testing.T) {
	still, _ := NewOneEuro(Config{MinCutoff: 1.0, Beta: 0, DerivativeCutoff: 1.0})
	adaptive, _ := NewOneEuro(Config{MinCutoff: 1.0, Beta: 0.5, DerivativeCutoff: 1.0})

	still.Filter(0, 0)
	adaptive.Filter(0, 0)

	// A fast jump: the adaptive filter should lag less.
	s := still.Filter(500, 50)
	a := adaptive.Filter(500, 50)

	if !(a > s) {
		t.Errorf("expected adaptive output %f to be closer to 500 than %f", a, s)
	}
	if adaptive.Derivative() <= 0 {
		t.Errorf("expected positive derivative, got %f", adaptive.Derivative())
	}
}

func TestOneEuro_Reset(t *testing.T) {
	f, _ := NewOneEuro(DefaultConfig())
	f.Filter(10, 1000)
	f.Filter(50, 1050)
	f.Reset()

	if got := f.Filter(7, 10); got != 7 {
		t.Errorf("expected first sample after reset to pass through, got %f", got)
	}
}

func TestNewOneEuro_InvalidConfig(t *testing.T) {
	_, err := NewOneEuro(Config{MinCutoff: -1, Beta: 0, DerivativeCutoff: 1})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSmoother_AxesIndependent(t *testing.T) {
	s, err := NewSmoother(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSmoother() error = %v", err)
	}

	x, y := s.Filter(100, 200, 0)
	if x != 100 || y != 200 {
		t.Fatalf("expected first sample identity, got (%f, %f)", x, y)
	}

	// Move only X; Y must stay put.
	for i := 1; i <= 10; i++ {
		x, y = s.Filter(300, 200, int64(i)*50)
	}
	if math.Abs(y-200) > epsilon {
		t.Errorf("expected Y to stay at 200, got %f", y)
	}
	if x <= 100 {
		t.Errorf("expected X to move toward 300, got %f", x)
	}

	s.Reset()
	x, y = s.Filter(1, 2, 0)
	if x != 1 || y != 2 {
		t.Errorf("expected identity after reset, got (%f, %f)", x, y)
	}
}

func TestJitter(t *testing.T) {
	t.Run("steps statistics", func(t *testing.T) {
		stats := Jitter([]float64{0, 1, 3, 6})
		if stats.Samples != 4 {
			t.Errorf("Samples = %d, want 4", stats.Samples)
		}
		if math.Abs(stats.MeanStep-2) > epsilon {
			t.Errorf("MeanStep = %f, want 2", stats.MeanStep)
		}
		if math.Abs(stats.StdDev-1) > epsilon {
			t.Errorf("StdDev = %f, want 1", stats.StdDev)
		}
		if stats.MaxStep != 3 {
			t.Errorf("MaxStep = %f, want 3", stats.MaxStep)
		}
	})

	t.Run("short tracks", func(t *testing.T) {
		if stats := Jitter(nil); stats != (JitterStats{}) {
			t.Errorf("expected zero stats, got %+v", stats)
		}
		stats := Jitter([]float64{1, 4})
		if stats.StdDev != 0 || stats.MeanStep != 3 {
			t.Errorf("unexpected stats for two values: %+v", stats)
		}
	})
}
