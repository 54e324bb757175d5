package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-fdm/dsp/dsbsc"
	"github.com/cwbudde/algo-fdm/link"
	"github.com/cwbudde/algo-fdm/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()

	scenario := DefaultScenario()
	scenario.Clock.Duration = 0.02
	scenario.Channels = scenario.Channels[:2]
	scenario.Noise.StdDev = 0.01
	scenario.Noise.Seed = 1
	scenario.Sweep.StdDevs = []float64{0, 0.01}
	scenario.Workers = 2

	config := &Config{
		Scenario: scenario,
		OutDir:   filepath.Join(dir, "panels"),
		DBPath:   filepath.Join(dir, "runs.db"),
		Label:    "bench",
	}

	ctx := context.Background()
	if err := Run(ctx, config, discardLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"composite.png", "spectrum.png", "channel_0.png", "channel_1.png"} {
		if _, err := os.Stat(filepath.Join(config.OutDir, name)); err != nil {
			t.Errorf("expected panel %s: %v", name, err)
		}
	}

	st := store.New(config.DBPath)
	defer st.Close()

	runs, err := st.Runs(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected base run plus 2 sweep points, got %d runs", len(runs))
	}
	if runs[0].Label != "bench" {
		t.Errorf("expected base label %q, got %q", "bench", runs[0].Label)
	}
	if runs[0].NoiseStdDev != 0.01 || runs[1].NoiseStdDev != 0 || runs[2].NoiseStdDev != 0.01 {
		t.Errorf("unexpected sweep levels: %g, %g, %g", runs[0].NoiseStdDev, runs[1].NoiseStdDev, runs[2].NoiseStdDev)
	}
	if runs[1].NoiseKind != "" || runs[2].NoiseKind != "gaussian" {
		t.Errorf("unexpected noise kinds: %q, %q", runs[1].NoiseKind, runs[2].NoiseKind)
	}
	if runs[2].Label != "bench sweep stddev=0.01" {
		t.Errorf("unexpected sweep label %q", runs[2].Label)
	}
	if !runs[0].Config.Valid || runs[0].Config.String == "" {
		t.Error("expected archived link configuration")
	}

	metrics, err := st.ChannelMetrics(ctx, runs[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("expected 2 channel metrics, got %d", len(metrics))
	}
	for _, m := range metrics {
		if dev := math.Abs(m.Amplitude - dsbsc.CoherentGain); dev > 0.05 {
			t.Errorf("channel %d: amplitude %g deviates by %g", m.Channel, m.Amplitude, dev)
		}
		if m.Samples != 1000-transientSkip {
			t.Errorf("channel %d: expected %d fitted samples, got %d", m.Channel, 1000-transientSkip, m.Samples)
		}
	}
}

func TestRunWithoutOutputs(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Clock.Duration = 0.02
	scenario.Channels = scenario.Channels[:1]

	config := &Config{Scenario: scenario}
	if err := Run(context.Background(), config, discardLogger()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scenario := DefaultScenario()
	scenario.Clock.Duration = 0.02
	scenario.Channels = scenario.Channels[:1]

	config := &Config{Scenario: scenario}
	if err := Run(ctx, config, discardLogger()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunRejectsInvalidScenario(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Channels = nil

	config := &Config{Scenario: scenario}
	if err := Run(context.Background(), config, discardLogger()); !errors.Is(err, link.ErrNoChannels) {
		t.Errorf("expected link.ErrNoChannels, got %v", err)
	}
}
