package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/cwbudde/algo-fdm/dsp/design"
	"github.com/cwbudde/algo-fdm/dsp/dsbsc"
	"github.com/cwbudde/algo-fdm/dsp/spectrum"
	"github.com/cwbudde/algo-fdm/link"
	"github.com/cwbudde/algo-fdm/measure/recovery"
	"github.com/cwbudde/algo-fdm/render"
	"github.com/cwbudde/algo-fdm/store"
)

// transientSkip is the number of leading samples excluded from the
// recovery fit while the low-pass settles.
const transientSkip = 50

// Run executes the configured scenario: one base run with logging,
// panels and archiving as requested, then the optional noise sweep.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	lk, err := buildLink(config.Scenario)
	if err != nil {
		return fmt.Errorf("building link: %w", err)
	}

	var st *store.Store
	if config.DBPath != "" {
		st = store.New(config.DBPath)
		defer func() {
			if cErr := st.Close(); cErr != nil {
				logger.Error("closing store", slog.Any("error", cErr))
			}
		}()
	}

	logger.Info("running link",
		slog.Int("channels", len(lk.Channels)),
		slog.String("sample_rate", humanHz(lk.Clock.SampleRate)),
		slog.String("cutoff", humanHz(lk.Filter.CutoffHz)),
		slog.Int("workers", lk.Workers),
		slog.Float64("noise_stddev", lk.Noise.StdDev),
	)

	res, report, err := runOnce(lk)
	if err != nil {
		return err
	}
	logReport(logger, lk, report)
	logCarrierPeaks(logger, lk, res)

	if st != nil {
		runID, err := archiveRun(ctx, st, config.Label, lk, report)
		if err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
		logger.Info("run archived", slog.Int64("run_id", runID), slog.String("db", config.DBPath))
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	if config.OutDir != "" {
		if err = renderPanels(config, lk, res); err != nil {
			return fmt.Errorf("rendering panels: %w", err)
		}
		logger.Info("panels written", slog.String("dir", config.OutDir))
	}

	return runSweep(ctx, config, lk, st, logger)
}

// runOnce transmits and receives once and fits every recovered channel.
func runOnce(lk link.Link) (*link.Result, []recovery.Quality, error) {
	res, err := lk.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("running link: %w", err)
	}

	freqs := make([]float64, len(lk.Channels))
	for i, ch := range lk.Channels {
		freqs[i] = ch.MessageHz
	}

	report, err := recovery.Report(res.Recovered, freqs, lk.Clock.SampleRate, transientSkip)
	if err != nil {
		return nil, nil, fmt.Errorf("measuring recovery: %w", err)
	}
	return res, report, nil
}

// runSweep repeats the run for every configured noise level, archiving
// each sweep point when a store is available.
func runSweep(ctx context.Context, config *Config, lk link.Link, st *store.Store, logger *slog.Logger) error {
	for _, stdDev := range config.Scenario.Sweep.StdDevs {
		if err := ctx.Err(); err != nil {
			return err
		}

		lk.Noise.StdDev = stdDev
		_, report, err := runOnce(lk)
		if err != nil {
			return fmt.Errorf("sweep at stddev %g: %w", stdDev, err)
		}

		logger.Info("sweep point",
			slog.Float64("stddev", stdDev),
			slog.Float64("max_amplitude_error", maxAmplitudeError(report)),
			slog.Float64("min_correlation", minCorrelation(report)),
		)

		if st == nil {
			continue
		}

		label := fmt.Sprintf("sweep stddev=%g", stdDev)
		if config.Label != "" {
			label = config.Label + " " + label
		}
		runID, err := archiveRun(ctx, st, label, lk, report)
		if err != nil {
			return fmt.Errorf("archiving sweep point: %w", err)
		}
		logger.Debug("sweep point archived", slog.Int64("run_id", runID))
	}
	return nil
}

func logReport(logger *slog.Logger, lk link.Link, report []recovery.Quality) {
	for i, q := range report {
		ch := lk.Channels[i]
		logger.Info("channel recovered",
			slog.Int("channel", i),
			slog.String("message", humanHz(ch.MessageHz)),
			slog.String("carrier", humanHz(ch.CarrierHz)),
			slog.Float64("amplitude", q.Amplitude),
			slog.Float64("phase_rad", q.PhaseRad),
			slog.Float64("residual_rms", q.ResidualRMS),
			slog.Float64("correlation", q.Correlation),
		)
	}
}

// logCarrierPeaks reports the spectral peak around each carrier at debug
// level, a quick view of the composite band occupancy.
func logCarrierPeaks(logger *slog.Logger, lk link.Link, res *link.Result) {
	analysis, err := spectrum.Analyze(res.Composite, lk.Clock.SampleRate)
	if err != nil {
		logger.Debug("composite analysis failed", slog.Any("error", err))
		return
	}

	for i, ch := range lk.Channels {
		lo := math.Max(0, ch.CarrierHz-lk.Filter.CutoffHz)
		hi := math.Min(lk.Clock.Nyquist(), ch.CarrierHz+lk.Filter.CutoffHz)
		freq, mag, err := analysis.PeakIn(lo, hi)
		if err != nil {
			continue
		}
		logger.Debug("carrier band peak",
			slog.Int("channel", i),
			slog.String("peak", humanHz(freq)),
			slog.Float64("magnitude", mag),
		)
	}
}

// archiveRun stores the run configuration and its per-channel metrics.
func archiveRun(ctx context.Context, st *store.Store, label string, lk link.Link, report []recovery.Quality) (int64, error) {
	order := lk.Filter.Order
	if order == 0 {
		order = design.DefaultOrder
	}

	kindName := ""
	if lk.Noise.StdDev > 0 {
		kindName = noiseKindName(lk.Noise.Kind)
	}

	run := store.RunData{
		Label:       label,
		SampleRate:  lk.Clock.SampleRate,
		Duration:    lk.Clock.Duration,
		CutoffHz:    lk.Filter.CutoffHz,
		FilterOrder: int64(order),
		NoiseKind:   kindName,
		NoiseStdDev: lk.Noise.StdDev,
		NoiseSeed:   lk.Noise.Seed,
		Workers:     int64(lk.Workers),
	}

	metrics := make([]store.ChannelMetricData, len(report))
	for i, q := range report {
		metrics[i] = store.ChannelMetricData{
			Channel:     int64(i),
			MessageHz:   lk.Channels[i].MessageHz,
			CarrierHz:   lk.Channels[i].CarrierHz,
			Amplitude:   q.Amplitude,
			PhaseRad:    q.PhaseRad,
			ResidualRMS: q.ResidualRMS,
			Correlation: q.Correlation,
			Samples:     int64(q.Samples),
		}
	}

	return st.SaveRun(ctx, run, lk, metrics)
}

// renderPanels writes the composite waveform, its spectrum, and one
// message/recovered panel per channel into the output directory.
func renderPanels(config *Config, lk link.Link, res *link.Result) error {
	if err := os.MkdirAll(config.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	r, err := render.New(render.Config{FontPath: config.FontPath})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer r.Close()

	img, err := r.Waveform([]render.Trace{{Label: "composite", Data: res.Composite}}, lk.Clock.SampleRate, "composite signal")
	if err != nil {
		return fmt.Errorf("rendering composite: %w", err)
	}
	if err = render.WritePNG(filepath.Join(config.OutDir, "composite.png"), img); err != nil {
		return err
	}

	analysis, err := spectrum.Analyze(res.Composite, lk.Clock.SampleRate)
	if err != nil {
		return fmt.Errorf("analyzing composite: %w", err)
	}
	if img, err = r.Spectrum(analysis, "composite spectrum"); err != nil {
		return fmt.Errorf("rendering spectrum: %w", err)
	}
	if err = render.WritePNG(filepath.Join(config.OutDir, "spectrum.png"), img); err != nil {
		return err
	}

	for i, ch := range lk.Channels {
		traces := []render.Trace{
			{Label: "message", Data: res.Messages[i]},
			{Label: "recovered", Data: res.Recovered[i]},
		}
		title := fmt.Sprintf("channel %d: %s on %s", i, humanHz(ch.MessageHz), humanHz(ch.CarrierHz))
		if img, err = r.Waveform(traces, lk.Clock.SampleRate, title); err != nil {
			return fmt.Errorf("rendering channel %d: %w", i, err)
		}
		if err = render.WritePNG(filepath.Join(config.OutDir, fmt.Sprintf("channel_%d.png", i)), img); err != nil {
			return err
		}
	}

	return nil
}

func maxAmplitudeError(report []recovery.Quality) float64 {
	worst := 0.0
	for _, q := range report {
		if dev := math.Abs(q.Amplitude - dsbsc.CoherentGain); dev > worst {
			worst = dev
		}
	}
	return worst
}

func minCorrelation(report []recovery.Quality) float64 {
	if len(report) == 0 {
		return 0
	}
	lowest := report[0].Correlation
	for _, q := range report[1:] {
		if q.Correlation < lowest {
			lowest = q.Correlation
		}
	}
	return lowest
}

func noiseKindName(kind link.NoiseKind) string {
	if kind == link.NoiseUniform {
		return "uniform"
	}
	return "gaussian"
}

func humanHz(hz float64) string {
	v, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", v, suffix)
}
