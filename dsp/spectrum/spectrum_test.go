package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-fdm/dsp/window"
)

// sine returns a*sin(2*pi*freq*k/sampleRate + phase) over n samples.
func sine(n int, freq, sampleRate, a, phase float64) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = a * math.Sin(2*math.Pi*freq*float64(k)/sampleRate+phase)
	}

	return out
}

func TestAnalyzeLocatesTonePeak(t *testing.T) {
	// 4096 samples at 4096 Hz give a 1 Hz grid, so a 100 Hz tone lands
	// exactly on a bin center and the windowed estimate is exact.
	signal := sine(4096, 100, 4096, 0.8, 0)

	a, err := Analyze(signal, 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.FFTSize != 4096 {
		t.Fatalf("FFTSize: got %d, expected 4096", a.FFTSize)
	}

	if len(a.Frequencies) != 2049 || len(a.Magnitudes) != 2049 {
		t.Fatalf("bin count: got %d/%d, expected 2049", len(a.Frequencies), len(a.Magnitudes))
	}

	if a.BinWidth != 1 {
		t.Fatalf("BinWidth: got %v, expected 1", a.BinWidth)
	}

	freq, mag, err := a.PeakIn(50, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if freq != 100 {
		t.Errorf("peak frequency: got %v, expected 100", freq)
	}

	if math.Abs(mag-0.8) > 1e-9 {
		t.Errorf("peak magnitude: got %v, expected 0.8", mag)
	}
}

func TestAnalyzeSidebandPlacement(t *testing.T) {
	// A 500 Hz message multiplied onto a 5 kHz carrier has all its energy
	// in two sidebands at 4.5 and 5.5 kHz with nothing at the carrier.
	const sampleRate = 50000

	n := 4096
	signal := make([]float64, n)

	for k := range signal {
		tk := float64(k) / sampleRate
		signal[k] = math.Sin(2*math.Pi*500*tk) * math.Cos(2*math.Pi*5000*tk)
	}

	a, err := Analyze(signal, sampleRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lowerFreq, lowerMag, err := a.PeakIn(4200, 4800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	upperFreq, upperMag, err := a.PeakIn(5200, 5800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(lowerFreq-4500) > a.BinWidth {
		t.Errorf("lower sideband: got %v Hz, expected 4500 within %v", lowerFreq, a.BinWidth)
	}

	if math.Abs(upperFreq-5500) > a.BinWidth {
		t.Errorf("upper sideband: got %v Hz, expected 5500 within %v", upperFreq, a.BinWidth)
	}

	// Each sideband carries half the message amplitude. Off-grid tones
	// lose a little to window scalloping.
	if math.Abs(lowerMag-0.5) > 0.1 {
		t.Errorf("lower sideband magnitude: got %v, expected near 0.5", lowerMag)
	}

	if math.Abs(upperMag-0.5) > 0.1 {
		t.Errorf("upper sideband magnitude: got %v, expected near 0.5", upperMag)
	}

	_, carrierMag, err := a.PeakIn(4900, 5100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if carrierMag > 0.01 {
		t.Errorf("carrier residue: got %v, expected below 0.01", carrierMag)
	}
}

func TestAnalyzeBandPower(t *testing.T) {
	// Two bin-centered tones: band power recovers A*A/2 per tone once the
	// window's noise bandwidth is factored out.
	signal := sine(4096, 100, 4096, 1, 0)

	second := sine(4096, 1000, 4096, 0.5, 0)
	for i := range signal {
		signal[i] += second[i]
	}

	a, err := Analyze(signal, 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p1, err := a.BandPower(50, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p2, err := a.BandPower(900, 1100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(p1-0.5) > 1e-6 {
		t.Errorf("band power at 100 Hz: got %v, expected 0.5", p1)
	}

	if math.Abs(p2-0.125) > 1e-6 {
		t.Errorf("band power at 1 kHz: got %v, expected 0.125", p2)
	}
}

func TestAnalyzeZeroPadding(t *testing.T) {
	signal := sine(4096, 100, 4096, 0.8, 0)

	a, err := Analyze(signal, 4096, WithFFTSize(8192))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.FFTSize != 8192 {
		t.Fatalf("FFTSize: got %d, expected 8192", a.FFTSize)
	}

	if a.BinWidth != 0.5 {
		t.Fatalf("BinWidth: got %v, expected 0.5", a.BinWidth)
	}

	freq, mag, err := a.PeakIn(50, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(freq-100) > a.BinWidth {
		t.Errorf("peak frequency: got %v, expected 100 within %v", freq, a.BinWidth)
	}

	if math.Abs(mag-0.8) > 1e-3 {
		t.Errorf("peak magnitude: got %v, expected near 0.8", mag)
	}
}

func TestAnalyzeWindowSelection(t *testing.T) {
	// A tone half way between bin centers suffers worst-case scalloping.
	// The Hann estimate drops about 15 percent there while a flat-top
	// window holds the amplitude to within a percent.
	signal := sine(4096, 100.5, 4096, 1, 0)

	hannA, err := Analyze(signal, 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flatA, err := Analyze(signal, 4096, WithWindow(window.TypeFlatTop))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, hannMag, err := hannA.PeakIn(90, 111)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, flatMag, err := flatA.PeakIn(90, 111)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hannMag < 0.8 || hannMag > 0.9 {
		t.Errorf("hann scalloped magnitude: got %v, expected in [0.8, 0.9]", hannMag)
	}

	if math.Abs(flatMag-1) > 0.01 {
		t.Errorf("flat-top magnitude: got %v, expected within 0.01 of 1", flatMag)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	signal := sine(1024, 100, 4096, 1, 0)

	cases := []struct {
		name       string
		signal     []float64
		sampleRate float64
		opts       []Option
		expected   error
	}{
		{"empty signal", nil, 4096, nil, ErrEmptySignal},
		{"zero sample rate", signal, 0, nil, ErrInvalidSampleRate},
		{"negative sample rate", signal, -1, nil, ErrInvalidSampleRate},
		{"fft size not a power of two", signal, 4096, []Option{WithFFTSize(1000)}, ErrInvalidFFTSize},
		{"fft size below signal length", signal, 4096, []Option{WithFFTSize(512)}, ErrInvalidFFTSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Analyze(tc.signal, tc.sampleRate, tc.opts...)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("got %v, expected %v", err, tc.expected)
			}
		})
	}
}

func TestAnalysisBandErrors(t *testing.T) {
	signal := sine(4096, 100, 4096, 1, 0)

	a, err := Analyze(signal, 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := a.PeakIn(200, 100); !errors.Is(err, ErrInvalidBand) {
		t.Errorf("inverted band: got %v, expected ErrInvalidBand", err)
	}

	// No bin center falls strictly between two grid points.
	if _, _, err := a.PeakIn(100.2, 100.8); !errors.Is(err, ErrInvalidBand) {
		t.Errorf("band between bins: got %v, expected ErrInvalidBand", err)
	}

	if _, err := a.BandPower(5000, 6000); !errors.Is(err, ErrInvalidBand) {
		t.Errorf("band beyond Nyquist: got %v, expected ErrInvalidBand", err)
	}
}

func TestToneProbeAmplitude(t *testing.T) {
	// 2000 samples at 50 kHz span exactly 20 cycles of 500 Hz, so the
	// estimate is exact regardless of phase.
	signal := sine(2000, 500, 50000, 0.7, math.Pi/3)

	probe, err := NewToneProbe(500, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	probe.ProcessBlock(signal)

	if got := probe.Amplitude(); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("amplitude: got %v, expected 0.7", got)
	}

	if probe.Frequency() != 500 || probe.SampleRate() != 50000 {
		t.Errorf("accessors: got %v Hz at %v Hz", probe.Frequency(), probe.SampleRate())
	}
}

func TestToneProbeRejectsOrthogonalTone(t *testing.T) {
	// 500 Hz and 3000 Hz both complete integer cycle counts in 2000
	// samples at 50 kHz, making the DFT terms exactly orthogonal.
	signal := sine(2000, 500, 50000, 1, 0)

	got, err := ProbeAmplitude(signal, 3000, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got > 1e-9 {
		t.Errorf("off-frequency amplitude: got %v, expected near 0", got)
	}
}

func TestToneProbeAccumulatesAcrossBlocks(t *testing.T) {
	signal := sine(2000, 500, 50000, 0.7, math.Pi/3)

	whole, err := NewToneProbe(500, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	whole.ProcessBlock(signal)

	split, err := NewToneProbe(500, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	split.ProcessBlock(signal[:700])
	split.ProcessBlock(signal[700:])

	if w, s := whole.Amplitude(), split.Amplitude(); w != s {
		t.Errorf("split processing diverged: %v vs %v", w, s)
	}
}

func TestToneProbeReset(t *testing.T) {
	signal := sine(2000, 500, 50000, 0.7, 0)

	probe, err := NewToneProbe(500, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	probe.ProcessBlock(signal)
	probe.Reset()

	if got := probe.Amplitude(); got != 0 {
		t.Fatalf("amplitude after reset: got %v, expected 0", got)
	}

	probe.ProcessBlock(signal)

	if got := probe.Amplitude(); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("amplitude after reuse: got %v, expected 0.7", got)
	}
}

func TestToneProbeSampleBySampleMatchesBlock(t *testing.T) {
	signal := sine(500, 800, 50000, 0.3, 1.1)

	block, err := NewToneProbe(800, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	block.ProcessBlock(signal)

	single, err := NewToneProbe(800, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, x := range signal {
		single.ProcessSample(x)
	}

	if b, s := block.Amplitude(), single.Amplitude(); b != s {
		t.Errorf("sample path diverged from block path: %v vs %v", b, s)
	}
}

func TestToneProbeErrors(t *testing.T) {
	cases := []struct {
		name       string
		frequency  float64
		sampleRate float64
		expected   error
	}{
		{"zero sample rate", 500, 0, ErrInvalidSampleRate},
		{"negative sample rate", 500, -50000, ErrInvalidSampleRate},
		{"negative frequency", -1, 50000, ErrProbeFrequency},
		{"above nyquist", 30000, 50000, ErrProbeFrequency},
		{"nan frequency", math.NaN(), 50000, ErrProbeFrequency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewToneProbe(tc.frequency, tc.sampleRate)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("got %v, expected %v", err, tc.expected)
			}
		})
	}
}
