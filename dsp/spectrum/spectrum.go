package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-fdm/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by spectrum functions.
var (
	ErrEmptySignal       = errors.New("spectrum: signal must not be empty")
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be positive")
	ErrInvalidFFTSize    = errors.New("spectrum: fft size must be a power of two no smaller than the signal length")
	ErrInvalidBand       = errors.New("spectrum: band must overlap the analyzed frequency range")
)

// Analysis holds a single-sided amplitude spectrum of a real-valued signal.
//
// Frequencies[k] is the center frequency of bin k in Hz and Magnitudes[k] is
// the estimated amplitude of a sinusoid at that frequency. Both slices cover
// bins 0 through FFTSize/2 inclusive, so the last entry sits at the Nyquist
// frequency.
type Analysis struct {
	Frequencies []float64
	Magnitudes  []float64
	BinWidth    float64
	FFTSize     int
	SampleRate  float64

	enbwBins float64
}

// Option configures an analysis.
type Option func(*analyzerConfig)

type analyzerConfig struct {
	fftSize int
	window  window.Type
}

// WithFFTSize fixes the FFT size instead of deriving it from the signal
// length. The size must be a power of two and at least the signal length;
// the excess is zero padded, which refines the frequency grid without adding
// information.
func WithFFTSize(n int) Option {
	return func(cfg *analyzerConfig) {
		cfg.fftSize = n
	}
}

// WithWindow selects the analysis window instead of the Hann default. A
// flat-top window trades frequency resolution for amplitude accuracy on
// components that fall between bin centers.
func WithWindow(t window.Type) Option {
	return func(cfg *analyzerConfig) {
		cfg.window = t
	}
}

// Analyze computes the single-sided amplitude spectrum of signal.
//
// The signal is multiplied by a periodic analysis window, Hann unless
// WithWindow overrides it, before the transform to confine spectral leakage
// from components that do not complete an integer number of cycles.
// Magnitudes are normalized by the window sum, so a sinusoid of amplitude A
// whose frequency falls on a bin center reads close to A at that bin.
func Analyze(signal []float64, sampleRate float64, opts ...Option) (*Analysis, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidSampleRate, sampleRate)
	}

	cfg := analyzerConfig{window: window.TypeHann}
	for _, opt := range opts {
		opt(&cfg)
	}

	fftSize := cfg.fftSize
	if fftSize == 0 {
		fftSize = nextPowerOf2(len(signal))
	}

	if fftSize < len(signal) || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: got %d for %d samples", ErrInvalidFFTSize, fftSize, len(signal))
	}

	win := window.Generate(cfg.window, len(signal), window.WithPeriodic())
	winProps := window.Analyze(win)
	sumW := winProps.CoherentGain * float64(len(signal))

	inData := make([]complex128, fftSize)
	for i, x := range signal {
		inData[i] = complex(x*win[i], 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)

	if err := plan.Forward(out, inData); err != nil {
		return nil, fmt.Errorf("spectrum: fft: %w", err)
	}

	binCount := fftSize/2 + 1

	re := make([]float64, binCount)
	im := make([]float64, binCount)

	for i := 0; i < binCount; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mags := make([]float64, binCount)
	vecmath.Magnitude(mags, re, im)

	// Single-sided scaling: interior bins absorb the mirrored negative
	// frequencies, the DC and Nyquist bins have no mirror.
	scale := 2 / sumW
	for i := 1; i < binCount-1; i++ {
		mags[i] *= scale
	}

	mags[0] /= sumW
	mags[binCount-1] /= sumW

	binWidth := sampleRate / float64(fftSize)

	freqs := make([]float64, binCount)
	for i := range freqs {
		freqs[i] = float64(i) * binWidth
	}

	return &Analysis{
		Frequencies: freqs,
		Magnitudes:  mags,
		BinWidth:    binWidth,
		FFTSize:     fftSize,
		SampleRate:  sampleRate,
		enbwBins:    winProps.ENBW * float64(fftSize) / float64(len(signal)),
	}, nil
}

// PeakIn returns the frequency and magnitude of the strongest bin whose
// center lies in [loHz, hiHz].
func (a *Analysis) PeakIn(loHz, hiHz float64) (freqHz, magnitude float64, err error) {
	lo, hi, err := a.bandBins(loHz, hiHz)
	if err != nil {
		return 0, 0, err
	}

	peak := lo
	for k := lo + 1; k <= hi; k++ {
		if a.Magnitudes[k] > a.Magnitudes[peak] {
			peak = k
		}
	}

	return a.Frequencies[peak], a.Magnitudes[peak], nil
}

// BandPower returns the mean-square signal power contained in [loHz, hiHz].
//
// Bin powers are summed and corrected for the equivalent noise bandwidth of
// the analysis window, so an isolated sinusoid of amplitude A contributes
// close to A*A/2 to the band holding it. The estimate degrades when the band
// edge cuts through a component's leakage skirt.
func (a *Analysis) BandPower(loHz, hiHz float64) (float64, error) {
	lo, hi, err := a.bandBins(loHz, hiHz)
	if err != nil {
		return 0, err
	}

	last := len(a.Magnitudes) - 1

	sum := 0.0

	for k := lo; k <= hi; k++ {
		m := a.Magnitudes[k]
		if k == 0 || k == last {
			sum += m * m
		} else {
			sum += m * m / 2
		}
	}

	return sum / a.enbwBins, nil
}

func (a *Analysis) bandBins(loHz, hiHz float64) (lo, hi int, err error) {
	if hiHz < loHz {
		return 0, 0, fmt.Errorf("%w: %g Hz to %g Hz", ErrInvalidBand, loHz, hiHz)
	}

	last := len(a.Frequencies) - 1

	lo = int(math.Ceil(loHz / a.BinWidth))
	hi = int(math.Floor(hiHz / a.BinWidth))

	lo = clampInt(lo, 0, last)
	hi = clampInt(hi, 0, last)

	if a.Frequencies[lo] < loHz || a.Frequencies[hi] > hiHz || lo > hi {
		return 0, 0, fmt.Errorf("%w: no bin centers in %g Hz to %g Hz at %g Hz spacing",
			ErrInvalidBand, loHz, hiHz, a.BinWidth)
	}

	return lo, hi, nil
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
