package link

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/cwbudde/algo-fdm/dsp/design"
	"github.com/cwbudde/algo-fdm/dsp/dsbsc"
	"github.com/cwbudde/algo-fdm/dsp/iir"
	"github.com/cwbudde/algo-fdm/dsp/mux"
	"github.com/cwbudde/algo-fdm/dsp/noise"
	"github.com/cwbudde/algo-fdm/dsp/timebase"
	"github.com/cwbudde/algo-fdm/dsp/tone"
)

// Errors returned by link configuration and pipeline operations.
var (
	ErrChannelCountMismatch = errors.New("link: message and carrier frequency lists must have equal length")
	ErrNoChannels           = errors.New("link: at least one channel is required")
	ErrInvalidChannel       = errors.New("link: channel frequencies must be positive and below the Nyquist frequency")
	ErrInvalidNoise         = errors.New("link: noise level must not be negative")
	ErrUnknownNoiseKind     = errors.New("link: unknown noise kind")
	ErrNoTransmission       = errors.New("link: transmission carries no composite signal")
)

// Channel pairs one baseband message frequency with the carrier that
// transports it. Carriers must be mutually distinct and separated widely
// enough that the modulated sidebands do not overlap; that is a transmission
// precondition of the multiplex, not something enforced at run time.
type Channel struct {
	MessageHz float64
	CarrierHz float64
}

// Pair builds channels from parallel message and carrier frequency lists.
func Pair(messageHz, carrierHz []float64) ([]Channel, error) {
	if len(messageHz) != len(carrierHz) {
		return nil, fmt.Errorf("%w: %d messages vs %d carriers",
			ErrChannelCountMismatch, len(messageHz), len(carrierHz))
	}

	channels := make([]Channel, len(messageHz))
	for i := range channels {
		channels[i] = Channel{MessageHz: messageHz[i], CarrierHz: carrierHz[i]}
	}

	return channels, nil
}

// FilterSpec describes the low-pass filter shared by every channel's
// demodulator. Its cutoff must sit strictly above the highest message
// frequency and well below the smallest carrier frequency, so the filter
// keeps the recovered baseband and rejects the images the coherent multiply
// shifts up to twice the carrier.
type FilterSpec struct {
	CutoffHz float64

	// Order selects the Butterworth order; 0 means design.DefaultOrder.
	Order int
}

// NoiseKind selects the distribution of the channel perturbation.
type NoiseKind int

const (
	// NoiseGaussian adds white Gaussian noise.
	NoiseGaussian NoiseKind = iota

	// NoiseUniform adds noise drawn uniformly from [-StdDev, StdDev].
	NoiseUniform
)

// NoiseSpec configures the optional perturbation of the composite signal on
// its way to the receiver. The zero value disables it.
type NoiseSpec struct {
	Kind NoiseKind

	// StdDev is the Gaussian standard deviation, or the peak amplitude
	// for uniform noise. Zero disables the perturbation entirely.
	StdDev float64

	// Seed makes the perturbation reproducible across runs.
	Seed int64
}

// Link holds the full configuration of one simulated FDM transmission.
type Link struct {
	Clock    timebase.Clock
	Channels []Channel
	Filter   FilterSpec
	Noise    NoiseSpec

	// Workers caps the goroutines used for demodulation. Values below 2
	// keep the pipeline fully sequential.
	Workers int
}

// Result carries every signal of one run: the inputs exposed for rendering
// and the recovered outputs. All per-channel slices are indexed like
// Link.Channels, and every signal shares the clock's sample count.
type Result struct {
	// Times is the clock's time vector, t[k] = k/SampleRate.
	Times []float64

	// Messages and Carriers are the synthesized per-channel tones,
	// Modulated their DSB-SC products.
	Messages  [][]float64
	Carriers  [][]float64
	Modulated [][]float64

	// Composite is the summed transmission as the receiver sees it,
	// including the configured noise.
	Composite []float64

	// Recovered holds the demodulated basebands; nil until Receive runs.
	Recovered [][]float64

	// Coefficients is the shared demodulation low-pass; zero until
	// Receive runs.
	Coefficients iir.Coefficients
}

// Validate checks the whole configuration and reports the first violated
// constraint.
func (l *Link) Validate() error {
	if err := l.Clock.Validate(); err != nil {
		return err
	}

	if len(l.Channels) == 0 {
		return ErrNoChannels
	}

	nyquist := l.Clock.Nyquist()

	for i, ch := range l.Channels {
		if ch.MessageHz <= 0 || ch.MessageHz >= nyquist {
			return fmt.Errorf("%w: channel %d message %g Hz", ErrInvalidChannel, i, ch.MessageHz)
		}

		if ch.CarrierHz <= 0 || ch.CarrierHz >= nyquist {
			return fmt.Errorf("%w: channel %d carrier %g Hz", ErrInvalidChannel, i, ch.CarrierHz)
		}
	}

	if _, err := l.Coefficients(); err != nil {
		return err
	}

	if l.Noise.StdDev < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidNoise, l.Noise.StdDev)
	}

	switch l.Noise.Kind {
	case NoiseGaussian, NoiseUniform:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownNoiseKind, l.Noise.Kind)
	}

	return nil
}

// Coefficients designs the shared demodulation low-pass for this link.
func (l *Link) Coefficients() (iir.Coefficients, error) {
	order := l.Filter.Order
	if order == 0 {
		order = design.DefaultOrder
	}

	return design.ButterworthLP(l.Filter.CutoffHz, order, l.Clock.SampleRate)
}

// Transmit synthesizes every channel, modulates it onto its carrier and
// sums the channels into the composite signal, applying the configured
// noise. The returned result has no recovered signals yet; pass it to
// Receive, or use Run for the whole chain.
func (l *Link) Transmit() (*Result, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	times, err := l.Clock.Times()
	if err != nil {
		return nil, err
	}

	synth, err := tone.NewSynthesizer(l.Clock)
	if err != nil {
		return nil, err
	}

	n := len(l.Channels)

	res := &Result{
		Times:     times,
		Messages:  make([][]float64, n),
		Carriers:  make([][]float64, n),
		Modulated: make([][]float64, n),
	}

	for i, ch := range l.Channels {
		message, carrier, modulated, err := transmitChannel(synth, ch)
		if err != nil {
			return nil, fmt.Errorf("link: channel %d: %w", i, err)
		}

		res.Messages[i] = message
		res.Carriers[i] = carrier
		res.Modulated[i] = modulated
	}

	composite, err := mux.Multiplex(res.Modulated...)
	if err != nil {
		return nil, err
	}

	if res.Composite, err = l.perturb(composite); err != nil {
		return nil, err
	}

	return res, nil
}

// Receive demodulates every channel of a transmission, filling the result's
// Recovered and Coefficients fields. Each channel is recovered by
// multiplying the composite with that channel's carrier and low-pass
// filtering the product; channels never interact, so with Workers > 1 they
// are processed concurrently.
func (l *Link) Receive(res *Result) error {
	if res == nil || len(res.Composite) == 0 {
		return ErrNoTransmission
	}

	coeffs, err := l.Coefficients()
	if err != nil {
		return err
	}

	recovered, err := demodulate(res.Composite, res.Carriers, coeffs, l.Workers)
	if err != nil {
		return err
	}

	res.Recovered = recovered
	res.Coefficients = coeffs

	return nil
}

// Run executes the full transmit and receive chain.
func (l *Link) Run() (*Result, error) {
	res, err := l.Transmit()
	if err != nil {
		return nil, err
	}

	if err := l.Receive(res); err != nil {
		return nil, err
	}

	return res, nil
}

// transmitChannel synthesizes one channel's tones and modulates them.
// Messages are sines and carriers cosines, the convention the coherent
// receiver assumes.
func transmitChannel(synth *tone.Synthesizer, ch Channel) (message, carrier, modulated []float64, err error) {
	if message, err = synth.Sine(ch.MessageHz); err != nil {
		return nil, nil, nil, err
	}

	if carrier, err = synth.Cosine(ch.CarrierHz); err != nil {
		return nil, nil, nil, err
	}

	if modulated, err = dsbsc.Modulate(message, carrier); err != nil {
		return nil, nil, nil, err
	}

	return message, carrier, modulated, nil
}

// perturb applies the configured channel noise to the composite signal.
// With noise disabled the composite passes through untouched.
func (l *Link) perturb(composite []float64) ([]float64, error) {
	if l.Noise.StdDev == 0 {
		return composite, nil
	}

	rng := rand.New(rand.NewSource(l.Noise.Seed))

	if l.Noise.Kind == NoiseUniform {
		return noise.Uniform(composite, l.Noise.StdDev, rng)
	}

	return noise.Gaussian(composite, l.Noise.StdDev, rng)
}

// demodulate recovers every channel from the shared composite. With more
// than one worker the channels are striped across goroutines; each writes
// only its own result and error slot, so no locking is needed.
func demodulate(composite []float64, carriers [][]float64, lowpass iir.Coefficients, workers int) ([][]float64, error) {
	if len(carriers) == 0 {
		return nil, ErrNoChannels
	}

	recovered := make([][]float64, len(carriers))

	if workers > len(carriers) {
		workers = len(carriers)
	}

	if workers <= 1 {
		for i, carrier := range carriers {
			out, err := dsbsc.Demodulate(composite, carrier, lowpass)
			if err != nil {
				return nil, fmt.Errorf("link: channel %d: %w", i, err)
			}

			recovered[i] = out
		}

		return recovered, nil
	}

	errs := make([]error, len(carriers))

	var wg sync.WaitGroup

	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(start int) {
			defer wg.Done()

			for i := start; i < len(carriers); i += workers {
				recovered[i], errs[i] = dsbsc.Demodulate(composite, carriers[i], lowpass)
			}
		}(w)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("link: channel %d: %w", i, err)
		}
	}

	return recovered, nil
}
