package tone

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-fdm/dsp/timebase"
)

var testClock = timebase.Clock{SampleRate: 50000, Duration: 0.01}

func TestSineMatchesClosedForm(t *testing.T) {
	synth, err := NewSynthesizer(testClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := synth.Sine(120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != testClock.Samples() {
		t.Fatalf("length mismatch: got %d, expected %d", len(got), testClock.Samples())
	}

	for i, v := range got {
		tSec := float64(i) / testClock.SampleRate
		want := math.Sin(2 * math.Pi * 120 * tSec)
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("sample %d: got %v, expected %v", i, v, want)
		}
	}
}

func TestCosineStartsAtPeak(t *testing.T) {
	synth, err := NewSynthesizer(testClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := synth.Cosine(3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got[0] != 1 {
		t.Errorf("cosine[0] = %v, expected 1", got[0])
	}

	sine, err := synth.Sine(3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sine[0] != 0 {
		t.Errorf("sine[0] = %v, expected 0", sine[0])
	}
}

func TestSynthesizeOptions(t *testing.T) {
	synth, err := NewSynthesizer(testClock, WithAmplitude(0.25), WithPhase(math.Pi/2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// sin(x + π/2) = cos(x), so a quarter-turn sine is a scaled cosine.
	shifted, err := synth.Sine(500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plain, err := NewSynthesizer(testClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cosine, err := plain.Cosine(500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range shifted {
		if math.Abs(shifted[i]-0.25*cosine[i]) > 1e-12 {
			t.Fatalf("sample %d: got %v, expected %v", i, shifted[i], 0.25*cosine[i])
		}
	}
}

func TestSynthesizeErrors(t *testing.T) {
	synth, err := NewSynthesizer(testClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := synth.Sine(0); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency, got %v", err)
	}

	if _, err := synth.Sine(-100); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency, got %v", err)
	}

	if _, err := synth.Cosine(testClock.Nyquist()); !errors.Is(err, ErrAliasedFrequency) {
		t.Errorf("expected ErrAliasedFrequency, got %v", err)
	}
}

func TestNewSynthesizerInvalidClock(t *testing.T) {
	_, err := NewSynthesizer(timebase.Clock{SampleRate: -1, Duration: 1})
	if !errors.Is(err, timebase.ErrInvalidSampleRate) {
		t.Errorf("expected ErrInvalidSampleRate, got %v", err)
	}
}
