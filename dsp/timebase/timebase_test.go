package timebase

import (
	"errors"
	"math"
	"testing"
)

func TestClockSamples(t *testing.T) {
	tests := []struct {
		name     string
		clock    Clock
		expected int
	}{
		{
			name:     "reference run",
			clock:    Clock{SampleRate: 50000, Duration: 0.01},
			expected: 500,
		},
		{
			name:     "one second at 48k",
			clock:    Clock{SampleRate: 48000, Duration: 1},
			expected: 48000,
		},
		{
			name:     "fractional tail dropped",
			clock:    Clock{SampleRate: 1000, Duration: 0.0105},
			expected: 10,
		},
		{
			name:     "sub-sample window",
			clock:    Clock{SampleRate: 100, Duration: 0.001},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clock.Samples(); got != tt.expected {
				t.Errorf("Samples() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestClockValidate(t *testing.T) {
	tests := []struct {
		name    string
		clock   Clock
		wantErr error
	}{
		{"valid", Clock{SampleRate: 50000, Duration: 0.01}, nil},
		{"zero rate", Clock{SampleRate: 0, Duration: 0.01}, ErrInvalidSampleRate},
		{"negative rate", Clock{SampleRate: -1, Duration: 0.01}, ErrInvalidSampleRate},
		{"zero duration", Clock{SampleRate: 50000, Duration: 0}, ErrInvalidDuration},
		{"negative duration", Clock{SampleRate: 50000, Duration: -0.5}, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.clock.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestClockTimes(t *testing.T) {
	clock := Clock{SampleRate: 50000, Duration: 0.01}

	times, err := clock.Times()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(times) != 500 {
		t.Fatalf("length mismatch: got %d, expected 500", len(times))
	}

	if times[0] != 0 {
		t.Errorf("times[0] = %v, expected 0", times[0])
	}

	// Uniform spacing of exactly one sample period.
	dt := 1.0 / clock.SampleRate
	for i := 1; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > 1e-15 {
			t.Fatalf("non-uniform step at index %d: %v", i, times[i]-times[i-1])
		}
	}

	last := times[len(times)-1]
	if last >= clock.Duration {
		t.Errorf("last instant %v not inside window %v", last, clock.Duration)
	}
}

func TestClockTimesInvalid(t *testing.T) {
	_, err := Clock{SampleRate: 0, Duration: 1}.Times()
	if !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("expected ErrInvalidSampleRate, got %v", err)
	}
}

func TestClockNyquist(t *testing.T) {
	clock := Clock{SampleRate: 50000, Duration: 0.01}
	if got := clock.Nyquist(); got != 25000 {
		t.Errorf("Nyquist() = %v, expected 25000", got)
	}
}
