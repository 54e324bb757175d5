// Package spectrum provides frequency-domain analysis of real-valued signals.
//
// Analyze computes a single-sided amplitude spectrum via FFT with a
// configurable analysis window, Hann by default, suitable for locating
// carriers and sidebands in a multiplexed signal. ToneProbe evaluates a
// single frequency component directly, without computing a full transform,
// and reports the amplitude of a real sinusoid at that frequency.
package spectrum
