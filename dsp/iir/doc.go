// Package iir implements infinite impulse response filters in transfer
// function form.
//
// A filter is described by Coefficients, two polynomial coefficient
// sequences over z^-1:
//
//	H(z) = (B[0] + B[1] z^-1 + ... + B[m] z^-m) /
//	       (A[0] + A[1] z^-1 + ... + A[n] z^-n)
//
// Filter runs the difference equation in Direct Form II Transposed,
// generalized to arbitrary order. Apply is the one-shot form used by the
// demodulation chain: it filters a whole signal causally from zero initial
// state and returns an output of the same length, so the leading samples
// carry the settling transient of the filter.
package iir
