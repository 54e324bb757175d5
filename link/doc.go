// Package link wires the transmission chain of a frequency-division
// multiplexed system end to end:
//
//	synthesize -> modulate -> multiplex -> [perturb] -> demodulate
//
// Each Channel pairs a baseband message tone with its carrier. Messages are
// modulated as double-sideband suppressed-carrier products, summed into one
// composite signal, optionally degraded by additive noise, and recovered by
// coherent demodulation against the original carriers through a shared
// Butterworth low-pass filter. Coherent DSB-SC demodulation halves the
// message amplitude, so a clean run recovers 0.5 times each message after
// the filter transient settles.
//
// Channels are independent once the composite exists: demodulation reads
// only the shared composite, the channel's own carrier and the shared filter
// coefficients, so Workers > 1 spreads the per-channel work across
// goroutines writing to disjoint result slots.
package link
