package iir

import (
	"errors"
	"fmt"
)

// Errors returned by filter construction and application.
var (
	ErrEmptyNumerator   = errors.New("iir: numerator must contain at least one coefficient")
	ErrEmptyDenominator = errors.New("iir: denominator must contain at least one coefficient")
	ErrZeroDenominator  = errors.New("iir: leading denominator coefficient must not be zero")
)

// Coefficients holds the numerator (B) and denominator (A) of a discrete
// transfer function in ascending powers of z^-1.
type Coefficients struct {
	B []float64 // feedforward (numerator)
	A []float64 // feedback (denominator)
}

// Validate checks that the coefficient pair describes a usable filter.
func (c Coefficients) Validate() error {
	if len(c.B) == 0 {
		return ErrEmptyNumerator
	}

	if len(c.A) == 0 {
		return ErrEmptyDenominator
	}

	if c.A[0] == 0 {
		return ErrZeroDenominator
	}

	return nil
}

// Order returns the filter order, the larger polynomial degree.
func (c Coefficients) Order() int {
	order := len(c.B) - 1
	if n := len(c.A) - 1; n > order {
		order = n
	}

	if order < 0 {
		return 0
	}

	return order
}

// Normalized returns an equivalent transfer function scaled so that
// A[0] == 1. The receiver is not modified.
func (c Coefficients) Normalized() (Coefficients, error) {
	if err := c.Validate(); err != nil {
		return Coefficients{}, err
	}

	inv := 1 / c.A[0]
	out := Coefficients{
		B: make([]float64, len(c.B)),
		A: make([]float64, len(c.A)),
	}

	for i, v := range c.B {
		out.B[i] = v * inv
	}

	for i, v := range c.A {
		out.A[i] = v * inv
	}

	return out, nil
}

// Filter applies Coefficients to a sample stream using Direct Form II
// Transposed with a delay line of length Order. The biquad recurrence
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
//
// extends to order N with state d0..d(N-1); the last state element has no
// successor term.
type Filter struct {
	b, a  []float64 // padded to order+1, a[0] == 1
	state []float64
}

// New returns a Filter with zero initial state. The coefficients are
// normalized and padded internally, so B and A may differ in length.
func New(c Coefficients) (*Filter, error) {
	norm, err := c.Normalized()
	if err != nil {
		return nil, err
	}

	order := norm.Order()
	f := &Filter{
		b:     make([]float64, order+1),
		a:     make([]float64, order+1),
		state: make([]float64, order),
	}
	copy(f.b, norm.B)
	copy(f.a, norm.A)

	return f, nil
}

// Order returns the filter order.
func (f *Filter) Order() int {
	return len(f.state)
}

// ProcessSample filters one input sample and returns the output.
func (f *Filter) ProcessSample(x float64) float64 {
	if len(f.state) == 0 {
		return f.b[0] * x
	}

	y := f.b[0]*x + f.state[0]

	last := len(f.state) - 1
	for i := 0; i < last; i++ {
		f.state[i] = f.b[i+1]*x - f.a[i+1]*y + f.state[i+1]
	}
	f.state[last] = f.b[last+1]*x - f.a[last+1]*y

	return y
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (f *Filter) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// ProcessBlockTo filters src into dst. Both slices must have the same length.
// Zero-alloc.
func (f *Filter) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// Reset clears the delay line to zero.
func (f *Filter) Reset() {
	for i := range f.state {
		f.state[i] = 0
	}
}

// State returns a copy of the current delay-line state.
func (f *Filter) State() []float64 {
	out := make([]float64, len(f.state))
	copy(out, f.state)

	return out
}

// SetState restores a previously saved delay-line state.
func (f *Filter) SetState(state []float64) error {
	if len(state) != len(f.state) {
		return fmt.Errorf("iir: state length mismatch: got %d, want %d", len(state), len(f.state))
	}

	copy(f.state, state)

	return nil
}

// Apply filters signal through c causally from zero initial state and
// returns a new slice of the same length. The input is not modified.
func Apply(c Coefficients, signal []float64) ([]float64, error) {
	f, err := New(c)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(signal))
	f.ProcessBlockTo(out, signal)

	return out, nil
}
