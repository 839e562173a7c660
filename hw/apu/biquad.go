package apu

import (
	"fmt"
	"math"
)

// FilterType selects the response of a Biquad filter.
type FilterType uint8

const (
	LowPass FilterType = iota
	HighPass
	BandPass
	Notch
	PeakingEQ
	LowShelf
	HighShelf
)

var filterNames = [...]string{"LPF", "HPF", "BPF", "NOTCH", "PEQ", "LSH", "HSH"}

func (t FilterType) String() string {
	if int(t) < len(filterNames) {
		return filterNames[t]
	}
	return fmt.Sprintf("FilterType(%d)", t)
}

// Biquad is a two-pole, two-zero IIR filter section. Coefficients follow
// Robert Bristow-Johnson's Audio EQ Cookbook and are normalized by a0.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// NewBiquad computes the coefficients of a filter of the given type. gain is
// in dB (only used by the peaking and shelving filters), freq and srate in Hz
// and bw is the bandwidth in octaves.
func NewBiquad(typ FilterType, gain, freq, srate, bw float64) (Biquad, error) {
	if freq <= 0 || srate <= 0 || freq >= srate/2 {
		return Biquad{}, fmt.Errorf("biquad: %s cutoff %gHz out of range for %gHz sample rate", typ, freq, srate)
	}

	A := math.Pow(10, gain/40)
	omega := 2 * math.Pi * freq / srate
	sn, cs := math.Sincos(omega)
	alpha := sn * math.Sinh(math.Ln2/2*bw*omega/sn)
	beta := math.Sqrt(A + A)

	var a0, a1, a2, b0, b1, b2 float64
	switch typ {
	case LowPass:
		b0 = (1 - cs) / 2
		b1 = 1 - cs
		b2 = (1 - cs) / 2
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case HighPass:
		b0 = (1 + cs) / 2
		b1 = -(1 + cs)
		b2 = (1 + cs) / 2
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case BandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case Notch:
		b0 = 1
		b1 = -2 * cs
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case PeakingEQ:
		b0 = 1 + alpha*A
		b1 = -2 * cs
		b2 = 1 - alpha*A
		a0 = 1 + alpha/A
		a1 = -2 * cs
		a2 = 1 - alpha/A
	case LowShelf:
		b0 = A * ((A + 1) - (A-1)*cs + beta*sn)
		b1 = 2 * A * ((A - 1) - (A+1)*cs)
		b2 = A * ((A + 1) - (A-1)*cs - beta*sn)
		a0 = (A + 1) + (A-1)*cs + beta*sn
		a1 = -2 * ((A - 1) + (A+1)*cs)
		a2 = (A + 1) + (A-1)*cs - beta*sn
	case HighShelf:
		b0 = A * ((A + 1) + (A-1)*cs + beta*sn)
		b1 = -2 * A * ((A - 1) + (A+1)*cs)
		b2 = A * ((A + 1) + (A-1)*cs - beta*sn)
		a0 = (A + 1) - (A-1)*cs + beta*sn
		a1 = 2 * ((A - 1) - (A+1)*cs)
		a2 = (A + 1) - (A-1)*cs - beta*sn
	default:
		return Biquad{}, fmt.Errorf("biquad: unknown filter type %s", typ)
	}

	return Biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}, nil
}

// Apply filters one sample.
func (f *Biquad) Apply(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// Reset clears the filter history.
func (f *Biquad) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}
