package apu

import (
	"math"

	"famicore/hw/hwdefs"
)

const (
	// BufferSize is the minimum capacity, in samples, of the APU output
	// buffer. It also sizes the audio device buffer.
	BufferSize = 1024

	// Supported output sample rates, in Hz.
	MinSampleRate = 8000
	MaxSampleRate = 192000

	// NominalQueue is the audio sink queue depth, in samples, the sampler
	// steers toward.
	NominalQueue = 3000

	statsWindow = 20
	maxFactor   = 100
)

// Sampler down-samples the CPU-rate signal to the output rate. Instead of a
// fractional accumulator, the sampling period alternates between 2 integer
// periods: over each cycle of maxFactor+1 samples, the first targetFactor+1
// use maxPeriod and the others minPeriod. Feedback moves targetFactor around
// its equilibrium to follow the audio device clock.
type Sampler struct {
	maxPeriod int
	minPeriod int
	period    int
	counter   int

	factorIndex  int
	targetFactor int
	equilibrium  int

	window    [statsWindow]int
	windowIdx int
	windowSum int

	samples uint64
}

// NewSampler returns a sampler producing rate samples per second from the
// CPU clock of the given TV system.
func NewSampler(tv hwdefs.TVSystem, rate int) Sampler {
	ratio := tv.CyclesPerFrame() * float64(tv.FrameRate()) / float64(rate)
	maxp := int(math.Ceil(ratio))
	// Share of maxPeriod samples that gives an average period of ratio.
	eq := int(math.Round((ratio-float64(maxp-1))*(maxFactor+1))) - 1
	eq = min(max(eq, 0), maxFactor)

	return Sampler{
		maxPeriod:    maxp,
		minPeriod:    maxp - 1,
		period:       maxp - 1,
		targetFactor: eq,
		equilibrium:  eq,
	}
}

// Tick is called every CPU cycle and reports whether a sample must be taken.
func (s *Sampler) Tick() bool {
	s.counter++
	if s.counter < s.period {
		return false
	}

	s.counter = 0
	s.samples++
	if s.factorIndex <= s.targetFactor {
		s.period = s.maxPeriod
	} else {
		s.period = s.minPeriod
	}
	s.factorIndex++
	if s.factorIndex > maxFactor {
		s.factorIndex = 0
	}
	return true
}

// Feedback reports the number of samples currently queued by the audio sink.
// A queue growing above NominalQueue lengthens the average period, and a
// draining queue shortens it.
func (s *Sampler) Feedback(queued int) {
	s.windowSum += queued - s.window[s.windowIdx]
	s.window[s.windowIdx] = queued
	s.windowIdx = (s.windowIdx + 1) % statsWindow

	avg := float64(s.windowSum / statsWindow)
	errq := avg - NominalQueue

	var delta float64
	if errq >= 0 {
		delta = float64(maxFactor-s.equilibrium) * errq / NominalQueue
	} else {
		delta = float64(s.equilibrium) * errq / NominalQueue
	}
	s.targetFactor = min(s.equilibrium+int(delta), maxFactor)
}

// Samples returns the number of samples taken since creation.
func (s *Sampler) Samples() uint64 { return s.samples }

// Period returns the current sampling period, in CPU cycles.
func (s *Sampler) Period() int { return s.period }

// TargetFactor returns the number of long periods (minus 1) per cycle.
func (s *Sampler) TargetFactor() int { return s.targetFactor }
