package apu

import "sync"

const (
	pulseLUTSize = 31  // 2 pulses * 15
	tndLUTSize   = 203 // 3*15 + 2*15 + 127
)

type mixerTables struct {
	pulse [pulseLUTSize]float32
	tnd   [tndLUTSize]float32
}

// The lookup tables approximate the non-linear DAC of the 2A03.
// See https://www.nesdev.org/wiki/APU_Mixer#Lookup_Table
var mixerLUT = sync.OnceValue(func() *mixerTables {
	var t mixerTables
	for i := 1; i < pulseLUTSize; i++ {
		t.pulse[i] = 95.52 / (8128.0/float32(i) + 100)
	}
	for i := 1; i < tndLUTSize; i++ {
		t.tnd[i] = 163.67 / (24329.0/float32(i) + 100)
	}
	return &t
})

// mix returns the amplitude of the mixed channels, in [0, 1].
func (a *APU) mix() float32 {
	lut := mixerLUT()

	pulse := a.pulse1.output() + a.pulse2.output()
	tnd := 3*int(a.triangle.output()) + 2*int(a.noise.output()) + int(a.dmc.output())

	return min(lut.pulse[pulse]+lut.tnd[tnd], 1)
}
