package apu

var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// lengthCounter silences its channel when it reaches 0. It only loads while
// the channel is enabled in $4015 and never goes below 0.
type lengthCounter struct {
	value uint8
}

// load loads the counter from the 5-bit index written in the channel's
// length register (bits 3-7).
func (lc *lengthCounter) load(enabled bool, reg uint8) {
	if enabled {
		lc.value = lengthTable[reg>>3]
	}
}

// clock is called on half frames.
func (lc *lengthCounter) clock(halt bool) {
	if lc.value > 0 && !halt {
		lc.value--
	}
}

func (lc *lengthCounter) active() bool { return lc.value > 0 }
