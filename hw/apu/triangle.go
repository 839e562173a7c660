package apu

import "famicore/emu/log"

var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// The triangle channel contains the following: Timer, 32-step sequencer,
// Length Counter, Linear Counter, 4-bit DAC.
//
//	      +---------+    +---------+
//	      |LinearCtr|    | Length  |
//	      +---------+    +---------+
//	           |              |
//	           v              v
//	+---------+        |\             |\         +---------+    +---------+
//	|  Timer  |------->| >----------->| >------->|Sequencer|--->|   DAC   |
//	+---------+        |/             |/         +---------+    +---------+
//
// The sequencer only steps while both the linear and the length counters are
// non-zero.
type triangle struct {
	enabled bool

	seq    Divider
	length lengthCounter

	linearCounter uint8
	linearReload  uint8
	reloadFlag    bool
	control       bool // also the length counter halt flag
}

func (t *triangle) init() {
	*t = triangle{control: true}
	t.seq.Limit = 31
}

// WriteLINEAR handles writes to $4008 (CRRR RRRR).
func (t *triangle) WriteLINEAR(val uint8) {
	log.ModSound.DebugZ("write triangle linear").Hex8("val", val).End()
	t.linearReload = val & 0x7F
	t.control = val&0x80 != 0
}

// WriteTIMERLO handles writes to $400A.
func (t *triangle) WriteTIMERLO(val uint8) {
	t.seq.Period = t.seq.Period&^0xFF | int(val)
}

// WriteLENGTH handles writes to $400B (LLLL LTTT).
func (t *triangle) WriteLENGTH(val uint8) {
	log.ModSound.DebugZ("write triangle length").Hex8("val", val).End()
	t.seq.Period = t.seq.Period&0xFF | int(val&0x07)<<8
	t.reloadFlag = true
	t.length.load(t.enabled, val)
}

func (t *triangle) setEnabled(enabled bool) {
	t.enabled = enabled
	if !enabled {
		t.length.value = 0
	}
}

// clockTimer is called every CPU cycle.
func (t *triangle) clockTimer() {
	if t.seq.Counter > 0 {
		t.seq.Counter--
		return
	}
	t.seq.Counter = t.seq.Period
	if t.length.active() && t.linearCounter > 0 {
		t.seq.Step++
		if t.seq.Step > t.seq.Limit {
			t.seq.Step = t.seq.From
		}
	}
}

func (t *triangle) quarterFrame() {
	switch {
	case t.reloadFlag:
		t.linearCounter = t.linearReload
	case t.linearCounter > 0:
		t.linearCounter--
	}
	if !t.control {
		t.reloadFlag = false
	}
}

func (t *triangle) halfFrame() {
	t.length.clock(t.control)
}

// output is silent at ultrasonic periods, instead of the high frequency
// square the hardware produces.
func (t *triangle) output() uint8 {
	if !t.enabled || t.seq.Period <= 1 {
		return 0
	}
	return triangleSequence[t.seq.Step]
}
