package apu

import (
	"famicore/emu/log"
	"famicore/hw/hwdefs"
)

var noisePeriods = [...][16]uint16{
	hwdefs.NTSC: {4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068},
	hwdefs.PAL:  {4, 8, 14, 30, 60, 88, 118, 148, 188, 236, 354, 472, 708, 944, 1890, 3778},
}

// The noise channel contains the following: Envelope Generator, Timer,
// Linear Feedback Shift Register, Length Counter.
//
//	   +---------+    +---------+    +---------+
//	   |  Timer  |--->| Random  |    | Length  |
//	   +---------+    +---------+    +---------+
//	                       |              |
//	                       v              v
//	   +---------+        |\             |\         +---------+
//	   |Envelope |------->| >----------->| >------->|   DAC   |
//	   +---------+        |/             |/         +---------+
type noise struct {
	enabled bool
	periods *[16]uint16

	timer    Divider
	envelope envelope
	length   lengthCounter

	shift uint16 // 15-bit LFSR
	mode  bool   // feedback from bit 6 instead of bit 1
}

func (n *noise) init(tv hwdefs.TVSystem) {
	*n = noise{periods: &noisePeriods[tv], shift: 1}
	n.envelope.init()
}

// WriteCTRL handles writes to $400C (--LC VVVV).
func (n *noise) WriteCTRL(val uint8) {
	log.ModSound.DebugZ("write noise ctrl").Hex8("val", val).End()
	n.envelope.write(val)
}

// WritePERIOD handles writes to $400E (M--- PPPP).
func (n *noise) WritePERIOD(val uint8) {
	n.timer.Period = int(n.periods[val&0x0F])
	n.mode = val&0x80 != 0
}

// WriteLENGTH handles writes to $400F (LLLL L---).
func (n *noise) WriteLENGTH(val uint8) {
	log.ModSound.DebugZ("write noise length").Hex8("val", val).End()
	n.length.load(n.enabled, val)
	n.envelope.restart()
}

func (n *noise) setEnabled(enabled bool) {
	n.enabled = enabled
	if !enabled {
		n.length.value = 0
	}
}

// clockTimer is called every other CPU cycle.
func (n *noise) clockTimer() {
	if !n.timer.Clock() {
		return
	}
	tap := uint(1)
	if n.mode {
		tap = 6
	}
	feedback := (n.shift ^ n.shift>>tap) & 1
	n.shift = n.shift>>1 | feedback<<14
}

func (n *noise) quarterFrame() {
	n.envelope.clock()
}

func (n *noise) halfFrame() {
	n.length.clock(n.envelope.halt())
}

func (n *noise) output() uint8 {
	if !n.enabled || n.shift&1 != 0 || !n.length.active() {
		return 0
	}
	return n.envelope.volume()
}
