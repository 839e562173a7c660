package apu

import (
	"famicore/emu/log"
)

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 25% negated
}

// There are two pulse channels beginning at registers $4000 and $4004. Each
// contains the following: Envelope Generator, Sweep Unit, Timer with
// divide-by-two on the output, 8-step sequencer, Length Counter.
//
//	               +---------+    +---------+
//	               |  Sweep  |--->|Timer / 2|
//	               +---------+    +---------+
//	                    |              |
//	                    |              v
//	                    |         +---------+    +---------+
//	                    |         |Sequencer|    | Length  |
//	                    |         +---------+    +---------+
//	                    |              |              |
//	                    v              v              v
//	+---------+        |\             |\             |\          +---------+
//	|Envelope |------->| >----------->| >----------->| >-------->|   DAC   |
//	+---------+        |/             |/             |/          +---------+
type pulse struct {
	id      uint8 // 1 or 2
	enabled bool

	timer    Divider // step is the sequencer position
	envelope envelope
	length   lengthCounter
	duty     uint8

	sweep        Divider
	sweepEnabled bool
	sweepNegate  bool
	sweepShift   uint8
	targetPeriod int
	mute         bool
}

func (p *pulse) init(id uint8) {
	*p = pulse{id: id}
	p.timer.Limit = 7
	p.timer.Loop = true
	p.envelope.init()
	p.updateTargetPeriod()
}

// WriteCTRL handles writes to $4000/$4004 (DDLC VVVV).
func (p *pulse) WriteCTRL(val uint8) {
	log.ModSound.DebugZ("write pulse ctrl").Uint8("ch", p.id).Hex8("val", val).End()
	p.envelope.write(val)
	p.envelope.restart()
	p.duty = val >> 6
}

// WriteSWEEP handles writes to $4001/$4005 (EPPP NSSS).
func (p *pulse) WriteSWEEP(val uint8) {
	log.ModSound.DebugZ("write pulse sweep").Uint8("ch", p.id).Hex8("val", val).End()
	p.sweepEnabled = val&0x80 != 0
	p.sweep.Period = int(val>>4) & 0x07
	p.sweep.Reload()
	p.sweepNegate = val&0x08 != 0
	p.sweepShift = val & 0x07
	p.updateTargetPeriod()
}

// WriteTIMERLO handles writes to $4002/$4006 (timer low 8 bits).
func (p *pulse) WriteTIMERLO(val uint8) {
	p.timer.Period = p.timer.Period&^0xFF | int(val)
	p.updateTargetPeriod()
}

// WriteLENGTH handles writes to $4003/$4007 (LLLL LTTT).
func (p *pulse) WriteLENGTH(val uint8) {
	log.ModSound.DebugZ("write pulse length").Uint8("ch", p.id).Hex8("val", val).End()
	p.timer.Period = p.timer.Period&0xFF | int(val&0x07)<<8
	p.length.load(p.enabled, val)
	p.updateTargetPeriod()
	p.envelope.restart()
}

func (p *pulse) setEnabled(enabled bool) {
	p.enabled = enabled
	if !enabled {
		p.length.value = 0
	}
}

// The sweep unit continuously computes the target period. Pulse 1 adds the
// one's complement of the change when negating, pulse 2 the two's complement.
func (p *pulse) updateTargetPeriod() {
	change := p.timer.Period >> p.sweepShift
	if p.sweepNegate {
		change = -change
		if p.id == 1 {
			change--
		}
	}
	p.targetPeriod = max(p.timer.Period+change, 0)
	p.mute = p.timer.Period < 8 || p.targetPeriod > 0x7FF
}

// clockSequencer is called every other CPU cycle.
func (p *pulse) clockSequencer() {
	p.timer.Clock()
}

func (p *pulse) quarterFrame() {
	p.envelope.clock()
}

func (p *pulse) halfFrame() {
	if p.sweep.Clock() && p.sweepEnabled && p.sweepShift > 0 && !p.mute {
		p.timer.Period = p.targetPeriod
		p.updateTargetPeriod()
	}
	p.length.clock(p.envelope.halt())
}

func (p *pulse) output() uint8 {
	if !p.enabled || !p.length.active() || p.mute {
		return 0
	}
	return p.envelope.volume() * dutyTable[p.duty][p.timer.Step]
}
