package apu

import (
	"famicore/emu/log"
	"famicore/hw/hwdefs"
)

var dmcRates = [...][16]uint16{
	hwdefs.NTSC: {428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54},
	hwdefs.PAL:  {398, 354, 316, 298, 276, 236, 210, 198, 176, 148, 132, 118, 98, 78, 66, 50},
}

// Number of cycles the CPU is stalled by a DMC sample fetch.
const dmcFetchStall = 4

// The DMC (delta modulation channel) plays 1-bit delta encoded samples
// fetched from cartridge memory.
//
//	                         Timer
//	                           |
//	                           v
//	Reader ---> Buffer ---> Shifter ---> Output level ---> (to the mixer)
type dmc struct {
	enabled bool
	rates   *[16]uint16

	irqEnabled bool
	irqFlag    bool
	loop       bool
	rate       int
	rateIndex  int

	sampleAddr   uint16
	sampleLength uint16
	curAddr      uint16
	bytesLeft    uint16

	buffer  uint8 // sample buffer
	empty   bool  // sample buffer is empty
	bits    uint8 // shift register
	bitsCnt uint8 // bits left in the shift register
	silence bool

	level uint8 // 7-bit output level
}

func (d *dmc) init(tv hwdefs.TVSystem) {
	*d = dmc{
		rates:   &dmcRates[tv],
		empty:   true,
		silence: true,
	}
	d.rate = int(d.rates[0]) - 1
}

// WriteCTRL handles writes to $4010 (IL-- RRRR).
func (d *dmc) WriteCTRL(val uint8) {
	log.ModSound.DebugZ("write dmc ctrl").Hex8("val", val).End()
	d.irqEnabled = val&0x80 != 0
	d.loop = val&0x40 != 0
	d.rate = int(d.rates[val&0x0F]) - 1
	if !d.irqEnabled {
		d.irqFlag = false
	}
}

// WriteLOAD handles writes to $4011 (-DDD DDDD), direct load of the output.
func (d *dmc) WriteLOAD(val uint8) {
	d.level = val & 0x7F
}

// WriteADDR handles writes to $4012, sample address = $C000 + A*64.
func (d *dmc) WriteADDR(val uint8) {
	d.sampleAddr = 0xC000 + uint16(val)*64
}

// WriteLENGTH handles writes to $4013, sample length = L*16 + 1 bytes.
func (d *dmc) WriteLENGTH(val uint8) {
	d.sampleLength = uint16(val)*16 + 1
}

func (d *dmc) setEnabled(enabled bool) {
	d.enabled = enabled
	switch {
	case !enabled:
		d.bytesLeft = 0
	case d.bytesLeft == 0:
		d.restart()
	}
	d.irqFlag = false
}

func (d *dmc) restart() {
	d.curAddr = d.sampleAddr
	d.bytesLeft = d.sampleLength
}

// clock is called every CPU cycle. The memory reader refills the sample
// buffer as soon as it's empty, stalling the CPU.
func (d *dmc) clock(mem Memory, cpu CPU) {
	if d.enabled && d.empty {
		d.fetch(mem, cpu)
	}

	if d.rateIndex > 0 {
		d.rateIndex--
		return
	}
	d.rateIndex = d.rate

	if d.bitsCnt > 0 {
		if !d.silence {
			if d.bits&1 != 0 {
				d.level = min(d.level+2, 127)
			} else if d.level > 1 {
				d.level -= 2
			}
			d.bits >>= 1
		}
		d.bitsCnt--
	}
	if d.bitsCnt == 0 {
		if d.empty {
			d.silence = true
		} else {
			d.bits = d.buffer
			d.empty = true
			d.silence = false
		}
		d.bitsCnt = 8
	}
}

func (d *dmc) fetch(mem Memory, cpu CPU) {
	if d.bytesLeft == 0 {
		return
	}

	cpu.Stall(dmcFetchStall)
	d.buffer = mem.Read8(d.curAddr)
	d.empty = false
	log.ModDMA.DebugZ("dmc fetch").Hex16("addr", d.curAddr).Hex8("val", d.buffer).End()

	if d.curAddr == 0xFFFF {
		d.curAddr = 0x8000
	} else {
		d.curAddr++
	}

	d.bytesLeft--
	if d.bytesLeft == 0 {
		switch {
		case d.loop:
			d.restart()
		case d.irqEnabled:
			d.irqFlag = true
		}
	}
}

func (d *dmc) output() uint8 {
	return d.level
}
