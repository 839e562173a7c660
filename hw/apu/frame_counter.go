package apu

import (
	"famicore/emu/log"
	"famicore/hw/hwdefs"
)

// frameEvent is the set of signals the frame sequencer emits in a tick.
type frameEvent uint8

const (
	quarterFrame frameEvent = 1 << iota // envelopes and triangle linear counter
	halfFrame                           // length counters and sweep units
	frameIRQ                            // 4-step mode only, unless inhibited
)

// sequencer steps, in CPU cycles since the last wrap.
type stepTable struct {
	quarter1, half1, quarter2, last4, last5 int
}

var frameSteps = [...]stepTable{
	hwdefs.NTSC: {7457, 14913, 22371, 29829, 37281},
	hwdefs.PAL:  {8313, 16627, 24939, 33253, 41565},
}

type seqState uint8

const (
	seqRunning seqState = iota
	seqResetPending
)

// frameSequencer is the APU frame counter ($4017). It is clocked once per
// CPU cycle, in either 4-step or 5-step mode:
//
//	mode 0:    - - - f      (4-step, IRQ on last step)
//	           - l - l
//	           e e e e
//
//	mode 1:    - - - - -    (5-step, no IRQ)
//	           - l - - l
//	           e e e - e
//
// Writing $4017 doesn't take effect immediately: the sequencer moves to
// seqResetPending and the reset is performed on the next tick.
type frameSequencer struct {
	state      seqState
	counter    int
	fiveStep   bool
	irqInhibit bool
	irqFlag    bool

	steps stepTable
}

func (fs *frameSequencer) init(tv hwdefs.TVSystem) {
	fs.steps = frameSteps[tv]
}

// write handles a write to $4017.
func (fs *frameSequencer) write(val uint8) {
	fs.fiveStep = val&0x80 != 0
	fs.irqInhibit = val&0x40 != 0
	if fs.irqInhibit {
		fs.irqFlag = false
	}
	fs.state = seqResetPending
}

// tick advances the sequencer by one CPU cycle and returns the events to
// dispatch to the channels.
func (fs *frameSequencer) tick() frameEvent {
	var ev frameEvent

	if fs.state == seqResetPending {
		fs.state = seqRunning
		fs.counter = 0
		if fs.fiveStep {
			ev |= quarterFrame | halfFrame
		}
	}

	fs.counter++
	switch fs.counter {
	case fs.steps.quarter1, fs.steps.quarter2:
		ev |= quarterFrame
	case fs.steps.half1:
		ev |= quarterFrame | halfFrame
	case fs.steps.last4:
		if fs.fiveStep {
			break
		}
		ev |= quarterFrame | halfFrame
		if !fs.irqInhibit {
			fs.irqFlag = true
			ev |= frameIRQ
		}
	case fs.steps.last4 + 1:
		if !fs.fiveStep {
			fs.counter = 0
		}
	case fs.steps.last5:
		ev |= quarterFrame | halfFrame
	case fs.steps.last5 + 1:
		fs.counter = 0
	}
	return ev
}

func (fs *frameSequencer) reset(soft bool) {
	if !soft {
		fs.fiveStep = false
	}
	fs.irqInhibit = false
	fs.irqFlag = false
	fs.counter = 0
	fs.state = seqResetPending
	log.ModSound.DebugZ("frame sequencer reset").Bool("5-step", fs.fiveStep).End()
}
