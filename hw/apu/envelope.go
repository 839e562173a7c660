package apu

// envelope generates the decaying volume of the pulse and noise channels.
// Its decay level is the divider step, counting down from 15 each time the
// divider (period = register volume) fires, and looping back to 15 when the
// length counter halt flag is set.
type envelope struct {
	div         Divider
	constVolume bool
}

func (e *envelope) init() {
	e.div.Limit = 15
}

// write handles the low 6 bits of the channel control register (--LC VVVV).
func (e *envelope) write(val uint8) {
	e.constVolume = val&0x10 != 0
	e.div.Loop = val&0x20 != 0
	e.div.Period = int(val & 0x0F)
}

// restart restarts the decay, after a write to the length register.
func (e *envelope) restart() {
	e.div.Counter = e.div.Period
	e.div.Step = 15
}

func (e *envelope) clock() { e.div.ClockInverse() }

// halt reports whether the envelope loop flag, which doubles as the length
// counter halt flag, is set.
func (e *envelope) halt() bool { return e.div.Loop }

func (e *envelope) volume() uint8 {
	if e.constVolume {
		return uint8(e.div.Period)
	}
	return uint8(e.div.Step)
}
