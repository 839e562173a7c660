package apu

import "famicore/hw/snapshot"

func (d *Divider) saveState() snapshot.Divider {
	return snapshot.Divider(*d)
}

func (d *Divider) setState(s snapshot.Divider) {
	*d = Divider(s)
}

func (e *envelope) saveState() snapshot.Envelope {
	return snapshot.Envelope{
		Divider:     e.div.saveState(),
		ConstVolume: e.constVolume,
	}
}

func (e *envelope) setState(s snapshot.Envelope) {
	e.div.setState(s.Divider)
	e.constVolume = s.ConstVolume
}

func (p *pulse) saveState() snapshot.Pulse {
	return snapshot.Pulse{
		Enabled:      p.enabled,
		Timer:        p.timer.saveState(),
		Envelope:     p.envelope.saveState(),
		Length:       p.length.value,
		Duty:         p.duty,
		Sweep:        p.sweep.saveState(),
		SweepEnabled: p.sweepEnabled,
		SweepNegate:  p.sweepNegate,
		SweepShift:   p.sweepShift,
		TargetPeriod: p.targetPeriod,
		Mute:         p.mute,
	}
}

func (p *pulse) setState(s snapshot.Pulse) {
	p.enabled = s.Enabled
	p.timer.setState(s.Timer)
	p.envelope.setState(s.Envelope)
	p.length.value = s.Length
	p.duty = s.Duty
	p.sweep.setState(s.Sweep)
	p.sweepEnabled = s.SweepEnabled
	p.sweepNegate = s.SweepNegate
	p.sweepShift = s.SweepShift
	p.targetPeriod = s.TargetPeriod
	p.mute = s.Mute
}

func (t *triangle) saveState() snapshot.Triangle {
	return snapshot.Triangle{
		Enabled:       t.enabled,
		Sequencer:     t.seq.saveState(),
		Length:        t.length.value,
		LinearCounter: t.linearCounter,
		LinearReload:  t.linearReload,
		ReloadFlag:    t.reloadFlag,
		Control:       t.control,
	}
}

func (t *triangle) setState(s snapshot.Triangle) {
	t.enabled = s.Enabled
	t.seq.setState(s.Sequencer)
	t.length.value = s.Length
	t.linearCounter = s.LinearCounter
	t.linearReload = s.LinearReload
	t.reloadFlag = s.ReloadFlag
	t.control = s.Control
}

func (n *noise) saveState() snapshot.Noise {
	return snapshot.Noise{
		Enabled:  n.enabled,
		Timer:    n.timer.saveState(),
		Envelope: n.envelope.saveState(),
		Length:   n.length.value,
		Shift:    n.shift,
		Mode:     n.mode,
	}
}

func (n *noise) setState(s snapshot.Noise) {
	n.enabled = s.Enabled
	n.timer.setState(s.Timer)
	n.envelope.setState(s.Envelope)
	n.length.value = s.Length
	n.shift = s.Shift
	n.mode = s.Mode
}

func (d *dmc) saveState() snapshot.DMC {
	return snapshot.DMC{
		Enabled:      d.enabled,
		IRQEnabled:   d.irqEnabled,
		IRQFlag:      d.irqFlag,
		Loop:         d.loop,
		Rate:         d.rate,
		RateIndex:    d.rateIndex,
		SampleAddr:   d.sampleAddr,
		SampleLength: d.sampleLength,
		CurAddr:      d.curAddr,
		BytesLeft:    d.bytesLeft,
		Buffer:       d.buffer,
		Empty:        d.empty,
		Bits:         d.bits,
		BitsCount:    d.bitsCnt,
		Silence:      d.silence,
		Level:        d.level,
	}
}

func (d *dmc) setState(s snapshot.DMC) {
	d.enabled = s.Enabled
	d.irqEnabled = s.IRQEnabled
	d.irqFlag = s.IRQFlag
	d.loop = s.Loop
	d.rate = s.Rate
	d.rateIndex = s.RateIndex
	d.sampleAddr = s.SampleAddr
	d.sampleLength = s.SampleLength
	d.curAddr = s.CurAddr
	d.bytesLeft = s.BytesLeft
	d.buffer = s.Buffer
	d.empty = s.Empty
	d.bits = s.Bits
	d.bitsCnt = s.BitsCount
	d.silence = s.Silence
	d.level = s.Level
}

func (fs *frameSequencer) saveState() snapshot.FrameSequencer {
	return snapshot.FrameSequencer{
		ResetPending: fs.state == seqResetPending,
		Counter:      fs.counter,
		FiveStep:     fs.fiveStep,
		IRQInhibit:   fs.irqInhibit,
		IRQFlag:      fs.irqFlag,
	}
}

func (fs *frameSequencer) setState(s snapshot.FrameSequencer) {
	fs.state = seqRunning
	if s.ResetPending {
		fs.state = seqResetPending
	}
	fs.counter = s.Counter
	fs.fiveStep = s.FiveStep
	fs.irqInhibit = s.IRQInhibit
	fs.irqFlag = s.IRQFlag
}

// State returns a copy of the APU state.
func (a *APU) State() snapshot.APU {
	return snapshot.APU{
		Pulse1:   a.pulse1.saveState(),
		Pulse2:   a.pulse2.saveState(),
		Triangle: a.triangle.saveState(),
		Noise:    a.noise.saveState(),
		DMC:      a.dmc.saveState(),
		Frame:    a.frame.saveState(),
		Cycles:   a.cycles,
	}
}

// SetState restores the APU state and re-asserts its IRQ line.
func (a *APU) SetState(s snapshot.APU) {
	a.pulse1.setState(s.Pulse1)
	a.pulse2.setState(s.Pulse2)
	a.triangle.setState(s.Triangle)
	a.noise.setState(s.Noise)
	a.dmc.setState(s.DMC)
	a.frame.setState(s.Frame)
	a.cycles = s.Cycles

	a.idx = 0
	a.forceIRQSync()
}
