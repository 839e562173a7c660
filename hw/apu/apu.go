// Package apu implements the 2A03 audio processing unit: 2 pulse channels, a
// triangle, a noise generator and a delta modulation channel, plus the frame
// sequencer clocking their envelopes, sweeps and length counters.
package apu

import (
	"fmt"
	"math"

	"github.com/arl/blip"

	"famicore/emu/log"
	"famicore/hw/hwdefs"
	"famicore/hw/hwio"
)

// Memory is the CPU address space, as seen by the DMC memory reader.
type Memory interface {
	Read8(addr uint16) uint8
}

// CPU is the part of the CPU the APU interacts with.
type CPU interface {
	SetIRQSource(src hwdefs.IRQSource)
	ClearIRQSource(src hwdefs.IRQSource)
	Stall(cycles int)
}

// Resampler selects how the CPU-rate signal is brought to the output rate.
type Resampler uint8

const (
	// Adaptive filters then decimates with the queue-driven Sampler.
	Adaptive Resampler = iota
	// BandLimited synthesizes the output with a band-limited step buffer.
	BandLimited
)

// Options configure the audio output of the APU.
type Options struct {
	SampleRate int
	Volume     float64 // in [0, 1]
	Resampler  Resampler
}

const DefaultSampleRate = 48000

type APU struct {
	tv  hwdefs.TVSystem
	mem Memory
	cpu CPU

	pulse1   pulse
	pulse2   pulse
	triangle triangle
	noise    noise
	dmc      dmc

	frame   frameSequencer
	cycles  uint64
	irqLine hwdefs.IRQSource

	opts     Options
	Sampler  Sampler
	aaFilter Biquad // anti-aliasing, at CPU rate
	hpFilter Biquad // DC removal, at output rate
	blip     bandLimited

	buf []int16
	idx int
}

// New returns the APU of a console of the given TV system. Link must be
// called before the first Tick.
func New(tv hwdefs.TVSystem, opts Options) (*APU, error) {
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.SampleRate < MinSampleRate || opts.SampleRate > MaxSampleRate {
		return nil, fmt.Errorf("apu: sample rate %dHz out of range [%d, %d]", opts.SampleRate, MinSampleRate, MaxSampleRate)
	}
	clockRate := tv.CyclesPerFrame() * float64(tv.FrameRate())
	rate := float64(opts.SampleRate)

	aa, err := NewBiquad(LowPass, 0, 20000, clockRate, 1)
	if err != nil {
		return nil, fmt.Errorf("apu: anti-aliasing filter: %w", err)
	}
	hp, err := NewBiquad(HighPass, 0, 20, rate, 1)
	if err != nil {
		return nil, fmt.Errorf("apu: dc filter: %w", err)
	}

	a := &APU{
		tv:       tv,
		opts:     opts,
		Sampler:  NewSampler(tv, opts.SampleRate),
		aaFilter: aa,
		hpFilter: hp,
		buf:      make([]int16, bufferSize(tv, opts.SampleRate)),
	}
	if opts.Resampler == BandLimited {
		a.blip = newBandLimited(clockRate, rate)
	}
	a.init()
	return a, nil
}

// bufferSize returns the output buffer capacity: twice the samples of a
// frame, so that a late flush loses nothing.
func bufferSize(tv hwdefs.TVSystem, rate int) int {
	fps := tv.FrameRate()
	return max(BufferSize, 2*((rate+fps-1)/fps))
}

func (a *APU) init() {
	a.pulse1.init(1)
	a.pulse2.init(2)
	a.triangle.init()
	a.noise.init(a.tv)
	a.dmc.init(a.tv)
	a.frame.init(a.tv)
	a.frame.reset(hwdefs.HardReset)
	a.cycles = 0
}

// Link connects the APU to the bus and the CPU.
func (a *APU) Link(mem Memory, cpu CPU) {
	a.mem = mem
	a.cpu = cpu
	a.forceIRQSync()
}

// Reset resets the APU. After a soft reset channels are silenced but the
// frame sequencer keeps its mode.
func (a *APU) Reset(soft bool) {
	if !soft {
		a.init()
	}
	a.WriteSTATUS(0)
	a.triangle.seq.Step = 0
	a.dmc.level &= 1
	a.frame.reset(soft)
	a.aaFilter.Reset()
	a.hpFilter.Reset()
	a.blip.clear()
	a.idx = 0
	a.syncIRQ()
}

// Tick runs the APU for one CPU cycle.
func (a *APU) Tick() {
	ev := a.frame.tick()
	if ev&quarterFrame != 0 {
		a.quarterFrame()
	}
	if ev&halfFrame != 0 {
		a.halfFrame()
	}

	if a.cycles&1 != 0 {
		a.pulse1.clockSequencer()
		a.pulse2.clockSequencer()
		a.noise.clockTimer()
	}
	a.dmc.clock(a.mem, a.cpu)
	a.triangle.clockTimer()
	a.syncIRQ()

	a.sample()
	a.cycles++
}

func (a *APU) quarterFrame() {
	a.pulse1.quarterFrame()
	a.pulse2.quarterFrame()
	a.triangle.quarterFrame()
	a.noise.quarterFrame()
}

func (a *APU) halfFrame() {
	a.pulse1.halfFrame()
	a.pulse2.halfFrame()
	a.triangle.halfFrame()
	a.noise.halfFrame()
}

// syncIRQ reflects the frame and DMC interrupt flags onto the CPU IRQ line.
func (a *APU) syncIRQ() {
	if a.cpu == nil {
		return
	}

	var line hwdefs.IRQSource
	if a.frame.irqFlag {
		line |= hwdefs.FrameCounter
	}
	if a.dmc.irqFlag {
		line |= hwdefs.DMC
	}
	changed := line ^ a.irqLine
	if changed == 0 {
		return
	}
	for _, src := range [...]hwdefs.IRQSource{hwdefs.FrameCounter, hwdefs.DMC} {
		switch {
		case changed&src == 0:
		case line&src != 0:
			a.cpu.SetIRQSource(src)
		default:
			a.cpu.ClearIRQSource(src)
		}
	}
	a.irqLine = line
}

func (a *APU) forceIRQSync() {
	if a.cpu == nil {
		return
	}
	a.irqLine = hwdefs.FrameCounter | hwdefs.DMC
	a.cpu.ClearIRQSource(a.irqLine)
	a.irqLine = 0
	a.syncIRQ()
}

// WriteRegister handles CPU writes to $4000-$4013, $4015 and $4017.
func (a *APU) WriteRegister(addr uint16, val uint8) {
	switch addr {
	case 0x4000:
		a.pulse1.WriteCTRL(val)
	case 0x4001:
		a.pulse1.WriteSWEEP(val)
	case 0x4002:
		a.pulse1.WriteTIMERLO(val)
	case 0x4003:
		a.pulse1.WriteLENGTH(val)
	case 0x4004:
		a.pulse2.WriteCTRL(val)
	case 0x4005:
		a.pulse2.WriteSWEEP(val)
	case 0x4006:
		a.pulse2.WriteTIMERLO(val)
	case 0x4007:
		a.pulse2.WriteLENGTH(val)
	case 0x4008:
		a.triangle.WriteLINEAR(val)
	case 0x400A:
		a.triangle.WriteTIMERLO(val)
	case 0x400B:
		a.triangle.WriteLENGTH(val)
	case 0x400C:
		a.noise.WriteCTRL(val)
	case 0x400E:
		a.noise.WritePERIOD(val)
	case 0x400F:
		a.noise.WriteLENGTH(val)
	case 0x4010:
		a.dmc.WriteCTRL(val)
		a.syncIRQ()
	case 0x4011:
		a.dmc.WriteLOAD(val)
	case 0x4012:
		a.dmc.WriteADDR(val)
	case 0x4013:
		a.dmc.WriteLENGTH(val)
	case 0x4015:
		a.WriteSTATUS(val)
	case 0x4017:
		a.WriteFRAMECOUNTER(val)
	default:
		log.ModSound.DebugZ("write to unused register").Hex16("addr", addr).Hex8("val", val).End()
	}
}

// WriteSTATUS handles writes to $4015 (---D NT21), the channel enable flags.
// It also acknowledges the DMC interrupt.
func (a *APU) WriteSTATUS(val uint8) {
	log.ModSound.InfoZ("write status").Hex8("val", val).End()
	a.pulse1.setEnabled(hwio.Bit(val, 0))
	a.pulse2.setEnabled(hwio.Bit(val, 1))
	a.triangle.setEnabled(hwio.Bit(val, 2))
	a.noise.setEnabled(hwio.Bit(val, 3))
	a.dmc.setEnabled(hwio.Bit(val, 4))
	a.syncIRQ()
}

// WriteFRAMECOUNTER handles writes to $4017 (MI-- ----).
func (a *APU) WriteFRAMECOUNTER(val uint8) {
	log.ModSound.InfoZ("write framecounter").Hex8("val", val).End()
	a.frame.write(val)
	a.syncIRQ()
}

// ReadSTATUS handles reads of $4015 (IF-D NT21). It clears the frame
// interrupt flag.
func (a *APU) ReadSTATUS() uint8 {
	val := a.PeekSTATUS()
	a.frame.irqFlag = false
	a.syncIRQ()
	return val
}

// PeekSTATUS is ReadSTATUS without side effects.
func (a *APU) PeekSTATUS() uint8 {
	var val uint8
	hwio.SetBitIf(&val, 0, a.pulse1.length.active())
	hwio.SetBitIf(&val, 1, a.pulse2.length.active())
	hwio.SetBitIf(&val, 2, a.triangle.length.active())
	hwio.SetBitIf(&val, 3, a.noise.length.active())
	hwio.SetBitIf(&val, 4, a.dmc.bytesLeft > 0)
	hwio.SetBitIf(&val, 6, a.frame.irqFlag)
	hwio.SetBitIf(&val, 7, a.dmc.irqFlag)
	return val
}

func (a *APU) sample() {
	if a.opts.Resampler == BandLimited {
		amp := int32(float64(a.mix()) * 32000 * a.opts.Volume)
		a.blip.add(amp)
		return
	}

	s := a.aaFilter.Apply(float64(a.mix()))
	if !a.Sampler.Tick() {
		return
	}

	out := 32000 * a.hpFilter.Apply(s) * a.opts.Volume
	if a.idx == len(a.buf) {
		// Nobody flushed for 2 frames, drop.
		return
	}
	a.buf[a.idx] = int16(min(max(out, math.MinInt16), math.MaxInt16))
	a.idx++
}

// FlushAudio returns the samples produced since the last call and reports
// the sink queue depth (in samples) to the adaptive sampler. The returned
// slice is only valid until the next Tick.
func (a *APU) FlushAudio(queued int) []int16 {
	if a.opts.Resampler == BandLimited {
		n := a.blip.read(a.buf)
		return a.buf[:n]
	}

	a.Sampler.Feedback(queued)
	n := a.idx
	a.idx = 0
	return a.buf[:n]
}

// SampleRate returns the output sample rate, in Hz.
func (a *APU) SampleRate() int { return a.opts.SampleRate }

// SetVolume sets the master volume, clamped to [0, 1].
func (a *APU) SetVolume(vol float64) {
	a.opts.Volume = min(max(vol, 0), 1)
}

// Cycles returns the number of cycles the APU ran since power-up.
func (a *APU) Cycles() uint64 { return a.cycles }

// ChannelOutputs returns the current output level of each channel, in
// channel order: pulse 1, pulse 2, triangle, noise, dmc.
func (a *APU) ChannelOutputs() [hwdefs.NumAudioChannels]uint8 {
	return [...]uint8{
		a.pulse1.output(),
		a.pulse2.output(),
		a.triangle.output(),
		a.noise.output(),
		a.dmc.output(),
	}
}

type bandLimited struct {
	buf   *blip.Buffer
	clock uint64
	last  int32
}

func newBandLimited(clockRate, sampleRate float64) bandLimited {
	buf := blip.NewBuffer(blip.MaxFrame)
	buf.SetRates(clockRate, sampleRate)
	return bandLimited{buf: buf}
}

func (bl *bandLimited) add(amp int32) {
	if amp != bl.last {
		bl.buf.AddDelta(bl.clock, amp-bl.last)
		bl.last = amp
	}
	bl.clock++
}

func (bl *bandLimited) read(out []int16) int {
	if bl.buf == nil {
		return 0
	}
	bl.buf.EndFrame(int(bl.clock))
	bl.clock = 0
	return bl.buf.ReadSamples(out, min(len(out), bl.buf.SamplesAvailable()), blip.Mono)
}

func (bl *bandLimited) clear() {
	if bl.buf != nil {
		bl.buf.Clear()
	}
	bl.clock = 0
	bl.last = 0
}
