package emu

import (
	"sync/atomic"
	"time"

	"famicore/emu/log"
	"famicore/hw"
	"famicore/hw/apu"
	"famicore/hw/hwdefs"
	"famicore/hw/snapshot"
)

// VideoSink presents the frames produced by the PPU.
type VideoSink interface {
	PresentFrame(*hw.Frame)
}

// AudioSink plays the samples produced by the APU.
type AudioSink interface {
	QueueAudio([]int16) error
	// QueuedSamples returns the number of samples waiting to be played.
	QueuedSamples() int
}

// InputProvider provides the state of the controller plugged in port (0 or
// 1).
type InputProvider interface {
	Buttons(port int) hw.Buttons
}

// A Poller handles host events, once per frame. Poll returns false when the
// emulation session should end.
type Poller interface {
	Poll() bool
}

// Options holds the collaborators of the emulator. Nil ones are replaced by
// no-ops.
type Options struct {
	Video  VideoSink
	Audio  AudioSink
	Input  InputProvider
	Poller Poller

	// NoPacing runs the emulation as fast as possible, instead of at the TV
	// system frame rate.
	NoPacing bool
}

// Turbo buttons are toggled at 30Hz (NTSC) and 25Hz (PAL), that is, every
// other frame.
const turboSkip = 2

type Emulator struct {
	NES *NES

	video  VideoSink
	audio  AudioSink
	input  InputProvider
	poller Poller

	pacing bool
	period time.Duration

	// These are accessed concurrently by the emulator loop and the UI.
	quit      atomic.Bool
	paused    atomic.Bool
	reset     atomic.Bool
	restart   atomic.Bool
	saveState atomic.Bool
	loadState atomic.Bool

	quickState *snapshot.NES
	combo      [2]bool // reset combo held on each port
	stats      Stats
}

// New returns an emulator driving nes. It doesn't start the emulation loop,
// call Run() for that.
func New(nes *NES, opts Options) *Emulator {
	e := &Emulator{
		NES:    nes,
		video:  opts.Video,
		audio:  opts.Audio,
		input:  opts.Input,
		poller: opts.Poller,
		pacing: !opts.NoPacing,
		period: time.Second / time.Duration(nes.TVSystem().FrameRate()),
	}
	if e.video == nil {
		e.video = nopVideo{}
	}
	if e.audio == nil {
		e.audio = nopAudio{}
	}
	if e.input == nil {
		e.input = nopInput{}
	}
	if e.poller == nil {
		e.poller = nopPoller{}
	}
	return e
}

// RunOneFrame updates controllers, runs the console for a frame, then
// presents video and queues audio.
func (e *Emulator) RunOneFrame() {
	e.updateInputs()

	cycles := e.NES.CPU.Cycles()
	e.NES.RunFrame()
	e.stats.Frames++
	e.stats.Cycles += e.NES.CPU.Cycles() - cycles

	e.video.PresentFrame(e.NES.PPU.Frame())

	samples := e.NES.APU.FlushAudio(e.audio.QueuedSamples())
	e.stats.Samples += uint64(len(samples))
	if err := e.audio.QueueAudio(samples); err != nil {
		log.ModSound.DebugZ("failed to queue audio buffer").Error("err", err).End()
	}
}

func (e *Emulator) updateInputs() {
	var btns [2]hw.Buttons
	reset := false
	for i := range btns {
		btns[i] = e.input.Buttons(i)
		combo := btns[i]&hw.ResetCombo == hw.ResetCombo
		if combo && !e.combo[i] {
			log.ModEmu.InfoZ("Reset combo pressed").Int("port", i+1).End()
			reset = true
		}
		e.combo[i] = combo
	}
	if reset {
		e.NES.Reset(hwdefs.SoftReset)
	}

	for i := range e.NES.Bus.Pads {
		e.NES.Bus.Pads[i].SetButtons(btns[i])
	}

	if e.NES.PPU.Frames%turboSkip == 0 {
		e.NES.Bus.Pads[0].ToggleTurbo()
		e.NES.Bus.Pads[1].ToggleTurbo()
	}
}

// Run runs the emulation loop until the poller or Stop ends it, then logs
// and returns the session statistics.
func (e *Emulator) Run() Stats {
	start := time.Now()
	for e.poller.Poll() {
		frameStart := time.Now()
		if e.isPaused() {
			// Don't burn cpu while paused.
			time.Sleep(100 * time.Millisecond)
		} else {
			e.RunOneFrame()
			e.wait(frameStart)
		}
		if e.shouldStop() {
			break
		}
		e.handleRequests()
	}

	e.stats.PlayTime = time.Since(start)
	log.ModEmu.InfoZ("Emulation loop exited").End()
	e.stats.Log()
	return e.stats
}

// wait sleeps for what remains of the frame period.
func (e *Emulator) wait(frameStart time.Time) {
	if !e.pacing {
		return
	}
	if remaining := e.period - time.Since(frameStart); remaining > 0 {
		time.Sleep(remaining)
	}
}

// SetPause, TogglePause, Stop, Reset, Restart, SaveQuickState and
// LoadQuickState allow to control the emulator loop in a concurrent-safe
// way.

func (e *Emulator) SetPause(pause bool) { e.paused.Store(pause) }
func (e *Emulator) TogglePause() {
	for {
		p := e.paused.Load()
		if e.paused.CompareAndSwap(p, !p) {
			return
		}
	}
}
func (e *Emulator) Reset()          { e.reset.Store(true) }
func (e *Emulator) Restart()        { e.restart.Store(true) }
func (e *Emulator) SaveQuickState() { e.saveState.Store(true) }
func (e *Emulator) LoadQuickState() { e.loadState.Store(true) }
func (e *Emulator) Stop()           { e.quit.Store(true) }

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) shouldStop() bool {
	return e.quit.Load()
}

func (e *Emulator) handleRequests() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing soft reset").End()
		e.NES.Reset(hwdefs.SoftReset)
	} else if e.restart.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing hard reset").End()
		e.NES.Reset(hwdefs.HardReset)
	}

	if e.saveState.CompareAndSwap(true, false) {
		e.quickState = e.NES.Snapshot()
		log.ModEmu.InfoZ("State saved").Uint64("frame", e.NES.PPU.Frames).End()
	}
	if e.loadState.CompareAndSwap(true, false) {
		if e.quickState == nil {
			log.ModEmu.WarnZ("No state to load").End()
			return
		}
		if err := e.NES.Restore(e.quickState); err != nil {
			log.ModEmu.WarnZ("Failed to load state").Error("err", err).End()
			return
		}
		log.ModEmu.InfoZ("State loaded").Uint64("frame", e.NES.PPU.Frames).End()
	}
}

// Stats are the statistics of an emulation session.
type Stats struct {
	PlayTime time.Duration
	Frames   uint64
	Samples  uint64
	Cycles   uint64
}

func (s Stats) perSecond(n uint64) float64 {
	if s.PlayTime <= 0 {
		return 0
	}
	return float64(n) / s.PlayTime.Seconds()
}

// FrameRate returns the average number of frames per second.
func (s Stats) FrameRate() float64 { return s.perSecond(s.Frames) }

// SampleRate returns the average number of audio samples per second.
func (s Stats) SampleRate() float64 { return s.perSecond(s.Samples) }

// ClockSpeed returns the average CPU clock speed, in MHz.
func (s Stats) ClockSpeed() float64 { return s.perSecond(s.Cycles) / 1e6 }

func (s Stats) Log() {
	log.ModEmu.InfoZ("Session stats").
		Duration("play time", s.PlayTime.Round(time.Second)).
		Uint64("frames", s.Frames).
		Float64("frame rate", s.FrameRate()).
		Float64("sample rate", s.SampleRate()).
		Float64("cpu clock (MHz)", s.ClockSpeed()).
		End()
}

type nopVideo struct{}

func (nopVideo) PresentFrame(*hw.Frame) {}

// nopAudio discards samples, reporting a queue depth which keeps the
// adaptive sampler at its nominal rate.
type nopAudio struct{}

func (nopAudio) QueueAudio([]int16) error { return nil }
func (nopAudio) QueuedSamples() int       { return apu.NominalQueue }

type nopInput struct{}

func (nopInput) Buttons(int) hw.Buttons { return 0 }

type nopPoller struct{}

func (nopPoller) Poll() bool { return true }
