package apu

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"famicore/emu/log"
	"famicore/hw/hwdefs"
)

func init() {
	log.Disable()
}

type fakeCPU struct {
	irq     hwdefs.IRQSource
	stalled int
}

func (c *fakeCPU) SetIRQSource(src hwdefs.IRQSource)   { c.irq |= src }
func (c *fakeCPU) ClearIRQSource(src hwdefs.IRQSource) { c.irq &^= src }
func (c *fakeCPU) Stall(cycles int)                    { c.stalled += cycles }

type fakeMem struct {
	reads []uint16
	val   uint8
}

func (m *fakeMem) Read8(addr uint16) uint8 {
	m.reads = append(m.reads, addr)
	return m.val
}

func newTestAPU(t *testing.T, tv hwdefs.TVSystem) (*APU, *fakeCPU, *fakeMem) {
	t.Helper()
	a, err := New(tv, Options{Volume: 1})
	if err != nil {
		t.Fatal(err)
	}
	cpu := &fakeCPU{}
	mem := &fakeMem{}
	a.Link(mem, cpu)
	return a, cpu, mem
}

func tickN(a *APU, n int) {
	for range n {
		a.Tick()
	}
}

func TestFrameIRQ(t *testing.T) {
	tests := []struct {
		tv   hwdefs.TVSystem
		tick int
	}{
		{hwdefs.NTSC, 29829},
		{hwdefs.PAL, 33253},
	}
	for _, tt := range tests {
		t.Run(tt.tv.String(), func(t *testing.T) {
			a, cpu, _ := newTestAPU(t, tt.tv)

			tickN(a, tt.tick-1)
			if cpu.irq != 0 {
				t.Fatalf("IRQ raised too early, on tick < %d", tt.tick)
			}
			a.Tick()
			if cpu.irq != hwdefs.FrameCounter {
				t.Fatalf("irq = %q, want %q on tick %d", cpu.irq, hwdefs.FrameCounter, tt.tick)
			}

			if status := a.ReadSTATUS(); status&0x40 == 0 {
				t.Errorf("status = %02x, frame interrupt bit should be set", status)
			}
			if cpu.irq != 0 {
				t.Errorf("reading status should acknowledge the frame IRQ")
			}
			if status := a.PeekSTATUS(); status&0x40 != 0 {
				t.Errorf("status = %02x, frame interrupt bit should be clear", status)
			}
		})
	}
}

func TestFrameIRQPeriod(t *testing.T) {
	a, cpu, _ := newTestAPU(t, hwdefs.NTSC)

	tickN(a, 29829)
	a.ReadSTATUS()
	tickN(a, 29829)
	if cpu.irq != 0 {
		t.Fatalf("4-step sequence should last 29830 cycles")
	}
	a.Tick()
	if cpu.irq != hwdefs.FrameCounter {
		t.Fatalf("no frame IRQ after a full sequence")
	}
}

func TestFrameIRQInhibit(t *testing.T) {
	a, cpu, _ := newTestAPU(t, hwdefs.NTSC)

	tickN(a, 29829)
	if cpu.irq == 0 {
		t.Fatal("frame IRQ expected")
	}

	// Setting the inhibit flag clears the interrupt flag.
	a.WriteRegister(0x4017, 0x40)
	if cpu.irq != 0 {
		t.Errorf("irq = %q after inhibit", cpu.irq)
	}
	tickN(a, 2*29830)
	if cpu.irq != 0 {
		t.Errorf("irq = %q while inhibited", cpu.irq)
	}
}

func TestFiveStepMode(t *testing.T) {
	a, cpu, _ := newTestAPU(t, hwdefs.NTSC)

	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x08) // length index 1: 254
	if got := a.pulse1.length.value; got != 254 {
		t.Fatalf("length = %d, want 254", got)
	}

	// 5-step mode clocks a half frame on the tick after the write.
	a.WriteRegister(0x4017, 0x80)
	a.Tick()
	if got := a.pulse1.length.value; got != 253 {
		t.Errorf("length = %d, want 253", got)
	}

	tickN(a, 2*37282)
	if cpu.irq != 0 {
		t.Errorf("5-step mode must not raise frame IRQ")
	}
	// 2 half frames per sequence.
	if got := a.pulse1.length.value; got != 249 {
		t.Errorf("length = %d, want 249", got)
	}
}

func TestLengthCounter(t *testing.T) {
	a, _, _ := newTestAPU(t, hwdefs.NTSC)

	// Not loaded while the channel is disabled.
	a.WriteRegister(0x400F, 0xF8)
	if a.noise.length.value != 0 {
		t.Fatalf("length counter loaded while channel disabled")
	}

	a.WriteRegister(0x4015, 0x08)
	a.WriteRegister(0x400F, 0x18) // index 3: 2
	a.halfFrame()
	a.halfFrame()
	a.halfFrame()
	if got := a.noise.length.value; got != 0 {
		t.Errorf("length = %d, want 0", got)
	}
	if a.PeekSTATUS()&0x08 != 0 {
		t.Errorf("status should report the noise length counter as 0")
	}

	// Halted.
	a.WriteRegister(0x400F, 0x18)
	a.WriteRegister(0x400C, 0x20)
	a.halfFrame()
	if got := a.noise.length.value; got != 2 {
		t.Errorf("halted length = %d, want 2", got)
	}

	// Disabling the channel clears the counter.
	a.WriteRegister(0x4015, 0x00)
	if got := a.noise.length.value; got != 0 {
		t.Errorf("length = %d after disabling, want 0", got)
	}
}

func TestSweepTargetPeriod(t *testing.T) {
	tests := []struct {
		name   string
		id     uint8
		period int
		sweep  uint8
		want   int
		mute   bool
	}{
		{"pulse1 negate", 1, 0x100, 0x89, 0x7F, false},
		{"pulse2 negate", 2, 0x100, 0x89, 0x80, false},
		{"add", 1, 0x100, 0x81, 0x180, false},
		{"overflow", 2, 0x600, 0x81, 0x900, true},
		{"too low", 1, 7, 0x81, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p pulse
			p.init(tt.id)
			p.timer.Period = tt.period
			p.WriteSWEEP(tt.sweep)
			if p.targetPeriod != tt.want {
				t.Errorf("target period = %#x, want %#x", p.targetPeriod, tt.want)
			}
			if p.mute != tt.mute {
				t.Errorf("mute = %t, want %t", p.mute, tt.mute)
			}
		})
	}
}

func TestSweepUpdatesPeriod(t *testing.T) {
	var p pulse
	p.init(1)
	p.enabled = true
	p.timer.Period = 0x200
	p.WriteSWEEP(0x82) // enabled, divider period 0, shift 2
	p.halfFrame()
	if p.timer.Period != 0x280 {
		t.Errorf("period = %#x, want %#x", p.timer.Period, 0x280)
	}
}

func TestNoiseLFSR(t *testing.T) {
	var n noise
	n.init(hwdefs.NTSC)

	// First values from a seed of 1, in long mode.
	want := []uint16{0x4000, 0x2000, 0x1000, 0x0800}
	var got []uint16
	for range len(want) {
		n.clockTimer()
		got = append(got, n.shift)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LFSR sequence mismatch (-want +got):\n%s", diff)
	}

	// Long mode is a maximal length sequence.
	n.shift = 1
	period := 0
	for {
		n.clockTimer()
		period++
		if n.shift == 1 || period > 40000 {
			break
		}
	}
	if period != 32767 {
		t.Errorf("long mode period = %d, want 32767", period)
	}
}

func TestDMCOutputClamp(t *testing.T) {
	tests := []struct {
		name  string
		level uint8
		bits  uint8
		want  uint8
	}{
		{"upper", 124, 0xFF, 127},
		{"lower", 3, 0x00, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d dmc
			d.init(hwdefs.NTSC)
			d.rate = 0
			d.level = tt.level
			d.bits = tt.bits
			d.bitsCnt = 8
			d.silence = false

			for range 8 {
				d.clock(&fakeMem{}, &fakeCPU{})
			}
			if d.level != tt.want {
				t.Errorf("level = %d, want %d", d.level, tt.want)
			}
		})
	}
}

func TestDMCFetch(t *testing.T) {
	a, cpu, mem := newTestAPU(t, hwdefs.NTSC)

	a.WriteRegister(0x4017, 0x40) // no frame IRQ
	a.WriteRegister(0x4010, 0x80) // IRQ enabled, no loop
	a.WriteRegister(0x4012, 0xFF) // $FFC0
	a.WriteRegister(0x4013, 0x04) // 65 bytes
	a.WriteRegister(0x4015, 0x10)

	if a.PeekSTATUS()&0x10 == 0 {
		t.Fatalf("DMC should be active")
	}

	// The sample buffer is refilled whenever it's emptied by the output
	// unit, which happens once per 8 output cycles.
	for cpu.irq == 0 {
		a.Tick()
		if a.cycles > 1_000_000 {
			t.Fatalf("DMC never finished")
		}
	}

	if cpu.irq != hwdefs.DMC {
		t.Errorf("irq = %q, want %q", cpu.irq, hwdefs.DMC)
	}
	if len(mem.reads) != 65 {
		t.Fatalf("got %d sample fetches, want 65", len(mem.reads))
	}
	if cpu.stalled != 65*dmcFetchStall {
		t.Errorf("CPU stalled for %d cycles, want %d", cpu.stalled, 65*dmcFetchStall)
	}
	if mem.reads[0] != 0xFFC0 || mem.reads[63] != 0xFFFF || mem.reads[64] != 0x8000 {
		t.Errorf("fetch addresses %04x %04x %04x, want FFC0 FFFF 8000",
			mem.reads[0], mem.reads[63], mem.reads[64])
	}
	if got := a.PeekSTATUS(); got&0x90 != 0x80 {
		t.Errorf("status = %02x, want DMC IRQ set and DMC inactive", got)
	}

	// Writing $4015 acknowledges the DMC interrupt.
	a.WriteRegister(0x4015, 0x00)
	if cpu.irq != 0 {
		t.Errorf("irq = %q after $4015 write", cpu.irq)
	}
}

func TestMixer(t *testing.T) {
	a, _, _ := newTestAPU(t, hwdefs.NTSC)
	if got := a.mix(); got != 0 {
		t.Errorf("silent mix = %f, want 0", got)
	}

	a.dmc.level = 127
	got := a.mix()
	want := 163.67 / (24329.0/127 + 100)
	if math.Abs(float64(got)-want) > 1e-6 {
		t.Errorf("mix = %f, want %f", got, want)
	}

	lut := mixerLUT()
	if lut.pulse[0] != 0 || lut.tnd[0] != 0 {
		t.Errorf("mixer tables should start at 0")
	}
	if lut.pulse[30]+lut.tnd[202] > 1 {
		t.Errorf("mixer tables overflow 1")
	}
}

func TestFlushAudio(t *testing.T) {
	tests := []struct {
		name string
		res  Resampler
		rate int
		want int // samples per frame
	}{
		{"adaptive", Adaptive, 48000, 800},
		{"band-limited", BandLimited, 48000, 800},
		{"adaptive/96k", Adaptive, 96000, 1600},
		{"band-limited/96k", BandLimited, 96000, 1600},
		{"adaptive/192k", Adaptive, 192000, 3200},
		{"adaptive/8k", Adaptive, 8000, 133},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(hwdefs.NTSC, Options{SampleRate: tt.rate, Volume: 1, Resampler: tt.res})
			if err != nil {
				t.Fatal(err)
			}
			a.Link(&fakeMem{}, &fakeCPU{})

			// A square wave on pulse 1.
			a.WriteRegister(0x4015, 0x01)
			a.WriteRegister(0x4000, 0xBF)
			a.WriteRegister(0x4002, 0xFD)
			a.WriteRegister(0x4003, 0x00)

			tickN(a, 29781)
			samples := a.FlushAudio(NominalQueue)
			if n, tol := len(samples), tt.want/50; n < tt.want-tol || n > tt.want+tol {
				t.Fatalf("got %d samples for one frame, want ~%d", n, tt.want)
			}
			nonzero := 0
			for _, s := range samples {
				if s != 0 {
					nonzero++
				}
			}
			if nonzero == 0 {
				t.Errorf("all samples are 0")
			}
			if n := len(a.FlushAudio(NominalQueue)); n != 0 {
				t.Errorf("second flush returned %d samples, want 0", n)
			}
		})
	}
}

func TestFlushAudioLate(t *testing.T) {
	a, err := New(hwdefs.NTSC, Options{SampleRate: 96000, Volume: 1})
	if err != nil {
		t.Fatal(err)
	}
	a.Link(&fakeMem{}, &fakeCPU{})

	// 3 frames without flushing: the buffer holds the first 2, the
	// rest is dropped rather than overwriting them.
	tickN(a, 3*29781)
	if n, want := len(a.FlushAudio(NominalQueue)), bufferSize(hwdefs.NTSC, 96000); n != want {
		t.Errorf("got %d samples, want %d", n, want)
	}
}

func TestNewSampleRate(t *testing.T) {
	tests := []struct {
		rate    int
		wantErr bool
	}{
		{0, false},
		{MinSampleRate, false},
		{44100, false},
		{MaxSampleRate, false},
		{30, true},
		{MinSampleRate - 1, true},
		{MaxSampleRate + 1, true},
		{-48000, true},
	}
	for _, tt := range tests {
		for _, tv := range []hwdefs.TVSystem{hwdefs.NTSC, hwdefs.PAL} {
			_, err := New(tv, Options{SampleRate: tt.rate})
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%s, %dHz) error = %v, wantErr %t", tv, tt.rate, err, tt.wantErr)
			}
		}
	}
}

func TestState(t *testing.T) {
	a, _, _ := newTestAPU(t, hwdefs.NTSC)
	a.WriteRegister(0x4015, 0x0F)
	a.WriteRegister(0x4000, 0x9F)
	a.WriteRegister(0x4003, 0x08)
	a.WriteRegister(0x400E, 0x83)
	tickN(a, 10000)

	state := a.State()

	b, _, _ := newTestAPU(t, hwdefs.NTSC)
	b.SetState(state)
	if diff := cmp.Diff(state, b.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	tickN(a, 5000)
	tickN(b, 5000)
	if diff := cmp.Diff(a.State(), b.State()); diff != "" {
		t.Errorf("restored APU diverged (-want +got):\n%s", diff)
	}
}

func TestReset(t *testing.T) {
	a, cpu, _ := newTestAPU(t, hwdefs.NTSC)
	a.WriteRegister(0x4017, 0x80)
	a.WriteRegister(0x4015, 0x1F)
	a.WriteRegister(0x4011, 0x7F)
	tickN(a, 100)

	a.Reset(hwdefs.SoftReset)
	if got := a.PeekSTATUS(); got != 0 {
		t.Errorf("status after reset = %02x, want 0", got)
	}
	if a.dmc.level != 1 {
		t.Errorf("dmc level = %d, want 1", a.dmc.level)
	}
	if !a.frame.fiveStep {
		t.Errorf("soft reset should keep the sequencer mode")
	}

	a.Reset(hwdefs.HardReset)
	if a.frame.fiveStep {
		t.Errorf("hard reset should restore 4-step mode")
	}
	tickN(a, 29829)
	if cpu.irq != hwdefs.FrameCounter {
		t.Errorf("no frame IRQ 29829 cycles after reset")
	}
}
