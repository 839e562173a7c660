package emu

import (
	"encoding/gob"
	"fmt"
	"io"

	"famicore/hw"
	"famicore/hw/apu"
	"famicore/hw/hwdefs"
	"famicore/hw/mappers"
	"famicore/hw/snapshot"
	"famicore/ines"
)

// NES is the console hardware: the devices and the bus wiring them.
type NES struct {
	Cart hw.Cartridge
	Bus  *hw.Bus
	CPU  *hw.CPU
	PPU  *hw.PPU
	APU  *apu.APU
	Rom  *ines.Rom

	tv      hwdefs.TVSystem
	palDots int // CPU cycles since the last extra PAL dot
}

// PowerUp loads the rom cartridge and returns a NES in power-up state.
func PowerUp(rom *ines.Rom, opts apu.Options) (*NES, error) {
	cart, err := mappers.Load(rom)
	if err != nil {
		return nil, err
	}
	nes, err := newNES(cart, opts)
	if err != nil {
		return nil, err
	}
	nes.Rom = rom
	return nes, nil
}

func newNES(cart hw.Cartridge, opts apu.Options) (*NES, error) {
	tv := cart.TVSystem()

	a, err := apu.New(tv, opts)
	if err != nil {
		return nil, err
	}
	bus := hw.NewBus(cart)
	cpu := hw.NewCPU(bus)
	ppu := hw.NewPPU(cart, cpu)
	a.Link(bus, cpu)
	bus.Connect(cpu, ppu, a)

	return &NES{
		Cart: cart,
		Bus:  bus,
		CPU:  cpu,
		PPU:  ppu,
		APU:  a,
		tv:   tv,
	}, nil
}

// Reset resets the console. On a soft reset the CPU runs its reset
// sequence once the current instruction completes.
func (nes *NES) Reset(soft bool) {
	nes.Bus.Reset(soft)
	nes.PPU.Reset(soft)
	nes.APU.Reset(soft)
	nes.palDots = 0
	if soft {
		nes.CPU.RequestReset()
	} else {
		nes.CPU.Reset(hwdefs.HardReset)
	}
}

// TVSystem returns the TV system of the loaded cartridge.
func (nes *NES) TVSystem() hwdefs.TVSystem { return nes.tv }

// Step runs the console for one CPU cycle. The PPU runs 3 dots per CPU
// cycle, plus one every 5 cycles on PAL (3.2 dots per cycle).
func (nes *NES) Step() {
	nes.PPU.Tick()
	nes.PPU.Tick()
	nes.PPU.Tick()
	if nes.tv == hwdefs.PAL {
		nes.palDots++
		if nes.palDots == 5 {
			nes.PPU.Tick()
			nes.palDots = 0
		}
	}
	nes.CPU.Tick()
	nes.APU.Tick()
}

// RunFrame runs the console until the PPU completes a frame.
func (nes *NES) RunFrame() {
	for !nes.PPU.FrameReady() {
		nes.Step()
	}
}

// Snapshot returns a copy of the whole console state. Controllers state is
// not saved, so that keys held when the snapshot was taken don't stick on
// restore.
func (nes *NES) Snapshot() *snapshot.NES {
	s := &snapshot.NES{
		Version: snapshot.Version,
		CPU:     nes.CPU.State(),
		PPU:     nes.PPU.State(),
		APU:     nes.APU.State(),
		Bus:     nes.Bus.State(),
		Cart:    nes.Cart.State(),
	}
	for i := range s.Bus.Pads {
		s.Bus.Pads[i].Status = 0
	}
	return s
}

// Restore sets the console state from s.
func (nes *NES) Restore(s *snapshot.NES) error {
	if s.Version != snapshot.Version {
		return fmt.Errorf("incompatible snapshot version %d (want %d)", s.Version, snapshot.Version)
	}
	nes.CPU.SetState(s.CPU)
	nes.PPU.SetState(s.PPU)
	nes.APU.SetState(s.APU)
	nes.Bus.SetState(s.Bus)
	nes.Cart.SetState(s.Cart)
	return nil
}

// SaveState writes a snapshot of the console to w.
func (nes *NES) SaveState(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(nes.Snapshot()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState restores the console from a snapshot written by SaveState.
func (nes *NES) LoadState(r io.Reader) error {
	var s snapshot.NES
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	return nes.Restore(&s)
}
