package hw

import (
	"testing"

	"famicore/hw/hwdefs"
	"famicore/hw/snapshot"
)

// testCart is an NROM-like cartridge with 32KB PRG, 8KB CHR RAM and 8KB PRG
// RAM.
type testCart struct {
	prg [0x8000]uint8
	chr [0x2000]uint8
	ram [0x2000]uint8

	mirroring hwdefs.Mirroring
	tv        hwdefs.TVSystem
}

func (c *testCart) ReadPRG(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x8000:
		return c.prg[addr-0x8000], true
	case addr >= 0x6000:
		return c.ram[addr-0x6000], true
	}
	return 0, false
}

func (c *testCart) WritePRG(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		c.ram[addr-0x6000] = val
	}
}

func (c *testCart) ReadCHR(addr uint16) uint8         { return c.chr[addr&0x1FFF] }
func (c *testCart) WriteCHR(addr uint16, val uint8)   { c.chr[addr&0x1FFF] = val }
func (c *testCart) NametableMap() [4]uint16           { return c.mirroring.NametableMap() }
func (c *testCart) TVSystem() hwdefs.TVSystem         { return c.tv }
func (c *testCart) SetState(s snapshot.Cartridge)     { copy(c.ram[:], s.PRGRAM); copy(c.chr[:], s.CHRRAM) }
func (c *testCart) State() snapshot.Cartridge {
	return snapshot.Cartridge{
		PRGRAM: append([]uint8(nil), c.ram[:]...),
		CHRRAM: append([]uint8(nil), c.chr[:]...),
	}
}

type nmiRecorder struct{ count int }

func (r *nmiRecorder) TriggerNMI() { r.count++ }

// newTestPPU returns a PPU on an empty NTSC cartridge, recording NMIs.
func newTestPPU(t *testing.T) (*PPU, *testCart, *nmiRecorder) {
	t.Helper()

	cart := &testCart{mirroring: hwdefs.VertMirroring}
	nmi := &nmiRecorder{}
	return NewPPU(cart, nmi), cart, nmi
}

// newTestSystem returns a bus connected to a CPU and a PPU (no APU), with
// prog loaded at $8000.
func newTestSystem(t *testing.T, prog ...uint8) (*Bus, *CPU, *PPU) {
	t.Helper()

	cart := &testCart{mirroring: hwdefs.HorzMirroring}
	copy(cart.prg[:], prog)
	cart.prg[0x7FFC] = 0x00
	cart.prg[0x7FFD] = 0x80

	bus := NewBus(cart)
	cpu := NewCPU(bus)
	ppu := NewPPU(cart, cpu)
	bus.Connect(cpu, ppu, nil)
	return bus, cpu, ppu
}
