package hw

import (
	"famicore/emu/log"
	"famicore/hw/apu"
	"famicore/hw/snapshot"
)

// Bus is the CPU address bus. It decodes addresses and dispatches accesses
// to RAM, the PPU and APU registers, the controllers and the cartridge.
//
//	$0000-$07FF  2KB RAM, mirrored up to $1FFF
//	$2000-$2007  PPU registers, mirrored up to $3FFF
//	$4000-$4013  APU channels
//	$4014        OAM DMA
//	$4015        APU status
//	$4016        controllers strobe / controller 1
//	$4017        APU frame counter / controller 2
//	$4020-$FFFF  cartridge
//
// Reads of addresses that no device drives return the last value seen on
// the bus (open bus).
type Bus struct {
	ram     [0x800]uint8
	openBus uint8

	cart Cartridge
	cpu  *CPU
	ppu  *PPU
	apu  *apu.APU

	Pads [2]Joypad
}

func NewBus(cart Cartridge) *Bus {
	return &Bus{cart: cart}
}

// Connect plugs the devices mapped on the bus, until then accesses to their
// registers are ignored.
func (b *Bus) Connect(cpu *CPU, ppu *PPU, apu *apu.APU) {
	b.cpu = cpu
	b.ppu = ppu
	b.apu = apu
}

// Reset resets the bus, a hard reset clears RAM.
func (b *Bus) Reset(soft bool) {
	b.Pads = [2]Joypad{}
	if !soft {
		b.ram = [0x800]uint8{}
		b.openBus = 0
	}
}

// OpenBus returns the last value driven on the bus.
func (b *Bus) OpenBus() uint8 { return b.openBus }

func (b *Bus) Read8(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		b.openBus = b.ram[addr&0x7FF]
	case addr < 0x4000:
		if b.ppu != nil {
			b.openBus = b.ppu.ReadRegister(0x2000 + addr&7)
		}
	case addr == 0x4015:
		if b.apu != nil {
			b.openBus = b.apu.ReadSTATUS()
		}
	case addr == 0x4016 || addr == 0x4017:
		b.openBus = b.openBus&0xE0 | b.Pads[addr-0x4016].Read()&0x1F
	case addr < 0x4020:
		// open bus
	default:
		if val, ok := b.cart.ReadPRG(addr); ok {
			b.openBus = val
		}
	}
	return b.openBus
}

// Peek8 returns the value Read8 would return, without side effects.
func (b *Bus) Peek8(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x7FF]
	case addr < 0x4000:
		if b.ppu != nil {
			return b.ppu.PeekRegister(0x2000 + addr&7)
		}
	case addr == 0x4015:
		if b.apu != nil {
			return b.apu.PeekSTATUS()
		}
	case addr == 0x4016 || addr == 0x4017:
		return b.openBus&0xE0 | b.Pads[addr-0x4016].Peek()&0x1F
	case addr >= 0x4020:
		if val, ok := b.cart.ReadPRG(addr); ok {
			return val
		}
	}
	return b.openBus
}

func (b *Bus) Write8(addr uint16, val uint8) {
	old := b.openBus
	b.openBus = val

	switch {
	case addr < 0x2000:
		b.ram[addr&0x7FF] = val
	case addr < 0x4000:
		if b.ppu != nil {
			b.ppu.WriteRegister(0x2000+addr&7, val)
		}
	case addr == 0x4014:
		b.oamDMA(val)
	case addr == 0x4016:
		b.Pads[0].Write(val)
		b.Pads[1].Write(val)
		b.openBus = old&0xF0 | val&0x0F
	case addr <= 0x4017:
		if b.apu != nil {
			b.apu.WriteRegister(addr, val)
		}
	case addr < 0x4020:
		log.ModMem.DebugZ("write to unmapped address").Hex16("addr", addr).Hex8("val", val).End()
	default:
		b.cart.WritePRG(addr, val)
	}
}

// oamDMA copies 256 bytes from CPU page into OAM, suspending the CPU.
func (b *Bus) oamDMA(page uint8) {
	if b.ppu == nil || b.cpu == nil {
		return
	}

	var buf [256]uint8
	base := uint16(page) << 8
	for i := range buf {
		buf[i] = b.Read8(base + uint16(i))
	}
	b.ppu.WriteOAMDMA(&buf)
	b.cpu.DMASuspend()
}

func (b *Bus) State() snapshot.Bus {
	return snapshot.Bus{
		RAM:     b.ram,
		OpenBus: b.openBus,
		Pads:    [2]snapshot.Joypad{b.Pads[0].State(), b.Pads[1].State()},
	}
}

func (b *Bus) SetState(s snapshot.Bus) {
	b.ram = s.RAM
	b.openBus = s.OpenBus
	b.Pads[0].SetState(s.Pads[0])
	b.Pads[1].SetState(s.Pads[1])
}
