package hw

import (
	"famicore/emu/log"
	"famicore/hw/hwdefs"
	"famicore/hw/snapshot"
)

const (
	NumDots       = 341 // Number of PPU dots per scanline.
	visibleLines  = 240
	vblankLine    = 241
	lastDot       = 340
	ntscPreRender = 261
	palPreRender  = 311
)

// nmiLine is the CPU NMI input.
type nmiLine interface {
	TriggerNMI()
}

// PPU is the 2C02 picture processing unit. It runs one dot per Tick, over
// 341 dots per scanline. Lines 0-239 are visible, line 241 starts vblank and
// the last line (261 on NTSC, 311 on PAL) is the pre-render line.
type PPU struct {
	cart Cartridge
	cpu  nmiLine
	tv   hwdefs.TVSystem

	preRender int // index of the pre-render line

	Dot      int    // Current dot in scanline
	Scanline int    // Current scanline being drawn
	Frames   uint64 // Number of completed frames

	frameReady bool

	// VRAM address registers, fine X scroll and write toggle (true after the
	// first write to PPUSCROLL/PPUADDR).
	v, t loopy
	x    uint8
	w    bool

	ctrl    uint8
	mask    uint8
	status  uint8
	oamAddr uint8

	latch   uint8 // PPU I/O bus latch
	dataBuf uint8 // PPUDATA read buffer

	oam      [0x100]uint8
	sprites  [8]uint8 // OAM offsets of the sprites on the next line
	nsprites int

	nametables [0x1000]uint8
	ntmap      [4]uint16
	palette    [0x20]uint8

	frame Frame
}

// NewPPU returns a PPU at power-up state, rendering cart graphics.
func NewPPU(cart Cartridge, cpu nmiLine) *PPU {
	p := &PPU{
		cart:  cart,
		cpu:   cpu,
		tv:    cart.TVSystem(),
		ntmap: cart.NametableMap(),
	}
	p.preRender = ntscPreRender
	if p.tv == hwdefs.PAL {
		p.preRender = palPreRender
	}
	p.Reset(hwdefs.HardReset)
	return p
}

// Reset resets the PPU, which then starts from the pre-render line. A hard
// reset also clears the PPU memories.
func (p *PPU) Reset(soft bool) {
	p.t, p.x, p.w = 0, 0, false
	p.Dot = 0
	p.Scanline = p.preRender
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.Frames = 0
	p.frameReady = false
	p.nsprites = 0
	p.sprites = [8]uint8{}
	p.frame = Frame{}

	if !soft {
		p.v = 0
		p.oamAddr = 0
		p.latch = 0
		p.dataBuf = 0
		p.oam = [0x100]uint8{}
		p.nametables = [0x1000]uint8{}
		p.palette = [0x20]uint8{}
	}
}

// Tick runs the PPU for one dot.
func (p *PPU) Tick() {
	switch {
	case p.Scanline < visibleLines:
		p.visibleDot()
	case p.Scanline == visibleLines:
		// post-render line, idle.
	case p.Scanline < p.preRender:
		if p.Scanline == vblankLine && p.Dot == 1 {
			p.status |= statusVBlank
			if p.ctrl&ctrlNMI != 0 {
				p.cpu.TriggerNMI()
			}
		}
	default:
		p.preRenderDot()
	}

	p.Dot++
	if p.Dot >= NumDots {
		p.Dot = 0
		p.Scanline++
		if p.Scanline > p.preRender {
			p.Scanline = 0
		}
	}
}

func (p *PPU) rendering() bool { return p.mask&maskRenderingAny != 0 }

func (p *PPU) visibleDot() {
	switch {
	case p.Dot >= 1 && p.Dot <= hwdefs.ScreenWidth:
		p.renderPixel()
	case p.Dot == 257:
		if p.mask&maskBg != 0 {
			p.v.incrY()
		}
	case p.Dot == 258:
		if p.rendering() {
			p.v.copyBits(p.t, loopyHorizontal)
		}
	case p.Dot == lastDot:
		if p.rendering() {
			p.evalSprites(p.Scanline)
		}
	}
}

func (p *PPU) preRenderDot() {
	switch {
	case p.Dot == 1:
		p.status &^= statusVBlank | statusSprite0Hit | statusOverflow
	case p.Dot == 258:
		if p.rendering() {
			p.v.copyBits(p.t, loopyHorizontal)
		}
	case p.Dot >= 281 && p.Dot <= 304:
		if p.rendering() {
			p.v.copyBits(p.t, loopyVertical)
		}
	case p.Dot == lastDot-1:
		// Skip a dot on odd frames when rendering (NTSC only).
		if p.Frames&1 != 0 && p.rendering() && p.tv == hwdefs.NTSC {
			p.Dot++
		}
	}

	if p.Dot >= lastDot {
		if p.rendering() {
			// No sprite can be in range of line 0.
			p.evalSprites(-1)
		}
		p.frameReady = true
		p.Frames++
	}
}

// FrameReady reports whether a frame has been completed since the last
// call.
func (p *PPU) FrameReady() bool {
	ready := p.frameReady
	p.frameReady = false
	return ready
}

// Frame returns the frame buffer.
func (p *PPU) Frame() *Frame { return &p.frame }

// Position returns the current scanline and dot.
func (p *PPU) Position() (scanline, dot int) { return p.Scanline, p.Dot }

/* CPU-exposed registers, mapped from $2000 to $2007 and mirrored up to $3FFF */

// ReadRegister reads PPU register addr (in $2000-$2007).
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		p.latch = p.ReadSTATUS()
	case 0x2004:
		p.latch = p.ReadOAMDATA()
	case 0x2007:
		p.latch = p.ReadDATA()
	}
	// Write-only registers return the bus latch.
	return p.latch
}

// PeekRegister returns what reading addr would return, without side
// effects.
func (p *PPU) PeekRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		return p.latch&statusOpenBus | p.status&^statusOpenBus
	case 0x2004:
		return p.oam[p.oamAddr]
	}
	return p.latch
}

// WriteRegister writes val to PPU register addr (in $2000-$2007).
func (p *PPU) WriteRegister(addr uint16, val uint8) {
	p.latch = val
	switch addr {
	case 0x2000:
		p.WriteCTRL(val)
	case 0x2001:
		p.WriteMASK(val)
	case 0x2002:
		// read-only, only the latch is updated.
	case 0x2003:
		p.WriteOAMADDR(val)
	case 0x2004:
		p.WriteOAMDATA(val)
	case 0x2005:
		p.WriteSCROLL(val)
	case 0x2006:
		p.WriteADDR(val)
	case 0x2007:
		p.WriteDATA(val)
	}
}

// PPUCTRL: $2000
func (p *PPU) WriteCTRL(val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()

	// Enabling NMI during vblank raises it immediately.
	if p.ctrl&ctrlNMI == 0 && val&ctrlNMI != 0 && p.status&statusVBlank != 0 {
		p.cpu.TriggerNMI()
	}
	p.ctrl = val
	p.t.setNametable(val & ctrlNametable)
}

// PPUMASK: $2001
func (p *PPU) WriteMASK(val uint8) {
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.mask = val
}

// PPUSTATUS: $2002
func (p *PPU) ReadSTATUS() uint8 {
	val := p.latch&statusOpenBus | p.status&^statusOpenBus
	p.status &^= statusVBlank
	p.w = false
	return val
}

// OAMADDR: $2003
func (p *PPU) WriteOAMADDR(val uint8) { p.oamAddr = val }

// OAMDATA: $2004
func (p *PPU) ReadOAMDATA() uint8 { return p.oam[p.oamAddr] }

// OAMDATA: $2004
func (p *PPU) WriteOAMDATA(val uint8) {
	p.oam[p.oamAddr] = val
	p.oamAddr++
}

// WriteOAMDMA copies a page of CPU memory into OAM, starting at OAMADDR.
func (p *PPU) WriteOAMDMA(page *[256]uint8) {
	for i, b := range page {
		p.oam[p.oamAddr+uint8(i)] = b
	}
}

// PPUSCROLL: $2005
func (p *PPU) WriteSCROLL(val uint8) {
	log.ModPPU.DebugZ("Write to PPUSCROLL").Hex8("val", val).Bool("second", p.w).End()

	if !p.w { // first write
		p.t.setCoarsex(val >> 3)
		p.x = val & 0b111
	} else { // second write
		p.t.setCoarsey(val >> 3)
		p.t.setFiney(val & 0b111)
	}
	p.w = !p.w
}

// To read/write VRAM from CPU, PPUADDR is set to the address of the operation.
// It's a 16-bit register so 2 writes are necessary.
// PPUADDR: $2006
func (p *PPU) WriteADDR(val uint8) {
	if !p.w { // first write
		p.t.setHigh(val)
	} else { // second write
		p.t.setLow(val)
		p.v = p.t
	}
	p.w = !p.w
}

// PPUDATA: $2007
func (p *PPU) ReadDATA() uint8 {
	addr := uint16(p.v) & 0x3FFF

	var val uint8
	if addr < 0x3F00 {
		// Reading VRAM is too slow so the actual data
		// will be returned at the next read.
		val = p.dataBuf
		p.dataBuf = p.readVRAM(addr)
	} else {
		// Reading palette data is immediate, the buffer gets the
		// nametable byte 'under' the palette.
		val = p.readVRAM(addr)
		p.dataBuf = p.readVRAM(addr - 0x1000)
	}

	p.incVRAMAddr()
	log.ModPPU.DebugZ("VRAM read").Hex16("addr", addr).Hex8("val", val).End()
	return val
}

// PPUDATA: $2007
func (p *PPU) WriteDATA(val uint8) {
	addr := uint16(p.v) & 0x3FFF
	p.writeVRAM(addr, val)
	p.incVRAMAddr()

	log.ModPPU.DebugZ("VRAM write").Hex16("addr", addr).Hex8("val", val).End()
}

// After each i/o on PPUDATA, the VRAM address is incremented.
func (p *PPU) incVRAMAddr() {
	if p.ctrl&ctrlIncr != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

/* PPU address space */

// ntAddr maps a nametable address ($2000-$3EFF) into nametable RAM.
func (p *PPU) ntAddr(addr uint16) uint16 {
	addr &= 0x0FFF
	return p.ntmap[addr/0x400] + addr&0x3FF
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.cart.ReadCHR(addr)
	case addr < 0x3F00:
		return p.nametables[p.ntAddr(addr)]
	}
	return p.palette[addr&0x1F]
}

func (p *PPU) writeVRAM(addr uint16, val uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cart.WriteCHR(addr, val)
	case addr < 0x3F00:
		p.nametables[p.ntAddr(addr)] = val
	default:
		// Backdrop entries (multiple of 4) are shared between background
		// and sprite palettes.
		idx := addr & 0x1F
		p.palette[idx] = val
		if idx&3 == 0 {
			p.palette[idx^0x10] = val
		}
	}
}

/* state */

// State returns a copy of the PPU state.
func (p *PPU) State() snapshot.PPU {
	return snapshot.PPU{
		V:          uint16(p.v),
		T:          uint16(p.t),
		X:          p.x,
		WriteLatch: p.w,
		CTRL:       p.ctrl,
		MASK:       p.mask,
		STATUS:     p.status,
		OAMAddr:    p.oamAddr,
		Latch:      p.latch,
		DataBuf:    p.dataBuf,
		OAM:        p.oam,
		Sprites:    p.sprites,
		NSprites:   p.nsprites,
		Nametable:  p.nametables,
		Palette:    p.palette,
		Dot:        p.Dot,
		Scanline:   p.Scanline,
		Frames:     p.Frames,
	}
}

// SetState restores the PPU state.
func (p *PPU) SetState(s snapshot.PPU) {
	p.v = loopy(s.V)
	p.t = loopy(s.T)
	p.x = s.X
	p.w = s.WriteLatch
	p.ctrl = s.CTRL
	p.mask = s.MASK
	p.status = s.STATUS
	p.oamAddr = s.OAMAddr
	p.latch = s.Latch
	p.dataBuf = s.DataBuf
	p.oam = s.OAM
	p.sprites = s.Sprites
	p.nsprites = s.NSprites
	p.nametables = s.Nametable
	p.palette = s.Palette
	p.Dot = s.Dot
	p.Scanline = s.Scanline
	p.Frames = s.Frames
	p.frameReady = false
}
