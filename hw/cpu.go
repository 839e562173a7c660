package hw

import (
	"famicore/emu/log"
	"famicore/hw/hwdefs"
	"famicore/hw/snapshot"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// Number of cycles the CPU is suspended during OAM DMA (+1 on odd cycles).
const oamDMACycles = 513

// Memory is the CPU address space.
type Memory interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)

	// Peek8 reads without side effects.
	Peek8(addr uint16) uint8
}

type interrupt uint8

const (
	noInterrupt interrupt = iota
	nmiInterrupt
	resetInterrupt
	irqInterrupt
)

func (i interrupt) String() string {
	switch i {
	case noInterrupt:
		return "none"
	case nmiInterrupt:
		return "NMI"
	case resetInterrupt:
		return "RESET"
	case irqInterrupt:
		return "IRQ"
	}
	return "unknown"
}

// CPU is the Ricoh 2A03 CPU core, a 6502 without decimal mode.
//
// It runs one cycle per call to Tick. An instruction performs its opcode
// fetch and address resolution (and the associated dummy reads) on its first
// cycle, it then counts down its remaining cycles and executes on the last
// one.
type CPU struct {
	mem Memory

	A, X, Y, SP uint8
	PC          uint16
	P           P

	opcode  uint8
	op      opcode
	operand uint16 // effective address of the instruction in flight
	branch  bool   // the branch in flight is taken
	cycles  int    // remaining cycles of the instruction in flight
	dma     int    // remaining cycles of DMA suspension
	total   uint64
	odd     bool

	pending      interrupt // interrupt being serviced
	nmiPending   bool
	resetPending bool
	irqSources   hwdefs.IRQSource

	tracer *Tracer
}

// NewCPU returns a CPU at power-up state, with PC loaded from the reset
// vector.
func NewCPU(mem Memory) *CPU {
	c := &CPU{mem: mem}
	c.Reset(hwdefs.HardReset)
	return c
}

// Reset resets the CPU. A soft reset only sets I, decrements SP by 3 and
// reloads PC. A hard reset also restores the power-up register values.
func (c *CPU) Reset(soft bool) {
	if soft {
		c.P.set(Interrupt)
		c.SP -= 3
	} else {
		c.A, c.X, c.Y = 0, 0, 0
		c.P = powerUpP
		c.SP = 0xFD
		c.total = 0
		c.odd = false
		c.irqSources = 0
		c.nmiPending = false
	}

	c.PC = c.read16(ResetVector)
	c.cycles = 0
	c.dma = 0
	c.branch = false
	c.pending = noInterrupt
	c.resetPending = false

	log.ModCPU.InfoZ("reset").Bool("soft", soft).Hex16("PC", c.PC).End()
}

// Tick runs the CPU for one cycle.
func (c *CPU) Tick() {
	c.odd = !c.odd
	c.total++

	if c.dma > 0 {
		c.dma--
		return
	}

	if c.cycles == 0 {
		if irq := c.poll(); irq != noInterrupt {
			// Takes 7 cycles and this is one of them.
			c.pending = irq
			c.cycles = 6
			return
		}
		c.fetch()
		c.cycles--
		return
	}

	c.cycles--
	if c.cycles > 0 {
		return
	}

	if c.pending != noInterrupt {
		c.dispatch()
		return
	}
	c.execute()
}

// Cycles returns the number of cycles run since power-up.
func (c *CPU) Cycles() uint64 { return c.total }

// InstructionDone reports whether the CPU is between 2 instructions.
func (c *CPU) InstructionDone() bool { return c.cycles == 0 && c.dma == 0 }

/* DMA */

// DMASuspend suspends the CPU for the duration of an OAM DMA transfer.
func (c *CPU) DMASuspend() {
	n := oamDMACycles
	if c.odd {
		n++
	}
	c.dma += n
	log.ModDMA.DebugZ("oam dma").Int("cycles", n).Uint64("at", c.total).End()
}

// Stall suspends the CPU for n cycles.
func (c *CPU) Stall(n int) {
	c.dma += n
}

/* interrupt handling */

// TriggerNMI signals a falling edge on the NMI line, the NMI is serviced
// once the current instruction completes.
func (c *CPU) TriggerNMI() { c.nmiPending = true }

// RequestReset has the CPU perform a soft reset once the current instruction
// completes.
func (c *CPU) RequestReset() { c.resetPending = true }

// The IRQ line is level triggered and asserted as long as at least one
// source is set.
func (c *CPU) SetIRQSource(src hwdefs.IRQSource)      { c.irqSources |= src }
func (c *CPU) ClearIRQSource(src hwdefs.IRQSource)    { c.irqSources &^= src }
func (c *CPU) HasIRQSource(src hwdefs.IRQSource) bool { return c.irqSources&src != 0 }

func (c *CPU) poll() interrupt {
	switch {
	case c.resetPending:
		c.resetPending = false
		return resetInterrupt
	case c.nmiPending:
		c.nmiPending = false
		return nmiInterrupt
	case c.irqSources != 0 && !c.P.has(Interrupt):
		return irqInterrupt
	}
	return noInterrupt
}

func (c *CPU) dispatch() {
	irq := c.pending
	c.pending = noInterrupt

	var vector uint16
	switch irq {
	case nmiInterrupt:
		vector = NMIVector
	case irqInterrupt:
		vector = IRQVector
	case resetInterrupt:
		c.Reset(hwdefs.SoftReset)
		return
	default:
		log.ModCPU.WarnZ("unknown interrupt").Stringer("kind", irq).Hex16("PC", c.PC).End()
		return
	}

	prevPC := c.PC
	c.push16(c.PC)
	c.push8(c.P.pushed(false))
	c.P.set(Interrupt)
	c.PC = c.read16(vector)

	log.ModCPU.DebugZ("interrupt").
		Stringer("kind", irq).
		Hex16("from", prevPC).
		Hex16("to", c.PC).
		End()
}

/* memory access */

func (c *CPU) read8(addr uint16) uint8 { return c.mem.Read8(addr) }

func (c *CPU) write8(addr uint16, val uint8) { c.mem.Write8(addr, val) }

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.mem.Read8(addr)
	hi := c.mem.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// read16zp reads a pointer in zero page, wrapping around at $FF.
func (c *CPU) read16zp(addr uint8) uint16 {
	lo := c.mem.Read8(uint16(addr))
	hi := c.mem.Read8(uint16(addr + 1))
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

const stackBase = 0x0100

func (c *CPU) push8(val uint8) {
	c.write8(stackBase+uint16(c.SP), val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.read8(stackBase + uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* decode */

func pageCrossed(a, b uint16) bool { return a&0xFF00 != b&0xFF00 }

func (c *CPU) fetch() {
	if c.tracer != nil {
		c.tracer.trace(c)
	}

	c.opcode = c.read8(c.PC)
	c.PC++
	c.op = opcodes[c.opcode]
	c.operand = c.address()
	c.cycles += int(c.op.cycles)
	c.prepBranch()
}

// alwaysDummyRead reports whether the instruction performs the dummy read of
// indexed addressing modes even when no page is crossed (stores and
// read-modify-write instructions).
func (c *CPU) alwaysDummyRead() bool {
	switch c.op.mnemonic {
	case opSTA, opSHX, opSHY, opSLO, opRLA, opSRE, opRRA, opDCP, opISB:
		return true
	case opASL, opDEC, opINC, opLSR, opROL, opROR:
		return true
	case opNOP:
		// AHX and TAS, decoded as NOP.
		return c.op.mode == absoluteY || c.op.mode == indirectIndexed
	}
	return false
}

// indexed computes base+idx, performing the dummy read at the partially
// computed address, which costs an extra cycle on page crossing.
func (c *CPU) indexed(base uint16, idx uint8) uint16 {
	addr := base + uint16(idx)
	dummy := base&0xFF00 | addr&0x00FF
	switch {
	case c.alwaysDummyRead():
		c.read8(dummy)
	case pageCrossed(base, addr):
		c.read8(dummy)
		c.cycles++
	}
	return addr
}

// address resolves the effective address of the current instruction,
// consuming its operand bytes.
func (c *CPU) address() uint16 {
	switch c.op.mode {
	case implied, accumulator:
		c.read8(c.PC)
		return 0
	case relative:
		off := int8(c.read8(c.PC))
		c.PC++
		return c.PC + uint16(off)
	case immediate:
		c.PC++
		return c.PC - 1
	case zeropage:
		addr := c.read8(c.PC)
		c.PC++
		return uint16(addr)
	case zeropageX:
		addr := c.read8(c.PC)
		c.PC++
		return uint16(addr + c.X)
	case zeropageY:
		addr := c.read8(c.PC)
		c.PC++
		return uint16(addr + c.Y)
	case absolute:
		addr := c.read16(c.PC)
		c.PC += 2
		return addr
	case absoluteX:
		addr := c.read16(c.PC)
		c.PC += 2
		return c.indexed(addr, c.X)
	case absoluteY:
		addr := c.read16(c.PC)
		c.PC += 2
		return c.indexed(addr, c.Y)
	case indirect:
		ptr := c.read16(c.PC)
		c.PC += 2
		// The high byte is fetched without carry into the pointer high byte.
		lo := c.read8(ptr)
		hi := c.read8(ptr&0xFF00 | (ptr+1)&0x00FF)
		return uint16(hi)<<8 | uint16(lo)
	case indexedIndirect:
		zp := c.read8(c.PC) + c.X
		c.PC++
		return c.read16zp(zp)
	case indirectIndexed:
		zp := c.read8(c.PC)
		c.PC++
		return c.indexed(c.read16zp(zp), c.Y)
	}
	return 0
}

func (c *CPU) prepBranch() {
	var taken bool
	switch c.op.mnemonic {
	case opBCC:
		taken = !c.P.has(Carry)
	case opBCS:
		taken = c.P.has(Carry)
	case opBEQ:
		taken = c.P.has(Zero)
	case opBNE:
		taken = !c.P.has(Zero)
	case opBMI:
		taken = c.P.has(Negative)
	case opBPL:
		taken = !c.P.has(Negative)
	case opBVC:
		taken = !c.P.has(Overflow)
	case opBVS:
		taken = c.P.has(Overflow)
	}

	c.branch = taken
	if taken {
		c.cycles++
		if pageCrossed(c.PC, c.operand) {
			c.cycles++
		}
	}
}

/* state */

// State returns a copy of the CPU state.
func (c *CPU) State() snapshot.CPU {
	return snapshot.CPU{
		PC:           c.PC,
		SP:           c.SP,
		P:            uint8(c.P),
		A:            c.A,
		X:            c.X,
		Y:            c.Y,
		Opcode:       c.opcode,
		Operand:      c.operand,
		Cycles:       c.cycles,
		DMA:          c.dma,
		Total:        c.total,
		Odd:          c.odd,
		Branch:       c.branch,
		Pending:      uint8(c.pending),
		NMIPending:   c.nmiPending,
		ResetPending: c.resetPending,
		IRQSources:   uint8(c.irqSources),
	}
}

// SetState restores the CPU state.
func (c *CPU) SetState(s snapshot.CPU) {
	c.PC = s.PC
	c.SP = s.SP
	c.P = P(s.P)
	c.A = s.A
	c.X = s.X
	c.Y = s.Y
	c.opcode = s.Opcode
	c.op = opcodes[s.Opcode]
	c.operand = s.Operand
	c.cycles = s.Cycles
	c.dma = s.DMA
	c.total = s.Total
	c.odd = s.Odd
	c.branch = s.Branch
	c.pending = interrupt(s.Pending)
	c.nmiPending = s.NMIPending
	c.resetPending = s.ResetPending
	c.irqSources = hwdefs.IRQSource(s.IRQSources)
}

// SetTracer enables execution tracing, or disables it if t is nil.
func (c *CPU) SetTracer(t *Tracer) { c.tracer = t }
