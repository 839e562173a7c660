package hw

import "famicore/emu/log"

// execute runs the instruction in flight, its effective address having
// already been resolved by fetch.
func (c *CPU) execute() {
	switch c.op.mnemonic {
	/* loads and stores */
	case opLDA:
		c.A = c.read8(c.operand)
		c.P.setNZ(c.A)
	case opLDX:
		c.X = c.read8(c.operand)
		c.P.setNZ(c.X)
	case opLDY:
		c.Y = c.read8(c.operand)
		c.P.setNZ(c.Y)
	case opSTA:
		c.write8(c.operand, c.A)
	case opSTX:
		c.write8(c.operand, c.X)
	case opSTY:
		c.write8(c.operand, c.Y)

	/* transfers */
	case opTAX:
		c.X = c.A
		c.P.setNZ(c.X)
	case opTAY:
		c.Y = c.A
		c.P.setNZ(c.Y)
	case opTXA:
		c.A = c.X
		c.P.setNZ(c.A)
	case opTYA:
		c.A = c.Y
		c.P.setNZ(c.A)
	case opTSX:
		c.X = c.SP
		c.P.setNZ(c.X)
	case opTXS:
		c.SP = c.X

	/* stack */
	case opPHA:
		c.push8(c.A)
	case opPHP:
		c.push8(c.P.pushed(true))
	case opPLA:
		c.A = c.pull8()
		c.P.setNZ(c.A)
	case opPLP:
		c.P.pulled(c.pull8())

	/* arithmetic and logic */
	case opADC:
		c.adc(c.read8(c.operand))
	case opSBC:
		c.adc(^c.read8(c.operand))
	case opAND:
		c.A &= c.read8(c.operand)
		c.P.setNZ(c.A)
	case opORA:
		c.A |= c.read8(c.operand)
		c.P.setNZ(c.A)
	case opEOR:
		c.A ^= c.read8(c.operand)
		c.P.setNZ(c.A)
	case opBIT:
		val := c.read8(c.operand)
		c.P.setIf(Zero, c.A&val == 0)
		c.P.setIf(Overflow, val&0x40 != 0)
		c.P.setIf(Negative, val&0x80 != 0)
	case opCMP:
		c.compare(c.A, c.read8(c.operand))
	case opCPX:
		c.compare(c.X, c.read8(c.operand))
	case opCPY:
		c.compare(c.Y, c.read8(c.operand))

	/* increments and decrements */
	case opINC:
		c.rmw(func(v uint8) uint8 { return c.nz(v + 1) })
	case opDEC:
		c.rmw(func(v uint8) uint8 { return c.nz(v - 1) })
	case opINX:
		c.X++
		c.P.setNZ(c.X)
	case opINY:
		c.Y++
		c.P.setNZ(c.Y)
	case opDEX:
		c.X--
		c.P.setNZ(c.X)
	case opDEY:
		c.Y--
		c.P.setNZ(c.Y)

	/* shifts and rotates */
	case opASL:
		c.rmw(c.asl)
	case opLSR:
		c.rmw(c.lsr)
	case opROL:
		c.rmw(c.rol)
	case opROR:
		c.rmw(c.ror)

	/* jumps and calls */
	case opJMP:
		c.PC = c.operand
	case opJSR:
		c.push16(c.PC - 1)
		c.PC = c.operand
	case opRTS:
		c.PC = c.pull16() + 1
	case opRTI:
		c.P.pulled(c.pull8())
		c.PC = c.pull16()
	case opBRK:
		c.PC++
		c.push16(c.PC)
		c.push8(c.P.pushed(true))
		c.P.set(Interrupt)
		c.PC = c.read16(IRQVector)

	/* branches */
	case opBCC, opBCS, opBEQ, opBNE, opBMI, opBPL, opBVC, opBVS:
		if c.branch {
			c.PC = c.operand
			c.branch = false
		}

	/* status flags */
	case opCLC:
		c.P.clear(Carry)
	case opCLD:
		c.P.clear(Decimal)
	case opCLI:
		c.P.clear(Interrupt)
	case opCLV:
		c.P.clear(Overflow)
	case opSEC:
		c.P.set(Carry)
	case opSED:
		c.P.set(Decimal)
	case opSEI:
		c.P.set(Interrupt)

	case opNOP:
		switch c.op.mode {
		case none, implied:
		default:
			c.read8(c.operand)
		}

	/* unofficial opcodes */
	case opALR:
		c.A &= c.read8(c.operand)
		c.A = c.lsr(c.A)
	case opANC:
		c.A &= c.read8(c.operand)
		c.P.setNZ(c.A)
		c.P.setIf(Carry, c.A&0x80 != 0)
	case opARR:
		c.A &= c.read8(c.operand)
		c.A = c.A>>1 | uint8(c.P&Carry)<<7
		c.P.setNZ(c.A)
		c.P.setIf(Carry, c.A&0x40 != 0)
		c.P.setIf(Overflow, (c.A>>6^c.A>>5)&1 != 0)
	case opAXS:
		val := c.read8(c.operand)
		ax := c.A & c.X
		c.X = ax - val
		c.P.setIf(Carry, ax >= val)
		c.P.setNZ(c.X)
	case opLAX:
		c.A = c.read8(c.operand)
		c.X = c.A
		c.P.setNZ(c.A)
	case opLAS:
		val := c.read8(c.operand) & c.SP
		c.A, c.X, c.SP = val, val, val
		c.P.setNZ(val)
	case opSAX:
		c.write8(c.operand, c.A&c.X)
	case opDCP:
		val := c.rmw(func(v uint8) uint8 { return v - 1 })
		c.compare(c.A, val)
	case opISB:
		val := c.rmw(func(v uint8) uint8 { return v + 1 })
		c.adc(^val)
	case opRLA:
		c.A &= c.rmw(c.rol)
		c.P.setNZ(c.A)
	case opRRA:
		c.adc(c.rmw(c.ror))
	case opSLO:
		c.A |= c.rmw(c.asl)
		c.P.setNZ(c.A)
	case opSRE:
		c.A ^= c.rmw(c.lsr)
		c.P.setNZ(c.A)
	case opSHX:
		c.unstableStore(c.X, c.Y)
	case opSHY:
		c.unstableStore(c.Y, c.X)

	default:
		log.ModCPU.WarnZ("unimplemented opcode").
			Hex8("opcode", c.opcode).
			Hex16("PC", c.PC).
			End()
	}
}

func (c *CPU) nz(v uint8) uint8 {
	c.P.setNZ(v)
	return v
}

func (c *CPU) adc(val uint8) {
	sum := uint16(c.A) + uint16(val) + uint16(c.P&Carry)
	res := uint8(sum)
	c.P.setIf(Carry, sum > 0xFF)
	c.P.setIf(Overflow, (c.A^res)&(val^res)&0x80 != 0)
	c.A = res
	c.P.setNZ(c.A)
}

func (c *CPU) compare(reg, val uint8) {
	c.P.setIf(Carry, reg >= val)
	c.P.setNZ(reg - val)
}

// rmw performs a read-modify-write on the accumulator or on memory. Memory
// is written twice, first with the unmodified value.
func (c *CPU) rmw(f func(uint8) uint8) uint8 {
	if c.op.mode == accumulator {
		c.A = f(c.A)
		return c.A
	}
	old := c.read8(c.operand)
	c.write8(c.operand, old)
	val := f(old)
	c.write8(c.operand, val)
	return val
}

func (c *CPU) asl(v uint8) uint8 {
	c.P.setIf(Carry, v&0x80 != 0)
	return c.nz(v << 1)
}

func (c *CPU) lsr(v uint8) uint8 {
	c.P.setIf(Carry, v&0x01 != 0)
	return c.nz(v >> 1)
}

func (c *CPU) rol(v uint8) uint8 {
	carry := uint8(c.P & Carry)
	c.P.setIf(Carry, v&0x80 != 0)
	return c.nz(v<<1 | carry)
}

func (c *CPU) ror(v uint8) uint8 {
	carry := uint8(c.P&Carry) << 7
	c.P.setIf(Carry, v&0x01 != 0)
	return c.nz(v>>1 | carry)
}

// unstableStore implements SHX and SHY: the stored value is ANDed with the
// high byte of the base address plus one, and on page crossing that value
// replaces the high byte of the target address.
func (c *CPU) unstableStore(reg, idx uint8) {
	base := c.operand - uint16(idx)
	val := reg & (uint8(base>>8) + 1)
	addr := c.operand
	if pageCrossed(base, addr) {
		addr = uint16(val)<<8 | addr&0x00FF
	}
	c.write8(addr, val)
}
