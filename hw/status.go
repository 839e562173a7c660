package hw

// P is the 6502 processor status register.
type P uint8

const (
	Carry     P = 1 << iota // C
	Zero                    // Z
	Interrupt               // I, masks IRQ
	Decimal                 // D, no effect on the 2A03
	Break                   // B, only exists on the stack
	Unused                  // U, reads as 1 on the stack
	Overflow                // V
	Negative                // N
)

// Power-up value of P.
const powerUpP = P(0x24)

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	var s [8]byte
	for i := range 8 {
		ibit := (uint8(p) >> (7 - i)) & 1
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s[:])
}

func (p P) has(flag P) bool { return p&flag != 0 }

func (p *P) set(flag P)   { *p |= flag }
func (p *P) clear(flag P) { *p &^= flag }

func (p *P) setIf(flag P, cond bool) {
	if cond {
		p.set(flag)
	} else {
		p.clear(flag)
	}
}

// setNZ sets Z and N according to val.
func (p *P) setNZ(val uint8) {
	p.setIf(Zero, val == 0)
	p.setIf(Negative, val&0x80 != 0)
}

// pushed returns the value of P as pushed on the stack.
func (p P) pushed(brk bool) uint8 {
	v := p | Unused
	if brk {
		v |= Break
	} else {
		v &^= Break
	}
	return uint8(v)
}

// pulled sets P from a value pulled from the stack, B and U are kept.
func (p *P) pulled(v uint8) {
	*p = *p&(Break|Unused) | P(v)&^(Break|Unused)
}
