package hw

import "fmt"

// DisasmOp is a disassembled instruction.
type DisasmOp struct {
	Opcode string // mnemonic, prefixed with '*' for unofficial opcodes
	Oper   string
	Buf    []byte
	PC     uint16
}

func (d DisasmOp) String() string {
	return string(d.Bytes())
}

// Bytes formats the instruction as a fixed width column, the layout used by
// the text execution tracer:
//
//	C000  4C F5 C5  JMP $C5F5
func (d DisasmOp) Bytes() []byte {
	const (
		mnemonicCol = 15
		width       = 48
	)
	buf := make([]byte, 0, width+8)

	buf = appendHex(buf, byte(d.PC>>8))
	buf = appendHex(buf, byte(d.PC))
	buf = append(buf, "  "...)
	for _, b := range d.Buf {
		buf = append(appendHex(buf, b), ' ')
	}
	buf = padRight(buf, mnemonicCol)

	// Unofficial opcodes start one column earlier, with their '*'.
	if len(d.Opcode) == 3 {
		buf = append(buf, ' ')
	}
	buf = append(buf, d.Opcode...)
	buf = append(buf, ' ')
	buf = append(buf, d.Oper...)

	if len(buf) > width {
		return append(buf, ' ')
	}
	return padRight(buf, width)
}

func appendHex(dst []byte, v byte) []byte {
	const hextable = "0123456789ABCDEF"
	return append(dst, hextable[v>>4], hextable[v&0x0f])
}

func padRight(buf []byte, n int) []byte {
	for len(buf) < n {
		buf = append(buf, ' ')
	}
	return buf
}

// Disasm disassembles the instruction at pc, without side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	opcode := c.mem.Peek8(pc)
	op := opcodes[opcode]

	d := DisasmOp{
		PC:     pc,
		Opcode: op.mnemonic.String(),
		Buf:    make([]byte, 1+operandSize[op.mode]),
	}
	if op.unofficial(opcode) {
		d.Opcode = "*" + d.Opcode
	}
	for i := range d.Buf {
		d.Buf[i] = c.mem.Peek8(pc + uint16(i))
	}

	var oper8 uint8
	var oper16 uint16
	switch len(d.Buf) {
	case 2:
		oper8 = d.Buf[1]
	case 3:
		oper16 = uint16(d.Buf[2])<<8 | uint16(d.Buf[1])
	}

	switch op.mode {
	case accumulator:
		d.Oper = "A"
	case immediate:
		d.Oper = fmt.Sprintf("#$%02X", oper8)
	case zeropage:
		d.Oper = fmt.Sprintf("$%02X", oper8)
	case zeropageX:
		d.Oper = fmt.Sprintf("$%02X,X", oper8)
	case zeropageY:
		d.Oper = fmt.Sprintf("$%02X,Y", oper8)
	case relative:
		d.Oper = fmt.Sprintf("$%04X", pc+2+uint16(int8(oper8)))
	case absolute:
		d.Oper = formatAddr(oper16)
	case absoluteX:
		d.Oper = formatAddr(oper16) + ",X"
	case absoluteY:
		d.Oper = formatAddr(oper16) + ",Y"
	case indirect:
		d.Oper = fmt.Sprintf("($%04X)", oper16)
	case indexedIndirect:
		d.Oper = fmt.Sprintf("($%02X,X)", oper8)
	case indirectIndexed:
		d.Oper = fmt.Sprintf("($%02X),Y", oper8)
	}
	return d
}

// unofficial reports whether opcode is not part of the documented 6502
// instruction set.
func (op opcode) unofficial(opcode uint8) bool {
	switch {
	case op.mode == none:
		return true
	case op.mnemonic >= opALR:
		return true
	case op.mnemonic == opNOP:
		return opcode != 0xEA
	case op.mnemonic == opSBC:
		return opcode == 0xEB
	}
	return false
}

var addressLabels = map[uint16]string{
	0x2000: "PpuControl_2000",
	0x2001: "PpuMask_2001",
	0x2002: "PpuStatus_2002",
	0x2003: "OamAddr_2003",
	0x2004: "OamData_2004",
	0x2005: "PpuScroll_2005",
	0x2006: "PpuAddr_2006",
	0x2007: "PpuData_2007",
	0x4000: "Sq0Duty_4000",
	0x4001: "Sq0Sweep_4001",
	0x4002: "Sq0Timer_4002",
	0x4003: "Sq0Length_4003",
	0x4004: "Sq1Duty_4004",
	0x4005: "Sq1Sweep_4005",
	0x4006: "Sq1Timer_4006",
	0x4007: "Sq1Length_4007",
	0x4008: "TrgLinear_4008",
	0x400A: "TrgTimer_400A",
	0x400B: "TrgLength_400B",
	0x400C: "NoiseVolume_400C",
	0x400E: "NoisePeriod_400E",
	0x400F: "NoiseLength_400F",
	0x4010: "DmcFreq_4010",
	0x4011: "DmcCounter_4011",
	0x4012: "DmcAddress_4012",
	0x4013: "DmcLength_4013",
	0x4014: "SpriteDma_4014",
	0x4015: "ApuStatus_4015",
	0x4016: "Ctrl1_4016",
	0x4017: "Ctrl2_FrameCtr_4017",
}

func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}
