package hw

//go:generate go tool stringer -type=mnemonic -trimprefix=op -output=mnemonic_string.go

type mnemonic uint8

const (
	opADC mnemonic = iota
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA

	// unofficial opcodes
	opALR
	opANC
	opARR
	opAXS
	opDCP
	opISB
	opLAS
	opLAX
	opRLA
	opRRA
	opSAX
	opSHX
	opSHY
	opSLO
	opSRE
)

// addrMode is an addressing mode, it determines how the effective address
// of an instruction is computed and how many operand bytes follow the opcode.
type addrMode uint8

const (
	none addrMode = iota // undefined opcodes
	implied
	accumulator
	immediate
	zeropage
	zeropageX
	zeropageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indexedIndirect // (zp,X)
	indirectIndexed // (zp),Y
)

// Number of operand bytes for each addressing mode.
var operandSize = [...]uint16{
	none:            0,
	implied:         0,
	accumulator:     0,
	immediate:       1,
	zeropage:        1,
	zeropageX:       1,
	zeropageY:       1,
	relative:        1,
	absolute:        2,
	absoluteX:       2,
	absoluteY:       2,
	indirect:        2,
	indexedIndirect: 1,
	indirectIndexed: 1,
}

type opcode struct {
	mnemonic mnemonic
	mode     addrMode
	cycles   uint8 // base cycle count
}

// Opcodes table. Undefined (JAM) opcodes are decoded as 2-cycle NOPs.
//
// JAM entries are the {opNOP, none, 2} ones, in the $x2 column. A real
// 2A03 locks up on them; here they take 2 cycles so the frame loop keeps
// running.
var opcodes = [256]opcode{
	0x00: {opBRK, implied, 7}, 0x01: {opORA, indexedIndirect, 6}, 0x02: {opNOP, none, 2}, 0x03: {opSLO, indexedIndirect, 8},
	0x04: {opNOP, zeropage, 3}, 0x05: {opORA, zeropage, 3}, 0x06: {opASL, zeropage, 5}, 0x07: {opSLO, zeropage, 5},
	0x08: {opPHP, implied, 3}, 0x09: {opORA, immediate, 2}, 0x0A: {opASL, accumulator, 2}, 0x0B: {opANC, immediate, 2},
	0x0C: {opNOP, absolute, 4}, 0x0D: {opORA, absolute, 4}, 0x0E: {opASL, absolute, 6}, 0x0F: {opSLO, absolute, 6},
	0x10: {opBPL, relative, 2}, 0x11: {opORA, indirectIndexed, 5}, 0x12: {opNOP, none, 2}, 0x13: {opSLO, indirectIndexed, 8},
	0x14: {opNOP, zeropageX, 4}, 0x15: {opORA, zeropageX, 4}, 0x16: {opASL, zeropageX, 6}, 0x17: {opSLO, zeropageX, 6},
	0x18: {opCLC, implied, 2}, 0x19: {opORA, absoluteY, 4}, 0x1A: {opNOP, implied, 2}, 0x1B: {opSLO, absoluteY, 7},
	0x1C: {opNOP, absoluteX, 4}, 0x1D: {opORA, absoluteX, 4}, 0x1E: {opASL, absoluteX, 7}, 0x1F: {opSLO, absoluteX, 7},
	0x20: {opJSR, absolute, 6}, 0x21: {opAND, indexedIndirect, 6}, 0x22: {opNOP, none, 2}, 0x23: {opRLA, indexedIndirect, 8},
	0x24: {opBIT, zeropage, 3}, 0x25: {opAND, zeropage, 3}, 0x26: {opROL, zeropage, 5}, 0x27: {opRLA, zeropage, 5},
	0x28: {opPLP, implied, 4}, 0x29: {opAND, immediate, 2}, 0x2A: {opROL, accumulator, 2}, 0x2B: {opANC, immediate, 2},
	0x2C: {opBIT, absolute, 4}, 0x2D: {opAND, absolute, 4}, 0x2E: {opROL, absolute, 6}, 0x2F: {opRLA, absolute, 6},
	0x30: {opBMI, relative, 2}, 0x31: {opAND, indirectIndexed, 5}, 0x32: {opNOP, none, 2}, 0x33: {opRLA, indirectIndexed, 8},
	0x34: {opNOP, zeropageX, 4}, 0x35: {opAND, zeropageX, 4}, 0x36: {opROL, zeropageX, 6}, 0x37: {opRLA, zeropageX, 6},
	0x38: {opSEC, implied, 2}, 0x39: {opAND, absoluteY, 4}, 0x3A: {opNOP, implied, 2}, 0x3B: {opRLA, absoluteY, 7},
	0x3C: {opNOP, absoluteX, 4}, 0x3D: {opAND, absoluteX, 4}, 0x3E: {opROL, absoluteX, 7}, 0x3F: {opRLA, absoluteX, 7},
	0x40: {opRTI, implied, 6}, 0x41: {opEOR, indexedIndirect, 6}, 0x42: {opNOP, none, 2}, 0x43: {opSRE, indexedIndirect, 8},
	0x44: {opNOP, zeropage, 3}, 0x45: {opEOR, zeropage, 3}, 0x46: {opLSR, zeropage, 5}, 0x47: {opSRE, zeropage, 5},
	0x48: {opPHA, implied, 3}, 0x49: {opEOR, immediate, 2}, 0x4A: {opLSR, accumulator, 2}, 0x4B: {opALR, immediate, 2},
	0x4C: {opJMP, absolute, 3}, 0x4D: {opEOR, absolute, 4}, 0x4E: {opLSR, absolute, 6}, 0x4F: {opSRE, absolute, 6},
	0x50: {opBVC, relative, 2}, 0x51: {opEOR, indirectIndexed, 5}, 0x52: {opNOP, none, 2}, 0x53: {opSRE, indirectIndexed, 8},
	0x54: {opNOP, zeropageX, 4}, 0x55: {opEOR, zeropageX, 4}, 0x56: {opLSR, zeropageX, 6}, 0x57: {opSRE, zeropageX, 6},
	0x58: {opCLI, implied, 2}, 0x59: {opEOR, absoluteY, 4}, 0x5A: {opNOP, implied, 2}, 0x5B: {opSRE, absoluteY, 7},
	0x5C: {opNOP, absoluteX, 4}, 0x5D: {opEOR, absoluteX, 4}, 0x5E: {opLSR, absoluteX, 7}, 0x5F: {opSRE, absoluteX, 7},
	0x60: {opRTS, implied, 6}, 0x61: {opADC, indexedIndirect, 6}, 0x62: {opNOP, none, 2}, 0x63: {opRRA, indexedIndirect, 8},
	0x64: {opNOP, zeropage, 3}, 0x65: {opADC, zeropage, 3}, 0x66: {opROR, zeropage, 5}, 0x67: {opRRA, zeropage, 5},
	0x68: {opPLA, implied, 4}, 0x69: {opADC, immediate, 2}, 0x6A: {opROR, accumulator, 2}, 0x6B: {opARR, immediate, 2},
	0x6C: {opJMP, indirect, 5}, 0x6D: {opADC, absolute, 4}, 0x6E: {opROR, absolute, 6}, 0x6F: {opRRA, absolute, 6},
	0x70: {opBVS, relative, 2}, 0x71: {opADC, indirectIndexed, 5}, 0x72: {opNOP, none, 2}, 0x73: {opRRA, indirectIndexed, 8},
	0x74: {opNOP, zeropageX, 4}, 0x75: {opADC, zeropageX, 4}, 0x76: {opROR, zeropageX, 6}, 0x77: {opRRA, zeropageX, 6},
	0x78: {opSEI, implied, 2}, 0x79: {opADC, absoluteY, 4}, 0x7A: {opNOP, implied, 2}, 0x7B: {opRRA, absoluteY, 7},
	0x7C: {opNOP, absoluteX, 4}, 0x7D: {opADC, absoluteX, 4}, 0x7E: {opROR, absoluteX, 7}, 0x7F: {opRRA, absoluteX, 7},
	0x80: {opNOP, immediate, 2}, 0x81: {opSTA, indexedIndirect, 6}, 0x82: {opNOP, immediate, 2}, 0x83: {opSAX, indexedIndirect, 6},
	0x84: {opSTY, zeropage, 3}, 0x85: {opSTA, zeropage, 3}, 0x86: {opSTX, zeropage, 3}, 0x87: {opSAX, zeropage, 3},
	0x88: {opDEY, implied, 2}, 0x89: {opNOP, immediate, 2}, 0x8A: {opTXA, implied, 2}, 0x8B: {opNOP, immediate, 2},
	0x8C: {opSTY, absolute, 4}, 0x8D: {opSTA, absolute, 4}, 0x8E: {opSTX, absolute, 4}, 0x8F: {opSAX, absolute, 4},
	0x90: {opBCC, relative, 2}, 0x91: {opSTA, indirectIndexed, 6}, 0x92: {opNOP, none, 2}, 0x93: {opNOP, indirectIndexed, 6},
	0x94: {opSTY, zeropageX, 4}, 0x95: {opSTA, zeropageX, 4}, 0x96: {opSTX, zeropageY, 4}, 0x97: {opSAX, zeropageY, 4},
	0x98: {opTYA, implied, 2}, 0x99: {opSTA, absoluteY, 5}, 0x9A: {opTXS, implied, 2}, 0x9B: {opNOP, absoluteY, 5},
	0x9C: {opSHY, absoluteX, 5}, 0x9D: {opSTA, absoluteX, 5}, 0x9E: {opSHX, absoluteY, 5}, 0x9F: {opNOP, absoluteY, 5},
	0xA0: {opLDY, immediate, 2}, 0xA1: {opLDA, indexedIndirect, 6}, 0xA2: {opLDX, immediate, 2}, 0xA3: {opLAX, indexedIndirect, 6},
	0xA4: {opLDY, zeropage, 3}, 0xA5: {opLDA, zeropage, 3}, 0xA6: {opLDX, zeropage, 3}, 0xA7: {opLAX, zeropage, 3},
	0xA8: {opTAY, implied, 2}, 0xA9: {opLDA, immediate, 2}, 0xAA: {opTAX, implied, 2}, 0xAB: {opLAX, immediate, 2},
	0xAC: {opLDY, absolute, 4}, 0xAD: {opLDA, absolute, 4}, 0xAE: {opLDX, absolute, 4}, 0xAF: {opLAX, absolute, 4},
	0xB0: {opBCS, relative, 2}, 0xB1: {opLDA, indirectIndexed, 5}, 0xB2: {opNOP, none, 2}, 0xB3: {opLAX, indirectIndexed, 5},
	0xB4: {opLDY, zeropageX, 4}, 0xB5: {opLDA, zeropageX, 4}, 0xB6: {opLDX, zeropageY, 4}, 0xB7: {opLAX, zeropageY, 4},
	0xB8: {opCLV, implied, 2}, 0xB9: {opLDA, absoluteY, 4}, 0xBA: {opTSX, implied, 2}, 0xBB: {opLAS, absoluteY, 4},
	0xBC: {opLDY, absoluteX, 4}, 0xBD: {opLDA, absoluteX, 4}, 0xBE: {opLDX, absoluteY, 4}, 0xBF: {opLAX, absoluteY, 4},
	0xC0: {opCPY, immediate, 2}, 0xC1: {opCMP, indexedIndirect, 6}, 0xC2: {opNOP, immediate, 2}, 0xC3: {opDCP, indexedIndirect, 8},
	0xC4: {opCPY, zeropage, 3}, 0xC5: {opCMP, zeropage, 3}, 0xC6: {opDEC, zeropage, 5}, 0xC7: {opDCP, zeropage, 5},
	0xC8: {opINY, implied, 2}, 0xC9: {opCMP, immediate, 2}, 0xCA: {opDEX, implied, 2}, 0xCB: {opAXS, immediate, 2},
	0xCC: {opCPY, absolute, 4}, 0xCD: {opCMP, absolute, 4}, 0xCE: {opDEC, absolute, 6}, 0xCF: {opDCP, absolute, 6},
	0xD0: {opBNE, relative, 2}, 0xD1: {opCMP, indirectIndexed, 5}, 0xD2: {opNOP, none, 2}, 0xD3: {opDCP, indirectIndexed, 8},
	0xD4: {opNOP, zeropageX, 4}, 0xD5: {opCMP, zeropageX, 4}, 0xD6: {opDEC, zeropageX, 6}, 0xD7: {opDCP, zeropageX, 6},
	0xD8: {opCLD, implied, 2}, 0xD9: {opCMP, absoluteY, 4}, 0xDA: {opNOP, implied, 2}, 0xDB: {opDCP, absoluteY, 7},
	0xDC: {opNOP, absoluteX, 4}, 0xDD: {opCMP, absoluteX, 4}, 0xDE: {opDEC, absoluteX, 7}, 0xDF: {opDCP, absoluteX, 7},
	0xE0: {opCPX, immediate, 2}, 0xE1: {opSBC, indexedIndirect, 6}, 0xE2: {opNOP, immediate, 2}, 0xE3: {opISB, indexedIndirect, 8},
	0xE4: {opCPX, zeropage, 3}, 0xE5: {opSBC, zeropage, 3}, 0xE6: {opINC, zeropage, 5}, 0xE7: {opISB, zeropage, 5},
	0xE8: {opINX, implied, 2}, 0xE9: {opSBC, immediate, 2}, 0xEA: {opNOP, implied, 2}, 0xEB: {opSBC, immediate, 2},
	0xEC: {opCPX, absolute, 4}, 0xED: {opSBC, absolute, 4}, 0xEE: {opINC, absolute, 6}, 0xEF: {opISB, absolute, 6},
	0xF0: {opBEQ, relative, 2}, 0xF1: {opSBC, indirectIndexed, 5}, 0xF2: {opNOP, none, 2}, 0xF3: {opISB, indirectIndexed, 8},
	0xF4: {opNOP, zeropageX, 4}, 0xF5: {opSBC, zeropageX, 4}, 0xF6: {opINC, zeropageX, 6}, 0xF7: {opISB, zeropageX, 6},
	0xF8: {opSED, implied, 2}, 0xF9: {opSBC, absoluteY, 4}, 0xFA: {opNOP, implied, 2}, 0xFB: {opISB, absoluteY, 7},
	0xFC: {opNOP, absoluteX, 4}, 0xFD: {opSBC, absoluteX, 4}, 0xFE: {opINC, absoluteX, 7}, 0xFF: {opISB, absoluteX, 7},
}
