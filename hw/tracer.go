package hw

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/jx"
)

// TraceFormat selects the output format of the execution trace.
type TraceFormat uint8

const (
	TraceText TraceFormat = iota // nestest-like log lines
	TraceJSON                    // one JSON object per instruction
)

// ParseTraceFormat parses "text" or "json".
func ParseTraceFormat(s string) (TraceFormat, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return TraceText, nil
	case "json":
		return TraceJSON, nil
	}
	return 0, fmt.Errorf("unknown trace format %q", s)
}

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock    uint64
	PPUCycle int
	Scanline int
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

// raster provides the current PPU position.
type raster interface {
	Position() (scanline, dot int)
}

// Tracer writes a line per executed instruction, with the CPU state before
// its execution.
type Tracer struct {
	w      io.Writer
	format TraceFormat
	ppu    raster
	enc    jx.Encoder
	line   []byte
}

// NewTracer returns a tracer writing to w. ppu may be nil.
func NewTracer(w io.Writer, format TraceFormat, ppu raster) *Tracer {
	return &Tracer{w: w, format: format, ppu: ppu}
}

func (t *Tracer) trace(c *CPU) {
	state := cpuState{
		A:     c.A,
		X:     c.X,
		Y:     c.Y,
		P:     c.P,
		SP:    c.SP,
		PC:    c.PC,
		Clock: c.total,
	}
	if t.ppu != nil {
		state.Scanline, state.PPUCycle = t.ppu.Position()
	}
	t.write(c, state)
}

// write the execution trace for current cycle.
func (t *Tracer) write(d disasmer, state cpuState) {
	dis := d.Disasm(state.PC)
	if t.format == TraceJSON {
		t.writeJSON(dis, state)
		return
	}

	const regsCol = 49
	buf := padRight(append(t.line[:0], dis.Bytes()...), regsCol)
	buf = appendReg(buf, 'A', state.A)
	buf = appendReg(buf, 'X', state.X)
	buf = appendReg(buf, 'Y', state.Y)
	buf = appendReg(buf, 'P', uint8(state.P))
	buf = appendReg(buf, 'S', state.SP)

	scanline := state.Scanline
	if scanline == 261 {
		scanline = -1
	}

	buf = fmt.Appendf(buf, "PPU:%-3d,%-3d %d\n", scanline, state.PPUCycle, state.Clock)
	t.line = buf
	t.w.Write(buf)
}

// appendReg appends "R:XX " to buf.
func appendReg(buf []byte, name byte, val uint8) []byte {
	buf = append(buf, name, ':')
	return append(appendHex(buf, val), ' ')
}

func (t *Tracer) writeJSON(dis DisasmOp, state cpuState) {
	e := &t.enc
	e.Reset()
	e.ObjStart()
	e.FieldStart("pc")
	e.UInt16(state.PC)
	e.FieldStart("bytes")
	e.ArrStart()
	for _, b := range dis.Buf {
		e.UInt8(b)
	}
	e.ArrEnd()
	e.FieldStart("op")
	e.Str(dis.Opcode)
	if dis.Oper != "" {
		e.FieldStart("oper")
		e.Str(dis.Oper)
	}
	e.FieldStart("a")
	e.UInt8(state.A)
	e.FieldStart("x")
	e.UInt8(state.X)
	e.FieldStart("y")
	e.UInt8(state.Y)
	e.FieldStart("p")
	e.UInt8(uint8(state.P))
	e.FieldStart("sp")
	e.UInt8(state.SP)
	e.FieldStart("scanline")
	e.Int(state.Scanline)
	e.FieldStart("dot")
	e.Int(state.PPUCycle)
	e.FieldStart("cycles")
	e.UInt64(state.Clock)
	e.ObjEnd()

	t.w.Write(append(e.Bytes(), '\n'))
}
