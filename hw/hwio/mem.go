package hwio

import (
	"fmt"

	"famicore/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlagReadOnly  MemFlags = 1 << iota // writes are dropped and logged
	MemFlagNoROLog                        // with MemFlagReadOnly, drop writes silently
)

// Mem is a linear memory area. Its size is a power of 2 so that accesses
// beyond the physical size mirror the area, as incompletely decoded address
// lines do on the real hardware.
type Mem struct {
	Name  string   // name of the memory area (for logging)
	Data  []byte   // memory buffer
	Flags MemFlags // access flags

	mask uint16
}

// NewMem returns a memory area of the given size, which must be a power
// of 2 and at most 64KB.
func NewMem(name string, size int, flags MemFlags) *Mem {
	return NewMemFrom(name, make([]byte, size), flags)
}

// NewMemFrom returns a memory area backed by buf (not copied).
func NewMemFrom(name string, buf []byte, flags MemFlags) *Mem {
	if len(buf) == 0 || len(buf)&(len(buf)-1) != 0 || len(buf) > 0x10000 {
		panic(fmt.Sprintf("hwio: memory %q size %d is not a power of 2 in (0, 64K]", name, len(buf)))
	}
	return &Mem{
		Name:  name,
		Data:  buf,
		Flags: flags,
		mask:  uint16(len(buf) - 1),
	}
}

// Read8 reads the byte at addr, mirrored over the area size.
func (m *Mem) Read8(addr uint16) uint8 {
	return m.Data[addr&m.mask]
}

// Write8 writes val at addr, mirrored over the area size.
func (m *Mem) Write8(addr uint16, val uint8) {
	if m.Flags&MemFlagReadOnly == 0 {
		m.Data[addr&m.mask] = val
		return
	}
	if m.Flags&MemFlagNoROLog == 0 {
		log.ModHwIo.DebugZ("Write8 to readonly memory").
			String("mem", m.Name).
			Hex16("addr", addr).
			Hex8("val", val).
			End()
	}
}

// Len returns the physical size of the area.
func (m *Mem) Len() int {
	return len(m.Data)
}

// Clone returns a deep copy of m.
func (m *Mem) Clone() *Mem {
	c := *m
	c.Data = append([]byte(nil), m.Data...)
	return &c
}
