package mappers

import (
	"famicore/hw"
	"famicore/hw/hwdefs"
	"famicore/hw/hwio"
	"famicore/hw/snapshot"
)

var NROM = MapperDesc{
	Name: "NROM",
	Load: loadNROM,
}

// nrom is the board of the first cartridges: 16KB or 32KB PRG ROM at $8000
// (a 16KB rom is mirrored at $C000), optional PRG RAM at $6000 and 8KB of
// CHR ROM, or CHR RAM when the rom has none.
type nrom struct {
	*base

	PRGRAM *hwio.Mem
	PRGROM *hwio.Mem
	CHR    *hwio.Mem

	chrRAM bool
}

func loadNROM(b *base) (hw.Cartridge, error) {
	nrom := &nrom{base: b}

	// PRG ROM mirrors are taken care of by the hwio.Mem mask, that is
	// banks*0x4000-1.
	prg := append([]byte(nil), b.rom.PRG...)
	nrom.PRGROM = hwio.NewMemFrom("PRGROM", prg, hwio.MemFlagReadOnly)

	// The $6000-$7FFF window is 8KB.
	nrom.PRGRAM = hwio.NewMem("PRGRAM", min(b.rom.PRGRAMSize(), 0x2000), hwio.MemFlagReadWrite)

	if len(b.rom.CHR) == 0 {
		nrom.chrRAM = true
		nrom.CHR = hwio.NewMem("CHRRAM", 0x2000, hwio.MemFlagReadWrite)
	} else {
		chr := append([]byte(nil), b.rom.CHR...)
		nrom.CHR = hwio.NewMemFrom("CHRROM", chr, hwio.MemFlagReadOnly|hwio.MemFlagNoROLog)
	}
	return nrom, nil
}

func (m *nrom) ReadPRG(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x8000:
		return m.PRGROM.Read8(addr - 0x8000), true
	case addr >= 0x6000:
		return m.PRGRAM.Read8(addr - 0x6000), true
	}
	return 0, false
}

func (m *nrom) WritePRG(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		m.PRGROM.Write8(addr-0x8000, val)
	case addr >= 0x6000:
		m.PRGRAM.Write8(addr-0x6000, val)
	}
}

func (m *nrom) ReadCHR(addr uint16) uint8       { return m.CHR.Read8(addr) }
func (m *nrom) WriteCHR(addr uint16, val uint8) { m.CHR.Write8(addr, val) }

func (m *nrom) NametableMap() [4]uint16   { return m.ntmap }
func (m *nrom) TVSystem() hwdefs.TVSystem { return m.tv }

func (m *nrom) State() snapshot.Cartridge {
	var s snapshot.Cartridge
	s.PRGRAM = append([]byte(nil), m.PRGRAM.Data...)
	if m.chrRAM {
		s.CHRRAM = append([]byte(nil), m.CHR.Data...)
	}
	return s
}

func (m *nrom) SetState(s snapshot.Cartridge) {
	copy(m.PRGRAM.Data, s.PRGRAM)
	if m.chrRAM {
		copy(m.CHR.Data, s.CHRRAM)
	}
}
