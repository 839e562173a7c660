package mappers

import (
	"fmt"

	"famicore/emu/log"
	"famicore/hw"
	"famicore/hw/hwdefs"
	"famicore/ines"
)

// base holds what all boards share: the rom and the cartridge-wide
// settings decoded from its header.
type base struct {
	desc MapperDesc
	rom  *ines.Rom

	tv    hwdefs.TVSystem
	ntmap [4]uint16
}

func ispow2(n int) bool {
	return n&(n-1) == 0
}

func newbase(desc MapperDesc, rom *ines.Rom) (*base, error) {
	if rom.HasTrainer() {
		return nil, ErrTrainer
	}
	if len(rom.PRG) == 0 || !ispow2(len(rom.PRG)) {
		return nil, fmt.Errorf("only support PRGROM with power of 2 size, got %d", len(rom.PRG))
	}
	if !ispow2(len(rom.CHR)) {
		return nil, fmt.Errorf("only support CHRROM with power of 2 size, got %d", len(rom.CHR))
	}
	if rom.IsNES20() {
		log.ModMapper.WarnZ("NES 2.0 header, extended fields are ignored").End()
	}

	return &base{
		desc:  desc,
		rom:   rom,
		tv:    rom.TVSystem(),
		ntmap: rom.Mirroring().NametableMap(),
	}, nil
}

func (b *base) load() (hw.Cartridge, error) {
	return b.desc.Load(b)
}
