// Package mappers implements the cartridge boards, mapping the rom banks
// into the CPU and PPU address spaces.
package mappers

import (
	"errors"
	"fmt"

	"famicore/emu/log"
	"famicore/hw"
	"famicore/ines"
)

var (
	ErrUnsupported = errors.New("unsupported mapper")
	ErrTrainer     = errors.New("roms with trainer are not supported")
)

// Load returns the cartridge built from rom.
func Load(rom *ines.Rom) (hw.Cartridge, error) {
	desc, ok := All[rom.Mapper()]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnsupported, rom.Mapper())
	}
	base, err := newbase(desc, rom)
	if err != nil {
		return nil, fmt.Errorf("mapper initialization failed: %w", err)
	}
	cart, err := base.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load mapper %s: %w", desc.Name, err)
	}

	log.ModMapper.InfoZ("cartridge loaded").
		String("mapper", desc.Name).
		Int("prg", len(rom.PRG)).
		Int("chr", len(rom.CHR)).
		Stringer("mirroring", rom.Mirroring()).
		Stringer("tv", rom.TVSystem()).
		End()
	return cart, nil
}

type MapperDesc struct {
	Name string
	Load func(*base) (hw.Cartridge, error)
}

var All = map[uint8]MapperDesc{
	0: NROM,
}
