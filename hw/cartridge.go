package hw

import (
	"famicore/hw/hwdefs"
	"famicore/hw/snapshot"
)

// Cartridge is the game cartridge, as seen by the CPU and the PPU.
type Cartridge interface {
	// ReadPRG reads from the CPU address space ($4020-$FFFF). ok is false
	// for unmapped addresses, which leave the open bus untouched.
	ReadPRG(addr uint16) (val uint8, ok bool)
	WritePRG(addr uint16, val uint8)

	// CHR memory, in the PPU address space ($0000-$1FFF).
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)

	// NametableMap returns the offsets, in nametable RAM, of the 4 logical
	// nametables.
	NametableMap() [4]uint16
	TVSystem() hwdefs.TVSystem

	// State returns a copy of the cartridge RAMs.
	State() snapshot.Cartridge
	SetState(snapshot.Cartridge)
}
