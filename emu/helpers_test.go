package emu

import (
	"os"
	"path/filepath"
	"testing"

	"famicore/emu/log"
	"famicore/hw/apu"
	"famicore/ines"
)

func init() {
	log.Disable()
}

// Zero page counters maintained by the test program.
const (
	zpLoops  = 0x00 // incremented by the main loop
	zpNMIs   = 0x01 // incremented by the NMI handler
	zpResets = 0x02 // incremented by the reset handler
)

// testProgram enables NMIs, rendering and the first pulse channel, then
// loops forever.
var testProgram = []byte{
	0xE6, zpResets, // INC $02
	0xA9, 0x80, // LDA #$80
	0x8D, 0x00, 0x20, // STA $2000
	0xA9, 0x1E, // LDA #$1E
	0x8D, 0x01, 0x20, // STA $2001
	0xA9, 0x01, // LDA #$01
	0x8D, 0x15, 0x40, // STA $4015
	0xA9, 0xBF, // LDA #$BF
	0x8D, 0x00, 0x40, // STA $4000
	0xA9, 0xFD, // LDA #$FD
	0x8D, 0x02, 0x40, // STA $4002
	0xA9, 0x00, // LDA #$00
	0x8D, 0x03, 0x40, // STA $4003
	0xE6, zpLoops, // loop: INC $00
	0x4C, 0x20, 0x80, // JMP loop
}

var nmiHandler = []byte{
	0xE6, zpNMIs, // INC $01
	0x40, // RTI
}

// buildTestRom returns an iNES image of a 16KB PRG / 8KB CHR NROM rom
// running testProgram.
func buildTestRom(tb testing.TB) []byte {
	tb.Helper()

	const (
		prgSize = 0x4000
		chrSize = 0x2000
	)
	rom := make([]byte, 16+prgSize+chrSize)
	copy(rom, "NES\x1a")
	rom[4] = 1 // PRG banks
	rom[5] = 1 // CHR banks
	rom[6] = 0x01

	prg := rom[16 : 16+prgSize]
	copy(prg, testProgram)
	copy(prg[0x30:], nmiHandler)

	// Vectors: NMI and IRQ at $8030, reset at $8000.
	copy(prg[0x3FFA:], []byte{0x30, 0x80, 0x00, 0x80, 0x30, 0x80})

	return rom
}

func writeTestRom(tb testing.TB, name string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, buildTestRom(tb), 0644); err != nil {
		tb.Fatal(err)
	}
	return path
}

func newTestNES(tb testing.TB) *NES {
	tb.Helper()

	rom, err := ines.Open(writeTestRom(tb, "test.nes"))
	if err != nil {
		tb.Fatal(err)
	}
	nes, err := PowerUp(rom, apu.Options{Volume: 1})
	if err != nil {
		tb.Fatal(err)
	}
	return nes
}
