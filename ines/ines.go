// Package ines implements a reader for roms in the iNES file format, used
// for the distribution of NES binary programs.
package ines

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/jx"

	"famicore/hw/hwdefs"
)

const Magic = "NES\x1a"

const (
	headerSize  = 16
	trainerSize = 512
	prgBankSize = 0x4000
	chrBankSize = 0x2000
	ramBankSize = 0x2000
)

var (
	ErrMagic     = errors.New("invalid magic number")
	ErrTruncated = errors.New("truncated rom")
)

type Rom struct {
	header
	Name    string // File name the rom has been read from, if any.
	Trainer []byte // Trainer, 512 bytes if present, or empty.
	PRG     []byte // PRG is PRG ROM data (length is multiples of 16k)
	CHR     []byte // CHR is CHR ROM data (length is multiples of 8k)

	forcedTV *hwdefs.TVSystem
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := &Rom{Name: filepath.Base(path)}
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", rom.Name, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	// header
	var off int
	if err := rom.decode(buf); err != nil {
		return 0, fmt.Errorf("failed to decode header: %w", err)
	}
	off += headerSize

	// trainer
	if rom.HasTrainer() {
		if len(buf) < off+trainerSize {
			return 0, fmt.Errorf("incomplete TRAINER section: %w", ErrTruncated)
		}
		rom.Trainer = buf[off : off+trainerSize]
		off += trainerSize
	}

	// PRG rom data
	if len(buf) < off+rom.prgsz {
		return 0, fmt.Errorf("incomplete PRG section: %w", ErrTruncated)
	}
	rom.PRG = buf[off : off+rom.prgsz]
	off += rom.prgsz

	// CHR rom data
	if len(buf) < off+rom.chrsz {
		return 0, fmt.Errorf("incomplete CHR section: %w", ErrTruncated)
	}
	rom.CHR = buf[off : off+rom.chrsz]
	off += rom.chrsz

	return int64(len(buf)), nil
}

func (hdr *header) decode(p []byte) error {
	if len(p) < headerSize {
		return fmt.Errorf("need %d bytes, got %d: %w", headerSize, len(p), ErrTruncated)
	}
	if string(p[:4]) != Magic {
		return ErrMagic
	}
	copy(hdr.raw[:], p[:headerSize])

	hdr.prgsz = int(hdr.raw[4]) * prgBankSize
	hdr.chrsz = int(hdr.raw[5]) * chrBankSize
	return nil
}

type header struct {
	raw   [headerSize]byte
	prgsz int
	chrsz int
}

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of battery-backed memory in the rom.
func (hdr *header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// IsNES20 reports whether the header is in the NES 2.0 format. Only the
// fields shared with iNES are decoded.
func (hdr *header) IsNES20() bool {
	return hdr.raw[7]&0x0C == 0x08
}

// Mapper returns the mapper number.
func (hdr *header) Mapper() uint8 {
	return hdr.raw[6]>>4 | hdr.raw[7]&0xF0
}

// Mirroring returns the nametable arrangement hardwired by the cartridge.
func (hdr *header) Mirroring() hwdefs.Mirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return hwdefs.FourScreen
	case hdr.raw[6]&0x01 != 0:
		return hwdefs.VertMirroring
	}
	return hwdefs.HorzMirroring
}

// PRGBanks returns the number of 16KB PRG ROM banks.
func (hdr *header) PRGBanks() int { return int(hdr.raw[4]) }

// CHRBanks returns the number of 8KB CHR ROM banks. 0 means the cartridge
// uses CHR RAM.
func (hdr *header) CHRBanks() int { return int(hdr.raw[5]) }

// PRGRAMSize returns the size of PRG RAM, in bytes. 0 in the header means
// 8KB, for compatibility.
func (hdr *header) PRGRAMSize() int {
	return max(1, int(hdr.raw[8])) * ramBankSize
}

// TVSystem returns the TV system the rom has been built for. Few dumps set
// the header flag so europe roms, marked '(E)' in their file names, are
// also considered PAL.
func (rom *Rom) TVSystem() hwdefs.TVSystem {
	if rom.forcedTV != nil {
		return *rom.forcedTV
	}
	if rom.raw[9]&0x01 != 0 || strings.Contains(rom.Name, "(E)") {
		return hwdefs.PAL
	}
	return hwdefs.NTSC
}

// ForceTVSystem overrides the TV system read from the rom.
func (rom *Rom) ForceTVSystem(tv hwdefs.TVSystem) {
	rom.forcedTV = &tv
}

// PrintInfos writes a human-readable summary of the rom header to w.
func (rom *Rom) PrintInfos(w io.Writer) {
	chr := fmt.Sprintf("%dKB ROM", len(rom.CHR)/1024)
	if rom.CHRBanks() == 0 {
		chr = "8KB RAM"
	}

	fmt.Fprintf(w, "%s\n", rom.Name)
	fmt.Fprintf(w, "  mapper:     %d\n", rom.Mapper())
	fmt.Fprintf(w, "  format:     %s\n", rom.format())
	fmt.Fprintf(w, "  tv system:  %s\n", rom.TVSystem())
	fmt.Fprintf(w, "  mirroring:  %s\n", rom.Mirroring())
	fmt.Fprintf(w, "  PRG:        %dKB ROM, %dKB RAM\n", len(rom.PRG)/1024, rom.PRGRAMSize()/1024)
	fmt.Fprintf(w, "  CHR:        %s\n", chr)
	fmt.Fprintf(w, "  battery:    %t\n", rom.HasPersistent())
	fmt.Fprintf(w, "  trainer:    %t\n", rom.HasTrainer())
}

func (rom *Rom) format() string {
	if rom.IsNES20() {
		return "NES 2.0"
	}
	return "iNES"
}

// EncodeJSON writes the rom header fields as a JSON object.
func (rom *Rom) EncodeJSON(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(rom.Name)
	e.FieldStart("format")
	e.Str(rom.format())
	e.FieldStart("mapper")
	e.UInt8(rom.Mapper())
	e.FieldStart("tv_system")
	e.Str(rom.TVSystem().String())
	e.FieldStart("mirroring")
	e.Str(rom.Mirroring().String())
	e.FieldStart("prg_rom")
	e.Int(len(rom.PRG))
	e.FieldStart("chr_rom")
	e.Int(len(rom.CHR))
	e.FieldStart("prg_ram")
	e.Int(rom.PRGRAMSize())
	e.FieldStart("battery")
	e.Bool(rom.HasPersistent())
	e.FieldStart("trainer")
	e.Bool(rom.HasTrainer())
	e.ObjEnd()
}
