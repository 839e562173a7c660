package ines

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"famicore/hw/hwdefs"
)

// buildRom returns an iNES image with the given header flags and banks,
// PRG and CHR filled with recognizable patterns.
func buildRom(t *testing.T, flags6, flags7, flags9 byte, prgBanks, chrBanks int) []byte {
	t.Helper()

	hdr := []byte{'N', 'E', 'S', 0x1a, byte(prgBanks), byte(chrBanks), flags6, flags7, 0, flags9, 0, 0, 0, 0, 0, 0}
	buf := bytes.NewBuffer(hdr)
	if flags6&0x04 != 0 {
		buf.Write(make([]byte, trainerSize))
	}
	for i := range prgBanks * prgBankSize {
		buf.WriteByte(byte(i))
	}
	for i := range chrBanks * chrBankSize {
		buf.WriteByte(byte(i) ^ 0xFF)
	}
	return buf.Bytes()
}

func writeRom(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRomOpen(t *testing.T) {
	path := writeRom(t, "nrom.nes", buildRom(t, 0x01, 0, 0, 2, 1))

	rom, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if rom.Name != "nrom.nes" {
		t.Errorf("Name = %q, want nrom.nes", rom.Name)
	}
	if len(rom.PRG) != 2*prgBankSize || len(rom.CHR) != chrBankSize {
		t.Fatalf("PRG/CHR size = %d/%d, want %d/%d", len(rom.PRG), len(rom.CHR), 2*prgBankSize, chrBankSize)
	}
	if rom.PRG[0x4001] != 0x01 || rom.CHR[1] != 0xFE {
		t.Errorf("PRG/CHR data misplaced: PRG[4001]=%02X CHR[1]=%02X", rom.PRG[0x4001], rom.CHR[1])
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		flags6 byte
		flags7 byte
		flags9 byte

		mapper    uint8
		mirroring hwdefs.Mirroring
		tv        hwdefs.TVSystem
		trainer   bool
		battery   bool
		nes20     bool
	}{
		{
			name: "horizontal", file: "a.nes",
			mirroring: hwdefs.HorzMirroring, tv: hwdefs.NTSC,
		},
		{
			name: "vertical battery", file: "a.nes", flags6: 0x03,
			mirroring: hwdefs.VertMirroring, tv: hwdefs.NTSC, battery: true,
		},
		{
			name: "four screen", file: "a.nes", flags6: 0x09,
			mirroring: hwdefs.FourScreen, tv: hwdefs.NTSC,
		},
		{
			name: "mapper nibbles", file: "a.nes", flags6: 0x10, flags7: 0x40,
			mapper: 0x41, mirroring: hwdefs.HorzMirroring, tv: hwdefs.NTSC,
		},
		{
			name: "pal flag", file: "a.nes", flags9: 0x01,
			mirroring: hwdefs.HorzMirroring, tv: hwdefs.PAL,
		},
		{
			name: "pal name", file: "Game (E).nes",
			mirroring: hwdefs.HorzMirroring, tv: hwdefs.PAL,
		},
		{
			name: "trainer", file: "a.nes", flags6: 0x04,
			mirroring: hwdefs.HorzMirroring, tv: hwdefs.NTSC, trainer: true,
		},
		{
			name: "nes 2.0", file: "a.nes", flags7: 0x08,
			mirroring: hwdefs.HorzMirroring, tv: hwdefs.NTSC, nes20: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom, err := Open(writeRom(t, tt.file, buildRom(t, tt.flags6, tt.flags7, tt.flags9, 1, 0)))
			if err != nil {
				t.Fatal(err)
			}

			if got := rom.Mapper(); got != tt.mapper {
				t.Errorf("Mapper() = %d, want %d", got, tt.mapper)
			}
			if got := rom.Mirroring(); got != tt.mirroring {
				t.Errorf("Mirroring() = %s, want %s", got, tt.mirroring)
			}
			if got := rom.TVSystem(); got != tt.tv {
				t.Errorf("TVSystem() = %s, want %s", got, tt.tv)
			}
			if got := rom.HasTrainer(); got != tt.trainer {
				t.Errorf("HasTrainer() = %t, want %t", got, tt.trainer)
			}
			if got := rom.HasPersistent(); got != tt.battery {
				t.Errorf("HasPersistent() = %t, want %t", got, tt.battery)
			}
			if got := rom.IsNES20(); got != tt.nes20 {
				t.Errorf("IsNES20() = %t, want %t", got, tt.nes20)
			}
			if tt.trainer && len(rom.Trainer) != trainerSize {
				t.Errorf("len(Trainer) = %d, want %d", len(rom.Trainer), trainerSize)
			}
			if got := rom.PRGRAMSize(); got != 0x2000 {
				t.Errorf("PRGRAMSize() = %d, want 8192", got)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	full := buildRom(t, 0, 0, 0, 1, 1)
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"bad magic", append([]byte("NES\x00"), full[4:]...), ErrMagic},
		{"truncated prg", full[:headerSize+100], ErrTruncated},
		{"truncated chr", full[:len(full)-1], ErrTruncated},
		{"truncated trainer", buildRom(t, 0x04, 0, 0, 0, 0)[:headerSize+10], ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rom Rom
			_, err := rom.ReadFrom(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadFrom() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	var rom Rom
	rom.Name = "test.nes"
	if _, err := rom.ReadFrom(bytes.NewReader(buildRom(t, 0x01, 0, 0, 2, 0))); err != nil {
		t.Fatal(err)
	}

	var e jx.Encoder
	rom.EncodeJSON(&e)

	got := map[string]string{}
	d := jx.DecodeBytes(e.Bytes())
	err := d.Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		got[key] = raw.String()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"name":      `"test.nes"`,
		"format":    `"iNES"`,
		"mapper":    "0",
		"tv_system": `"NTSC"`,
		"mirroring": `"vertical"`,
		"prg_rom":   "32768",
		"chr_rom":   "0",
		"prg_ram":   "8192",
		"battery":   "false",
		"trainer":   "false",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EncodeJSON mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintInfos(t *testing.T) {
	var rom Rom
	rom.Name = "chr-ram.nes"
	if _, err := rom.ReadFrom(bytes.NewReader(buildRom(t, 0, 0, 0, 1, 0))); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rom.PrintInfos(&buf)
	if !bytes.Contains(buf.Bytes(), []byte("CHR:        8KB RAM")) {
		t.Errorf("PrintInfos output missing CHR RAM line:\n%s", buf.String())
	}
}

func TestForceTVSystem(t *testing.T) {
	var rom Rom
	rom.Name = "Game (E).nes"
	if _, err := rom.ReadFrom(bytes.NewReader(buildRom(t, 0, 0, 0, 1, 0))); err != nil {
		t.Fatal(err)
	}
	if rom.TVSystem() != hwdefs.PAL {
		t.Fatalf("TVSystem() = %s, want PAL", rom.TVSystem())
	}
	rom.ForceTVSystem(hwdefs.NTSC)
	if rom.TVSystem() != hwdefs.NTSC {
		t.Errorf("forced TVSystem() = %s, want NTSC", rom.TVSystem())
	}
}
