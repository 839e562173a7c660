package hwdefs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIRQSourceString(t *testing.T) {
	tests := []struct {
		src  IRQSource
		want string
	}{
		{0, ""},
		{External, "ext"},
		{FrameCounter | DMC, "fcnt|dmc"},
		{External | FrameCounter | DMC, "ext|fcnt|dmc"},
	}
	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("IRQSource(%d).String() = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestNametableMap(t *testing.T) {
	tests := []struct {
		m    Mirroring
		want [4]uint16
	}{
		{HorzMirroring, [4]uint16{0, 0, 0x400, 0x400}},
		{VertMirroring, [4]uint16{0, 0x400, 0, 0x400}},
		{FourScreen, [4]uint16{0, 0x400, 0x800, 0xC00}},
	}
	for _, tt := range tests {
		t.Run(tt.m.String(), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.m.NametableMap()); diff != "" {
				t.Errorf("NametableMap() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
