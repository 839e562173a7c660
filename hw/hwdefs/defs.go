// Package hwdefs holds definitions shared by the hardware packages.
package hwdefs

import "strings"

// TVSystem is the television standard the console (and cartridge) has been
// built for. It determines the PPU frame length, the CPU/PPU clock ratio and
// the APU lookup tables.
type TVSystem uint8

const (
	NTSC TVSystem = iota
	PAL
)

func (tv TVSystem) String() string {
	if tv == PAL {
		return "PAL"
	}
	return "NTSC"
}

// FrameRate returns the number of frames per second.
func (tv TVSystem) FrameRate() int {
	if tv == PAL {
		return 50
	}
	return 60
}

// CyclesPerFrame returns the average number of CPU cycles per frame.
func (tv TVSystem) CyclesPerFrame() float64 {
	if tv == PAL {
		return 33247.5
	}
	return 29780.5
}

// Mirroring is the nametable mirroring arrangement wired by the cartridge.
// See https://www.nesdev.org/wiki/Mirroring#Nametable_Mirroring
type Mirroring uint8

const (
	HorzMirroring Mirroring = iota
	VertMirroring
	FourScreen
)

func (m Mirroring) String() string {
	switch m {
	case HorzMirroring:
		return "horizontal"
	case VertMirroring:
		return "vertical"
	case FourScreen:
		return "four-screen"
	}
	return "unknown"
}

// NametableMap returns the offsets into the 4KB nametable RAM of the 4
// logical nametables ($2000, $2400, $2800, $2C00).
func (m Mirroring) NametableMap() [4]uint16 {
	switch m {
	case VertMirroring:
		return [4]uint16{0, 0x400, 0, 0x400}
	case FourScreen:
		return [4]uint16{0, 0x400, 0x800, 0xC00}
	}
	return [4]uint16{0, 0, 0x400, 0x400}
}

// IRQSource identifies a device driving the CPU /IRQ line. The line is
// asserted as long as at least one source is set.
type IRQSource uint8

const (
	External IRQSource = 1 << iota
	FrameCounter
	DMC

	numSources = 3
)

var irqSrcNames = [numSources]string{
	"ext",
	"fcnt",
	"dmc",
}

func (irq IRQSource) String() string {
	var names []string
	for i := range numSources {
		if irq&(1<<i) != 0 {
			names = append(names, irqSrcNames[i])
		}
	}
	return strings.Join(names, "|")
}

const (
	SoftReset = true
	HardReset = false
)

const NumAudioChannels = 5 // Pulse1, Pulse2, Triangle, Noise, DMC

// Screen dimensions, in pixels.
const (
	ScreenWidth  = 256
	ScreenHeight = 240
)
