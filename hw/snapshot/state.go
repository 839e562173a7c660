// Package snapshot holds plain copies of the hardware state. The hardware
// packages save into and restore from these structs, which hold no pointer
// to live hardware.
package snapshot

const Version = 1

type NES struct {
	Version int
	CPU     CPU
	PPU     PPU
	APU     APU
	Bus     Bus
	Cart    Cartridge
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Opcode  uint8
	Operand uint16
	Cycles  int
	DMA     int
	Total   uint64
	Odd     bool

	Branch       bool
	Pending      uint8
	NMIPending   bool
	ResetPending bool
	IRQSources   uint8
}

type PPU struct {
	V, T       uint16
	X          uint8
	WriteLatch bool

	CTRL    uint8
	MASK    uint8
	STATUS  uint8
	OAMAddr uint8
	Latch   uint8
	DataBuf uint8

	OAM       [0x100]uint8
	Sprites   [8]uint8
	NSprites  int
	Nametable [0x1000]uint8
	Palette   [0x20]uint8

	Dot      int
	Scanline int
	Frames   uint64
}

type Bus struct {
	RAM     [0x800]uint8
	OpenBus uint8
	Pads    [2]Joypad
}

type Joypad struct {
	Strobe bool
	Index  uint8
	Status uint16
}

type Cartridge struct {
	PRGRAM []uint8
	CHRRAM []uint8
}

type Divider struct {
	Period  int
	Counter int
	Step    int
	Limit   int
	From    int
	Loop    bool
}

type Envelope struct {
	Divider     Divider
	ConstVolume bool
}

type Pulse struct {
	Enabled      bool
	Timer        Divider
	Envelope     Envelope
	Length       uint8
	Duty         uint8
	Sweep        Divider
	SweepEnabled bool
	SweepNegate  bool
	SweepShift   uint8
	TargetPeriod int
	Mute         bool
}

type Triangle struct {
	Enabled       bool
	Sequencer     Divider
	Length        uint8
	LinearCounter uint8
	LinearReload  uint8
	ReloadFlag    bool
	Control       bool
}

type Noise struct {
	Enabled  bool
	Timer    Divider
	Envelope Envelope
	Length   uint8
	Shift    uint16
	Mode     bool
}

type DMC struct {
	Enabled      bool
	IRQEnabled   bool
	IRQFlag      bool
	Loop         bool
	Rate         int
	RateIndex    int
	SampleAddr   uint16
	SampleLength uint16
	CurAddr      uint16
	BytesLeft    uint16
	Buffer       uint8
	Empty        bool
	Bits         uint8
	BitsCount    uint8
	Silence      bool
	Level        uint8
}

type FrameSequencer struct {
	ResetPending bool
	Counter      int
	FiveStep     bool
	IRQInhibit   bool
	IRQFlag      bool
}

type APU struct {
	Pulse1   Pulse
	Pulse2   Pulse
	Triangle Triangle
	Noise    Noise
	DMC      DMC
	Frame    FrameSequencer
	Cycles   uint64
}
