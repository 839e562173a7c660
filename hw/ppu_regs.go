package hw

// PPUCTRL ($2000) bits.
const (
	ctrlNametable  = 0b11   // base nametable (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
	ctrlIncr       = 1 << 2 // VRAM address increment per PPUDATA access (0: +1; 1: +32)
	ctrlSpriteAddr = 1 << 3 // sprite pattern table for 8x8 sprites (0: $0000; 1: $1000)
	ctrlBgAddr     = 1 << 4 // background pattern table (0: $0000; 1: $1000)
	ctrlSpriteSize = 1 << 5 // sprite size (0: 8x8; 1: 8x16)
	ctrlNMI        = 1 << 7 // generate an NMI at the start of vblank
)

// PPUMASK ($2001) bits.
const (
	maskGray         = 1 << 0 // produce a greyscale display
	maskBgLeft       = 1 << 1 // show background in leftmost 8 pixels of screen
	maskSpritesLeft  = 1 << 2 // show sprites in leftmost 8 pixels of screen
	maskBg           = 1 << 3 // show background
	maskSprites      = 1 << 4 // show sprites
	maskRenderingAny = maskBg | maskSprites
)

// PPUSTATUS ($2002) bits.
const (
	// Returns stale PPU bus contents.
	statusOpenBus = 0b1_1111

	// Sprite overflow. Set during sprite evaluation when more than eight
	// sprites are in range, cleared at dot 1 of the pre-render line.
	statusOverflow = 1 << 5

	// Sprite 0 Hit. Set when a nonzero pixel of sprite 0 overlaps a nonzero
	// background pixel; cleared at dot 1 of the pre-render line. Used for
	// raster timing.
	statusSprite0Hit = 1 << 6

	// Vertical blank has started (0: not in vblank; 1: in vblank).
	// Set at dot 1 of line 241 (the line *after* the post-render
	// line); cleared after reading $2002 and at dot 1 of the
	// pre-render line.
	statusVBlank = 1 << 7
)

// OAM attribute bits (byte 2 of a sprite entry).
const (
	attrPalette  = 0b11
	attrBehindBg = 1 << 5
	attrFlipH    = 1 << 6
	attrFlipV    = 1 << 7
)

// loopy is the layout of the internal v and t VRAM address registers.
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
type loopy uint16

const (
	loopyCoarseX    loopy = 0x001F
	loopyCoarseY    loopy = 0x03E0
	loopyNametable  loopy = 0x0C00
	loopyFineY      loopy = 0x7000
	loopyHorizontal       = loopyCoarseX | 0x0400
	loopyVertical         = loopyCoarseY | loopyFineY | 0x0800
)

func (l loopy) coarsex() uint8   { return uint8(l & loopyCoarseX) }
func (l loopy) coarsey() uint8   { return uint8(l & loopyCoarseY >> 5) }
func (l loopy) nametable() uint8 { return uint8(l & loopyNametable >> 10) }
func (l loopy) finey() uint8     { return uint8(l & loopyFineY >> 12) }
func (l loopy) low() uint8       { return uint8(l) }
func (l loopy) high() uint8      { return uint8(l>>8) & 0x3F }

func (l *loopy) setCoarsex(v uint8)   { *l = *l&^loopyCoarseX | loopy(v)&0x1F }
func (l *loopy) setCoarsey(v uint8)   { *l = *l&^loopyCoarseY | loopy(v)&0x1F<<5 }
func (l *loopy) setNametable(v uint8) { *l = *l&^loopyNametable | loopy(v)&0b11<<10 }
func (l *loopy) setFiney(v uint8)     { *l = *l&^loopyFineY | loopy(v)&0b111<<12 }
func (l *loopy) setLow(v uint8)       { *l = *l&0xFF00 | loopy(v) }

// setHigh sets the 6 high bits of the address and clears bit 14.
func (l *loopy) setHigh(v uint8) { *l = *l&0x00FF | loopy(v)&0x3F<<8 }

// copyBits copies the bits of src selected by mask.
func (l *loopy) copyBits(src, mask loopy) { *l = *l&^mask | src&mask }

// incrX increments coarse X, switching the horizontal nametable on wrap.
func (l *loopy) incrX() {
	if l.coarsex() == 31 {
		*l &^= loopyCoarseX
		*l ^= 0x0400
		return
	}
	*l++
}

// incrY increments fine Y, overflowing into coarse Y. Coarse Y switches the
// vertical nametable when wrapping at 29, a row 31 wraps without switching.
func (l *loopy) incrY() {
	if l.finey() != 7 {
		*l += 0x1000
		return
	}

	*l &^= loopyFineY
	switch y := l.coarsey(); y {
	case 29:
		l.setCoarsey(0)
		*l ^= 0x0800
	case 31:
		l.setCoarsey(0)
	default:
		l.setCoarsey(y + 1)
	}
}
