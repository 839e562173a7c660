package hw

import "famicore/hw/hwdefs"

// renderPixel renders the pixel at the current dot of a visible line.
func (p *PPU) renderPixel() {
	x := p.Dot - 1
	finex := (int(p.x) + x) % 8

	var bg uint8
	if p.mask&maskBg != 0 {
		bg = p.bgPixel(x, finex)
		if finex == 7 {
			p.v.incrX()
		}
	}

	var (
		sprite uint8
		behind bool
	)
	if p.mask&maskSprites != 0 && (p.mask&maskSpritesLeft != 0 || x >= 8) {
		sprite, behind = p.spritePixel(x, bg)
	}

	idx := bg
	if sprite != 0 && (bg == 0 || !behind) {
		idx = sprite
	}

	color := p.palette[idx]
	if p.mask&maskGray != 0 {
		color &= 0x30
	}
	p.frame[p.Scanline*hwdefs.ScreenWidth+x] = hwPalette[color&0x3F]
}

// bgPixel returns the palette index of the background pixel at x, 0 being
// transparent.
func (p *PPU) bgPixel(x, finex int) uint8 {
	if p.mask&maskBgLeft == 0 && x < 8 {
		return 0
	}

	v := uint16(p.v)
	tileAddr := 0x2000 | v&0x0FFF
	attrAddr := 0x23C0 | v&0x0C00 | (v>>4)&0x38 | (v>>2)&0x07

	patternAddr := uint16(p.readVRAM(tileAddr))*16 + uint16(p.v.finey())
	if p.ctrl&ctrlBgAddr != 0 {
		patternAddr |= 0x1000
	}

	shift := 7 ^ finex
	pix := p.readVRAM(patternAddr)>>shift&1 | (p.readVRAM(patternAddr+8)>>shift&1)<<1
	if pix == 0 {
		return 0
	}

	// Each attribute byte covers 4x4 tiles, in 2x2 tiles quadrants.
	attr := p.readVRAM(attrAddr)
	quadrant := (v>>4)&4 | v&2
	return pix | (attr>>quadrant&attrPalette)<<2
}

// spritePixel returns the palette index of the sprite pixel at x (0 if
// none) and whether that sprite is behind the background. It also detects
// sprite 0 hits.
func (p *PPU) spritePixel(x int, bg uint8) (uint8, bool) {
	y := p.Scanline
	height := p.spriteHeight()

	for _, i := range p.sprites[:p.nsprites] {
		spriteX := int(p.oam[i+3])
		if x-spriteX < 0 || x-spriteX >= 8 {
			continue
		}

		tile := uint16(p.oam[i+1])
		top := int(p.oam[i]) + 1
		attr := p.oam[i+2]

		xoff := (x - spriteX) % 8
		yoff := (y - top) % height
		if attr&attrFlipH == 0 {
			xoff ^= 7
		}
		if attr&attrFlipV != 0 {
			yoff ^= height - 1
		}

		var addr uint16
		if p.ctrl&ctrlSpriteSize != 0 {
			// 8x16 sprites take their pattern table from bit 0 of the tile
			// index, the bottom half is the next tile.
			yoff = yoff&7 | (yoff&8)<<1
			addr = (tile>>1)*32 + uint16(yoff)
			addr |= (tile & 1) << 12
		} else {
			addr = tile*16 + uint16(yoff)
			if p.ctrl&ctrlSpriteAddr != 0 {
				addr |= 0x1000
			}
		}

		pix := p.readVRAM(addr)>>xoff&1 | (p.readVRAM(addr+8)>>xoff&1)<<1
		if pix == 0 {
			continue
		}

		if i == 0 && bg != 0 && p.mask&maskBg != 0 && x < 255 {
			p.status |= statusSprite0Hit
		}
		return 0x10 | (attr&attrPalette)<<2 | pix, attr&attrBehindBg != 0
	}
	return 0, false
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&ctrlSpriteSize != 0 {
		return 16
	}
	return 8
}

// evalSprites fills the sprite cache with the first 8 sprites in range of
// the line following line, starting from OAMADDR/4. A ninth sprite in range
// sets the sprite overflow flag.
func (p *PPU) evalSprites(line int) {
	p.nsprites = 0
	p.sprites = [8]uint8{}

	height := p.spriteHeight()
	for i := int(p.oamAddr) / 4; i < 64; i++ {
		diff := line - int(p.oam[i*4])
		if diff < 0 || diff >= height {
			continue
		}
		if p.nsprites == len(p.sprites) {
			p.status |= statusOverflow
			break
		}
		p.sprites[p.nsprites] = uint8(i * 4)
		p.nsprites++
	}
}
