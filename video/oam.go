package video

import "github.com/ohirose/dmgcore/bit"

// Sprite is one decoded OAM entry (4 bytes: Y, X, tile index, attributes).
type Sprite struct {
	Index int // OAM slot, 0-39; lower wins priority ties at the same X
	Y     int // already adjusted by the -16 hardware offset
	X     int // already adjusted by the -8 hardware offset
	Tile  byte
	Flags byte
}

const (
	spriteFlagPalette1  uint8 = 4
	spriteFlagFlipX     uint8 = 5
	spriteFlagFlipY     uint8 = 6
	spriteFlagBehindBG  uint8 = 7
)

func (s Sprite) usesOBP1() bool    { return bit.IsSet(spriteFlagPalette1, s.Flags) }
func (s Sprite) flipX() bool       { return bit.IsSet(spriteFlagFlipX, s.Flags) }
func (s Sprite) flipY() bool       { return bit.IsSet(spriteFlagFlipY, s.Flags) }
func (s Sprite) behindBG() bool    { return bit.IsSet(spriteFlagBehindBG, s.Flags) }

// ReadSprite decodes OAM entry n (0-39) from memory.
func ReadSprite(mem MemoryReader, n int) Sprite {
	base := 0xFE00 + uint16(n*4)
	return Sprite{
		Index: n,
		Y:     int(mem.Read(base)) - 16,
		X:     int(mem.Read(base+1)) - 8,
		Tile:  mem.Read(base + 2),
		Flags: mem.Read(base + 3),
	}
}

// VisibleOnLine reports whether the sprite (of the given height, 8 or 16)
// overlaps scanline `line`.
func (s Sprite) VisibleOnLine(line, height int) bool {
	return s.Y <= line && line < s.Y+height
}

// TileAddressForLine returns the VRAM address of the 2-byte tile row that
// should be drawn for this sprite on the given scanline. Sprites always
// use unsigned addressing from 0x8000 regardless of LCDC.bit4.
func (s Sprite) TileAddressForLine(line, height int) uint16 {
	rowInSprite := line - s.Y
	if s.flipY() {
		rowInSprite = height - 1 - rowInSprite
	}

	tileIndex := int(s.Tile)
	if height == 16 {
		tileIndex &^= 1 // 8x16 sprites ignore bit 0 of the tile index
	}

	return 0x8000 + uint16(tileIndex*16+rowInSprite*2)
}
