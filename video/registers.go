package video

import "github.com/ohirose/dmgcore/bit"

// LCDC (LCD Control) register bit positions.
type lcdcBit uint8

const (
	lcdcBGDisplay          lcdcBit = 0
	lcdcSpriteEnable       lcdcBit = 1
	lcdcSpriteSize         lcdcBit = 2
	lcdcBGTileMapSelect    lcdcBit = 3
	lcdcBGWindowDataSelect lcdcBit = 4
	lcdcWindowEnable       lcdcBit = 5
	lcdcWindowTileMapSelect lcdcBit = 6
	lcdcDisplayEnable      lcdcBit = 7
)

// lcdc decodes the LCDC register on demand from its raw byte rather
// than scattering bitfield decode across call sites (Design
// Notes: byte-packed registers — this core keeps the raw byte in the MMU
// memory image and exposes bit accessors here).
type lcdc byte

func (l lcdc) bit(b lcdcBit) bool { return bit.IsSet(uint8(b), byte(l)) }

func (l lcdc) displayEnabled() bool   { return l.bit(lcdcDisplayEnable) }
func (l lcdc) windowTileMapHigh() bool { return l.bit(lcdcWindowTileMapSelect) }
func (l lcdc) windowEnabled() bool    { return l.bit(lcdcWindowEnable) }
func (l lcdc) bgWindowDataUnsigned() bool { return l.bit(lcdcBGWindowDataSelect) }
func (l lcdc) bgTileMapHigh() bool    { return l.bit(lcdcBGTileMapSelect) }
func (l lcdc) spriteSizeTall() bool   { return l.bit(lcdcSpriteSize) }
func (l lcdc) spritesEnabled() bool   { return l.bit(lcdcSpriteEnable) }
func (l lcdc) bgEnabled() bool        { return l.bit(lcdcBGDisplay) }

// statBit names the STAT register's interrupt-source and mode bits. Only
// the mode bits (0-1) are driven by this core: STAT interrupt sources
// other than mode changes are a spec Non-goal.
type statBit uint8

const (
	statModeLow  statBit = 0
	statModeHigh statBit = 1
	statLYCEqual statBit = 2
)

// tileMapBase returns the tile-map base address selected by a single
// LCDC bit (bit3 for background, bit6 for window).
func tileMapBase(high bool) uint16 {
	if high {
		return 0x9C00
	}
	return 0x9800
}
