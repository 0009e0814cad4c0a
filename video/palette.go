package video

import "github.com/ohirose/dmgcore/bit"

// ColorIndex is the 2-bit color index a tile's bit planes decode to,
// before palette application (spec's Color0..Color3).
type ColorIndex uint8

const (
	Color0 ColorIndex = iota
	Color1
	Color2
	Color3
)

// Palette maps each of the four 2-bit color indices to a DMG shade, as
// packed into a BGP/OBP0/OBP1 register byte: bits [1:0] -> Color0,
// [3:2] -> Color1, [5:4] -> Color2, [7:6] -> Color3.
type Palette [4]Color

// DecodePalette unpacks a palette register byte into its four shades.
func DecodePalette(register byte) Palette {
	var p Palette
	for i := range p {
		field := bit.ExtractBits(register, uint8(i*2+1), uint8(i*2))
		p[i] = shadeFromField(field)
	}
	return p
}

func shadeFromField(field byte) Color {
	switch field {
	case 0:
		return White
	case 1:
		return LightGray
	case 2:
		return DarkGray
	case 3:
		return Black
	default:
		return White
	}
}

// Apply resolves a decoded color index to its DMG shade under this palette.
func (p Palette) Apply(idx ColorIndex) Color {
	return p[idx]
}
