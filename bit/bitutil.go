// Package bit provides the small set of bit-twiddling helpers used
// throughout the emulator core to decode memory-mapped registers and
// combine/split register pairs.
package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte is the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// IsSet checks whether the bit at the specified index is set.
func IsSet(index uint8, value uint8) bool {
	return ((value >> index) & 1) == 1
}

// Set returns value with the bit at the specified index set to 1.
func Set(index uint8, value uint8) uint8 {
	return value | (1 << index)
}

// Reset returns value with the bit at the specified index set to 0.
func Reset(index uint8, value uint8) uint8 {
	return value & ^(uint8(1) << index)
}

// GetBitValue returns 1 or 0 depending on whether the bit at index is set.
func GetBitValue(index uint8, value uint8) uint8 {
	if IsSet(index, value) {
		return 1
	}
	return 0
}

// Low returns the low (LSB) byte of a 16 bit value.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) byte of a 16 bit value.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// ExtractBits extracts bits from highBit to lowBit (inclusive).
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101.
func ExtractBits(value uint8, highBit, lowBit uint8) uint8 {
	width := highBit - lowBit + 1
	mask := uint8((1 << width) - 1)
	return (value >> lowBit) & mask
}

// WrappingAdd16 adds a signed offset to a 16 bit address, wrapping modulo
// 2^16 the way every guest-visible address computation in this core must.
func WrappingAdd16(addr uint16, offset int) uint16 {
	return uint16(int32(addr) + int32(offset))
}

// InRange reports whether addr falls within [low, high] inclusive.
func InRange(addr, low, high uint16) bool {
	return addr >= low && addr <= high
}
