// Package memory implements the MMU: the address decoder that routes
// every guest memory transaction to exactly one backing store — the
// cartridge, VRAM, WRAM, OAM, PPU registers, HRAM or the IE byte.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/ohirose/dmgcore/addr"
	"github.com/ohirose/dmgcore/cartridge"
)

// region identifies which backing store a guest address decodes to. It
// is precomputed per high-byte (addr>>8) so Read/Write never re-derive it
// from a chain of range comparisons.
type region uint8

const (
	regionROM region = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionHRAM
)

// MMU is a 64KiB byte array representing VRAM, WRAM, OAM, the I/O
// register shadow and HRAM, plus a non-owning reference to the active
// cartridge for the ROM and external-RAM windows. ROM and external
// cartridge RAM are not stored here — they delegate to the cartridge.
type MMU struct {
	cart      *cartridge.Cartridge
	memory    [0x10000]byte
	regionMap [256]region
}

// New creates an MMU bound to cart. Passing a nil cart is valid: ROM and
// external-RAM reads then return 0xFF, and writes are dropped, logged at
// warn level (there is no guest-visible fault path, per spec §7).
func New(cart *cartridge.Cartridge) *MMU {
	m := &MMU{cart: cart}
	initRegionMap(&m.regionMap)
	return m
}

func initRegionMap(regionMap *[256]region) {
	for i := 0x00; i <= 0x7F; i++ {
		regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		regionMap[i] = regionEcho
	}
	regionMap[0xFE] = regionOAM // split further by sub-range in Read/Write
	regionMap[0xFF] = regionHRAM // split further by sub-range in Read/Write
}

// Read reads a single byte from the guest's 64KiB address space.
func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.cart == nil {
			slog.Warn("read from ROM/external RAM with no cartridge loaded", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.cart.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.memory[address]
		}
		return 0xFF // 0xFEA0-0xFEFF: unused hole
	case regionHRAM:
		return m.readIOOrHRAM(address)
	default:
		panic(fmt.Sprintf("attempted read at unmapped address: 0x%04X", address))
	}
}

// Write writes a single byte to the guest's 64KiB address space.
func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.cart == nil {
			slog.Warn("write to ROM with no cartridge loaded", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.cart.Write(address, value)
	case regionExtRAM:
		if m.cart == nil {
			slog.Warn("write to external RAM with no cartridge loaded", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.cart.Write(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.memory[address] = value
		}
		// 0xFEA0-0xFEFF: unused hole, write dropped
	case regionHRAM:
		m.writeIOOrHRAM(address, value)
	default:
		panic(fmt.Sprintf("attempted write at unmapped address: 0x%04X", address))
	}
}

// readIOOrHRAM handles the 0xFF00-0xFFFF byte: I/O registers (0xFF00-0xFF7F),
// HRAM (0xFF80-0xFFFE) and the IE register (0xFFFF).
func (m *MMU) readIOOrHRAM(address uint16) byte {
	if address == addr.IE {
		return m.memory[address]
	}
	// 0xFF00-0xFF7F and 0xFF80-0xFFFE both fall straight through to the
	// memory image; PPU registers are decoded on demand by the video
	// package via bit accessors rather than intercepted here (see
	// Design Notes: byte-packed registers).
	return m.memory[address]
}

// writeIOOrHRAM mirrors readIOOrHRAM, with the one behavioral special
// case the I/O demux table calls out: a guest write to LY resets it to 0
// rather than storing the written value.
func (m *MMU) writeIOOrHRAM(address uint16, value byte) {
	if address == addr.LY {
		m.memory[address] = 0
		return
	}
	m.memory[address] = value
}

// WriteLY stores the scanline counter directly, bypassing the guest
// write-resets-to-zero special case in writeIOOrHRAM. Only the PPU's own
// scanline advance should call this; guest writes to LY always go
// through Write, which always resets it to 0 regardless of value.
func (m *MMU) WriteLY(value byte) {
	m.memory[addr.LY] = value
}

// ReadBit reports whether the given bit of the byte at address is set.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return (m.Read(address)>>index)&1 == 1
}

// SetBit sets or clears the given bit of the byte at address.
func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value |= 1 << index
	} else {
		value &^= 1 << index
	}
	m.Write(address, value)
}

// RequestInterrupt sets the given interrupt's bit in the IF register.
// This core only ever exercises VBlankInterrupt (see spec Non-goals):
// full interrupt dispatch is an external collaborator's job, but setting
// the IF bit is in scope as the PPU's one guest-visible side effect.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.Write(addr.IF, m.Read(addr.IF)|byte(interrupt))
}
