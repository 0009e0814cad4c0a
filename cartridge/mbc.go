// Package cartridge implements the cartridge header parser and the
// Memory Bank Controller (MBC) family: ROM-Only, MBC1 and MBC3. An MBC
// translates guest addresses into ROM/RAM offsets and honors the
// register-write protocol cartridges use to switch banks.
package cartridge

import "log/slog"

// MBC is the interface every cartridge variant implements. Both
// operations take a full 16-bit guest address; behavior depends only on
// that address plus internal state. Neither operation ever allocates.
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	// RAM returns the cartridge's external RAM for save/restore, or nil
	// if the variant carries none.
	RAM() []byte
	// LoadRAM restores previously persisted RAM contents. It copies at
	// most len(RAM()) bytes and is a no-op if the variant carries none.
	LoadRAM(data []byte)
}

// Cartridge is the owning handle the MMU holds a non-owning reference to.
// It bundles the decoded header with the concrete MBC instance selected
// from it.
type Cartridge struct {
	Info Info
	mbc  MBC
}

// New constructs a Cartridge from raw ROM bytes. On a malformed header
// (data shorter than 0x150 bytes) or a recognized-but-unsupported MBC
// variant (MBC2/MBC4/MBC5), it logs a warning and falls back to treating
// the ROM as NoMBC — the returned *Cartridge is always usable, and the
// returned error (if any) is purely diagnostic; construction never fails
// outright short of the allocator itself failing.
func New(data []byte) (*Cartridge, error) {
	info, err := ParseHeader(data)
	if err != nil {
		slog.Warn("malformed cartridge header, falling back to ROM-only", "error", err)
		return &Cartridge{Info: info, mbc: NewNoMBC(data, 0)}, err
	}

	switch info.Type {
	case ROMOnly:
		return &Cartridge{Info: info, mbc: NewNoMBC(data, info.RAMSize)}, nil
	case MBC1:
		return &Cartridge{Info: info, mbc: NewMBC1(data, info.RAMSize)}, nil
	case MBC3:
		return &Cartridge{Info: info, mbc: NewMBC3(data, info.RAMSize)}, nil
	case MBC2, MBC4, MBC5:
		unsupported := NewUnsupported(info.Type.String())
		slog.Warn("unsupported MBC variant, falling back to ROM-only stub", "type", info.Type.String())
		return &Cartridge{Info: info, mbc: NewNoMBC(data, info.RAMSize)}, unsupported
	default:
		slog.Warn("unknown cartridge type byte, falling back to ROM-only")
		return &Cartridge{Info: info, mbc: NewNoMBC(data, info.RAMSize)}, nil
	}
}

func (c *Cartridge) Read(addr uint16) uint8         { return c.mbc.Read(addr) }
func (c *Cartridge) Write(addr uint16, value uint8) { c.mbc.Write(addr, value) }
func (c *Cartridge) RAM() []byte                    { return c.mbc.RAM() }
func (c *Cartridge) LoadRAM(data []byte)            { c.mbc.LoadRAM(data) }

// NoMBC represents cartridges with no memory banking capabilities: the
// whole ROM is mapped directly at 0x0000-0x7FFF, and RAM (if any, for the
// 0x08/0x09 "ROM+RAM" header types) is a single fixed 8KB window.
type NoMBC struct {
	rom []uint8
	ram []uint8
}

func NewNoMBC(romData []uint8, ramSize int) *NoMBC {
	return &NoMBC{
		rom: romData,
		ram: make([]uint8, ramSize),
	}
}

func (m *NoMBC) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		if int(addr) >= len(m.rom) {
			return 0xFF
		}
		return m.rom[addr]
	case addr >= 0xA000 && addr < 0xC000:
		offset := addr - 0xA000
		if int(offset) >= len(m.ram) {
			return 0xFF
		}
		return m.ram[offset]
	default:
		return 0xFF
	}
}

func (m *NoMBC) Write(addr uint16, value uint8) {
	if addr < 0x8000 {
		return // ROM area ignored
	}
	if addr >= 0xA000 && addr < 0xC000 {
		offset := addr - 0xA000
		if int(offset) < len(m.ram) {
			m.ram[offset] = value
		}
	}
}

func (m *NoMBC) RAM() []byte { return m.ram }

func (m *NoMBC) LoadRAM(data []byte) { copy(m.ram, data) }

// bankingMode selects what the MBC1 0x4000-0x5FFF register write affects.
type bankingMode uint8

const (
	romBankingMode bankingMode = iota
	ramBankingMode
)

// MBC1Controller implements the MBC1 chip, the first and most common MBC:
// up to 2MB ROM (125 usable 16KB banks) and up to 32KB RAM (4 8KB banks),
// with a quirky dual-use bank-select register pair gated by a banking-mode
// flip-flop.
type MBC1Controller struct {
	rom         []uint8
	ram         []uint8
	romBank     uint8 // 7 bits: lower 5 from 0x2000-0x3FFF, upper 2 from 0x4000-0x5FFF
	ramBank     uint8 // 0-3
	ramEnabled  bool
	bankingMode bankingMode
}

func NewMBC1(romData []uint8, ramSize int) *MBC1Controller {
	return &MBC1Controller{
		rom:     romData,
		ram:     make([]uint8, ramSize),
		romBank: 1,
	}
}

func (m *MBC1Controller) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) >= len(m.rom) {
			return 0xFF
		}
		return m.rom[addr]
	case addr < 0x8000:
		offset := int(m.romBank)*0x4000 + int(addr-0x4000)
		if len(m.rom) == 0 {
			return 0xFF
		}
		offset %= len(m.rom)
		return m.rom[offset]
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := int(m.ramBank)*0x2000 + int(addr-0xA000)
		offset %= len(m.ram)
		return m.ram[offset]
	default:
		return 0xFF
	}
}

func (m *MBC1Controller) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = (m.romBank & 0x60) | bank
	case addr < 0x6000:
		if m.bankingMode == romBankingMode {
			m.romBank = (m.romBank & 0x1F) | ((value & 0x03) << 5)
		} else {
			m.ramBank = value & 0x03
		}
	case addr < 0x8000:
		if value&0x01 != 0 {
			m.bankingMode = ramBankingMode
		} else {
			m.bankingMode = romBankingMode
		}
	case addr >= 0xA000 && addr < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := int(m.ramBank)*0x2000 + int(addr-0xA000)
		offset %= len(m.ram)
		m.ram[offset] = value
	}
}

func (m *MBC1Controller) RAM() []byte { return m.ram }

func (m *MBC1Controller) LoadRAM(data []byte) { copy(m.ram, data) }

// MBC3Controller implements the MBC3 chip, which adds a real-time-clock
// register window on top of MBC1-like banking, with a simpler
// (non-dual-purpose) bank-select register pair.
// RTC registers always read 0 and latch writes are accepted as a no-op:
// real clock advancement is deferred (spec Open Question (c)).
type MBC3Controller struct {
	rom        []uint8
	ram        []uint8
	romBank    uint8 // 7 bits, 0 rewrites to 1
	ramBank    uint8 // 0-3
	ramEnabled bool
	usingRTC   bool
}

func NewMBC3(romData []uint8, ramSize int) *MBC3Controller {
	return &MBC3Controller{
		rom:     romData,
		ram:     make([]uint8, ramSize),
		romBank: 1,
	}
}

func (m *MBC3Controller) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		if int(addr) >= len(m.rom) {
			return 0xFF
		}
		return m.rom[addr]
	case addr < 0x8000:
		if len(m.rom) == 0 {
			return 0xFF
		}
		offset := (int(m.romBank) * 0x4000) + int(addr-0x4000)
		offset %= len(m.rom)
		return m.rom[offset]
	case addr >= 0xA000 && addr < 0xC000:
		if m.usingRTC {
			return 0
		}
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := int(m.ramBank)*0x2000 + int(addr-0xA000)
		offset %= len(m.ram)
		return m.ram[offset]
	default:
		return 0xFF
	}
}

func (m *MBC3Controller) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr < 0x6000:
		switch {
		case value <= 0x03:
			m.ramBank = value
			m.usingRTC = false
		case value >= 0x08 && value <= 0x0C:
			m.usingRTC = true
		}
	case addr < 0x8000:
		// Latch-clock: accepted as a no-op in this core (Open Question (c)).
	case addr >= 0xA000 && addr < 0xC000:
		if m.usingRTC {
			return
		}
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := int(m.ramBank)*0x2000 + int(addr-0xA000)
		offset %= len(m.ram)
		m.ram[offset] = value
	}
}

func (m *MBC3Controller) RAM() []byte { return m.ram }

func (m *MBC3Controller) LoadRAM(data []byte) { copy(m.ram, data) }
