// Package cpu implements the SM83 instruction decoder and executor: the
// fetch/decode/execute loop an emulator core needs to turn cartridge
// code into cycle counts and bus traffic.
package cpu

// Bus is the minimal MMU surface the CPU needs to fetch instructions and
// operands and read/write memory operands.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU holds SM83 register state and executes one instruction at a time
// against a Bus. It does not service interrupts: dispatching IME/ISR
// jumps is out of scope here, the one guest-visible interrupt effect
// this core produces is the PPU's own IF bit set (see memory.MMU.RequestInterrupt).
type CPU struct {
	mem Bus

	a, f       uint8
	b, c       uint8
	d, e       uint8
	h, l       uint8
	sp, pc     uint16

	halted bool

	currentOpcode uint8
}

// New returns a CPU bound to mem, with registers at their DMG post-boot
// values (as if the boot ROM had already run) and PC at the cartridge
// entry point, 0x0100.
func New(mem Bus) *CPU {
	c := &CPU{mem: mem}
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	return c
}

// GetPC reports the program counter.
func (c *CPU) GetPC() uint16 { return c.pc }

// Halted reports whether the CPU is stopped on a HALT instruction. Since
// this core does not dispatch interrupts, a halted CPU never resumes on
// its own: Step keeps returning 4 cycles without advancing PC.
func (c *CPU) Halted() bool { return c.halted }

// Step executes exactly one instruction, returning the number of cycles
// it took.
func (c *CPU) Step() int {
	if c.halted {
		return 4
	}

	c.currentOpcode = c.fetch8()

	if c.currentOpcode == 0xCB {
		return c.execCB(c.fetch8())
	}
	return c.exec(c.currentOpcode)
}

func (c *CPU) fetch8() uint8 {
	v := c.mem.Read(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	low := c.fetch8()
	high := c.fetch8()
	return pair(high, low)
}

func (c *CPU) push16(v uint16) {
	c.sp--
	c.mem.Write(c.sp, uint8(v>>8))
	c.sp--
	c.mem.Write(c.sp, uint8(v))
}

func (c *CPU) pop16() uint16 {
	low := c.mem.Read(c.sp)
	c.sp++
	high := c.mem.Read(c.sp)
	c.sp++
	return pair(high, low)
}
