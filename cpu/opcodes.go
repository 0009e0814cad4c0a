package cpu

// exec decodes and executes one unprefixed opcode, returning its cycle
// cost. Rather than one named function per opcode, the SM83 encoding is
// decomposed the standard way - x = opcode[7:6], y = opcode[5:3],
// z = opcode[2:0], p = y[2:1], q = y[0] - which covers almost the whole
// space with a handful of regular tables (8-bit registers, register
// pairs, ALU ops, conditions) and leaves only the genuinely irregular
// rows (x=0 and x=3) spelled out by hand.
func (c *CPU) exec(opcode uint8) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.execBlock0(y, z, q, p)
	case 1:
		return c.execLoad(y, z)
	case 2:
		return c.execALU(y, z)
	default:
		return c.execBlock3(y, z, q, p)
	}
}

func (c *CPU) condition(y uint8) bool {
	switch y & 3 {
	case 0:
		return !c.isSet(FlagZero)
	case 1:
		return c.isSet(FlagZero)
	case 2:
		return !c.isSet(FlagCarry)
	default:
		return c.isSet(FlagCarry)
	}
}

// readOperand8 reads the value an 8-bit register-field index refers to,
// fetching through (HL) for index 6.
func (c *CPU) readOperand8(index uint8) uint8 {
	if index == 6 {
		return c.mem.Read(c.getHL())
	}
	return *c.reg8(index)
}

func (c *CPU) writeOperand8(index uint8, value uint8) {
	if index == 6 {
		c.mem.Write(c.getHL(), value)
		return
	}
	*c.reg8(index) = value
}

// execBlock0 handles the irregular x=0 row: NOP/STOP/JR family,
// 16-bit LD/INC/DEC/ADD-HL, the four indirect-A load forms, 8-bit
// INC/DEC/LD-immediate, and the accumulator rotates plus DAA/CPL/SCF/CCF.
func (c *CPU) execBlock0(y, z, q, p uint8) int {
	switch z {
	case 0:
		switch {
		case y == 0:
			return 4 // NOP
		case y == 1:
			addr16 := c.fetch16()
			c.mem.Write(addr16, uint8(c.sp))
			c.mem.Write(addr16+1, uint8(c.sp>>8))
			return 20
		case y == 2:
			c.fetch8() // STOP is followed by one padding byte
			return 4
		case y == 3:
			d := int8(c.fetch8())
			c.pc = uint16(int32(c.pc) + int32(d))
			return 12
		default:
			d := int8(c.fetch8())
			if c.condition(y - 4) {
				c.pc = uint16(int32(c.pc) + int32(d))
				return 12
			}
			return 8
		}

	case 1:
		if q == 0 {
			c.setReg16SP(p, c.fetch16())
			return 12
		}
		c.addHL(c.reg16SP(p))
		return 8

	case 2:
		hl := c.getHL()
		switch {
		case q == 0 && p == 0:
			c.mem.Write(c.getBC(), c.a)
		case q == 0 && p == 1:
			c.mem.Write(c.getDE(), c.a)
		case q == 0 && p == 2:
			c.mem.Write(hl, c.a)
			c.setHL(hl + 1)
		case q == 0 && p == 3:
			c.mem.Write(hl, c.a)
			c.setHL(hl - 1)
		case q == 1 && p == 0:
			c.a = c.mem.Read(c.getBC())
		case q == 1 && p == 1:
			c.a = c.mem.Read(c.getDE())
		case q == 1 && p == 2:
			c.a = c.mem.Read(hl)
			c.setHL(hl + 1)
		default:
			c.a = c.mem.Read(hl)
			c.setHL(hl - 1)
		}
		return 8

	case 3:
		if q == 0 {
			c.setReg16SP(p, c.reg16SP(p)+1)
		} else {
			c.setReg16SP(p, c.reg16SP(p)-1)
		}
		return 8

	case 4:
		if y == 6 {
			v := c.mem.Read(c.getHL())
			c.inc8(&v)
			c.mem.Write(c.getHL(), v)
			return 12
		}
		c.inc8(c.reg8(y))
		return 4

	case 5:
		if y == 6 {
			v := c.mem.Read(c.getHL())
			c.dec8(&v)
			c.mem.Write(c.getHL(), v)
			return 12
		}
		c.dec8(c.reg8(y))
		return 4

	case 6:
		n := c.fetch8()
		if y == 6 {
			c.mem.Write(c.getHL(), n)
			return 12
		}
		*c.reg8(y) = n
		return 8

	default: // z == 7
		switch y {
		case 0:
			r, carry := rlc(c.a)
			c.a = r
			c.setFlag(FlagZero, false)
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, carry)
		case 1:
			r, carry := rrc(c.a)
			c.a = r
			c.setFlag(FlagZero, false)
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, carry)
		case 2:
			r, carry := c.rl(c.a)
			c.a = r
			c.setFlag(FlagZero, false)
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, carry)
		case 3:
			r, carry := c.rr(c.a)
			c.a = r
			c.setFlag(FlagZero, false)
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, carry)
		case 4:
			c.daa()
		case 5:
			c.a = ^c.a
			c.setFlag(FlagSubtract, true)
			c.setFlag(FlagHalfCarry, true)
		case 6:
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, true)
		default:
			c.setFlag(FlagSubtract, false)
			c.setFlag(FlagHalfCarry, false)
			c.setFlag(FlagCarry, !c.isSet(FlagCarry))
		}
		return 4
	}
}

// execLoad handles the x=1 row: LD r[y],r[z], with opcode 0x76
// (LD (HL),(HL) in the regular encoding) repurposed as HALT.
func (c *CPU) execLoad(y, z uint8) int {
	if y == 6 && z == 6 {
		c.halted = true
		return 4
	}

	value := c.readOperand8(z)
	c.writeOperand8(y, value)

	if y == 6 || z == 6 {
		return 8
	}
	return 4
}

// execALU handles the x=2 row: ALU[y] A, r[z].
func (c *CPU) execALU(y, z uint8) int {
	value := c.readOperand8(z)
	c.applyALU(y, value)
	if z == 6 {
		return 8
	}
	return 4
}

func (c *CPU) applyALU(op uint8, value uint8) {
	switch op {
	case 0:
		c.add8(value, false)
	case 1:
		c.add8(value, true)
	case 2:
		c.sub8(value, false, false)
	case 3:
		c.sub8(value, true, false)
	case 4:
		c.and8(value)
	case 5:
		c.xor8(value)
	case 6:
		c.or8(value)
	default:
		c.sub8(value, false, true)
	}
}

// execBlock3 handles the irregular x=3 row: conditional/unconditional
// RET/JP/CALL, the high-page LD forms, PUSH/POP, RST, DI/EI, and the
// handful of opcodes the GB silicon never defines.
func (c *CPU) execBlock3(y, z, q, p uint8) int {
	switch z {
	case 0:
		switch {
		case y <= 3:
			if c.condition(y) {
				c.pc = c.pop16()
				return 20
			}
			return 8
		case y == 4:
			c.mem.Write(0xFF00+uint16(c.fetch8()), c.a)
			return 12
		case y == 5:
			d := int8(c.fetch8())
			c.sp = c.addSPSigned(d)
			return 16
		case y == 6:
			c.a = c.mem.Read(0xFF00 + uint16(c.fetch8()))
			return 12
		default:
			d := int8(c.fetch8())
			c.setHL(c.addSPSigned(d))
			return 12
		}

	case 1:
		if q == 0 {
			c.setReg16AF(p, c.pop16())
			return 12
		}
		switch p {
		case 0:
			c.pc = c.pop16()
			return 16
		case 1:
			c.pc = c.pop16() // RETI: this core never raises IME, so it behaves as RET
			return 16
		case 2:
			c.pc = c.getHL()
			return 4
		default:
			c.sp = c.getHL()
			return 8
		}

	case 2:
		switch {
		case y <= 3:
			addr16 := c.fetch16()
			if c.condition(y) {
				c.pc = addr16
				return 16
			}
			return 12
		case y == 4:
			c.mem.Write(0xFF00+uint16(c.c), c.a)
			return 8
		case y == 5:
			c.mem.Write(c.fetch16(), c.a)
			return 16
		case y == 6:
			c.a = c.mem.Read(0xFF00 + uint16(c.c))
			return 8
		default:
			c.a = c.mem.Read(c.fetch16())
			return 16
		}

	case 3:
		switch y {
		case 0:
			c.pc = c.fetch16()
			return 16
		case 6:
			return 4 // DI: IME is not modeled
		case 7:
			return 4 // EI: IME is not modeled
		default:
			return c.illegal() // 0xCB is intercepted before exec; 0xD3/0xDB/0xE3/0xEB are undefined
		}

	case 4:
		if y <= 3 {
			addr16 := c.fetch16()
			if c.condition(y) {
				c.push16(c.pc)
				c.pc = addr16
				return 24
			}
			return 12
		}
		return c.illegal() // 0xD4/0xDC are valid CALL cc but y 4-7 here map to undefined opcodes 0xE4/0xEC/0xF4/0xFC

	case 5:
		if q == 0 {
			c.push16(c.reg16AF(p))
			return 16
		}
		if p == 0 {
			addr16 := c.fetch16()
			c.push16(c.pc)
			c.pc = addr16
			return 24
		}
		return c.illegal() // 0xDD/0xED/0xFD are undefined

	case 6:
		n := c.fetch8()
		c.applyALU(y, n)
		return 8

	default: // z == 7
		c.push16(c.pc)
		c.pc = uint16(y) * 8
		return 16
	}
}

// illegal handles an opcode the SM83 never defines. Real hardware locks
// the CPU up; this core models that by halting rather than panicking, so
// a host driving untrusted ROMs degrades instead of crashing.
func (c *CPU) illegal() int {
	c.halted = true
	return 4
}
