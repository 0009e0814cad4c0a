package cpu

// execCB decodes and executes one CB-prefixed opcode. The CB space is
// fully regular: x selects the operation family (rotate/shift, BIT, RES,
// SET), y is either a shift-type selector or a bit index depending on x,
// and z addresses the same 8-register-or-(HL) operand field exec uses.
func (c *CPU) execCB(opcode uint8) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7

	value := c.readOperand8(z)

	switch x {
	case 0:
		result := c.shift(y, value)
		c.writeOperand8(z, result)
		if z == 6 {
			return 16
		}
		return 8

	case 1:
		c.bitTest(y, value)
		if z == 6 {
			return 12
		}
		return 8

	case 2:
		c.writeOperand8(z, value&^(1<<y))
		if z == 6 {
			return 16
		}
		return 8

	default:
		c.writeOperand8(z, value|(1<<y))
		if z == 6 {
			return 16
		}
		return 8
	}
}

// shift applies one of the eight CB rotate/shift operations (selected by
// y) to value and updates flags the way a register-form CB instruction
// does: Z from the result, unlike the equivalent x=0 accumulator forms
// (RLCA etc.) which always clear Z.
func (c *CPU) shift(y uint8, value uint8) uint8 {
	var result uint8
	var carryOut bool

	switch y {
	case 0:
		result, carryOut = rlc(value)
	case 1:
		result, carryOut = rrc(value)
	case 2:
		result, carryOut = c.rl(value)
	case 3:
		result, carryOut = c.rr(value)
	case 4:
		result, carryOut = sla(value)
	case 5:
		result, carryOut = sra(value)
	case 6:
		result = swap(value)
		c.setFlag(FlagZero, result == 0)
		c.setFlag(FlagSubtract, false)
		c.setFlag(FlagHalfCarry, false)
		c.setFlag(FlagCarry, false)
		return result
	default:
		result, carryOut = srl(value)
	}

	c.setRotateFlags(result, carryOut)
	return result
}
