package cpu

import "testing"

type fakeBus struct {
	mem [0x10000]byte
}

func (b *fakeBus) Read(address uint16) byte         { return b.mem[address] }
func (b *fakeBus) Write(address uint16, value byte) { b.mem[address] = value }

func newTestCPU(program ...uint8) (*CPU, *fakeBus) {
	bus := &fakeBus{}
	for i, b := range program {
		bus.mem[0x0100+i] = b
	}
	c := New(bus)
	return c, bus
}

func TestNOP(t *testing.T) {
	c, _ := newTestCPU(0x00)
	cycles := c.Step()
	if cycles != 4 {
		t.Errorf("NOP cycles = %d; want 4", cycles)
	}
	if c.pc != 0x0101 {
		t.Errorf("pc = 0x%04X; want 0x0101", c.pc)
	}
}

func TestLoadImmediate8(t *testing.T) {
	c, _ := newTestCPU(0x06, 0x42) // LD B, 0x42
	cycles := c.Step()
	if cycles != 8 {
		t.Errorf("LD B,n cycles = %d; want 8", cycles)
	}
	if c.b != 0x42 {
		t.Errorf("b = 0x%02X; want 0x42", c.b)
	}
}

func TestLoadImmediate16AndRegisterToRegister(t *testing.T) {
	c, _ := newTestCPU(
		0x01, 0x34, 0x12, // LD BC, 0x1234
		0x41,             // LD B, C
	)
	c.Step()
	if c.getBC() != 0x1234 {
		t.Fatalf("BC = 0x%04X; want 0x1234", c.getBC())
	}
	c.Step()
	if c.b != 0x34 {
		t.Errorf("b after LD B,C = 0x%02X; want 0x34", c.b)
	}
}

func TestLoadIndirectHL(t *testing.T) {
	c, bus := newTestCPU(
		0x21, 0x00, 0xC0, // LD HL, 0xC000
		0x36, 0x99, // LD (HL), 0x99
		0x7E, // LD A, (HL)
	)
	c.Step()
	cycles := c.Step()
	if cycles != 12 {
		t.Errorf("LD (HL),n cycles = %d; want 12", cycles)
	}
	if bus.mem[0xC000] != 0x99 {
		t.Fatalf("mem[0xC000] = 0x%02X; want 0x99", bus.mem[0xC000])
	}
	cycles = c.Step()
	if cycles != 8 {
		t.Errorf("LD A,(HL) cycles = %d; want 8", cycles)
	}
	if c.a != 0x99 {
		t.Errorf("a = 0x%02X; want 0x99", c.a)
	}
}

func TestIncDecFlags(t *testing.T) {
	c, _ := newTestCPU(0x3C, 0x3D, 0x3D) // INC A; DEC A; DEC A
	c.a = 0xFF
	c.Step() // INC A -> 0x00, Z set, H set
	if c.a != 0x00 || !c.isSet(FlagZero) || !c.isSet(FlagHalfCarry) {
		t.Fatalf("INC A from 0xFF: a=0x%02X Z=%v H=%v", c.a, c.isSet(FlagZero), c.isSet(FlagHalfCarry))
	}
	c.Step() // DEC A -> 0xFF, H set (borrow from bit 4), N set
	if c.a != 0xFF || !c.isSet(FlagSubtract) || !c.isSet(FlagHalfCarry) {
		t.Fatalf("DEC A from 0x00: a=0x%02X N=%v H=%v", c.a, c.isSet(FlagSubtract), c.isSet(FlagHalfCarry))
	}
}

func TestAddWithCarry(t *testing.T) {
	c, _ := newTestCPU(0x87) // ADD A, A
	c.a = 0x80
	c.Step()
	if c.a != 0x00 || !c.isSet(FlagZero) || !c.isSet(FlagCarry) {
		t.Fatalf("ADD A,A from 0x80: a=0x%02X Z=%v C=%v", c.a, c.isSet(FlagZero), c.isSet(FlagCarry))
	}
}

func TestCompareDoesNotModifyA(t *testing.T) {
	c, _ := newTestCPU(0xFE, 0x10) // CP 0x10
	c.a = 0x10
	c.Step()
	if c.a != 0x10 {
		t.Errorf("CP modified A: a = 0x%02X", c.a)
	}
	if !c.isSet(FlagZero) {
		t.Error("CP with equal operands should set Z")
	}
}

func TestJRTaken(t *testing.T) {
	c, _ := newTestCPU(
		0xAF,       // XOR A -> A=0, Z set
		0x28, 0x02, // JR Z, +2
		0x00, 0x00, // (skipped)
		0x3C, // INC A, landing spot
	)
	c.Step() // XOR A
	cycles := c.Step()
	if cycles != 12 {
		t.Errorf("JR Z taken cycles = %d; want 12", cycles)
	}
	if c.pc != 0x0105 {
		t.Fatalf("pc after taken JR = 0x%04X; want 0x0105", c.pc)
	}
}

func TestJRNotTaken(t *testing.T) {
	c, _ := newTestCPU(
		0x3C,       // INC A -> A=1, Z clear
		0x28, 0x02, // JR Z, +2 (not taken)
	)
	c.Step()
	cycles := c.Step()
	if cycles != 8 {
		t.Errorf("JR Z not-taken cycles = %d; want 8", cycles)
	}
	if c.pc != 0x0103 {
		t.Fatalf("pc after non-taken JR = 0x%04X; want 0x0103", c.pc)
	}
}

func TestCallAndRet(t *testing.T) {
	c, _ := newTestCPU(
		0xCD, 0x06, 0x01, // CALL 0x0106
		0x00,             // (not reached immediately)
		0x00,
		0x00,
		0xC9, // RET, at 0x0106
	)
	c.sp = 0xFFFE
	cycles := c.Step() // CALL
	if cycles != 24 {
		t.Errorf("CALL cycles = %d; want 24", cycles)
	}
	if c.pc != 0x0106 {
		t.Fatalf("pc after CALL = 0x%04X; want 0x0106", c.pc)
	}
	cycles = c.Step() // RET
	if cycles != 16 {
		t.Errorf("RET cycles = %d; want 16", cycles)
	}
	if c.pc != 0x0103 {
		t.Fatalf("pc after RET = 0x%04X; want 0x0103 (return address)", c.pc)
	}
}

func TestPushPop(t *testing.T) {
	c, _ := newTestCPU(
		0xC5, // PUSH BC
		0xD1, // POP DE
	)
	c.sp = 0xFFFE
	c.setBC(0xBEEF)
	c.Step()
	if c.sp != 0xFFFC {
		t.Fatalf("sp after PUSH = 0x%04X; want 0xFFFC", c.sp)
	}
	c.Step()
	if c.getDE() != 0xBEEF {
		t.Fatalf("DE after POP = 0x%04X; want 0xBEEF", c.getDE())
	}
	if c.sp != 0xFFFE {
		t.Fatalf("sp after POP = 0x%04X; want 0xFFFE", c.sp)
	}
}

func TestHalt(t *testing.T) {
	c, _ := newTestCPU(0x76, 0x3C) // HALT; INC A
	c.Step()
	if !c.Halted() {
		t.Fatal("expected CPU to be halted after HALT")
	}
	pcAfterHalt := c.pc
	cycles := c.Step()
	if cycles != 4 || c.pc != pcAfterHalt {
		t.Fatalf("halted CPU should spin without advancing pc: pc=0x%04X cycles=%d", c.pc, cycles)
	}
}

func TestCBBitResSet(t *testing.T) {
	c, _ := newTestCPU(
		0xCB, 0x7F, // BIT 7, A
		0xCB, 0xFF, // SET 7, A
		0xCB, 0xBF, // RES 7, A
	)
	c.a = 0x00
	cycles := c.Step() // BIT 7,A
	if cycles != 8 {
		t.Errorf("BIT r cycles = %d; want 8", cycles)
	}
	if !c.isSet(FlagZero) {
		t.Error("BIT 7 on 0x00 should set Z")
	}

	c.Step() // SET 7,A
	if c.a != 0x80 {
		t.Fatalf("a after SET 7,A = 0x%02X; want 0x80", c.a)
	}

	c.Step() // RES 7,A
	if c.a != 0x00 {
		t.Fatalf("a after RES 7,A = 0x%02X; want 0x00", c.a)
	}
}

func TestCBRotateThroughCarry(t *testing.T) {
	c, _ := newTestCPU(0xCB, 0x11) // RL C
	c.c = 0x80
	c.setFlag(FlagCarry, false)
	c.Step()
	if c.c != 0x00 || !c.isSet(FlagCarry) || !c.isSet(FlagZero) {
		t.Fatalf("RL C from 0x80: c=0x%02X C=%v Z=%v", c.c, c.isSet(FlagCarry), c.isSet(FlagZero))
	}
}

func TestCBIndirectHLCycleCost(t *testing.T) {
	c, bus := newTestCPU(
		0x21, 0x00, 0xC0, // LD HL, 0xC000
		0xCB, 0x86, // RES 0, (HL)
	)
	bus.mem[0xC000] = 0xFF
	c.Step()
	cycles := c.Step()
	if cycles != 16 {
		t.Errorf("RES n,(HL) cycles = %d; want 16", cycles)
	}
	if bus.mem[0xC000] != 0xFE {
		t.Fatalf("mem[0xC000] = 0x%02X; want 0xFE", bus.mem[0xC000])
	}
}

func TestDAAAfterAddition(t *testing.T) {
	c, _ := newTestCPU(0x27) // DAA
	c.a = 0x0A               // invalid BCD from e.g. 0x05+0x05
	c.setFlag(FlagSubtract, false)
	c.setFlag(FlagHalfCarry, false)
	c.setFlag(FlagCarry, false)
	c.Step()
	if c.a != 0x10 {
		t.Fatalf("DAA on 0x0A = 0x%02X; want 0x10", c.a)
	}
}

func TestIllegalOpcodeHalts(t *testing.T) {
	c, _ := newTestCPU(0xD3) // undefined on DMG
	c.Step()
	if !c.Halted() {
		t.Fatal("expected illegal opcode to halt the CPU")
	}
}
