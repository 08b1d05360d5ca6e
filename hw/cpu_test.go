package hw

import (
	"errors"
	"testing"
)

func TestReset(t *testing.T) {
	cpu := loadCPUWith(t, `
fffc: 00 02
`)
	if cpu.PC != 0x0200 {
		t.Fatalf("got PC=$%04X, want $0200", cpu.PC)
	}
	if !cpu.P.I() {
		t.Error("I should be set after reset")
	}
}

func TestIllegalOpcode(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 02
fffc: 00 02
`)
	_, err := cpu.Step()

	var ierr *IllegalOpcodeError
	if !errors.As(err, &ierr) {
		t.Fatalf("got %v, want IllegalOpcodeError", err)
	}
	if ierr.PC != 0x0200 || ierr.Opcode != 0x02 {
		t.Errorf("got PC=$%04X opcode=%02X", ierr.PC, ierr.Opcode)
	}
	// state stays inspectable, PC still at the bad opcode
	if cpu.PC != 0x0200 {
		t.Errorf("got PC=$%04X, want $0200", cpu.PC)
	}
}

func TestIRQServicing(t *testing.T) {
	// main program is a NOP loop, handler loads a marker into A.
	cpu := loadCPUWith(t, `
0200: ea ea ea
0300: a9 42
fffc: 00 02
fffe: 00 03
`)
	cpu.P.clearBit(pbitI)
	cpu.Lines = NewLines()

	sp := cpu.SP
	cpu.Lines.Raise(IntVSync)

	c0 := cpu.Clock
	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}

	// the service sequence runs before the fetched instruction: 7 cycles
	// plus the 2 of the NOP executed at the handler entry.
	if got := cpu.Clock - c0; got != 7+2 {
		t.Errorf("got %d cycles, want 9", got)
	}
	if cpu.A != 0x42 {
		t.Errorf("got A=$%02X, want $42", cpu.A)
	}
	if got := sp - cpu.SP; got != 3 {
		t.Errorf("got %d stacked bytes, want 3", got)
	}
	if !cpu.P.I() {
		t.Error("I should be set while servicing")
	}

	// pushed status must have B clear and U set
	p := cpu.bus.Peek8(0x0100 + uint16(cpu.SP) + 1)
	if P(p).B() {
		t.Error("pushed P should have B clear")
	}

	// return address on the stack is the interrupted PC
	lo := cpu.bus.Peek8(0x0100 + uint16(cpu.SP) + 2)
	hi := cpu.bus.Peek8(0x0100 + uint16(cpu.SP) + 3)
	if ret := uint16(hi)<<8 | uint16(lo); ret != 0x0200 {
		t.Errorf("got return address $%04X, want $0200", ret)
	}
}

func TestIRQMaskedByI(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: ea
fffc: 00 02
fffe: 00 03
`)
	cpu.Lines = NewLines()
	cpu.P.setBit(pbitI)
	cpu.Lines.Raise(IntVSync)

	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	if cpu.PC != 0x0201 {
		t.Errorf("got PC=$%04X, want $0201 (no service)", cpu.PC)
	}
}

func TestNMIBypassesI(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: ea
0400: a9 99
fffa: 00 04
fffc: 00 02
`)
	cpu.Lines = NewLines()
	cpu.P.setBit(pbitI)
	cpu.Lines.RaiseNMI()

	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	if cpu.A != 0x99 {
		t.Errorf("got A=$%02X, want $99", cpu.A)
	}
	if cpu.Lines.PendingNMI() {
		t.Error("NMI latch should clear once serviced")
	}
}

func TestRTIRestores(t *testing.T) {
	// CLI; NOP; ... handler: RTI. The interrupted PC and flags must come
	// back exactly.
	cpu := loadCPUWith(t, `
0200: 58 ea ea ea
0300: 40
fffc: 00 02
fffe: 00 03
`)
	cpu.Lines = NewLines()

	if _, err := cpu.Step(); err != nil { // CLI
		t.Fatal(err)
	}
	cpu.Lines.Raise(IntVSync)

	if _, err := cpu.Step(); err != nil { // service + first handler op (RTI)
		t.Fatal(err)
	}
	cpu.Lines.Ack(IntVSync)

	if cpu.PC != 0x0201 {
		t.Errorf("got PC=$%04X, want $0201", cpu.PC)
	}
	if cpu.P.I() {
		t.Error("I restored from the stack should be clear")
	}
}

func TestStepInfo(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: a9 05
fffc: 00 02
`)
	info, err := cpu.Step()
	if err != nil {
		t.Fatal(err)
	}
	if info.PC != 0x0200 {
		t.Errorf("got PC=$%04X, want $0200", info.PC)
	}
	if info.Mnemonic != "LDA" || info.Operand != "#$05" {
		t.Errorf("got %q %q, want LDA #$05", info.Mnemonic, info.Operand)
	}
	if len(info.Bytes) != 2 || info.Bytes[0] != 0xA9 || info.Bytes[1] != 0x05 {
		t.Errorf("got bytes %v", info.Bytes)
	}
	// registers are captured before execution
	if info.A != 0x00 {
		t.Errorf("got A=$%02X, want pre-execution $00", info.A)
	}
}
