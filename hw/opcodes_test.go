package hw

import "testing"

func TestOfficialOpcodeTable(t *testing.T) {
	nops := 0
	for opcode := range ops {
		impl := ops[opcode] != nil
		dis := opsDisasm[opcode].mode != nil
		if impl != dis {
			t.Errorf("opcode %02x: implemented=%v disassembled=%v", opcode, impl, dis)
		}
		if impl {
			nops++
		}
	}
	if nops != 151 {
		t.Errorf("got %d implemented opcodes, want 151", nops)
	}
}

func TestLoadStore(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: a9 05 8d 00 03 a2 ff 86 10
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2,
		"A", uint8(5), "Pz", uint8(0), "Pn", uint8(0))
	runAndCheckState(t, cpu, cpu.Clock+4,
		"mem", `0300: 05`)
	runAndCheckState(t, cpu, cpu.Clock+2+3,
		"X", uint8(0xFF), "Pn", uint8(1),
		"mem", `0010: ff`)
}

func TestADCFlags(t *testing.T) {
	// 0x7F + 0x01 overflows the signed range
	cpu := loadCPUWith(t, `
0200: 18 a9 7f 69 01
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+2+2,
		"A", uint8(0x80), "Pv", uint8(1), "Pn", uint8(1), "Pc", uint8(0))
}

func TestADCCarryChain(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 38 a9 ff 69 00
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+2+2,
		"A", uint8(0x00), "Pz", uint8(1), "Pc", uint8(1))
}

func TestSBCBorrow(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 38 a9 10 e9 20
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+2+2,
		"A", uint8(0xF0), "Pc", uint8(0), "Pn", uint8(1))
}

func TestADCDecimal(t *testing.T) {
	// SED; CLC; LDA #$09; ADC #$01 -> BCD 10
	cpu := loadCPUWith(t, `
0200: f8 18 a9 09 69 01
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+2+2+2,
		"A", uint8(0x10), "Pc", uint8(0), "Pd", uint8(1))
}

func TestADCDecimalCarry(t *testing.T) {
	// SED; CLC; LDA #$99; ADC #$01 -> BCD 00 with carry out
	cpu := loadCPUWith(t, `
0200: f8 18 a9 99 69 01
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+2+2+2,
		"A", uint8(0x00), "Pc", uint8(1))
}

func TestSBCDecimal(t *testing.T) {
	// SED; SEC; LDA #$10; SBC #$01 -> BCD 09
	cpu := loadCPUWith(t, `
0200: f8 38 a9 10 e9 01
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+2+2+2,
		"A", uint8(0x09), "Pc", uint8(1))
}

func TestSBCDecimalBorrow(t *testing.T) {
	// SED; SEC; LDA #$00; SBC #$01 -> BCD 99, borrow out
	cpu := loadCPUWith(t, `
0200: f8 38 a9 00 e9 01
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+2+2+2,
		"A", uint8(0x99), "Pc", uint8(0))
}

func TestDecimalFlagIgnoredByBinaryOps(t *testing.T) {
	// D set must not affect INC/CMP
	cpu := loadCPUWith(t, `
0010: 09
0200: f8 e6 10 a9 0a c9 0a
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+5+2+2,
		"Pz", uint8(1), "Pc", uint8(1),
		"mem", `0010: 0a`)
}

func TestBranchCycles(t *testing.T) {
	// BNE not taken: 2 cycles
	cpu := loadCPUWith(t, `
0200: a9 00 d0 10
fffc: 00 02
`)
	c0 := cpu.Clock
	runAndCheckState(t, cpu, c0+2+2, "PC", uint16(0x0204))

	// BNE taken, same page: 3 cycles
	cpu = loadCPUWith(t, `
0200: a9 01 d0 10
fffc: 00 02
`)
	c0 = cpu.Clock
	runAndCheckState(t, cpu, c0+2+3, "PC", uint16(0x0214))

	// BNE taken, crossing a page: 4 cycles
	cpu = loadCPUWith(t, `
02f0: a9 01 d0 20
fffc: f0 02
`)
	c0 = cpu.Clock
	runAndCheckState(t, cpu, c0+2+4, "PC", uint16(0x0314))
}

func TestIndexedPageCross(t *testing.T) {
	// LDA $02F0,X with X=0x20 crosses into page 3: 5 cycles
	cpu := loadCPUWith(t, `
0310: 77
0200: a2 20 bd f0 02
fffc: 00 02
`)
	c0 := cpu.Clock
	runAndCheckState(t, cpu, c0+2+5, "A", uint8(0x77))

	// same read without crossing: 4 cycles
	cpu = loadCPUWith(t, `
0302: 66
0200: a2 02 bd 00 03
fffc: 00 02
`)
	c0 = cpu.Clock
	runAndCheckState(t, cpu, c0+2+4, "A", uint8(0x66))
}

func TestJSRRTS(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 20 00 03 a9 01
0300: a2 07 60
fffc: 00 02
`)
	c0 := cpu.Clock
	runAndCheckState(t, cpu, c0+6+2+6+2,
		"PC", uint16(0x0205), "A", uint8(1), "X", uint8(7), "SP", uint8(0xFD))
}

func TestStackOps(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: a9 aa 48 a9 00 68
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+3+2+4,
		"A", uint8(0xAA), "SP", uint8(0xFD), "Pn", uint8(1))
}

func TestRMWAbsolute(t *testing.T) {
	cpu := loadCPUWith(t, `
0300: 41
0200: 0e 00 03
fffc: 00 02
`)
	c0 := cpu.Clock
	runAndCheckState(t, cpu, c0+6,
		"Pc", uint8(0), "mem", `0300: 82`)
}

func TestBIT(t *testing.T) {
	cpu := loadCPUWith(t, `
0010: c0
0200: a9 0f 24 10
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+3,
		"Pn", uint8(1), "Pv", uint8(1), "Pz", uint8(1))
}

func TestIndirectJMPPageWrap(t *testing.T) {
	// ($02FF) reads its high byte from $0200, not $0300
	cpu := loadCPUWith(t, `
0200: 6c ff 02
02ff: 34
0300: 99
fffc: 00 02
`)
	// low byte at $02FF = $34, high byte wraps to $0200 = $6C
	runAndCheckState(t, cpu, 2+5, "PC", uint16(0x6C34))
}

func TestZeroPageWrap(t *testing.T) {
	// LDA ($FF,X) with X=1 fetches the pointer from $00, wrapping
	cpu := loadCPUWith(t, `
0000: 00 03
0300: 55
0200: a2 01 a1 ff
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2+2+6, "A", uint8(0x55))
}
