package hw

import "fmt"

// opsDisasm mirrors the ops table with the mnemonic and addressing mode of
// every implemented opcode. Decoding goes through Peek8 so disassembling
// never disturbs hardware state.
var opsDisasm = [256]disasmEntry{
	0x00: {"BRK", dimplied},
	0x01: {"ORA", dpreidx},
	0x05: {"ORA", dzeropage},
	0x06: {"ASL", dzeropage},
	0x08: {"PHP", dimplied},
	0x09: {"ORA", dimmediate},
	0x0A: {"ASL", daccumulator},
	0x0D: {"ORA", dabsolute},
	0x0E: {"ASL", dabsolute},
	0x10: {"BPL", drelative},
	0x11: {"ORA", dpostidx},
	0x15: {"ORA", dzeropagex},
	0x16: {"ASL", dzeropagex},
	0x18: {"CLC", dimplied},
	0x19: {"ORA", dabsolutey},
	0x1D: {"ORA", dabsolutex},
	0x1E: {"ASL", dabsolutex},
	0x20: {"JSR", dabsolute},
	0x21: {"AND", dpreidx},
	0x24: {"BIT", dzeropage},
	0x25: {"AND", dzeropage},
	0x26: {"ROL", dzeropage},
	0x28: {"PLP", dimplied},
	0x29: {"AND", dimmediate},
	0x2A: {"ROL", daccumulator},
	0x2C: {"BIT", dabsolute},
	0x2D: {"AND", dabsolute},
	0x2E: {"ROL", dabsolute},
	0x30: {"BMI", drelative},
	0x31: {"AND", dpostidx},
	0x35: {"AND", dzeropagex},
	0x36: {"ROL", dzeropagex},
	0x38: {"SEC", dimplied},
	0x39: {"AND", dabsolutey},
	0x3D: {"AND", dabsolutex},
	0x3E: {"ROL", dabsolutex},
	0x40: {"RTI", dimplied},
	0x41: {"EOR", dpreidx},
	0x45: {"EOR", dzeropage},
	0x46: {"LSR", dzeropage},
	0x48: {"PHA", dimplied},
	0x49: {"EOR", dimmediate},
	0x4A: {"LSR", daccumulator},
	0x4C: {"JMP", dabsolute},
	0x4D: {"EOR", dabsolute},
	0x4E: {"LSR", dabsolute},
	0x50: {"BVC", drelative},
	0x51: {"EOR", dpostidx},
	0x55: {"EOR", dzeropagex},
	0x56: {"LSR", dzeropagex},
	0x58: {"CLI", dimplied},
	0x59: {"EOR", dabsolutey},
	0x5D: {"EOR", dabsolutex},
	0x5E: {"LSR", dabsolutex},
	0x60: {"RTS", dimplied},
	0x61: {"ADC", dpreidx},
	0x65: {"ADC", dzeropage},
	0x66: {"ROR", dzeropage},
	0x68: {"PLA", dimplied},
	0x69: {"ADC", dimmediate},
	0x6A: {"ROR", daccumulator},
	0x6C: {"JMP", dindirect},
	0x6D: {"ADC", dabsolute},
	0x6E: {"ROR", dabsolute},
	0x70: {"BVS", drelative},
	0x71: {"ADC", dpostidx},
	0x75: {"ADC", dzeropagex},
	0x76: {"ROR", dzeropagex},
	0x78: {"SEI", dimplied},
	0x79: {"ADC", dabsolutey},
	0x7D: {"ADC", dabsolutex},
	0x7E: {"ROR", dabsolutex},
	0x81: {"STA", dpreidx},
	0x84: {"STY", dzeropage},
	0x85: {"STA", dzeropage},
	0x86: {"STX", dzeropage},
	0x88: {"DEY", dimplied},
	0x8A: {"TXA", dimplied},
	0x8C: {"STY", dabsolute},
	0x8D: {"STA", dabsolute},
	0x8E: {"STX", dabsolute},
	0x90: {"BCC", drelative},
	0x91: {"STA", dpostidx},
	0x94: {"STY", dzeropagex},
	0x95: {"STA", dzeropagex},
	0x96: {"STX", dzeropagey},
	0x98: {"TYA", dimplied},
	0x99: {"STA", dabsolutey},
	0x9A: {"TXS", dimplied},
	0x9D: {"STA", dabsolutex},
	0xA0: {"LDY", dimmediate},
	0xA1: {"LDA", dpreidx},
	0xA2: {"LDX", dimmediate},
	0xA4: {"LDY", dzeropage},
	0xA5: {"LDA", dzeropage},
	0xA6: {"LDX", dzeropage},
	0xA8: {"TAY", dimplied},
	0xA9: {"LDA", dimmediate},
	0xAA: {"TAX", dimplied},
	0xAC: {"LDY", dabsolute},
	0xAD: {"LDA", dabsolute},
	0xAE: {"LDX", dabsolute},
	0xB0: {"BCS", drelative},
	0xB1: {"LDA", dpostidx},
	0xB4: {"LDY", dzeropagex},
	0xB5: {"LDA", dzeropagex},
	0xB6: {"LDX", dzeropagey},
	0xB8: {"CLV", dimplied},
	0xB9: {"LDA", dabsolutey},
	0xBA: {"TSX", dimplied},
	0xBC: {"LDY", dabsolutex},
	0xBD: {"LDA", dabsolutex},
	0xBE: {"LDX", dabsolutey},
	0xC0: {"CPY", dimmediate},
	0xC1: {"CMP", dpreidx},
	0xC4: {"CPY", dzeropage},
	0xC5: {"CMP", dzeropage},
	0xC6: {"DEC", dzeropage},
	0xC8: {"INY", dimplied},
	0xC9: {"CMP", dimmediate},
	0xCA: {"DEX", dimplied},
	0xCC: {"CPY", dabsolute},
	0xCD: {"CMP", dabsolute},
	0xCE: {"DEC", dabsolute},
	0xD0: {"BNE", drelative},
	0xD1: {"CMP", dpostidx},
	0xD5: {"CMP", dzeropagex},
	0xD6: {"DEC", dzeropagex},
	0xD8: {"CLD", dimplied},
	0xD9: {"CMP", dabsolutey},
	0xDD: {"CMP", dabsolutex},
	0xDE: {"DEC", dabsolutex},
	0xE0: {"CPX", dimmediate},
	0xE1: {"SBC", dpreidx},
	0xE4: {"CPX", dzeropage},
	0xE5: {"SBC", dzeropage},
	0xE6: {"INC", dzeropage},
	0xE8: {"INX", dimplied},
	0xE9: {"SBC", dimmediate},
	0xEA: {"NOP", dimplied},
	0xEC: {"CPX", dabsolute},
	0xED: {"SBC", dabsolute},
	0xEE: {"INC", dabsolute},
	0xF0: {"BEQ", drelative},
	0xF1: {"SBC", dpostidx},
	0xF5: {"SBC", dzeropagex},
	0xF6: {"INC", dzeropagex},
	0xF8: {"SED", dimplied},
	0xF9: {"SBC", dabsolutey},
	0xFD: {"SBC", dabsolutex},
	0xFE: {"INC", dabsolutex},
}

type disasmEntry struct {
	name string
	mode func(c *CPU, pc uint16) (string, int)
}

// Disasm captures the register state and the disassembly of the
// instruction at the current PC, without touching the clock or the
// hardware. It is what the debugger prints at each halt.
func (c *CPU) Disasm() StepInfo {
	return c.stepInfo()
}

// stepInfo captures the register state and the disassembly of the
// instruction at PC, without touching the clock or the hardware.
func (c *CPU) stepInfo() StepInfo {
	info := StepInfo{
		PC: c.PC,
		A:  c.A, X: c.X, Y: c.Y, SP: c.SP,
		P:     c.P,
		Clock: c.Clock,
	}

	opcode := c.bus.Peek8(c.PC)
	d := opsDisasm[opcode]
	if d.mode == nil {
		info.Mnemonic = "???"
		info.Bytes = []uint8{opcode}
		return info
	}

	var size int
	info.Mnemonic = d.name
	info.Operand, size = d.mode(c, c.PC)
	for i := uint16(0); i < uint16(size); i++ {
		info.Bytes = append(info.Bytes, c.bus.Peek8(c.PC+i))
	}
	return info
}

// addressing mode formatters

func dimplied(c *CPU, pc uint16) (string, int) {
	return "", 1
}

func daccumulator(c *CPU, pc uint16) (string, int) {
	return "A", 1
}

func dimmediate(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("#$%02X", c.bus.Peek8(pc+1)), 2
}

func dzeropage(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("$%02X", c.bus.Peek8(pc+1)), 2
}

func dzeropagex(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("$%02X,X", c.bus.Peek8(pc+1)), 2
}

func dzeropagey(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("$%02X,Y", c.bus.Peek8(pc+1)), 2
}

func dabsolute(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("$%04X", peek16(c, pc+1)), 3
}

func dabsolutex(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("$%04X,X", peek16(c, pc+1)), 3
}

func dabsolutey(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("$%04X,Y", peek16(c, pc+1)), 3
}

func dindirect(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("($%04X)", peek16(c, pc+1)), 3
}

func dpreidx(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("($%02X,X)", c.bus.Peek8(pc+1)), 2
}

func dpostidx(c *CPU, pc uint16) (string, int) {
	return fmt.Sprintf("($%02X),Y", c.bus.Peek8(pc+1)), 2
}

func drelative(c *CPU, pc uint16) (string, int) {
	off := int8(c.bus.Peek8(pc + 1))
	return fmt.Sprintf("$%04X", uint16(int16(pc+2)+int16(off))), 2
}

func peek16(c *CPU, addr uint16) uint16 {
	lo := c.bus.Peek8(addr)
	hi := c.bus.Peek8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}
