package hw

import (
	"fmt"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = 0xFFFA // Non-Maskable Interrupt
	ResetVector = 0xFFFC // Reset
	IRQVector   = 0xFFFE // Interrupt Request
)

// Bus is the CPU view of the memory map. Peek8 must be free of side
// effects; it is what the disassembler and debugger use.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
	Peek8(addr uint16) uint8
}

// Ticker receives one callback per CPU cycle, keeping peripheral time in
// lock-step with the CPU.
type Ticker interface {
	Tick()
}

type CPU struct {
	bus Bus
	A   uint8
	X   uint8
	Y   uint8
	SP  uint8
	PC  uint16
	P   P

	Clock int64 // cycles

	// Lines, when set, is polled at each instruction boundary.
	Lines *Lines

	t Ticker // tick callback
}

// IllegalOpcodeError is returned by Step when the fetched opcode has no
// implementation. The CPU is left with PC still at the offending opcode so
// its state can be inspected.
type IllegalOpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode %02X at $%04X", e.Opcode, e.PC)
}

// NewCPU creates a new CPU at power-up state.
func NewCPU(bus Bus, ticker Ticker) *CPU {
	cpu := &CPU{
		bus: bus,
		A:   0x00,
		X:   0x00,
		Y:   0x00,
		SP:  0xFD,
		P:   0x00,
		PC:  0x0000,
		t:   ticker,
	}
	return cpu
}

func (c *CPU) Reset() {
	c.PC = c.Read16(ResetVector)
	c.SP = 0xFD
	c.P = 0x34
}

// Step executes one instruction, servicing any pending interrupt first.
// The returned StepInfo describes the instruction about to execute, with
// the register state as it was at the boundary.
func (c *CPU) Step() (StepInfo, error) {
	if c.Lines != nil {
		if c.Lines.PendingNMI() {
			c.interrupt(NMIVector)
			c.Lines.AckNMI()
		} else if c.Lines.PendingIRQ() && !c.P.I() {
			c.interrupt(IRQVector)
		}
	}

	info := c.stepInfo()
	opcode := c.Read8(c.PC)
	op := ops[opcode]
	if op == nil {
		return info, &IllegalOpcodeError{PC: info.PC, Opcode: opcode}
	}
	op(c)
	return info, nil
}

// Run steps the CPU until the clock reaches the target cycle count.
func (c *CPU) Run(until int64) error {
	for c.Clock < until {
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// interrupt performs the 7-cycle interrupt sequence: the return address
// and status (B clear) are stacked, I is set and PC loads from vector.
func (c *CPU) interrupt(vector uint16) {
	c.tick()
	c.tick()
	push16(c, c.PC)
	p := c.P
	p.clearBit(pbitB)
	p.setBit(pbitU)
	push8(c, uint8(p))
	c.P.writeBit(pbitI, true)
	c.PC = c.Read16(vector)
}

func (c *CPU) tick() {
	if c.t != nil {
		c.t.Tick()
	}
	c.Clock++
}

func (c *CPU) Read8(addr uint16) uint8 {
	c.tick()
	return c.bus.Read8(addr)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.tick()
	c.bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) Write16(addr uint16, val uint16) {
	lo := uint8(val & 0xff)
	hi := uint8(val >> 8)
	c.Write8(addr, lo)
	c.Write8(addr+1, hi)
}

// P is the 6502 Processor Status Register.
type P uint8

const (
	pbitN = 7 - iota // Negative flag
	pbitV            // oVerflow flag
	pbitU            // Unused
	pbitB            // Break flag
	pbitD            // Decimal mode flag
	pbitI            // Interrupt disable flag
	pbitZ            // Zero flag
	pbitC            // Carry flag
)

func (p P) N() bool { return p&(1<<pbitN) != 0 }
func (p P) V() bool { return p&(1<<pbitV) != 0 }
func (p P) B() bool { return p&(1<<pbitB) != 0 }
func (p P) D() bool { return p&(1<<pbitD) != 0 }
func (p P) I() bool { return p&(1<<pbitI) != 0 }
func (p P) Z() bool { return p&(1<<pbitZ) != 0 }
func (p P) C() bool { return p&(1<<pbitC) != 0 }

func (p *P) checkNZ(v uint8) {
	p.writeBit(pbitN, v&0x80 != 0)
	p.writeBit(pbitZ, v == 0)
}

// sets N flag if bit 7 of v is set, clears it otherwise.
func (p *P) checkN(v uint8) {
	p.writeBit(pbitN, v&(1<<7) != 0)
}

// sets Z flag if v == 0, clears it otherwise.
func (p *P) checkZ(v uint8) {
	p.writeBit(pbitZ, v == 0)
}

func (p *P) checkCV(x, y uint8, sum uint16) {
	// forward carry or unsigned overflow.
	p.writeBit(pbitC, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	v := (uint16(x) ^ sum) & (uint16(y) ^ sum) & 0x80
	p.writeBit(pbitV, v != 0)
}

func (p *P) writeBit(i int, v bool) {
	if v {
		p.setBit(i)
	} else {
		p.clearBit(i)
	}
}

func (p *P) setBit(i int) {
	*p |= P(1 << i)
}

func (p *P) clearBit(i int) {
	*p &= ^(1 << i) & 0xff
}

func (p *P) ibit(i int) uint8 {
	return (uint8(*p) & (1 << i)) >> i
}

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := 0; i < 8; i++ {
		s[i] = bits[i+int(8*p.ibit(7-i))]
	}
	return string(s)
}

func b2i(b bool) byte {
	if b {
		return 1
	}
	return 0
}
