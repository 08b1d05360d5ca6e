package hwio

import (
	"fmt"

	log "beeb/emu/log"
)

// BankIO8 is the interface implemented by devices that can be mapped into a
// Table. Read8 receives a peek flag: when true, the access must be free of
// side effects (used by debuggers and tracers).
type BankIO8 interface {
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// UnmappedAddressError reports a hole in a bus address range that the
// machine requires to be fully covered. It is detected at power-up, before
// any emulation runs.
type UnmappedAddressError struct {
	Bus  string
	Addr uint16
}

func (e *UnmappedAddressError) Error() string {
	return fmt.Sprintf("%s: unmapped address %04x", e.Bus, e.Addr)
}

// Table is a 16-bit addressable bus. Devices (registers, memories, banks)
// are mapped at power-up; reads and writes are dispatched to the mapped
// device, and accesses to holes are logged and return the open-bus value.
type Table struct {
	Name string

	table8 rangeIndex
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Reset() {
	t.table8 = rangeIndex{}
}

// MapReg8 maps a single 8-bit register at addr.
func (t *Table) MapReg8(addr uint16, reg *Reg8) {
	if err := t.table8.InsertRange(addr, addr, reg); err != nil {
		panic(err)
	}
}

// MapMem maps a memory at addr. The visible size is mem.VSize (the backing
// buffer is mirrored across it when smaller).
func (t *Table) MapMem(addr uint16, mem *Mem) {
	io, size := mem.bankIO()
	if err := t.table8.InsertRange(addr, addr+uint16(size-1), io); err != nil {
		panic(err)
	}
}

// MapMemorySlice maps a raw buffer at [addr, addr+len(buf)-1] without
// requiring a power-of-two size. Useful for ROM images.
func (t *Table) MapMemorySlice(addr uint16, buf []byte, readonly bool) {
	mem := &Mem{Data: buf, VSize: len(buf)}
	if readonly {
		mem.Flags = MemFlag8ReadOnly
	}
	io := &memIO{mem: mem, mask: 0xFFFF, base: addr}
	if err := t.table8.InsertRange(addr, addr+uint16(len(buf)-1), io); err != nil {
		panic(err)
	}
}

// MapBank maps all the hwio-tagged fields of the specified bank of a device
// structure. See InitRegs for the tag syntax.
func (t *Table) MapBank(addr uint16, bank interface{}, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}
	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("hwio: invalid reg type: %T", reg.regPtr))
		}
	}
}

// FillRange maps io over every hole left in [start, end]. Used to plug
// open-bus filler around sparsely mapped device registers.
func (t *Table) FillRange(start, end uint16, io BankIO8) {
	for {
		gap, ok := t.table8.firstGap(start, end)
		if !ok {
			return
		}
		gapEnd := end
		if idx := t.table8.lowerBound(gap); idx < len(t.table8.entries) {
			if next := t.table8.entries[idx].start; next <= end {
				gapEnd = next - 1
			}
		}
		if err := t.table8.InsertRange(gap, gapEnd, io); err != nil {
			panic(err)
		}
	}
}

func (t *Table) Unmap(start, end uint16) {
	t.table8.RemoveRange(start, end)
}

// CheckCovered verifies that every address in [start, end] is mapped,
// returning an *UnmappedAddressError for the first hole found.
func (t *Table) CheckCovered(start, end uint16) error {
	if addr, ok := t.table8.firstGap(start, end); ok {
		return &UnmappedAddressError{Bus: t.Name, Addr: addr}
	}
	return nil
}

func (t *Table) Read8(addr uint16) uint8 {
	if io := t.table8.Search(addr); io != nil {
		return io.Read8(addr, false)
	}
	log.ModHwIo.WarnZ("unmapped Read8").
		String("name", t.Name).
		Hex16("addr", addr).
		End()
	return 0xFF
}

// Peek8 reads addr without triggering side effects.
func (t *Table) Peek8(addr uint16) uint8 {
	if io := t.table8.Search(addr); io != nil {
		return io.Read8(addr, true)
	}
	return 0xFF
}

func (t *Table) Write8(addr uint16, val uint8) {
	if io := t.table8.Search(addr); io != nil {
		io.Write8(addr, val)
		return
	}
	log.ModHwIo.WarnZ("unmapped Write8").
		String("name", t.Name).
		Hex16("addr", addr).
		Hex8("val", val).
		End()
}

// Read16 is a little-endian convenience over two Read8 calls.
func (t *Table) Read16(addr uint16) uint16 {
	lo := t.Read8(addr)
	hi := t.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (t *Table) Peek16(addr uint16) uint16 {
	lo := t.Peek8(addr)
	hi := t.Peek8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}
