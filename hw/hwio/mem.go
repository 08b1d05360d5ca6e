package hwio

import "fmt"

// MemFlags describes the behavior of a Mem with respect to CPU accesses.
type MemFlags uint8

const (
	MemFlag8          MemFlags = 0
	MemFlag8ReadOnly  MemFlags = 1 << iota // writes are ignored
	MemFlag8WriteOnly                      // reads return open bus
)

// Mem is a linear memory buffer that can be mapped into a Table. When VSize
// is larger than len(Data), the buffer is mirrored across the visible range;
// both sizes must be powers of two for the mirroring mask to work.
type Mem struct {
	Name  string
	Data  []byte
	VSize int
	Flags MemFlags

	// WriteCb, when set, is invoked after a write lands in Data.
	WriteCb func(addr uint16, val uint8)
}

func isPow2(n int) bool { return n != 0 && n&(n-1) == 0 }

func (m *Mem) bankIO() (BankIO8, int) {
	size := m.VSize
	if size == 0 {
		size = len(m.Data)
	}
	if !isPow2(len(m.Data)) || !isPow2(size) {
		panic(fmt.Errorf("hwio: mem %q size is not a power of two", m.Name))
	}
	if size < len(m.Data) {
		panic(fmt.Errorf("hwio: mem %q vsize smaller than data", m.Name))
	}
	return &memIO{mem: m, mask: uint16(len(m.Data) - 1)}, size
}

// memIO adapts a Mem to BankIO8, applying the mirroring mask. base is the
// mapping address for non-pow2 slices mapped through MapMemorySlice.
type memIO struct {
	mem  *Mem
	mask uint16
	base uint16
}

func (io *memIO) Read8(addr uint16, peek bool) uint8 {
	if !peek && io.mem.Flags&MemFlag8WriteOnly != 0 {
		return 0xFF
	}
	return io.mem.Data[(addr-io.base)&io.mask]
}

func (io *memIO) Write8(addr uint16, val uint8) {
	if io.mem.Flags&MemFlag8ReadOnly != 0 {
		return
	}
	off := (addr - io.base) & io.mask
	io.mem.Data[off] = val
	if io.mem.WriteCb != nil {
		io.mem.WriteCb(addr, val)
	}
}
