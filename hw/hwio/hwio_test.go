package hwio

import "testing"

type testDevice struct {
	REG1 Reg8 `hwio:"bank=0,offset=0x1,reset=0x99,rwmask=0x77,wcb"`
	REG2 Reg8 `hwio:"bank=0,offset=0x2,rcb"`
	REG3 Reg8 `hwio:"bank=1,offset=0x0,readonly"`
	RAM  Mem  `hwio:"bank=0,offset=0x4,size=0x4,vsize=0x8"`

	lastOld, lastVal uint8
	nreads           int
}

func (d *testDevice) WriteREG1(old, val uint8) {
	d.lastOld, d.lastVal = old, val
}

func (d *testDevice) ReadREG2(val uint8) uint8 {
	d.nreads++
	return val | 0x80
}

func TestInitRegs(t *testing.T) {
	var dev testDevice
	MustInitRegs(&dev)

	if dev.REG1.Name != "REG1" {
		t.Errorf("REG1 name: got %q, want REG1", dev.REG1.Name)
	}
	if dev.REG1.Value != 0x99 {
		t.Errorf("REG1 reset: got %02x, want 99", dev.REG1.Value)
	}
	if dev.REG1.RoMask != 0x88 {
		t.Errorf("REG1 romask: got %02x, want 88", dev.REG1.RoMask)
	}
	if dev.REG3.Flags&RegFlagReadOnly == 0 {
		t.Error("REG3 should be readonly")
	}
	if len(dev.RAM.Data) != 4 || dev.RAM.VSize != 8 {
		t.Errorf("RAM sizing: got len=%d vsize=%d", len(dev.RAM.Data), dev.RAM.VSize)
	}
}

func TestMapBank(t *testing.T) {
	var dev testDevice
	tbl := NewTable("test")
	tbl.MapBank(0x4000, &dev, 0)

	// rwmask: bits outside the mask keep their reset value, wcb sees
	// the raw written value
	tbl.Write8(0x4001, 0x00)
	if dev.REG1.Value != 0x88 {
		t.Errorf("REG1 after write: got %02x, want 88", dev.REG1.Value)
	}
	if dev.lastOld != 0x99 || dev.lastVal != 0x00 {
		t.Errorf("wcb args: got old=%02x val=%02x", dev.lastOld, dev.lastVal)
	}

	// rcb transforms the value on normal reads only
	dev.REG2.Value = 0x12
	if got := tbl.Read8(0x4002); got != 0x92 {
		t.Errorf("REG2 read: got %02x, want 92", got)
	}
	if got := tbl.Peek8(0x4002); got != 0x12 {
		t.Errorf("REG2 peek: got %02x, want 12", got)
	}
	if dev.nreads != 1 {
		t.Errorf("rcb calls: got %d, want 1", dev.nreads)
	}

	// bank 1 registers are not mapped
	if got := tbl.Read8(0x4000); got != 0xFF {
		t.Errorf("unmapped read: got %02x, want ff", got)
	}
}

func TestMemMirroring(t *testing.T) {
	var dev testDevice
	tbl := NewTable("test")
	tbl.MapBank(0x8000, &dev, 0)

	tbl.Write8(0x8004, 0xAB)
	if got := tbl.Read8(0x8008); got != 0xAB {
		t.Errorf("mirrored read: got %02x, want ab", got)
	}
}

func TestMapMemorySlice(t *testing.T) {
	rom := make([]byte, 0x100)
	rom[0x20] = 0x42
	tbl := NewTable("test")
	tbl.MapMemorySlice(0xC000, rom, true)

	if got := tbl.Read8(0xC020); got != 0x42 {
		t.Errorf("rom read: got %02x, want 42", got)
	}
	tbl.Write8(0xC020, 0x00)
	if rom[0x20] != 0x42 {
		t.Error("rom write should be ignored")
	}
}

func TestCheckCovered(t *testing.T) {
	tbl := NewTable("test")
	tbl.MapMemorySlice(0x0000, make([]byte, 0x100), false)
	tbl.MapMemorySlice(0x0200, make([]byte, 0x100), false)

	if err := tbl.CheckCovered(0x0000, 0x00FF); err != nil {
		t.Errorf("covered range: got %v", err)
	}
	err := tbl.CheckCovered(0x0000, 0x02FF)
	uerr, ok := err.(*UnmappedAddressError)
	if !ok {
		t.Fatalf("got %v, want UnmappedAddressError", err)
	}
	if uerr.Addr != 0x0100 {
		t.Errorf("gap addr: got %04x, want 0100", uerr.Addr)
	}
}

func TestUnmapSplit(t *testing.T) {
	buf := make([]byte, 0x400)
	tbl := NewTable("test")
	tbl.MapMemorySlice(0x0000, buf, false)
	tbl.Unmap(0x0100, 0x01FF)

	tbl.Write8(0x0000, 0x11)
	tbl.Write8(0x0200, 0x22)
	if buf[0x000] != 0x11 || buf[0x200] != 0x22 {
		t.Error("surviving portions should stay mapped")
	}
	if got := tbl.Read8(0x0100); got != 0xFF {
		t.Errorf("unmapped hole: got %02x, want ff", got)
	}
}

func TestInsertOverlap(t *testing.T) {
	tbl := NewTable("test")
	tbl.MapMemorySlice(0x1000, make([]byte, 0x100), false)

	defer func() {
		if recover() == nil {
			t.Error("overlapping map should panic")
		}
	}()
	tbl.MapMemorySlice(0x1080, make([]byte, 0x100), false)
}
