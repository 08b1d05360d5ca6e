package hw

import (
	"testing"

	"beeb/hw/hwio"
)

const (
	viaBase  = 0xFE40
	addrORB  = viaBase + 0x0
	addrORA  = viaBase + 0x1
	addrDDRA = viaBase + 0x3
)

func newKeyboardBus(t *testing.T) (*hwio.Table, *Keyboard, *Lines) {
	t.Helper()
	lines := NewLines()
	kb := NewKeyboard(lines)
	tbl := hwio.NewTable("via")
	tbl.MapBank(viaBase, kb, 0)
	tbl.MapBank(viaBase, lines, 0)
	return tbl, kb, lines
}

func tickn(kb *Keyboard, n int) {
	for i := 0; i < n; i++ {
		kb.Tick()
	}
}

func TestKeyboardScanIRQ(t *testing.T) {
	tbl, kb, lines := newKeyboardBus(t)

	tbl.Write8(addrDDRA, 0x7F)
	tbl.Write8(addrORB, kbScanEnable)
	kb.KeyDown(2, 5)

	// the free-running counter starts at row 0; two advances reach row 2
	tickn(kb, rowScanInterval)
	if lines.PendingIRQ() {
		t.Fatal("row 1 strobed, no key there")
	}
	tickn(kb, rowScanInterval)
	if !lines.PendingIRQ() {
		t.Fatal("row 2 strobed with a key down, IRQ expected")
	}

	// level triggered: released key drops the line
	kb.KeyUp(2, 5)
	kb.Tick()
	if lines.PendingIRQ() {
		t.Error("key released, line should drop")
	}
}

func TestKeyboardScanDisable(t *testing.T) {
	tbl, kb, lines := newKeyboardBus(t)

	tbl.Write8(addrDDRA, 0x7F)
	tbl.Write8(addrORB, kbScanEnable)
	kb.KeyDown(0, 0)
	kb.Tick()
	if !lines.PendingIRQ() {
		t.Fatal("row 0 strobed with a key down")
	}

	tbl.Write8(addrORB, kbScanDisable)
	kb.Tick()
	if lines.PendingIRQ() {
		t.Error("scan disabled, line should drop")
	}

	// counter must not advance while disabled
	tickn(kb, 10*rowScanInterval)
	if kb.scanRow != 0 {
		t.Errorf("got scanRow=%d, want 0", kb.scanRow)
	}
}

func TestKeyboardReadback(t *testing.T) {
	tbl, kb, _ := newKeyboardBus(t)

	tbl.Write8(addrDDRA, 0x7F)
	tbl.Write8(addrORB, kbScanEnable)
	kb.KeyDown(3, 4)

	// address row 3, column 4
	tbl.Write8(addrORA, 0x34)
	if got := tbl.Read8(addrORA); got != 0xB4 {
		t.Errorf("got ORA=%02X, want B4", got)
	}

	// another position reads back clear
	tbl.Write8(addrORA, 0x35)
	if got := tbl.Read8(addrORA); got != 0x35 {
		t.Errorf("got ORA=%02X, want 35", got)
	}

	// bit 7 cannot be written
	tbl.Write8(addrORA, 0xB5)
	if kb.ORA.Value&0x80 != 0 {
		t.Error("bit 7 of ORA is read-only")
	}
}

func TestKeyboardSoftwareOverride(t *testing.T) {
	tbl, kb, lines := newKeyboardBus(t)

	tbl.Write8(addrDDRA, 0x7F)
	tbl.Write8(addrORB, kbScanEnable)
	kb.KeyDown(5, 2)

	// latch row 5 by hand: the free-running counter stops
	tbl.Write8(addrORA, 0x52)
	kb.Tick()
	if !lines.PendingIRQ() {
		t.Fatal("overridden row 5 has a key down")
	}
	tickn(kb, 10*rowScanInterval)
	if kb.scanRow != 0 {
		t.Errorf("got scanRow=%d, counter should not advance while overridden", kb.scanRow)
	}

	// re-enabling the scan clears the override
	tbl.Write8(addrORB, kbScanEnable)
	tickn(kb, rowScanInterval)
	if kb.scanRow != 1 {
		t.Errorf("got scanRow=%d, want 1", kb.scanRow)
	}
}

func TestKeyboardDDRAPassThrough(t *testing.T) {
	tbl, kb, _ := newKeyboardBus(t)

	// DDRA left at something else: both ports are plain storage
	tbl.Write8(addrDDRA, 0xFF)
	tbl.Write8(addrORB, kbScanEnable)
	kb.KeyDown(3, 4)

	tbl.Write8(addrORA, 0x34)
	if got := tbl.Read8(addrORA); got != 0x34 {
		t.Errorf("got ORA=%02X, want plain 34", got)
	}
	if kb.override {
		t.Error("no override latch without DDRA=7F")
	}
}

func TestKeyboardControlPatterns(t *testing.T) {
	tbl, kb, _ := newKeyboardBus(t)

	// unknown control values are stored verbatim, no side effects
	tbl.Write8(addrORB, 0x42)
	if kb.writeEnable {
		t.Error("unknown control value must not enable scanning")
	}
	if kb.ORB.Value != 0x42 {
		t.Errorf("got ORB=%02X, want 42", kb.ORB.Value)
	}
}

func TestLookupKey(t *testing.T) {
	pos, ok := LookupKey('a')
	if !ok || pos != (KeyPos{3, 1}) {
		t.Errorf("got %v %v", pos, ok)
	}
	// uppercase folds onto the same key
	upos, ok := LookupKey('A')
	if !ok || upos != pos {
		t.Errorf("got %v, want %v", upos, pos)
	}
	if _, ok := LookupKey('\x01'); ok {
		t.Error("unmapped rune should miss")
	}
}
