package hw

import "testing"

func TestIFRWriteClearsBits(t *testing.T) {
	l := NewLines()
	l.flags = 0x23

	l.WriteIFR(0, 0xA1)
	if got := l.ReadIFR(0); got != 0x82 {
		t.Errorf("got IFR=%02X, want 82", got)
	}
}

func TestIFRTopBit(t *testing.T) {
	l := NewLines()

	if got := l.ReadIFR(0); got != 0x00 {
		t.Errorf("idle IFR: got %02X, want 00", got)
	}
	l.Raise(IntVSync)
	if got := l.ReadIFR(0); got != 0x80|uint8(IntVSync) {
		t.Errorf("got IFR=%02X, want %02X", got, 0x80|uint8(IntVSync))
	}

	// a masked source pends in the flags but does not assert the line
	l.WriteIER(0, uint8(IntVSync)) // disable
	if got := l.ReadIFR(0); got != uint8(IntVSync) {
		t.Errorf("got IFR=%02X, want %02X", got, uint8(IntVSync))
	}
	if l.PendingIRQ() {
		t.Error("masked source should not pend an IRQ")
	}
}

func TestIERProtocol(t *testing.T) {
	l := NewLines()
	l.ier = 0x83

	l.WriteIER(0, 0x02)
	if l.ier != 0x01 {
		t.Errorf("got ier=%02X, want 01", l.ier)
	}
	l.WriteIER(0, 0xA2)
	if l.ier != 0xA3 {
		t.Errorf("got ier=%02X, want A3", l.ier)
	}

	l.ier = 0x01
	l.WriteIER(0, 0x7F)
	if l.ier != 0x00 {
		t.Errorf("got ier=%02X, want 00", l.ier)
	}
}

func TestIERReadsWithTopBitSet(t *testing.T) {
	l := NewLines()
	l.ier = 0x83

	// a disable write stores bit 7 clear, but reads always set it
	l.WriteIER(0, 0x02)
	if got := l.ReadIER(0); got != 0x81 {
		t.Errorf("got IER=%02X, want 81", got)
	}
	if got := l.PeekIER(0); got != 0x81 {
		t.Errorf("got IER peek=%02X, want 81", got)
	}

	l.WriteIER(0, 0xA2)
	if got := l.ReadIER(0); got != 0xA3 {
		t.Errorf("got IER=%02X, want A3", got)
	}
}

func TestEdgeLatching(t *testing.T) {
	l := NewLines()

	l.Raise(IntVSync)
	if !l.PendingIRQ() {
		t.Fatal("edge source should latch")
	}
	// still pending until acknowledged
	if !l.PendingIRQ() {
		t.Fatal("latch should persist")
	}
	l.Ack(IntVSync)
	if l.PendingIRQ() {
		t.Error("ack should clear the latch")
	}
}

func TestLevelReasserts(t *testing.T) {
	l := NewLines()

	l.SetLevel(IntKeyboard, true)
	if !l.PendingIRQ() {
		t.Fatal("level source should assert")
	}
	// acknowledging an asserted level source does not clear it
	l.WriteIFR(0, uint8(IntKeyboard))
	if !l.PendingIRQ() {
		t.Error("asserted level source should re-raise after IFR write")
	}
	l.SetLevel(IntKeyboard, false)
	if l.PendingIRQ() {
		t.Error("released level source should clear")
	}
}

func TestNMILatch(t *testing.T) {
	l := NewLines()

	if l.PendingNMI() {
		t.Fatal("no NMI at reset")
	}
	l.RaiseNMI()
	if !l.PendingNMI() {
		t.Fatal("NMI should latch")
	}
	l.AckNMI()
	if l.PendingNMI() {
		t.Error("NMI should clear when serviced")
	}
}
