package hw

import (
	"beeb/hw/hwio"

	log "beeb/emu/log"
)

// Interrupt sources, one bit each in the flag/enable registers. The bit
// positions follow the system VIA: keyboard on CA2, vertical sync on CA1,
// the system timer on T1.
type IntSource uint8

const (
	IntKeyboard IntSource = 1 << 0
	IntVSync    IntSource = 1 << 1

	// IntTimer is the T1 slot. No timer is emulated; the bit is
	// reserved so OS code programming the IER for it behaves as on
	// real hardware.
	IntTimer IntSource = 1 << 6

	intAll = uint8(IntKeyboard | IntVSync | IntTimer)
)

// Lines is the interrupt controller: it latches edge-triggered sources,
// tracks level-triggered ones, and exposes the flag and enable registers
// at offsets 0x0D/0x0E of the system VIA bank.
//
// IFR reads return the pending flags with bit 7 set while any enabled
// source is asserted; writing 1s acknowledges (clears) edge flags, while
// level sources immediately re-assert. IER writes follow the 6522
// protocol: bit 7 selects whether the written 1s enable or disable.
type Lines struct {
	IFR hwio.Reg8 `hwio:"offset=0x0D,rcb,wcb,pcb"`
	IER hwio.Reg8 `hwio:"offset=0x0E,rcb,wcb,pcb"`

	flags  uint8 // asserted sources (edge latched + level)
	levels uint8 // currently asserted level sources
	ier    uint8 // enable mask, bit 7 tracked as written
	nmi    bool
}

func NewLines() *Lines {
	l := &Lines{}
	hwio.MustInitRegs(l)
	l.Reset()
	return l
}

// Reset clears all pending state. All sources come up enabled so that
// bare machines (no OS image programming the IER) still deliver
// interrupts; an OS that wants masking writes the IER itself.
func (l *Lines) Reset() {
	l.flags = 0
	l.levels = 0
	l.ier = 0x80 | intAll
	l.nmi = false
}

// Raise latches an edge-triggered source. It stays pending until
// acknowledged through Ack or an IFR write.
func (l *Lines) Raise(src IntSource) {
	l.flags |= uint8(src)
	log.ModIRQ.DebugZ("raise").Hex8("src", uint8(src)).End()
}

// SetLevel asserts or releases a level-triggered source.
func (l *Lines) SetLevel(src IntSource, on bool) {
	if on {
		l.levels |= uint8(src)
		l.flags |= uint8(src)
	} else {
		l.levels &^= uint8(src)
		l.flags &^= uint8(src)
	}
}

// Ack clears a latched source. A level source still asserted re-raises
// immediately.
func (l *Lines) Ack(src IntSource) {
	l.flags &^= uint8(src)
	l.flags |= l.levels
}

func (l *Lines) PendingIRQ() bool {
	return l.flags&l.ier&0x7F != 0
}

func (l *Lines) RaiseNMI() {
	l.nmi = true
}

func (l *Lines) PendingNMI() bool {
	return l.nmi
}

// AckNMI clears the NMI latch; the CPU calls it when servicing.
func (l *Lines) AckNMI() {
	l.nmi = false
}

func (l *Lines) ReadIFR(_ uint8) uint8 {
	v := l.flags & 0x7F
	if v&l.ier != 0 {
		v |= 0x80
	}
	return v
}

func (l *Lines) PeekIFR(_ uint8) uint8 {
	return l.ReadIFR(0)
}

func (l *Lines) WriteIFR(_, val uint8) {
	l.flags &^= val & 0x7F
	l.flags |= l.levels
}

func (l *Lines) PeekIER(_ uint8) uint8 {
	return l.ReadIER(0)
}

// IER reads always have bit 7 set, whatever the last write stored.
func (l *Lines) ReadIER(_ uint8) uint8 {
	return 0x80 | (l.ier & 0x7F)
}

// LinesState is the snapshot-visible controller state.
type LinesState struct {
	Flags  uint8 `json:"flags"`
	Levels uint8 `json:"levels"`
	IER    uint8 `json:"ier"`
	NMI    bool  `json:"nmi"`
}

func (l *Lines) State() LinesState {
	return LinesState{Flags: l.flags, Levels: l.levels, IER: l.ier, NMI: l.nmi}
}

func (l *Lines) SetState(st LinesState) {
	l.flags = st.Flags
	l.levels = st.Levels
	l.ier = st.IER
	l.nmi = st.NMI
}

func (l *Lines) WriteIER(_, val uint8) {
	if val&0x80 != 0 {
		l.ier |= val
	} else {
		l.ier &^= val | 0x80
	}
}
