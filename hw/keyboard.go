package hw

import (
	"sync"

	"beeb/hw/hwio"

	log "beeb/emu/log"
)

const (
	numKeyRows = 7
	numKeyCols = 10

	// control port command patterns, as issued by the OS keyboard driver
	kbScanEnable  = 0x0B
	kbScanDisable = 0x03

	// free-running scan advances to the next row this often
	rowScanInterval = 128 // CPU cycles
)

// Keyboard is the matrix-scanned keyboard controller behind the system
// VIA ports. Port A (ORA) addresses a matrix position: bits 0-3 column,
// bits 4-6 row; bit 7 reads back whether that key is down. Port B (ORB)
// is the control port: kbScanEnable starts the free-running row scan,
// kbScanDisable stops it, anything else is plain register storage.
//
// All scanning behavior requires DDRA to be exactly 0x7F; with any other
// data direction both ports degrade to plain registers.
//
// KeyDown and KeyUp may be called from other goroutines; the interrupt
// level is re-evaluated at CPU cycle boundaries.
type Keyboard struct {
	ORB  hwio.Reg8 `hwio:"offset=0x0,wcb"`
	ORA  hwio.Reg8 `hwio:"offset=0x1,rwmask=0x7f,rcb,pcb,wcb"`
	DDRB hwio.Reg8 `hwio:"offset=0x2"`
	DDRA hwio.Reg8 `hwio:"offset=0x3"`

	lines *Lines

	mu     sync.Mutex
	matrix [numKeyRows]uint16 // row -> column bitmask

	writeEnable bool
	override    bool // software row/col latched in ORA
	scanRow     uint8
	cycles      int
}

func NewKeyboard(lines *Lines) *Keyboard {
	kb := &Keyboard{lines: lines}
	hwio.MustInitRegs(kb)
	return kb
}

func (kb *Keyboard) Reset() {
	kb.mu.Lock()
	kb.matrix = [numKeyRows]uint16{}
	kb.mu.Unlock()

	kb.ORB.Value = 0
	kb.ORA.Value = 0
	kb.DDRB.Value = 0
	kb.DDRA.Value = 0
	kb.writeEnable = false
	kb.override = false
	kb.scanRow = 0
	kb.cycles = 0
	kb.updateIRQ()
}

// KeyDown marks a matrix position as pressed. Safe for concurrent use.
func (kb *Keyboard) KeyDown(row, col uint8) {
	if row >= numKeyRows || col >= numKeyCols {
		return
	}
	kb.mu.Lock()
	kb.matrix[row] |= 1 << col
	kb.mu.Unlock()
}

// KeyUp marks a matrix position as released. Safe for concurrent use.
func (kb *Keyboard) KeyUp(row, col uint8) {
	if row >= numKeyRows || col >= numKeyCols {
		return
	}
	kb.mu.Lock()
	kb.matrix[row] &^= 1 << col
	kb.mu.Unlock()
}

// Tick advances keyboard time by one CPU cycle. The free-running scan
// only runs while write-enabled and not overridden by a software write
// to the row/col port.
func (kb *Keyboard) Tick() {
	if kb.writeEnable && !kb.override {
		kb.cycles++
		if kb.cycles >= rowScanInterval {
			kb.cycles = 0
			kb.scanRow = (kb.scanRow + 1) % numKeyRows
		}
	}
	kb.updateIRQ()
}

func (kb *Keyboard) scanning() bool {
	return kb.DDRA.Value == 0x7F
}

// strobedRow is the row currently driven: the software-latched one when
// overridden, the free-running counter otherwise.
func (kb *Keyboard) strobedRow() uint8 {
	if kb.override {
		return (kb.ORA.Value >> 4) & 0x07
	}
	return kb.scanRow
}

// The keyboard line is level-triggered: asserted exactly while scanning
// is write-enabled and the strobed row has at least one key down.
func (kb *Keyboard) updateIRQ() {
	on := false
	if kb.writeEnable {
		row := kb.strobedRow()
		if row < numKeyRows {
			kb.mu.Lock()
			on = kb.matrix[row] != 0
			kb.mu.Unlock()
		}
	}
	kb.lines.SetLevel(IntKeyboard, on)
}

func (kb *Keyboard) keyAt(val uint8) bool {
	row := (val >> 4) & 0x07
	col := val & 0x0F
	if row >= numKeyRows || col >= numKeyCols {
		return false
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.matrix[row]&(1<<col) != 0
}

func (kb *Keyboard) WriteORB(_, val uint8) {
	switch val {
	case kbScanEnable:
		kb.writeEnable = true
		kb.override = false
		kb.updateIRQ()
	case kbScanDisable:
		kb.writeEnable = false
		kb.updateIRQ()
	default:
		log.ModKbd.DebugZ("control port write").Hex8("val", val).End()
	}
}

func (kb *Keyboard) WriteORA(_, val uint8) {
	if !kb.scanning() {
		return
	}
	kb.override = true
	kb.updateIRQ()
}

func (kb *Keyboard) ReadORA(val uint8) uint8 {
	if kb.scanning() && kb.keyAt(val) {
		return val | 0x80
	}
	return val
}

func (kb *Keyboard) PeekORA(val uint8) uint8 {
	return kb.ReadORA(val)
}

// KeyboardState is the snapshot-visible controller state. The host key
// matrix is transient input and is not part of it.
type KeyboardState struct {
	ORB  uint8 `json:"orb"`
	ORA  uint8 `json:"ora"`
	DDRB uint8 `json:"ddrb"`
	DDRA uint8 `json:"ddra"`

	WriteEnable bool  `json:"write_enable"`
	Override    bool  `json:"override"`
	ScanRow     uint8 `json:"scan_row"`
	Cycles      int   `json:"cycles"`
}

func (kb *Keyboard) State() KeyboardState {
	return KeyboardState{
		ORB:         kb.ORB.Value,
		ORA:         kb.ORA.Value,
		DDRB:        kb.DDRB.Value,
		DDRA:        kb.DDRA.Value,
		WriteEnable: kb.writeEnable,
		Override:    kb.override,
		ScanRow:     kb.scanRow,
		Cycles:      kb.cycles,
	}
}

func (kb *Keyboard) SetState(st KeyboardState) {
	kb.ORB.Value = st.ORB
	kb.ORA.Value = st.ORA
	kb.DDRB.Value = st.DDRB
	kb.DDRA.Value = st.DDRA
	kb.writeEnable = st.WriteEnable
	kb.override = st.Override
	kb.scanRow = st.ScanRow % numKeyRows
	kb.cycles = st.Cycles
	kb.updateIRQ()
}
