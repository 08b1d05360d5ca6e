package hw

import (
	"beeb/hw/hwio"

	log "beeb/emu/log"
)

const (
	numCRTCRegs = 18

	// one video frame at 50 Hz, counted in 2 MHz CPU cycles
	vsyncInterval = 40000
)

// CRTC is the 6845 register surface: an address register selecting one of
// R0-R17 and a data register accessing it. Only R12-R17 read back; the
// rest are write-only and read as 0. A frame counter raises the vertical
// sync interrupt once per frame; actual video rendering is external and
// reads the register file through Registers.
type CRTC struct {
	ADDR hwio.Reg8 `hwio:"offset=0x0,wcb"`
	DATA hwio.Reg8 `hwio:"offset=0x1,rcb,pcb,wcb"`

	lines  *Lines
	sel    uint8
	regs   [numCRTCRegs]uint8
	cycles int
}

func NewCRTC(lines *Lines) *CRTC {
	c := &CRTC{lines: lines}
	hwio.MustInitRegs(c)
	return c
}

func (c *CRTC) Reset() {
	c.sel = 0
	c.regs = [numCRTCRegs]uint8{}
	c.cycles = 0
}

// Tick advances the frame counter by one CPU cycle.
func (c *CRTC) Tick() {
	c.cycles++
	if c.cycles >= vsyncInterval {
		c.cycles = 0
		c.lines.Raise(IntVSync)
	}
}

// Registers returns a copy of the register file.
func (c *CRTC) Registers() [numCRTCRegs]uint8 {
	return c.regs
}

func (c *CRTC) WriteADDR(_, val uint8) {
	c.sel = val & 0x1F
}

func (c *CRTC) WriteDATA(_, val uint8) {
	if c.sel >= numCRTCRegs {
		log.ModCRTC.DebugZ("write to unknown register").Hex8("sel", c.sel).End()
		return
	}
	c.regs[c.sel] = val
}

func (c *CRTC) ReadDATA(_ uint8) uint8 {
	if c.sel >= 12 && c.sel < numCRTCRegs {
		return c.regs[c.sel]
	}
	return 0
}

func (c *CRTC) PeekDATA(_ uint8) uint8 {
	return c.ReadDATA(0)
}

// CRTCState is the snapshot-visible controller state.
type CRTCState struct {
	Sel    uint8   `json:"sel"`
	Regs   []uint8 `json:"regs"`
	Cycles int     `json:"cycles"`
}

func (c *CRTC) State() CRTCState {
	regs := c.Registers()
	return CRTCState{Sel: c.sel, Regs: regs[:], Cycles: c.cycles}
}

func (c *CRTC) SetState(st CRTCState) {
	c.sel = st.Sel & 0x1F
	c.regs = [numCRTCRegs]uint8{}
	copy(c.regs[:], st.Regs)
	c.cycles = st.Cycles
}
