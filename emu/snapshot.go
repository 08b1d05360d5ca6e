package emu

import (
	"fmt"
	"os"

	"beeb/hw"

	"github.com/go-faster/jx"
)

// CPUState is the register file portion of a snapshot.
type CPUState struct {
	A     uint8
	X     uint8
	Y     uint8
	SP    uint8
	PC    uint16
	P     uint8
	Clock int64
}

// Snapshot captures the full machine state: CPU registers, RAM contents
// and peripheral state. ROM images are not part of it, a snapshot is only
// restorable on a machine loaded with the same ROMs.
type Snapshot struct {
	CPU      CPUState
	RAM      []byte
	Keyboard hw.KeyboardState
	Lines    hw.LinesState
	CRTC     hw.CRTCState
}

// Snapshot captures the current machine state.
func (m *Machine) Snapshot() *Snapshot {
	ram := make([]byte, len(m.RAM.Data))
	copy(ram, m.RAM.Data)

	return &Snapshot{
		CPU: CPUState{
			A:     m.CPU.A,
			X:     m.CPU.X,
			Y:     m.CPU.Y,
			SP:    m.CPU.SP,
			PC:    m.CPU.PC,
			P:     uint8(m.CPU.P),
			Clock: m.CPU.Clock,
		},
		RAM:      ram,
		Keyboard: m.Kbd.State(),
		Lines:    m.Lines.State(),
		CRTC:     m.CRTC.State(),
	}
}

// Restore installs a snapshot. The interrupt controller is restored
// before the keyboard since the keyboard re-evaluates its interrupt
// level.
func (m *Machine) Restore(s *Snapshot) error {
	if len(s.RAM) != len(m.RAM.Data) {
		return fmt.Errorf("snapshot: ram is %d bytes, want %d", len(s.RAM), len(m.RAM.Data))
	}
	copy(m.RAM.Data, s.RAM)

	m.CPU.A = s.CPU.A
	m.CPU.X = s.CPU.X
	m.CPU.Y = s.CPU.Y
	m.CPU.SP = s.CPU.SP
	m.CPU.PC = s.CPU.PC
	m.CPU.P = hw.P(s.CPU.P)
	m.CPU.Clock = s.CPU.Clock

	m.Lines.SetState(s.Lines)
	m.Kbd.SetState(s.Keyboard)
	m.CRTC.SetState(s.CRTC)
	return nil
}

// SaveSnapshot writes the current machine state to path as JSON.
func SaveSnapshot(path string, m *Machine) error {
	var e jx.Encoder
	e.SetIdent(2)
	m.Snapshot().encode(&e)
	return os.WriteFile(path, e.Bytes(), 0644)
}

// LoadSnapshot restores the machine state from a file written by
// SaveSnapshot.
func LoadSnapshot(path string, m *Machine) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var s Snapshot
	if err := s.decode(jx.DecodeBytes(buf)); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	return m.Restore(&s)
}

func (s *Snapshot) encode(e *jx.Encoder) {
	e.ObjStart()

	e.FieldStart("cpu")
	e.ObjStart()
	e.FieldStart("a")
	e.Int(int(s.CPU.A))
	e.FieldStart("x")
	e.Int(int(s.CPU.X))
	e.FieldStart("y")
	e.Int(int(s.CPU.Y))
	e.FieldStart("sp")
	e.Int(int(s.CPU.SP))
	e.FieldStart("pc")
	e.Int(int(s.CPU.PC))
	e.FieldStart("p")
	e.Int(int(s.CPU.P))
	e.FieldStart("clock")
	e.Int64(s.CPU.Clock)
	e.ObjEnd()

	e.FieldStart("ram")
	e.Base64(s.RAM)

	e.FieldStart("keyboard")
	e.ObjStart()
	e.FieldStart("orb")
	e.Int(int(s.Keyboard.ORB))
	e.FieldStart("ora")
	e.Int(int(s.Keyboard.ORA))
	e.FieldStart("ddrb")
	e.Int(int(s.Keyboard.DDRB))
	e.FieldStart("ddra")
	e.Int(int(s.Keyboard.DDRA))
	e.FieldStart("write_enable")
	e.Bool(s.Keyboard.WriteEnable)
	e.FieldStart("override")
	e.Bool(s.Keyboard.Override)
	e.FieldStart("scan_row")
	e.Int(int(s.Keyboard.ScanRow))
	e.FieldStart("cycles")
	e.Int(s.Keyboard.Cycles)
	e.ObjEnd()

	e.FieldStart("lines")
	e.ObjStart()
	e.FieldStart("flags")
	e.Int(int(s.Lines.Flags))
	e.FieldStart("levels")
	e.Int(int(s.Lines.Levels))
	e.FieldStart("ier")
	e.Int(int(s.Lines.IER))
	e.FieldStart("nmi")
	e.Bool(s.Lines.NMI)
	e.ObjEnd()

	e.FieldStart("crtc")
	e.ObjStart()
	e.FieldStart("sel")
	e.Int(int(s.CRTC.Sel))
	e.FieldStart("regs")
	e.Base64(s.CRTC.Regs)
	e.FieldStart("cycles")
	e.Int(s.CRTC.Cycles)
	e.ObjEnd()

	e.ObjEnd()
}

func (s *Snapshot) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "cpu":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "a":
					return dec8(d, &s.CPU.A)
				case "x":
					return dec8(d, &s.CPU.X)
				case "y":
					return dec8(d, &s.CPU.Y)
				case "sp":
					return dec8(d, &s.CPU.SP)
				case "pc":
					v, err := d.Int()
					s.CPU.PC = uint16(v)
					return err
				case "p":
					return dec8(d, &s.CPU.P)
				case "clock":
					v, err := d.Int64()
					s.CPU.Clock = v
					return err
				}
				return d.Skip()
			})
		case "ram":
			buf, err := d.Base64()
			s.RAM = buf
			return err
		case "keyboard":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "orb":
					return dec8(d, &s.Keyboard.ORB)
				case "ora":
					return dec8(d, &s.Keyboard.ORA)
				case "ddrb":
					return dec8(d, &s.Keyboard.DDRB)
				case "ddra":
					return dec8(d, &s.Keyboard.DDRA)
				case "write_enable":
					v, err := d.Bool()
					s.Keyboard.WriteEnable = v
					return err
				case "override":
					v, err := d.Bool()
					s.Keyboard.Override = v
					return err
				case "scan_row":
					return dec8(d, &s.Keyboard.ScanRow)
				case "cycles":
					v, err := d.Int()
					s.Keyboard.Cycles = v
					return err
				}
				return d.Skip()
			})
		case "lines":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "flags":
					return dec8(d, &s.Lines.Flags)
				case "levels":
					return dec8(d, &s.Lines.Levels)
				case "ier":
					return dec8(d, &s.Lines.IER)
				case "nmi":
					v, err := d.Bool()
					s.Lines.NMI = v
					return err
				}
				return d.Skip()
			})
		case "crtc":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "sel":
					return dec8(d, &s.CRTC.Sel)
				case "regs":
					buf, err := d.Base64()
					s.CRTC.Regs = buf
					return err
				case "cycles":
					v, err := d.Int()
					s.CRTC.Cycles = v
					return err
				}
				return d.Skip()
			})
		}
		return d.Skip()
	})
}

func dec8(d *jx.Decoder, dst *uint8) error {
	v, err := d.Int()
	*dst = uint8(v)
	return err
}
