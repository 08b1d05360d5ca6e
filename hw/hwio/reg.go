package hwio

// RegFlags describes the behavior of a Reg8 with respect to CPU accesses.
type RegFlags uint8

const (
	RegFlagReadWrite RegFlags = 0
	RegFlagReadOnly  RegFlags = 1 << iota // writes are ignored
	RegFlagWriteOnly                      // reads return open bus
)

// Reg8 is a 8-bit hardware register that can be mapped into a Table.
//
// The zero value is a plain read-write register. Callbacks, when set, hook
// the access path: ReadCb computes the value returned to the CPU, WriteCb
// runs after Value has been updated, PeekCb (rarely needed) overrides
// side-effect-free reads. RoMask marks bits that software writes cannot
// change.
type Reg8 struct {
	Name   string
	Value  uint8
	RoMask uint8
	Flags  RegFlags

	ReadCb  func(val uint8) uint8
	PeekCb  func(val uint8) uint8
	WriteCb func(old uint8, val uint8)
}

func (reg *Reg8) Read8(_ uint16, peek bool) uint8 {
	if !peek && reg.Flags&RegFlagWriteOnly != 0 {
		return 0xFF
	}
	if peek {
		if reg.PeekCb != nil {
			return reg.PeekCb(reg.Value)
		}
		return reg.Value
	}
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

func (reg *Reg8) Write8(_ uint16, val uint8) {
	if reg.Flags&RegFlagReadOnly != 0 {
		return
	}
	old := reg.Value
	reg.Value = (reg.Value & reg.RoMask) | (val &^ reg.RoMask)
	if reg.WriteCb != nil {
		reg.WriteCb(old, val)
	}
}
