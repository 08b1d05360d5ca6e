package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Devices describe their register banks with hwio struct tags:
//
//	type Dev struct {
//	    STATUS hwio.Reg8 `hwio:"bank=0,offset=0x4,readonly,rcb"`
//	    RAM    hwio.Mem  `hwio:"bank=0,offset=0x0,size=0x100"`
//	}
//
// Supported keys: bank, offset, size, vsize, reset (initial value),
// rwmask (bits writable by software), readonly, writeonly, rcb, wcb, pcb.
// The callback keys bind the register to methods on the device named after
// the field: rcb looks for ReadSTATUS(val uint8) uint8, wcb for
// WriteSTATUS(old, val uint8), pcb for PeekSTATUS(val uint8) uint8.

type taggedReg struct {
	name   string
	offset uint16
	regPtr interface{}
}

type tagOpts struct {
	bank      int
	offset    uint16
	size      int
	vsize     int
	reset     uint8
	hasReset  bool
	rwmask    uint8
	hasRwmask bool
	readonly  bool
	writeonly bool
	rcb       bool
	wcb       bool
	pcb       bool
}

func parseTag(tag string) (tagOpts, error) {
	var o tagOpts
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, sval, hasVal := strings.Cut(part, "=")
		var val uint64
		if hasVal {
			var err error
			val, err = strconv.ParseUint(sval, 0, 32)
			if err != nil {
				return o, fmt.Errorf("invalid value for %q: %v", key, err)
			}
		}
		switch key {
		case "bank":
			o.bank = int(val)
		case "offset":
			o.offset = uint16(val)
		case "size":
			o.size = int(val)
		case "vsize":
			o.vsize = int(val)
		case "reset":
			o.reset, o.hasReset = uint8(val), true
		case "rwmask":
			o.rwmask, o.hasRwmask = uint8(val), true
		case "readonly":
			o.readonly = true
		case "writeonly":
			o.writeonly = true
		case "rcb":
			o.rcb = true
		case "wcb":
			o.wcb = true
		case "pcb":
			o.pcb = true
		default:
			return o, fmt.Errorf("unknown key %q", key)
		}
	}
	return o, nil
}

func lookupCb(dev reflect.Value, name string, ftype interface{}) (reflect.Value, error) {
	m := dev.MethodByName(name)
	if !m.IsValid() {
		return m, fmt.Errorf("method %s not found on %s", name, dev.Type())
	}
	want := reflect.TypeOf(ftype)
	if m.Type() != want {
		return m, fmt.Errorf("method %s has type %s, want %s", name, m.Type(), want)
	}
	return m, nil
}

func initReg8(dev reflect.Value, fname string, reg *Reg8, o tagOpts) error {
	if reg.Name == "" {
		reg.Name = fname
	}
	if o.hasReset {
		reg.Value = o.reset
	}
	if o.hasRwmask {
		reg.RoMask = ^o.rwmask
	}
	if o.readonly {
		reg.Flags |= RegFlagReadOnly
	}
	if o.writeonly {
		reg.Flags |= RegFlagWriteOnly
	}
	if o.rcb {
		m, err := lookupCb(dev, "Read"+fname, (func(uint8) uint8)(nil))
		if err != nil {
			return err
		}
		reg.ReadCb = m.Interface().(func(uint8) uint8)
	}
	if o.pcb {
		m, err := lookupCb(dev, "Peek"+fname, (func(uint8) uint8)(nil))
		if err != nil {
			return err
		}
		reg.PeekCb = m.Interface().(func(uint8) uint8)
	}
	if o.wcb {
		m, err := lookupCb(dev, "Write"+fname, (func(uint8, uint8))(nil))
		if err != nil {
			return err
		}
		reg.WriteCb = m.Interface().(func(uint8, uint8))
	}
	return nil
}

func initMem(dev reflect.Value, fname string, mem *Mem, o tagOpts) error {
	if mem.Name == "" {
		mem.Name = fname
	}
	if o.size != 0 && mem.Data == nil {
		mem.Data = make([]byte, o.size)
	}
	if o.vsize != 0 {
		mem.VSize = o.vsize
	}
	if o.readonly {
		mem.Flags |= MemFlag8ReadOnly
	}
	if o.writeonly {
		mem.Flags |= MemFlag8WriteOnly
	}
	if o.wcb {
		m, err := lookupCb(dev, "Write"+fname, (func(uint16, uint8))(nil))
		if err != nil {
			return err
		}
		mem.WriteCb = m.Interface().(func(uint16, uint8))
	}
	return nil
}

func walkRegs(bank interface{}, bankNum int, collect *[]taggedReg) error {
	dev := reflect.ValueOf(bank)
	if dev.Kind() != reflect.Ptr || dev.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("hwio: %T is not a pointer to struct", bank)
	}
	elem := dev.Elem()
	typ := elem.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		o, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("hwio: field %s.%s: %v", typ.Name(), field.Name, err)
		}
		if bankNum >= 0 && o.bank != bankNum {
			continue
		}

		ptr := elem.Field(i).Addr().Interface()
		switch reg := ptr.(type) {
		case *Reg8:
			if err := initReg8(dev, field.Name, reg, o); err != nil {
				return fmt.Errorf("hwio: field %s.%s: %v", typ.Name(), field.Name, err)
			}
		case *Mem:
			if err := initMem(dev, field.Name, reg, o); err != nil {
				return fmt.Errorf("hwio: field %s.%s: %v", typ.Name(), field.Name, err)
			}
		default:
			return fmt.Errorf("hwio: field %s.%s has unsupported type %s",
				typ.Name(), field.Name, field.Type)
		}
		if collect != nil {
			*collect = append(*collect, taggedReg{
				name:   field.Name,
				offset: o.offset,
				regPtr: ptr,
			})
		}
	}
	return nil
}

// InitRegs initializes all the hwio-tagged fields of a device structure:
// register names, reset values, masks and callback bindings.
func InitRegs(bank interface{}) error {
	return walkRegs(bank, -1, nil)
}

// MustInitRegs is like InitRegs but panics on error. Tag errors are
// programming mistakes, so this is the form used at power-up.
func MustInitRegs(bank interface{}) {
	if err := InitRegs(bank); err != nil {
		panic(err)
	}
}

// bankGetRegs returns the initialized tagged fields belonging to bankNum.
func bankGetRegs(bank interface{}, bankNum int) ([]taggedReg, error) {
	var regs []taggedReg
	if err := walkRegs(bank, bankNum, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}
