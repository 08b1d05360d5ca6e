package debugger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"beeb/emu"
)

var (
	errInvalidCommand  = errors.New("invalid command")
	errInvalidArgument = errors.New("invalid argument")
)

func (d *Debugger) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "n", "next":
		n := 1
		if len(args) > 0 {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil || v == 0 {
				return errInvalidArgument
			}
			n = int(v)
		}
		d.step(n)

	case "c", "continue":
		d.continueRun()

	case "page":
		if len(args) == 0 {
			return errInvalidArgument
		}
		page, err := strconv.ParseUint(args[0], 16, 8)
		if err != nil {
			return errInvalidArgument
		}
		d.dumpPage(uint8(page))

	case "break":
		if len(args) == 0 {
			return errInvalidArgument
		}
		addr, err := strconv.ParseUint(args[0], 16, 16)
		if err != nil {
			return errInvalidArgument
		}
		d.toggleBreakpoint(uint16(addr))

	case "cpu":
		d.printCPU()

	case "save":
		if len(args) == 0 {
			return errInvalidArgument
		}
		if err := emu.SaveSnapshot(args[0], d.m); err != nil {
			fmt.Fprintln(d.out, err)
		}

	case "load":
		if len(args) == 0 {
			return errInvalidArgument
		}
		if err := emu.LoadSnapshot(args[0], d.m); err != nil {
			fmt.Fprintln(d.out, err)
		}

	case "quit":
		d.state = terminated

	default:
		return errInvalidCommand
	}
	return nil
}

// toggleBreakpoint arms a breakpoint at addr, or clears it if one is
// already armed there. Toggling twice is a no-op.
func (d *Debugger) toggleBreakpoint(addr uint16) {
	if _, ok := d.breakpoints[addr]; ok {
		delete(d.breakpoints, addr)
		fmt.Fprintf(d.out, "breakpoint cleared at %04X\n", addr)
		return
	}
	d.breakpoints[addr] = struct{}{}
	fmt.Fprintf(d.out, "breakpoint set at %04X\n", addr)
}

// dumpPage hex-dumps the 256 bytes of memory page. Reads are side effect
// free so dumping I/O pages is safe.
func (d *Debugger) dumpPage(page uint8) {
	base := uint16(page) << 8
	fmt.Fprintf(d.out, "      0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f\n")
	for row := uint16(0); row < 0x100; row += 0x10 {
		fmt.Fprintf(d.out, "%04x:", base+row)
		for col := uint16(0); col < 0x10; col++ {
			fmt.Fprintf(d.out, " %02x", d.m.Bus.Peek8(base+row+col))
		}
		fmt.Fprintln(d.out)
	}
}

func (d *Debugger) printCPU() {
	cpu := d.m.CPU
	fmt.Fprintf(d.out, "PC:%04X SP:%02X A:%02X X:%02X Y:%02X P:%s CYC:%d\n",
		cpu.PC, cpu.SP, cpu.A, cpu.X, cpu.Y, cpu.P, cpu.Clock)
}
