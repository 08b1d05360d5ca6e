// Package debugger implements the interactive machine debugger: a
// line-oriented command loop wrapped around single-stepped execution.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"sync/atomic"

	"beeb/emu"
)

// a session is always in one of these states. halted is the prompt state;
// stepping and runningFree are transient while a command executes.
type state int32

const (
	halted state = iota
	stepping
	runningFree
	terminated
)

const prompt = "beeb> "

// Debugger drives a Machine one instruction at a time under user control.
// Execution state stays inspectable after errors: a fatal CPU error halts
// the session instead of ending it.
type Debugger struct {
	m   *emu.Machine
	in  *bufio.Scanner
	out io.Writer

	state       state
	breakpoints map[uint16]struct{}

	// set asynchronously by the session's signal watcher, sampled at
	// instruction boundaries while running free.
	intr atomic.Bool
}

func New(m *emu.Machine, in io.Reader, out io.Writer) *Debugger {
	return &Debugger{
		m:           m,
		in:          bufio.NewScanner(in),
		out:         out,
		state:       halted,
		breakpoints: make(map[uint16]struct{}),
	}
}

// Interrupt requests a halt of a free-running session at the next
// instruction boundary. Safe to call from another goroutine.
func (d *Debugger) Interrupt() {
	d.intr.Store(true)
}

// Run reads and executes commands until quit or input EOF.
func (d *Debugger) Run() error {
	d.printInstr()

	for d.state != terminated {
		fmt.Fprint(d.out, prompt)
		if !d.in.Scan() {
			break
		}
		line := d.in.Text()
		if err := d.exec(line); err != nil {
			fmt.Fprintf(d.out, "unknown or invalid command: %s\n", line)
		}
	}
	return d.in.Err()
}

// printInstr disassembles the instruction at the current PC.
func (d *Debugger) printInstr() {
	fmt.Fprintln(d.out, d.m.CPU.Disasm())
}

func (d *Debugger) step(n int) {
	d.state = stepping
	for i := 0; i < n; i++ {
		info, err := d.m.Step()
		if err != nil {
			fmt.Fprintln(d.out, err)
			break
		}
		fmt.Fprintln(d.out, info.String())
	}
	d.state = halted
}

// continueRun executes until a breakpoint, an interrupt request or a CPU
// error. Breakpoints are checked before each instruction so the session
// halts with the instruction at the breakpoint not yet executed; the
// check is skipped for the first instruction so that resuming from a
// breakpoint makes progress.
func (d *Debugger) continueRun() {
	d.state = runningFree
	first := true
	for {
		if d.intr.Swap(false) {
			fmt.Fprintln(d.out, "interrupted")
			break
		}
		pc := d.m.CPU.PC
		if _, ok := d.breakpoints[pc]; ok && !first {
			fmt.Fprintf(d.out, "breakpoint hit at %04X\n", pc)
			break
		}
		first = false

		if _, err := d.m.Step(); err != nil {
			fmt.Fprintln(d.out, err)
			break
		}
	}
	d.state = halted
	d.printInstr()
}
