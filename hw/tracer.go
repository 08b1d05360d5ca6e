package hw

import (
	"bytes"
	"fmt"
	"io"
)

// StepInfo is the execution trace record returned by CPU.Step: the
// disassembled instruction about to execute and the register state at the
// instruction boundary.
type StepInfo struct {
	PC       uint16
	Bytes    []uint8
	Mnemonic string
	Operand  string

	A, X, Y, SP uint8
	P           P
	Clock       int64
}

func (si StepInfo) String() string {
	var bb bytes.Buffer
	fmt.Fprintf(&bb, "%04X", si.PC)

	var tmp []byte
	for _, b := range si.Bytes {
		tmp = append(tmp, fmt.Sprintf("%02X ", b)...)
	}
	fmt.Fprintf(&bb, "  %-9s %-14s", tmp,
		fmt.Sprintf("%s %s", si.Mnemonic, si.Operand))
	fmt.Fprintf(&bb, "A:%02X X:%02X Y:%02X P:%s SP:%02X CYC:%d",
		si.A, si.X, si.Y, si.P, si.SP, si.Clock)
	return bb.String()
}

// Tracer writes one fixed-width line per executed instruction.
type Tracer struct {
	w io.Writer
}

func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Trace is nil-safe so callers can trace unconditionally.
func (t *Tracer) Trace(si StepInfo) {
	if t == nil {
		return
	}
	fmt.Fprintln(t.w, si.String())
}
