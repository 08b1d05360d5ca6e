package hw

import (
	"strings"
	"testing"
)

func TestStepInfoString(t *testing.T) {
	si := StepInfo{
		PC:       0x0200,
		Bytes:    []uint8{0xA9, 0x05},
		Mnemonic: "LDA",
		Operand:  "#$05",
		A:        0x00, X: 0x12, Y: 0x34, SP: 0xFD,
		P:     0x34,
		Clock: 2,
	}

	got := si.String()
	want := "0200  A9 05     LDA #$05      A:00 X:12 Y:34 P:nvUBdIzc SP:FD CYC:2"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestTracerWrites(t *testing.T) {
	var sb strings.Builder
	tr := NewTracer(&sb)
	tr.Trace(StepInfo{PC: 0x1234, Bytes: []uint8{0xEA}, Mnemonic: "NOP"})

	out := sb.String()
	if !strings.HasPrefix(out, "1234") || !strings.Contains(out, "NOP") {
		t.Errorf("unexpected trace line: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("trace lines end with a newline")
	}
}

func TestTracerNil(t *testing.T) {
	var tr *Tracer
	tr.Trace(StepInfo{}) // must not panic
}
