package main

import (
	"context"
	"testing"

	"beeb/emu"
)

func TestTraceOutputNilFlag(t *testing.T) {
	// zero-value Run is what kong produces when --trace is not given
	var args Run
	if w := traceOutput(args.Trace); w != nil {
		t.Fatalf("got %#v, want nil writer when --trace is not given", w)
	}
}

func TestEmulationWithoutTrace(t *testing.T) {
	img := make([]byte, emu.OSROMSize)
	img[0x3FFC] = 0x00 // reset -> 0x2000
	img[0x3FFD] = 0x20

	m := emu.NewMachine()
	if err := m.LoadOS(img); err != nil {
		t.Fatal(err)
	}
	if err := m.PowerUp(); err != nil {
		t.Fatal(err)
	}
	m.Reset()
	m.LoadRAM(0x2000, []byte{0xEA, 0x02}) // NOP, then halt on illegal

	err := emulation(context.Background(), m, nil)
	if err == nil {
		t.Fatal("expected the CPU fault to end the run")
	}
}
