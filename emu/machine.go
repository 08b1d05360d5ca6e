package emu

import (
	"fmt"
	"sync/atomic"

	"beeb/hw"
	"beeb/hw/hwio"

	log "beeb/emu/log"
)

// Installable image sizes.
const (
	RAMSize      = 0x8000 // 32K at 0x0000
	PagedROMSize = 0x4000 // 16K at 0x8000
	OSROMSize    = 0x4000 // 16K at 0xC000, with the I/O pages carved out
)

// CPU cycles per scheduling slice of the free-run loop. One video frame,
// so the stop flag is sampled at frame rate.
const cyclesPerSlice = 40000

// openBus fills the unmapped holes of the I/O pages. Reads float high.
type openBus struct{}

func (openBus) Read8(addr uint16, peek bool) uint8 {
	if !peek {
		log.ModMem.DebugZ("open bus read").Hex16("addr", addr).End()
	}
	return 0xFF
}

func (openBus) Write8(addr uint16, val uint8) {
	log.ModMem.DebugZ("open bus write").
		Hex16("addr", addr).
		Hex8("val", val).
		End()
}

// Machine wires together the hardware of a BBC Micro Model B: 32K of RAM,
// a paged language ROM, the OS ROM, and the memory-mapped peripherals in
// the SHEILA page. It implements the CPU Ticker so peripheral time
// advances in lock-step with CPU cycles.
type Machine struct {
	Bus   *hwio.Table
	CPU   *hw.CPU
	Kbd   *hw.Keyboard
	CRTC  *hw.CRTC
	Lines *hw.Lines

	RAM *hwio.Mem

	osROM [OSROMSize]byte
	paged [PagedROMSize]byte

	stop atomic.Bool
}

func NewMachine() *Machine {
	m := &Machine{
		Bus: hwio.NewTable("cpu"),
		RAM: &hwio.Mem{
			Name:  "ram",
			Data:  make([]byte, RAMSize),
			VSize: RAMSize,
		},
		Lines: hw.NewLines(),
	}
	m.Kbd = hw.NewKeyboard(m.Lines)
	m.CRTC = hw.NewCRTC(m.Lines)

	// an empty paged ROM slot reads back as open bus
	for i := range m.paged {
		m.paged[i] = 0xFF
	}
	return m
}

// LoadOS installs the 16K operating system ROM image. The last 256 bytes
// hold the interrupt vectors. May be called before or after PowerUp.
func (m *Machine) LoadOS(img []byte) error {
	if len(img) != OSROMSize {
		return fmt.Errorf("os rom: got %d bytes, want %d", len(img), OSROMSize)
	}
	copy(m.osROM[:], img)
	return nil
}

// LoadPagedROM installs a language ROM image of up to 16K into the paged
// ROM slot at 0x8000.
func (m *Machine) LoadPagedROM(img []byte) error {
	if len(img) > PagedROMSize {
		return fmt.Errorf("paged rom: got %d bytes, max %d", len(img), PagedROMSize)
	}
	for i := range m.paged {
		m.paged[i] = 0xFF
	}
	copy(m.paged[:], img)
	return nil
}

// LoadRAM copies data into RAM at offset. Useful to install test programs
// without going through a ROM image.
func (m *Machine) LoadRAM(offset uint16, data []byte) error {
	if int(offset)+len(data) > RAMSize {
		return fmt.Errorf("ram: %d bytes at %04x overflow", len(data), offset)
	}
	copy(m.RAM.Data[offset:], data)
	return nil
}

// PowerUp builds the memory map and verifies that the whole 64K address
// space is covered. ROM images may be installed before or after, the
// mapped regions alias the machine's backing buffers.
func (m *Machine) PowerUp() error {
	bus := m.Bus
	bus.Reset()

	bus.MapMem(0x0000, m.RAM)
	bus.MapMemorySlice(0x8000, m.paged[:], true)
	bus.MapMemorySlice(0xC000, m.osROM[:0x3C00], true)

	// FRED and JIM pages: no expansion hardware fitted.
	bus.FillRange(0xFC00, 0xFDFF, openBus{})

	// SHEILA. The CRTC register pair is mirrored through 0xFE07, the
	// keyboard and interrupt controller share the system VIA bank.
	for i := uint16(0); i < 4; i++ {
		bus.MapBank(0xFE00+2*i, m.CRTC, 0)
	}
	bus.MapBank(0xFE40, m.Kbd, 0)
	bus.MapBank(0xFE40, m.Lines, 0)
	bus.FillRange(0xFE00, 0xFEFF, openBus{})

	bus.MapMemorySlice(0xFF00, m.osROM[0x3F00:], true)

	if err := bus.CheckCovered(0x0000, 0xFFFF); err != nil {
		return err
	}

	m.CPU = hw.NewCPU(bus, m)
	m.CPU.Lines = m.Lines
	return nil
}

// Tick forwards one CPU cycle to the peripherals.
func (m *Machine) Tick() {
	m.Kbd.Tick()
	m.CRTC.Tick()
}

// Reset forwards the reset signal to all hardware.
func (m *Machine) Reset() {
	m.Lines.Reset()
	m.Kbd.Reset()
	m.CRTC.Reset()
	m.CPU.Reset()
}

// Step executes a single instruction.
func (m *Machine) Step() (hw.StepInfo, error) {
	return m.CPU.Step()
}

// Run free-runs the CPU until Stop is called or execution fails. The
// stop flag is sampled once per frame.
func (m *Machine) Run() error {
	for !m.stop.Load() {
		if err := m.CPU.Run(m.CPU.Clock + cyclesPerSlice); err != nil {
			return err
		}
	}
	return nil
}

// Stop makes Run return at the next slice boundary. Safe to call from
// another goroutine.
func (m *Machine) Stop() {
	m.stop.Store(true)
}
