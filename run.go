package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"beeb/emu"
	"beeb/emu/debugger"
	"beeb/hw"
)

// how long a fed key stays pressed, so the OS scan sees it on several
// row passes.
const keyHoldTime = 30 * time.Millisecond

// buildMachine assembles and powers up a machine with the ROM images
// named on the command line, falling back to the configured ones.
func buildMachine(osPath, pagedPath string, cfg emu.Config) *emu.Machine {
	if osPath == "" {
		osPath = cfg.ROM.OS
	}
	if pagedPath == "" {
		pagedPath = cfg.ROM.Paged
	}
	if osPath == "" {
		fatalf("no OS ROM image: pass --os or configure rom.os in %s", emu.ConfigDir)
	}

	m := emu.NewMachine()

	img, err := os.ReadFile(osPath)
	checkf(err, "failed to read OS ROM")
	checkf(m.LoadOS(img), "failed to load OS ROM")

	if pagedPath != "" {
		img, err := os.ReadFile(pagedPath)
		checkf(err, "failed to read paged ROM")
		checkf(m.LoadPagedROM(img), "failed to load paged ROM")
	}

	checkf(m.PowerUp(), "error during power up")
	m.Reset()
	return m
}

// emuMain free-runs the machine, feeding stdin to the keyboard matrix,
// until the CPU faults or a SIGINT arrives.
func emuMain(args Run, cfg emu.Config) {
	if cfg.General.ShowDisclaimer {
		fmt.Println("beeb emulates the machine, not the peripherals: no video, no sound, no tape.")
		cfg.General.ShowDisclaimer = false
		if err := emu.SaveConfig(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save config: %v\n", err)
		}
	}

	m := buildMachine(args.OS, args.Paged, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		m.Stop()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return emulation(ctx, m, traceOutput(args.Trace))
	})
	g.Go(func() error {
		return feedKeys(ctx, m.Kbd, os.Stdin)
	})

	checkf(g.Wait(), "emulation ended")
}

// traceOutput converts the --trace flag value to the writer interface.
// A nil *outfile must yield a nil interface, not a typed nil that would
// pass the writer checks and blow up on the first write.
func traceOutput(f *outfile) io.WriteCloser {
	if f == nil {
		return nil
	}
	return f
}

// emulation is the execution loop. With a trace writer it steps
// instruction by instruction so every StepInfo can be logged; otherwise
// it hands control to the machine's free-run loop.
func emulation(ctx context.Context, m *emu.Machine, traceout io.WriteCloser) error {
	if traceout == nil {
		return m.Run()
	}
	defer traceout.Close()

	tracer := hw.NewTracer(traceout)
	for ctx.Err() == nil {
		info, err := m.Step()
		if err != nil {
			return err
		}
		tracer.Trace(info)
	}
	return nil
}

// feedKeys presses a matrix key for each rune read from r. Reads block,
// so the raw pump runs detached and the worker drains it until the
// context ends.
func feedKeys(ctx context.Context, kb *hw.Keyboard, r io.Reader) error {
	runes := make(chan rune)
	go func() {
		defer close(runes)
		br := bufio.NewReader(r)
		for {
			c, _, err := br.ReadRune()
			if err != nil {
				return
			}
			select {
			case runes <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-runes:
			if !ok {
				return nil
			}
			pos, ok := hw.LookupKey(c)
			if !ok {
				continue
			}
			kb.KeyDown(pos.Row, pos.Col)
			time.Sleep(keyHoldTime)
			kb.KeyUp(pos.Row, pos.Col)
		}
	}
}

// debugMain runs the machine under the interactive debugger, with
// SIGINT wired to halt a free-running session.
func debugMain(args Debug, cfg emu.Config) {
	m := buildMachine(args.OS, args.Paged, cfg)
	dbg := debugger.New(m, os.Stdin, os.Stdout)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for range sigs {
			dbg.Interrupt()
		}
	}()

	checkf(dbg.Run(), "debugger session ended")
}
