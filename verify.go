package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"nesboard/emu"
	"nesboard/hw"
	"nesboard/hw/mappers"
	"nesboard/ines"
)

// verifyRom powers on the board for the rom at path, then checks that a
// snapshot taken after a few register writes restores the same mapping on
// a freshly powered board.
func verifyRom(path string, opts mappers.Options) error {
	rom, err := ines.ReadRom(path)
	if err != nil {
		return err
	}

	nes, err := emu.PowerUp(rom, opts)
	if err != nil {
		return err
	}
	defer nes.Close()

	// Select the second to last bank and the B screen.
	for _, v := range []uint8{0, 1, 1, 1, 1} {
		nes.CPU.Write8(0xE000, v)
	}
	nes.CPU.Write8(0xC000, 1)
	nes.CPU.Write8(0x6000, 0x5A)

	want := nes.Mapping()
	buf, err := nes.SaveSnapshot()
	if err != nil {
		return err
	}

	other, err := emu.PowerUp(rom, opts)
	if err != nil {
		return err
	}
	defer other.Close()

	if err := other.LoadSnapshot(buf); err != nil {
		return err
	}
	if got := other.Mapping(); !sameMapping(got, want) {
		return fmt.Errorf("restored mapping differs: got %+v, want %+v", got, want)
	}
	if got := other.CPU.Read8(0x6000); got != 0x5A {
		return fmt.Errorf("restored WRAM differs: got $%02X, want $5A", got)
	}
	return nil
}

func sameMapping(a, b hw.Mapping) bool {
	return a.Mirroring == b.Mirroring &&
		slices.Equal(a.PRG, b.PRG) &&
		slices.Equal(a.CHR, b.CHR)
}

// verifyRoms verifies all roms concurrently, and reports the result for
// each of them on w, in the same order as paths. It returns the number of
// roms which failed verification.
func verifyRoms(w io.Writer, paths []string, opts mappers.Options) int {
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			errs[i] = verifyRom(path, opts)
			return nil
		})
	}
	_ = g.Wait()

	nfailed := 0
	for i, path := range paths {
		if errs[i] != nil {
			nfailed++
			fmt.Fprintf(w, "FAIL %s: %s\n", path, errs[i])
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", path)
	}
	return nfailed
}
