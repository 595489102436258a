package mappers

import (
	"fmt"

	"nesboard/emu/log"
	"nesboard/hw"
	"nesboard/hw/cheat"
	"nesboard/hw/snapshot"
	"nesboard/ines"
)

var modMapper = log.NewModule("mapper")

// Board is the lifecycle of a cartridge board, as seen by the host.
type Board interface {
	// Power establishes the initial mapping and installs the board bus
	// handlers. Called at power-on and reset.
	Power()

	// Close unmaps the board and releases the memory it owns. Calling Close
	// more than once is a no-op. A closed board can't be powered on again.
	Close()

	// StateRestore is called once the host has overwritten the board
	// registered regions from a snapshot.
	StateRestore(version int)
}

// Env is the part of the host a board plugs into.
type Env struct {
	CPU    *hw.CPU
	PPU    *hw.PPU
	Cart   *hw.Cart
	State  *snapshot.Registry
	Cheats *cheat.Registry
}

// Options tweak board construction. The zero value keeps the defaults
// derived from the rom.
type Options struct {
	// Discipline overrides the program bank shift discipline of the board
	// variant, unless DefaultDiscipline.
	Discipline ShiftDiscipline

	// If OverrideMirroring is set, MirroringBits replaces the rom header
	// mirroring configuration.
	OverrideMirroring bool
	MirroringBits     uint8
}

type MapperDesc struct {
	Name         string
	Load         func(*base) (Board, error)
	PRGROMbanksz int
	CHRROMbanksz int
}

var All = map[uint16]MapperDesc{
	248: Board248,
}

// Load creates and wires the board for rom.
func Load(rom *ines.Rom, env Env, opts Options) (Board, error) {
	desc, ok := All[rom.Mapper()]
	if !ok {
		return nil, fmt.Errorf("unsupported mapper %d", rom.Mapper())
	}
	base, err := newbase(desc, rom, env, opts)
	if err != nil {
		return nil, fmt.Errorf("mapper initialization failed: %w", err)
	}
	board, err := base.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load mapper %s: %w", desc.Name, err)
	}
	return board, nil
}
