package emu

import (
	"bytes"
	"fmt"
	"io"

	"nesboard/emu/log"
	"nesboard/hw"
	"nesboard/hw/cheat"
	"nesboard/hw/mappers"
	"nesboard/hw/snapshot"
	"nesboard/ines"
)

// NES is the host side of the cartridge: the CPU and PPU address spaces, the
// cartridge mapping tables and the board plugged into them.
type NES struct {
	CPU    *hw.CPU
	PPU    *hw.PPU
	Cart   *hw.Cart
	Rom    *ines.Rom
	Board  mappers.Board
	State  *snapshot.Registry
	Cheats *cheat.Registry
}

// PowerUp creates the hardware, loads the board for rom and powers it on.
func PowerUp(rom *ines.Rom, opts mappers.Options) (*NES, error) {
	ppu := hw.NewPPU()
	nes := &NES{
		CPU:    hw.NewCPU(),
		PPU:    ppu,
		Cart:   hw.NewCart(ppu),
		Rom:    rom,
		State:  &snapshot.Registry{},
		Cheats: &cheat.Registry{},
	}

	board, err := mappers.Load(rom, mappers.Env{
		CPU:    nes.CPU,
		PPU:    nes.PPU,
		Cart:   nes.Cart,
		State:  nes.State,
		Cheats: nes.Cheats,
	}, opts)
	if err != nil {
		return nil, err
	}
	nes.Board = board
	nes.Reset()
	return nes, nil
}

// Reset powers the board on again. Board registers are left untouched, only
// the mapping and the bus handlers are reinstalled.
func (nes *NES) Reset() {
	log.ModEmu.InfoZ("Reset").Uint32("mapper", uint32(nes.Rom.Mapper())).End()
	nes.Board.Power()
}

// Mapping returns the current cartridge mapping.
func (nes *NES) Mapping() hw.Mapping {
	return nes.Cart.Mapping()
}

// WriteSnapshot writes all registered regions to w.
func (nes *NES) WriteSnapshot(w io.Writer) error {
	if err := nes.State.Save(w); err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}
	return nil
}

// ReadSnapshot overwrites the registered regions with the content of r, then
// lets the board rebuild its mapping from the restored registers.
func (nes *NES) ReadSnapshot(r io.Reader) error {
	version, err := nes.State.Load(r)
	if err != nil {
		return fmt.Errorf("snapshot load: %w", err)
	}
	nes.Board.StateRestore(version)
	log.ModEmu.InfoZ("Snapshot restored").Int("version", version).End()
	return nil
}

func (nes *NES) SaveSnapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := nes.WriteSnapshot(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (nes *NES) LoadSnapshot(buf []byte) error {
	return nes.ReadSnapshot(bytes.NewReader(buf))
}

// Close releases the board. Resetting a closed NES leaves it unmapped.
func (nes *NES) Close() {
	nes.Board.Close()
}
