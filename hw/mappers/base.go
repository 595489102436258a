package mappers

import (
	"fmt"

	"nesboard/hw"
	"nesboard/hw/cheat"
	"nesboard/hw/snapshot"
	"nesboard/ines"
)

type base struct {
	desc MapperDesc
	opts Options

	rom    *ines.Rom
	cpu    *hw.CPU
	cart   *hw.Cart
	state  *snapshot.Registry
	cheats *cheat.Registry

	prgrom *hw.Chip
	chrrom *hw.Chip // nil if the cartridge has no CHRROM
}

func ispow2(n int) bool {
	return n&(n-1) == 0
}

func newbase(desc MapperDesc, rom *ines.Rom, env Env, opts Options) (*base, error) {
	if len(rom.PRGROM) < desc.PRGROMbanksz || !ispow2(len(rom.PRGROM)) {
		return nil, fmt.Errorf("only support PRGROM with power of 2 size (at least %d), got %d", desc.PRGROMbanksz, len(rom.PRGROM))
	}
	if len(rom.CHRROM) != 0 && (len(rom.CHRROM) < desc.CHRROMbanksz || !ispow2(len(rom.CHRROM))) {
		return nil, fmt.Errorf("only support CHRROM with power of 2 size (at least %d), got %d", desc.CHRROMbanksz, len(rom.CHRROM))
	}

	b := &base{
		desc:   desc,
		opts:   opts,
		rom:    rom,
		cpu:    env.CPU,
		cart:   env.Cart,
		state:  env.State,
		cheats: env.Cheats,
		prgrom: &hw.Chip{Name: "PRGROM", Data: rom.PRGROM},
	}
	if len(rom.CHRROM) != 0 {
		b.chrrom = &hw.Chip{Name: "CHRROM", Data: rom.CHRROM}
	}
	return b, nil
}

func (b *base) load() (Board, error) {
	return b.desc.Load(b)
}

// mirroringBits returns the 2-bit mirroring configuration of the cartridge.
func (b *base) mirroringBits() uint8 {
	if b.opts.OverrideMirroring {
		return b.opts.MirroringBits
	}
	return b.rom.MirroringBits()
}
