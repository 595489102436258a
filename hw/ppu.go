package hw

import (
	"nesboard/hw/hwio"
)

// PPU is the picture processor address space.
//
//	$0000-$1FFF  pattern tables (cartridge CHR)
//	$2000-$2FFF  nametables (mapped by the cartridge mirroring)
//	$3000-$3EFF  mirrors of $2000-$2EFF
//	$3F00-$3FFF  palette RAM, mirrored every 32 bytes
type PPU struct {
	Bus *hwio.Table

	// 2KB of internal VRAM, split in two 1KB nametables (A and B).
	Nametables [0x800]byte

	Palettes hwio.Mem
}

func NewPPU() *PPU {
	ppu := &PPU{
		Bus: hwio.NewTable("ppu"),
		Palettes: hwio.Mem{
			Name:  "Palettes",
			Data:  make([]byte, 0x20),
			VSize: 0x100,
		},
	}
	ppu.Bus.MapMem(0x3F00, &ppu.Palettes)
	return ppu
}
