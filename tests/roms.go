// Package tests provides helpers to build synthetic cartridge images for
// tests, so that no rom needs to be downloaded or checked in.
package tests

import (
	"os"
	"path/filepath"
	"testing"
)

type RomConfig struct {
	Mapper    uint16
	SubMapper uint8
	NES20     bool // force NES 2.0 header (implied by a non-zero submapper)

	PRGBanks int // number of 16KB PRGROM banks
	CHRBanks int // number of 8KB CHRROM banks (0 for CHR-RAM)

	// MirroringBits holds the header arrangement bit (bit 0) and the
	// alternative nametable layout bit (bit 1).
	MirroringBits uint8
	Battery       bool
}

// PRGByte is the value filling every byte of PRG bank n.
func PRGByte(bank int) uint8 { return uint8(bank) }

// CHRByte is the value filling every byte of CHR bank n.
func CHRByte(bank int) uint8 { return 0x80 | uint8(bank) }

// BuildRom returns the binary image of a rom described by cfg. Every byte of
// a PRG or CHR bank holds a value identifying the bank, see PRGByte and
// CHRByte.
func BuildRom(cfg RomConfig) []byte {
	nes20 := cfg.NES20 || cfg.SubMapper != 0 || cfg.Mapper > 0xFF

	hdr := make([]byte, 16)
	copy(hdr, "NES\x1a")
	hdr[4] = uint8(cfg.PRGBanks)
	hdr[5] = uint8(cfg.CHRBanks)
	hdr[6] = uint8(cfg.Mapper&0x0F)<<4 | cfg.MirroringBits&0x01 | (cfg.MirroringBits&0x02)<<2
	if cfg.Battery {
		hdr[6] |= 0x02
	}
	hdr[7] = uint8(cfg.Mapper & 0xF0)
	if nes20 {
		hdr[7] |= 0x08
		hdr[8] = cfg.SubMapper<<4 | uint8(cfg.Mapper>>8)&0x0F
		hdr[9] = uint8(cfg.PRGBanks>>8)&0x0F | uint8(cfg.CHRBanks>>8)<<4
		hdr[10] = 0x07 // 8KB PRG-RAM
		if cfg.CHRBanks == 0 {
			hdr[11] = 0x07 // 8KB CHR-RAM
		}
	}

	buf := hdr
	for bank := range cfg.PRGBanks {
		for range 0x4000 {
			buf = append(buf, PRGByte(bank))
		}
	}
	for bank := range cfg.CHRBanks {
		for range 0x2000 {
			buf = append(buf, CHRByte(bank))
		}
	}
	return buf
}

// WriteRom writes the rom described by cfg in a temporary directory and
// returns its path.
func WriteRom(tb testing.TB, cfg RomConfig) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.nes")
	if err := os.WriteFile(path, BuildRom(cfg), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}
