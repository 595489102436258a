// package ines implements a decoder for roms in the iNES and NES 2.0 file
// formats, used for the distribution of NES binary programs.
package ines

import (
	"fmt"
	"io"
	"os"
)

type Rom struct {
	header
	Trainer []byte // Trainer, 512 bytes if present, or empty.
	PRGROM  []byte // PRGROM data (length is multiples of 16k)
	CHRROM  []byte // CHRROM data (length is multiples of 8k)
}

// ReadRom loads a rom from file.
func ReadRom(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// Decode decodes a rom from its binary image.
func Decode(buf []byte) (*Rom, error) {
	rom := new(Rom)
	if err := rom.decode(buf); err != nil {
		return nil, err
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := rom.decode(buf); err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

func (rom *Rom) decode(buf []byte) error {
	// header
	var off int
	if err := rom.header.decode(buf); err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}
	off += 16

	// trainer
	if rom.HasTrainer() {
		if len(buf) < off+512 {
			return fmt.Errorf("incomplete TRAINER section")
		}
		rom.Trainer = buf[off : off+512]
		off += 512
	}

	// PRG rom data
	if len(buf) < off+rom.prgsz {
		return fmt.Errorf("incomplete PRG section")
	}
	rom.PRGROM = buf[off : off+rom.prgsz]
	off += rom.prgsz

	// CHR rom data
	if len(buf) < off+rom.chrsz {
		return fmt.Errorf("incomplete CHR section")
	}
	rom.CHRROM = buf[off : off+rom.chrsz]
	return nil
}

const Magic = "NES\x1a"

type header struct {
	raw   [16]byte
	prgsz int
	chrsz int
}

func (hdr *header) decode(p []byte) error {
	if len(p) < 16 {
		return fmt.Errorf("too small, needs 16 bytes")
	}
	if string(p[:4]) != Magic {
		return fmt.Errorf("invalid magic number")
	}
	copy(hdr.raw[:], p[:16])

	prgbanks := int(hdr.raw[4])
	chrbanks := int(hdr.raw[5])
	if hdr.IsNES20() {
		// NES 2.0 puts the MSB of the bank counts in byte 9. The exponent
		// notation (MSB nibble = 0xF) is not supported.
		if hdr.raw[9]&0x0F == 0x0F || hdr.raw[9]&0xF0 == 0xF0 {
			return fmt.Errorf("exponent-multiplier rom sizes are not supported")
		}
		prgbanks |= int(hdr.raw[9]&0x0F) << 8
		chrbanks |= int(hdr.raw[9]&0xF0) << 4
	}
	hdr.prgsz = prgbanks * 16384
	hdr.chrsz = chrbanks * 8192
	return nil
}

// IsNES20 reports whether the header is in NES 2.0 format.
func (hdr *header) IsNES20() bool {
	return hdr.raw[7]&0x0C == 0x08
}

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of battery-backed memory in the rom.
func (hdr *header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// Mapper returns the mapper number.
func (hdr *header) Mapper() uint16 {
	num := uint16(hdr.raw[6]>>4) | uint16(hdr.raw[7]&0xF0)
	if hdr.IsNES20() {
		num |= uint16(hdr.raw[8]&0x0F) << 8
	}
	return num
}

// SubMapper returns the submapper number (always 0 for iNES roms).
func (hdr *header) SubMapper() uint8 {
	if hdr.IsNES20() {
		return hdr.raw[8] >> 4
	}
	return 0
}

// MirroringBits returns the header mirroring configuration on 2 bits: bit 0
// is the hardwired nametable arrangement bit, bit 1 is the alternative
// nametable layout bit (four-screen on most boards, mapper defined on
// others).
func (hdr *header) MirroringBits() uint8 {
	return hdr.raw[6]&0x01 | (hdr.raw[6]&0x08)>>2
}

// Mirroring returns the hardwired nametable mirroring.
func (hdr *header) Mirroring() NTMirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return FourScreen
	case hdr.raw[6]&0x01 != 0:
		return VertMirroring
	}
	return HorzMirroring
}

// PRGRAMSize returns the size of PRG-RAM (volatile and battery-backed).
func (hdr *header) PRGRAMSize() int {
	if hdr.IsNES20() {
		return shiftSize(hdr.raw[10]&0x0F) + shiftSize(hdr.raw[10]>>4)
	}
	if hdr.raw[8] == 0 {
		// iNES: 0 infers 8KB for compatibility.
		return 0x2000
	}
	return int(hdr.raw[8]) * 0x2000
}

// CHRRAMSize returns the size of CHR-RAM, or 0 if the rom has CHR-ROM only.
func (hdr *header) CHRRAMSize() int {
	if hdr.IsNES20() {
		return shiftSize(hdr.raw[11]&0x0F) + shiftSize(hdr.raw[11]>>4)
	}
	if hdr.chrsz == 0 {
		return 0x2000
	}
	return 0
}

func shiftSize(n uint8) int {
	if n == 0 {
		return 0
	}
	return 64 << n
}

func (rom *Rom) PrintInfos(w io.Writer) {
	format := "iNES"
	if rom.IsNES20() {
		format = "NES 2.0"
	}
	fmt.Fprintf(w, "Format:     %s\n", format)
	fmt.Fprintf(w, "Mapper:     %d\n", rom.Mapper())
	fmt.Fprintf(w, "SubMapper:  %d\n", rom.SubMapper())
	fmt.Fprintf(w, "PRGROM:     %dKB (%d banks)\n", len(rom.PRGROM)/1024, len(rom.PRGROM)/0x4000)
	fmt.Fprintf(w, "CHRROM:     %dKB (%d banks)\n", len(rom.CHRROM)/1024, len(rom.CHRROM)/0x2000)
	fmt.Fprintf(w, "PRGRAM:     %dKB\n", rom.PRGRAMSize()/1024)
	fmt.Fprintf(w, "CHRRAM:     %dKB\n", rom.CHRRAMSize()/1024)
	fmt.Fprintf(w, "Mirroring:  %s (bits %02b)\n", rom.Mirroring(), rom.MirroringBits())
	fmt.Fprintf(w, "Battery:    %t\n", rom.HasPersistent())
	fmt.Fprintf(w, "Trainer:    %t\n", rom.HasTrainer())
}
