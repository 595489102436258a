package hw

import (
	"fmt"

	"nesboard/emu/log"
	"nesboard/hw/hwio"
	"nesboard/ines"
)

var modCart = log.NewModule("cart")

const (
	prgPageSize = 0x800 // 2KB granularity on the CPU side
	chrPageSize = 0x400 // 1KB granularity on the PPU side
)

// A Chip is a memory chip of the cartridge (ROM or RAM) which can be mapped,
// bank by bank, into CPU or PPU address windows.
type Chip struct {
	Name     string
	Data     []byte
	Writable bool
}

type page struct {
	chip *Chip
	bank int    // bank number, in units of the window size used to map it
	size int    // size of the window this page is part of
	off  uint32 // offset of the page within chip.Data
}

// Cart holds the cartridge mapping tables: which chip bank backs every CPU
// page of $0000-$FFFF and every PPU page of $0000-$1FFF, and the nametable
// mirroring arrangement. Boards update it, the generic bus handlers read
// through it.
type Cart struct {
	ppu *PPU

	prg [0x10000 / prgPageSize]page
	chr [0x2000 / chrPageSize]page

	mirroring ines.NTMirroring
	mirrorSet bool

	// OpenBus is returned when reading an unmapped page.
	OpenBus uint8
}

// NewCart creates the cartridge mapping tables and attaches CHR to the PPU
// pattern tables area.
func NewCart(ppu *PPU) *Cart {
	c := &Cart{ppu: ppu}
	if ppu != nil {
		ppu.Bus.Map(0x0000, 0x1FFF, chrBus{c})
	}
	return c
}

func bankCount(chip *Chip, size int) int {
	n := len(chip.Data) / size
	if n == 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("chip %s: size %d is not a power of 2 multiple of %d", chip.Name, len(chip.Data), size))
	}
	return n
}

// MapPRG maps the bank of chip into the CPU window [addr, addr+size). Bank
// numbers wrap around the number of banks in the chip, so -1 selects the
// last bank.
func (c *Cart) MapPRG(addr uint16, size int, chip *Chip, bank int) {
	bank &= bankCount(chip, size) - 1
	base := uint32(bank * size)
	for i := range size / prgPageSize {
		c.prg[int(addr)/prgPageSize+i] = page{
			chip: chip,
			bank: bank,
			size: size,
			off:  base + uint32(i*prgPageSize),
		}
	}
}

// MapCHR maps the bank of chip into the PPU window [addr, addr+size).
func (c *Cart) MapCHR(addr uint16, size int, chip *Chip, bank int) {
	bank &= bankCount(chip, size) - 1
	base := uint32(bank * size)
	for i := range size / chrPageSize {
		c.chr[int(addr)/chrPageSize+i] = page{
			chip: chip,
			bank: bank,
			size: size,
			off:  base + uint32(i*chrPageSize),
		}
	}
}

// UnmapPRG removes the CPU window [addr, addr+size) from the tables.
func (c *Cart) UnmapPRG(addr uint16, size int) {
	for i := range size / prgPageSize {
		c.prg[int(addr)/prgPageSize+i] = page{}
	}
}

// UnmapCHR removes the PPU window [addr, addr+size) from the tables.
func (c *Cart) UnmapCHR(addr uint16, size int) {
	for i := range size / chrPageSize {
		c.chr[int(addr)/chrPageSize+i] = page{}
	}
}

func (c *Cart) ReadPRG(addr uint16) uint8 {
	p := &c.prg[addr/prgPageSize]
	if p.chip == nil {
		return c.OpenBus
	}
	return p.chip.Data[p.off+uint32(addr%prgPageSize)]
}

// WritePRG writes val to the chip mapped at addr. Writes to ROM or to
// unmapped pages are dropped.
func (c *Cart) WritePRG(addr uint16, val uint8) {
	p := &c.prg[addr/prgPageSize]
	if p.chip == nil || !p.chip.Writable {
		return
	}
	p.chip.Data[p.off+uint32(addr%prgPageSize)] = val
}

func (c *Cart) ReadCHR(addr uint16) uint8 {
	p := &c.chr[(addr&0x1FFF)/chrPageSize]
	if p.chip == nil {
		return c.OpenBus
	}
	return p.chip.Data[p.off+uint32(addr%chrPageSize)]
}

func (c *Cart) WriteCHR(addr uint16, val uint8) {
	p := &c.chr[(addr&0x1FFF)/chrPageSize]
	if p.chip == nil || !p.chip.Writable {
		return
	}
	p.chip.Data[p.off+uint32(addr%chrPageSize)] = val
}

// PRGBus returns a bus adaptor performing generic cartridge reads and
// writes, through the PRG mapping tables.
func (c *Cart) PRGBus() hwio.BankIO8 { return prgBus{c} }

type prgBus struct{ c *Cart }

func (b prgBus) Read8(addr uint16, _ bool) uint8 { return b.c.ReadPRG(addr) }
func (b prgBus) Write8(addr uint16, val uint8)   { b.c.WritePRG(addr, val) }

type chrBus struct{ c *Cart }

func (b chrBus) Read8(addr uint16, _ bool) uint8 { return b.c.ReadCHR(addr) }
func (b chrBus) Write8(addr uint16, val uint8)   { b.c.WriteCHR(addr, val) }

// Mirroring returns the current nametable mirroring.
func (c *Cart) Mirroring() ines.NTMirroring {
	return c.mirroring
}

// SetMirroring selects the nametable arrangement and remaps the PPU
// nametables area accordingly.
func (c *Cart) SetMirroring(m ines.NTMirroring) {
	if c.mirrorSet && c.mirroring == m {
		return
	}

	prev := c.mirroring
	c.mirroring = m
	c.mirrorSet = true
	modCart.DebugZ("select NT mirroring").Stringer("prev", prev).Stringer("new", m).End()

	if c.ppu == nil {
		return
	}

	A := c.ppu.Nametables[:0x400]
	B := c.ppu.Nametables[0x400:0x800]

	var nt1, nt2, nt3, nt4 []byte

	switch m {
	case ines.HorzMirroring:
		nt1, nt2 = A, A
		nt3, nt4 = B, B
	case ines.VertMirroring:
		nt1, nt2 = A, B
		nt3, nt4 = A, B
	case ines.OnlyAScreen:
		nt1, nt2 = A, A
		nt3, nt4 = A, A
	case ines.OnlyBScreen:
		nt1, nt2 = B, B
		nt3, nt4 = B, B
	default:
		panic(fmt.Sprintf("unsupported mirroring %s", m))
	}

	bus := c.ppu.Bus
	bus.MapMemorySlice(0x2000, 0x23FF, nt1, false)
	bus.MapMemorySlice(0x2400, 0x27FF, nt2, false)
	bus.MapMemorySlice(0x2800, 0x2BFF, nt3, false)
	bus.MapMemorySlice(0x2C00, 0x2FFF, nt4, false)

	// Mirrors
	bus.MapMemorySlice(0x3000, 0x33FF, nt1, false)
	bus.MapMemorySlice(0x3400, 0x37FF, nt2, false)
	bus.MapMemorySlice(0x3800, 0x3BFF, nt3, false)
	bus.MapMemorySlice(0x3C00, 0x3EFF, nt4, false)
}

// A Window is a contiguous address range backed by a single chip bank.
type Window struct {
	Addr uint16
	Size int
	Chip string
	Bank int
}

// Mapping is a point-in-time copy of the cartridge mapping tables.
type Mapping struct {
	PRG       []Window
	CHR       []Window
	Mirroring ines.NTMirroring
}

// Mapping returns the current mapping, with consecutive pages belonging to
// the same mapped window merged together.
func (c *Cart) Mapping() Mapping {
	return Mapping{
		PRG:       windows(c.prg[:], prgPageSize),
		CHR:       windows(c.chr[:], chrPageSize),
		Mirroring: c.mirroring,
	}
}

func windows(pages []page, pagesz int) []Window {
	var (
		ws   []Window
		prev page
		acc  int // bytes accumulated in the current window
	)
	for i, p := range pages {
		if p.chip == nil {
			acc = 0
			continue
		}
		if acc != 0 && acc < p.size &&
			p.chip == prev.chip && p.bank == prev.bank && p.size == prev.size &&
			p.off == prev.off+uint32(pagesz) {
			acc += pagesz
			prev = p
			continue
		}
		ws = append(ws, Window{
			Addr: uint16(i * pagesz),
			Size: p.size,
			Chip: p.chip.Name,
			Bank: p.bank,
		})
		acc = pagesz
		prev = p
	}
	return ws
}
