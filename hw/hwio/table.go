package hwio

import (
	"fmt"

	"nesboard/emu/log"
)

// log unmapped accesses (useful for debugging but verbose on NES since many
// games read from open bus)
const logUnmapped = false

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// Table is a 64K address space. Read and write handlers are installed
// independently, so an address range can be read from one device and
// written to another (e.g. cartridge ROM reads and mapper register writes).
type Table struct {
	Name string

	// Unmapped, if set, services accesses to addresses without handler.
	Unmapped BankIO8

	rd []BankIO8
	wr []BankIO8
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

func (t *Table) Reset() {
	t.rd = make([]BankIO8, 0x10000)
	t.wr = make([]BankIO8, 0x10000)
}

func checkRange(begin, end uint16) {
	if end < begin {
		panic(fmt.Sprintf("invalid range [%04x, %04x]", begin, end))
	}
}

// MapRead installs io as read handler for the inclusive range [begin, end].
func (t *Table) MapRead(begin, end uint16, io BankIO8) {
	checkRange(begin, end)
	for a := int(begin); a <= int(end); a++ {
		t.rd[a] = io
	}
}

// MapWrite installs io as write handler for the inclusive range [begin, end].
func (t *Table) MapWrite(begin, end uint16, io BankIO8) {
	checkRange(begin, end)
	for a := int(begin); a <= int(end); a++ {
		t.wr[a] = io
	}
}

// Map installs io as both read and write handler for [begin, end].
func (t *Table) Map(begin, end uint16, io BankIO8) {
	t.MapRead(begin, end, io)
	t.MapWrite(begin, end, io)
}

func (t *Table) MapDevice(addr uint16, dev *Device) {
	log.ModHwIo.DebugZ("mapping device").
		Hex16("addr", addr).
		Hex16("size", uint16(dev.Size)).
		String("area", dev.Name).
		String("bus", t.Name).
		End()

	t.MapWrite(addr, addr+uint16(dev.Size-1), dev)
}

func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Hex16("size", uint16(mem.VSize)).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.Map(addr, addr+uint16(mem.VSize-1), mem.BankIO8(addr))
}

func (t *Table) MapMemorySlice(addr, end uint16, mem []uint8, readonly bool) {
	var flags MemFlags
	if readonly {
		flags |= MemFlag8ReadOnly
	}
	t.MapMem(addr, &Mem{
		Data:  mem,
		Flags: flags,
		VSize: int(end) - int(addr) + 1,
	})
}

// Unmap removes read and write handlers from [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	t.MapRead(begin, end, nil)
	t.MapWrite(begin, end, nil)
}

// Mapped reports whether addr has a read handler and a write handler.
func (t *Table) Mapped(addr uint16) (read, write bool) {
	return t.rd[addr] != nil, t.wr[addr] != nil
}

func (t *Table) Read8(addr uint16) uint8 {
	io := t.rd[addr]
	if io == nil {
		if logUnmapped {
			log.ModHwIo.ErrorZ("unmapped Read8").
				String("name", t.Name).
				Hex16("addr", addr).
				End()
		}
		if t.Unmapped != nil {
			return t.Unmapped.Read8(addr, false)
		}
		return 0
	}
	return io.Read8(addr, false)
}

func (t *Table) Peek8(addr uint16) uint8 {
	io := t.rd[addr]
	if io == nil {
		if t.Unmapped != nil {
			return t.Unmapped.Read8(addr, true)
		}
		return 0
	}
	return io.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.wr[addr]
	if io == nil {
		if logUnmapped {
			log.ModHwIo.ErrorZ("unmapped Write8").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		if t.Unmapped != nil {
			t.Unmapped.Write8(addr, val)
		}
		return
	}
	io.Write8(addr, val)
}
