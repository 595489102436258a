package hwio

import (
	"nesboard/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
)

// Linear memory area that can be mapped into a Table.
//
// Data length must be a power of 2. When VSize is larger than the data, the
// memory is mirrored over the whole virtual size.
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer
	VSize int      // virtual size of the memory (can be bigger than physical size)
	Flags MemFlags // flags determining how the memory can be accessed
}

// BankIO8 returns the bus adaptor for m, mapped at base.
func (m *Mem) BankIO8(base uint16) BankIO8 {
	if len(m.Data) == 0 || len(m.Data)&(len(m.Data)-1) != 0 {
		panic("memory buffer size is not pow2")
	}
	return &mem{
		name: m.Name,
		buf:  m.Data,
		base: base,
		mask: uint16(len(m.Data) - 1),
		ro:   m.Flags,
	}
}

type mem struct {
	name string
	buf  []byte
	base uint16
	mask uint16
	ro   MemFlags
}

func (m *mem) Read8(addr uint16, _ bool) uint8 {
	return m.buf[(addr-m.base)&m.mask]
}

func (m *mem) Write8(addr uint16, val uint8) {
	if m.ro&MemFlag8ReadOnly == 0 {
		m.buf[(addr-m.base)&m.mask] = val
		return
	}
	log.ModHwIo.ErrorZ("Write8 to readonly memory").
		String("name", m.name).
		Hex8("val", val).
		Hex16("addr", addr).
		End()
}
