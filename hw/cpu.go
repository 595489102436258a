package hw

import (
	"nesboard/hw/hwio"
)

// CPU is the processor side of the console, reduced to its address space.
// Instruction execution is driven by the host; the cartridge only sees the
// bus.
type CPU struct {
	Bus *hwio.Table

	// $0000-$07FF, mirrored up to $1FFF.
	RAM hwio.Mem
}

// NewCPU creates a CPU bus with the internal RAM mapped.
func NewCPU() *CPU {
	cpu := &CPU{
		Bus: hwio.NewTable("cpu"),
		RAM: hwio.Mem{
			Name:  "RAM",
			Data:  make([]byte, 0x800),
			VSize: 0x2000,
		},
	}
	cpu.Bus.MapMem(0x0000, &cpu.RAM)
	return cpu
}

func (c *CPU) Read8(addr uint16) uint8       { return c.Bus.Read8(addr) }
func (c *CPU) Write8(addr uint16, val uint8) { c.Bus.Write8(addr, val) }
func (c *CPU) Peek8(addr uint16) uint8       { return c.Bus.Peek8(addr) }
