// Package cheat keeps track of the RAM areas exposed to cheat search and
// memory poking tools.
package cheat

import (
	"fmt"
	"slices"

	"nesboard/emu/log"
)

var modCheat = log.NewModule("cheat")

// A Block is a RAM area visible at Addr in the CPU address space.
type Block struct {
	Addr uint16
	Data []byte
}

func (b Block) contains(addr uint16) bool {
	return addr >= b.Addr && int(addr-b.Addr) < len(b.Data)
}

// Registry is the set of RAM blocks available to cheats. The zero value is
// an empty registry.
type Registry struct {
	blocks []Block
}

// AddRAM exposes the first kb kilobytes of data at addr. Registering a block
// at an address already registered replaces it.
func (r *Registry) AddRAM(kb int, addr uint16, data []byte) {
	size := kb * 1024
	if size > len(data) || int(addr)+size > 0x10000 {
		panic(fmt.Sprintf("cheat ram: invalid %dKB block at $%04X (data len %d)", kb, addr, len(data)))
	}

	blk := Block{Addr: addr, Data: data[:size]}
	modCheat.DebugZ("add RAM").Hex16("addr", addr).Int("kb", kb).End()
	for i := range r.blocks {
		if r.blocks[i].Addr == addr {
			r.blocks[i] = blk
			return
		}
	}
	r.blocks = append(r.blocks, blk)
	slices.SortFunc(r.blocks, func(a, b Block) int { return int(a.Addr) - int(b.Addr) })
}

// RemoveRAM removes the block registered at addr.
func (r *Registry) RemoveRAM(addr uint16) {
	r.blocks = slices.DeleteFunc(r.blocks, func(b Block) bool { return b.Addr == addr })
}

// Blocks returns the registered blocks, sorted by address.
func (r *Registry) Blocks() []Block {
	return slices.Clone(r.blocks)
}

// Read returns the byte at addr and whether addr belongs to a block.
func (r *Registry) Read(addr uint16) (uint8, bool) {
	for _, b := range r.blocks {
		if b.contains(addr) {
			return b.Data[addr-b.Addr], true
		}
	}
	return 0, false
}

// Write pokes val at addr. It reports false if addr isn't part of a block.
func (r *Registry) Write(addr uint16, val uint8) bool {
	for _, b := range r.blocks {
		if b.contains(addr) {
			b.Data[addr-b.Addr] = val
			return true
		}
	}
	return false
}

// Reset removes all blocks.
func (r *Registry) Reset() {
	r.blocks = nil
}
