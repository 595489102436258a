package hwio

import "nesboard/emu/log"

// A Device is a write-only address window whose writes are all serviced by
// one callback, such as a cartridge register decoder listening on a whole
// range. Reads of the window are left to whatever else is mapped there.
type Device struct {
	Name    string // name of the window (for debugging)
	Size    int    // size of the window, in bytes
	WriteCb func(addr uint16, val uint8)
}

// Read8 is only reached if the device is mapped for reads by mistake.
func (d *Device) Read8(addr uint16, peek bool) uint8 {
	if !peek {
		log.ModHwIo.ErrorZ("invalid Read8 from writeonly device").String("name", d.Name).Hex16("addr", addr).End()
	}
	return 0
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.WriteCb != nil {
		d.WriteCb(addr, val)
	}
}
