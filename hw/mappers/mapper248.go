package mappers

import (
	"fmt"

	"nesboard/hw"
	"nesboard/hw/hwio"
	"nesboard/ines"
)

var Board248 = MapperDesc{
	Name:         "248",
	Load:         load248,
	PRGROMbanksz: 0x4000,
	CHRROMbanksz: 0x2000,
}

// ShiftDiscipline is the way the program bank register accumulates the bits
// written to it.
type ShiftDiscipline uint8

const (
	DefaultDiscipline ShiftDiscipline = iota

	// AppendHigh moves the register down one bit and appends the new bit
	// as bit 4.
	AppendHigh

	// AppendHighShiftRight shifts the register right then ors the new bit
	// into bit 4. The register value is the same as with AppendHigh, and
	// masking the lower PRG bank to the rom bank count selects the same bank
	// as the mapping tables wrap. Both disciplines thus give the same PRG
	// mapping; the variants only differ by their graphics memory.
	AppendHighShiftRight
)

func (d ShiftDiscipline) String() string {
	switch d {
	case DefaultDiscipline:
		return ""
	case AppendHigh:
		return "append-high"
	case AppendHighShiftRight:
		return "append-high-shift-right"
	}
	return fmt.Sprintf("ShiftDiscipline(%d)", uint8(d))
}

// ParseShiftDiscipline parses the string representation of a discipline.
// The empty string gives DefaultDiscipline.
func ParseShiftDiscipline(s string) (ShiftDiscipline, error) {
	for _, d := range []ShiftDiscipline{DefaultDiscipline, AppendHigh, AppendHighShiftRight} {
		if d.String() == s {
			return d, nil
		}
	}
	return DefaultDiscipline, fmt.Errorf("unknown shift discipline %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *ShiftDiscipline) UnmarshalText(text []byte) error {
	v, err := ParseShiftDiscipline(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d ShiftDiscipline) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// foldAppendHigh folds the low bit of val into reg.
//
//	reg after writes b1..bk = bk<<4 | bk-1<<3 | bk-2<<2 | bk-3<<1 | bk-4
func foldAppendHigh(reg, val uint8) uint8 {
	return (val&1)<<4 | (reg&0x1F)>>1
}

// foldShiftRight shifts reg right and inserts the low bit of val as bit 4.
func foldShiftRight(reg, val uint8) uint8 {
	reg >>= 1
	reg |= (val << 4) & 0x10
	return reg & 0x1F
}

type variant248 struct {
	discipline ShiftDiscipline
	chrram     bool // the board owns 8KB of CHR-RAM
}

// Board variants, by submapper.
var variants248 = map[uint8]variant248{
	0: {discipline: AppendHigh, chrram: true},
	1: {discipline: AppendHighShiftRight, chrram: false},
}

// mirrorConfig is the 2-bit mirroring configuration of the cartridge.
//
//	0: hardwired horizontal
//	1: hardwired vertical
//	2,3: single screen, selected by the mirroring register
type mirrorConfig uint8

// fixed returns the hardwired mirroring, if any.
func (mc mirrorConfig) fixed() (ines.NTMirroring, bool) {
	switch mc {
	case 0:
		return ines.HorzMirroring, true
	case 1:
		return ines.VertMirroring, true
	}
	return 0, false
}

type board248 struct {
	*base

	variant variant248
	mirror  mirrorConfig

	// Register file.
	prgReg uint8 // 5-bit program bank, fed one bit per write
	mirReg uint8 // 1-bit single screen select

	wram   *hw.Chip
	chrram *hw.Chip // nil for variants without CHR-RAM

	PRGReg hwio.Device // $E000-$FFFF
	MirReg hwio.Device // $C000-$DFFF
}

// layout248 is the mapping derived from the register file.
type layout248 struct {
	prgLo     int      // 16KB bank at $8000
	prgHi     int      // 16KB bank at $C000
	chr       *hw.Chip // 8KB chip at PPU $0000, bank 0
	mirroring ines.NTMirroring
}

// layout computes the mapping from the current registers. It has no side
// effects.
func (m *board248) layout() layout248 {
	l := layout248{
		prgLo: int(m.prgReg),
		prgHi: -1, // last bank
	}

	if m.discipline() == AppendHighShiftRight {
		nbanks := len(m.prgrom.Data) / 0x4000
		l.prgLo = int(m.prgReg) & (nbanks - 1)
		l.prgHi = nbanks - 1
	}

	switch {
	case m.chrram != nil:
		l.chr = m.chrram
	case m.chrrom != nil:
		l.chr = m.chrrom
	}

	if mode, ok := m.mirror.fixed(); ok {
		l.mirroring = mode
	} else {
		l.mirroring = ines.OnlyAScreen + ines.NTMirroring(m.mirReg&1)
	}
	return l
}

// sync pushes the mapping derived from the registers into the cartridge
// mapping tables. A closed board maps nothing.
func (m *board248) sync() {
	if m.wram == nil {
		return
	}
	l := m.layout()

	m.cart.MapPRG(0x6000, 0x2000, m.wram, 0)
	m.cart.MapPRG(0x8000, 0x4000, m.prgrom, l.prgLo)
	m.cart.MapPRG(0xC000, 0x4000, m.prgrom, l.prgHi)
	if l.chr != nil {
		m.cart.MapCHR(0x0000, 0x2000, l.chr, 0)
	}
	m.cart.SetMirroring(l.mirroring)
}

func (m *board248) discipline() ShiftDiscipline {
	if m.opts.Discipline != DefaultDiscipline {
		return m.opts.Discipline
	}
	return m.variant.discipline
}

// WritePRGReg handles writes to the program bank register.
func (m *board248) WritePRGReg(addr uint16, val uint8) {
	prev := m.prgReg
	switch m.discipline() {
	case AppendHighShiftRight:
		m.prgReg = foldShiftRight(m.prgReg, val)
	default:
		m.prgReg = foldAppendHigh(m.prgReg, val)
	}

	modMapper.DebugZ("Write PRG reg").String("mapper", m.desc.Name).
		Hex16("addr", addr).
		Hex8("val", val).
		Uint8("prev", prev).
		Uint8("reg", m.prgReg).
		End()
	m.sync()
}

// WriteMirReg handles writes to the mirroring register.
func (m *board248) WriteMirReg(addr uint16, val uint8) {
	m.mirReg = val & 1

	modMapper.DebugZ("Write mirroring reg").String("mapper", m.desc.Name).
		Hex16("addr", addr).
		Hex8("val", val).
		Uint8("reg", m.mirReg).
		End()
	m.sync()
}

func (m *board248) Power() {
	if m.wram == nil {
		modMapper.WarnZ("power on a closed board").String("mapper", m.desc.Name).End()
		return
	}
	m.sync()

	bus := m.cpu.Bus
	bus.MapRead(0x6000, 0xFFFF, m.cart.PRGBus())
	bus.MapWrite(0x6000, 0x7FFF, m.cart.PRGBus())
	bus.MapDevice(0xC000, &m.MirReg)
	bus.MapDevice(0xE000, &m.PRGReg)
	m.cheats.AddRAM(8, 0x6000, m.wram.Data)
}

func (m *board248) StateRestore(version int) {
	// Registers restored from a snapshot may hold any value.
	m.prgReg &= 0x1F
	m.mirReg &= 1

	modMapper.DebugZ("State restore").String("mapper", m.desc.Name).
		Int("version", version).
		Uint8("prg", m.prgReg).
		Uint8("mir", m.mirReg).
		End()
	m.sync()
}

func (m *board248) Close() {
	if m.wram == nil {
		return
	}

	m.cpu.Bus.Unmap(0x6000, 0xFFFF)
	m.cheats.RemoveRAM(0x6000)
	m.cart.UnmapPRG(0x6000, 0xA000)
	m.cart.UnmapCHR(0x0000, 0x2000)
	for _, id := range []string{"PREG", "MREG", "WRAM", "CHRR"} {
		m.state.Remove(id)
	}
	m.wram = nil
	m.chrram = nil
}

func load248(b *base) (Board, error) {
	variant, ok := variants248[b.rom.SubMapper()]
	if !ok {
		return nil, fmt.Errorf("unsupported submapper %d", b.rom.SubMapper())
	}
	if !variant.chrram && b.chrrom == nil {
		return nil, fmt.Errorf("submapper %d requires CHRROM", b.rom.SubMapper())
	}

	m := &board248{
		base:    b,
		variant: variant,
		mirror:  mirrorConfig(b.mirroringBits()),
	}
	if m.mirror > 3 {
		modMapper.WarnZ("invalid mirroring configuration, using mapper-controlled").
			String("mapper", b.desc.Name).
			Uint8("bits", uint8(m.mirror)).
			End()
		m.mirror = 2
	}

	m.PRGReg = hwio.Device{
		Name:    "PRGREG",
		Size:    0x2000,
		WriteCb: m.WritePRGReg,
	}
	m.MirReg = hwio.Device{
		Name:    "MIRREG",
		Size:    0x2000,
		WriteCb: m.WriteMirReg,
	}

	b.state.MustAddUint8("PREG", &m.prgReg)
	b.state.MustAddUint8("MREG", &m.mirReg)

	m.wram = &hw.Chip{Name: "WRAM", Data: make([]byte, 0x2000), Writable: true}
	b.state.MustAdd("WRAM", m.wram.Data)

	if variant.chrram {
		m.chrram = &hw.Chip{Name: "CHRRAM", Data: make([]byte, 0x2000), Writable: true}
		b.state.MustAdd("CHRR", m.chrram.Data)
	}

	modMapper.InfoZ("board loaded").String("mapper", b.desc.Name).
		Uint8("submapper", b.rom.SubMapper()).
		Stringer("discipline", m.discipline()).
		Uint8("mirroring", uint8(m.mirror)).
		Bool("chrram", m.chrram != nil).
		End()
	return m, nil
}
