package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/jx"

	"nesboard/emu"
	"nesboard/emu/log"
	"nesboard/hw"
)

// A Script is a sequence of CPU bus writes, written in toml:
//
//	[[write]]
//	addr = 0xE000
//	val = 1
//	repeat = 5
type Script struct {
	Writes []ScriptWrite `toml:"write"`
}

type ScriptWrite struct {
	Addr   uint16 `toml:"addr"`
	Val    uint8  `toml:"val"`
	Repeat int    `toml:"repeat"` // number of times the write is performed, 0 means 1
}

func LoadScript(path string) (*Script, error) {
	var s Script
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		return nil, fmt.Errorf("script %s: unknown key %q", path, undec[0].String())
	}
	for i, w := range s.Writes {
		if w.Repeat < 0 {
			return nil, fmt.Errorf("script %s: write #%d: negative repeat count", path, i)
		}
	}
	return &s, nil
}

// Run performs all the writes of the script on the CPU bus.
func (s *Script) Run(nes *emu.NES) {
	for _, w := range s.Writes {
		n := max(w.Repeat, 1)
		for range n {
			log.ModEmu.DebugZ("script write").Hex16("addr", w.Addr).Hex8("val", w.Val).End()
			nes.CPU.Write8(w.Addr, w.Val)
		}
	}
}

// writeMappingJSON writes the mapping as a JSON object.
func writeMappingJSON(w io.Writer, m hw.Mapping) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.SetIdent(2)
	encodeMapping(e, m)
	e.RawStr("\n")
	_, err := e.WriteTo(w)
	return err
}

func encodeMapping(e *jx.Encoder, m hw.Mapping) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("prg", func(e *jx.Encoder) { encodeWindows(e, m.PRG) })
		e.Field("chr", func(e *jx.Encoder) { encodeWindows(e, m.CHR) })
		e.Field("mirroring", func(e *jx.Encoder) { e.Str(m.Mirroring.String()) })
	})
}

func encodeWindows(e *jx.Encoder, ws []hw.Window) {
	e.Arr(func(e *jx.Encoder) {
		for _, w := range ws {
			e.Obj(func(e *jx.Encoder) {
				e.Field("addr", func(e *jx.Encoder) { e.Str(fmt.Sprintf("$%04X", w.Addr)) })
				e.Field("size", func(e *jx.Encoder) { e.Int(w.Size) })
				e.Field("chip", func(e *jx.Encoder) { e.Str(w.Chip) })
				e.Field("bank", func(e *jx.Encoder) { e.Int(w.Bank) })
			})
		}
	})
}

// writeMappingText writes the mapping as a human readable table.
func writeMappingText(w io.Writer, m hw.Mapping) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "bus\twindow\tchip\tbank")
	for _, win := range m.PRG {
		fmt.Fprintf(tw, "cpu\t$%04X-$%04X\t%s\t%d\n", win.Addr, int(win.Addr)+win.Size-1, win.Chip, win.Bank)
	}
	for _, win := range m.CHR {
		fmt.Fprintf(tw, "ppu\t$%04X-$%04X\t%s\t%d\n", win.Addr, int(win.Addr)+win.Size-1, win.Chip, win.Bank)
	}
	fmt.Fprintf(tw, "\nmirroring: %s\n", m.Mirroring)
	return tw.Flush()
}

func writeMapping(w io.Writer, m hw.Mapping, asJSON bool) error {
	if asJSON {
		return writeMappingJSON(w, m)
	}
	return writeMappingText(w, m)
}

// replay powers the board on, runs the script and reports the resulting
// mapping. If savePath is not empty, a snapshot is written there.
func replay(nes *emu.NES, script *Script, w io.Writer, asJSON bool, savePath string) error {
	script.Run(nes)

	if savePath != "" {
		f, err := os.Create(savePath)
		if err != nil {
			return err
		}
		if err := nes.WriteSnapshot(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return writeMapping(w, nes.Mapping(), asJSON)
}

// restore loads the snapshot at path and reports the resulting mapping.
func restore(nes *emu.NES, path string, w io.Writer, asJSON bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nes.ReadSnapshot(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return writeMapping(w, nes.Mapping(), asJSON)
}
