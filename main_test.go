package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nesboard/tests"
)

func TestRunReplayRestore(t *testing.T) {
	rom := tests.WriteRom(t, tests.RomConfig{Mapper: 248, PRGBanks: 8, MirroringBits: 2})
	script := writeFile(t, "script.toml", `
[[write]]
addr = 0xE000
val = 1
repeat = 3

[[write]]
addr = 0xC000
val = 1
`)
	snap := filepath.Join(t.TempDir(), "state.nbs")
	cfg := defaultConfig()

	var replayed bytes.Buffer
	if err := runReplay(Replay{RomPath: rom, ScriptPath: script, JSON: true, Save: snap}, cfg, &replayed); err != nil {
		t.Fatal(err)
	}
	var restored bytes.Buffer
	if err := runRestore(Restore{RomPath: rom, SnapshotPath: snap, JSON: true}, cfg, &restored); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(decodeMapping(t, replayed.Bytes()), decodeMapping(t, restored.Bytes())); diff != "" {
		t.Errorf("restored mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	rom := tests.WriteRom(t, tests.RomConfig{Mapper: 248, PRGBanks: 2, MirroringBits: 2})
	unsupported := tests.WriteRom(t, tests.RomConfig{Mapper: 7, PRGBanks: 2})
	script := writeFile(t, "script.toml", "[[write]]\naddr = 0xE000\nval = 1\n")
	missing := filepath.Join(t.TempDir(), "missing")
	cfg := defaultConfig()

	tcs := []struct {
		name string
		run  func() error
	}{
		{"replay missing script", func() error {
			return runReplay(Replay{RomPath: rom, ScriptPath: missing}, cfg, &bytes.Buffer{})
		}},
		{"replay missing rom", func() error {
			return runReplay(Replay{RomPath: missing, ScriptPath: script}, cfg, &bytes.Buffer{})
		}},
		{"replay unsupported mapper", func() error {
			return runReplay(Replay{RomPath: unsupported, ScriptPath: script}, cfg, &bytes.Buffer{})
		}},
		{"replay unwritable snapshot", func() error {
			return runReplay(Replay{RomPath: rom, ScriptPath: script, Save: filepath.Join(missing, "state.nbs")}, cfg, &bytes.Buffer{})
		}},
		{"restore missing snapshot", func() error {
			return runRestore(Restore{RomPath: rom, SnapshotPath: missing}, cfg, &bytes.Buffer{})
		}},
		{"restore invalid snapshot", func() error {
			return runRestore(Restore{RomPath: rom, SnapshotPath: writeFile(t, "bad.nbs", "not a snapshot")}, cfg, &bytes.Buffer{})
		}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); err == nil {
				t.Errorf("should fail")
			}
		})
	}
}
