package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nesboard/emu/log"
	"nesboard/hw/mappers"
)

func writeFile(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.toml", `
[general]
log = ["mapper", "cart"]

[board]
discipline = "append-high-shift-right"
mirroring = 3
`)

	cfg, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		General: GeneralConfig{Log: []string{"mapper", "cart"}},
		Board:   BoardConfig{Discipline: mappers.AppendHighShiftRight, Mirroring: 3},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	wantOpts := mappers.Options{
		Discipline:        mappers.AppendHighShiftRight,
		OverrideMirroring: true,
		MirroringBits:     3,
	}
	if diff := cmp.Diff(wantOpts, cfg.boardOptions()); diff != "" {
		t.Errorf("board options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(mappers.Options{}, cfg.boardOptions()); diff != "" {
		t.Errorf("default config should give zero options (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tcs := []struct {
		name    string
		content string
	}{
		{"mirroring range", "[board]\nmirroring = 4\n"},
		{"discipline", "[board]\ndiscipline = \"append-low\"\n"},
		{"log module", "[general]\nlog = [\"nope\"]\n"},
		{"syntax", "[board\n"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "config.toml", tc.content)
			if _, err := LoadConfigOrDefault(path); err == nil {
				t.Fatalf("LoadConfigOrDefault should fail")
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Config{
		General: GeneralConfig{Log: []string{"mapper"}},
		Board:   BoardConfig{Discipline: mappers.AppendHigh, Mirroring: -1},
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := defaultConfigPath()
	if got := filepath.Base(path); got != cfgFilename {
		t.Errorf("config file name = %q, want %q", got, cfgFilename)
	}
	if got := filepath.Base(filepath.Dir(path)); got != "nesboard" {
		t.Errorf("config directory = %q, want nesboard", got)
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nesboard", cfgFilename)
	if err := initConfig(path, false); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(defaultConfig(), got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	// Existing configuration is kept unless forced.
	custom := "[board]\nmirroring = 1\n"
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := initConfig(path, false); err == nil {
		t.Errorf("initConfig should fail on existing file")
	}
	if buf, _ := os.ReadFile(path); string(buf) != custom {
		t.Errorf("existing config overwritten:\n%s", buf)
	}
	if err := initConfig(path, true); err != nil {
		t.Fatal(err)
	}
	got, err = LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(defaultConfig(), got); diff != "" {
		t.Errorf("forced config mismatch (-want +got):\n%s", diff)
	}
}

func TestDebugModules(t *testing.T) {
	mapper, ok := log.ModuleByName("mapper")
	if !ok {
		t.Fatal("mapper log module not registered")
	}

	tcs := []struct {
		name string
		log  []string
		want log.ModuleMask
	}{
		{name: "none"},
		{name: "one", log: []string{"mapper"}, want: mapper.Mask()},
		{name: "two", log: []string{"mapper", "hwio"}, want: mapper.Mask() | log.ModHwIo.Mask()},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{General: GeneralConfig{Log: tc.log}}
			if got := cfg.debugModules(); got != tc.want {
				t.Errorf("debugModules() = %x, want %x", got, tc.want)
			}
		})
	}
}
