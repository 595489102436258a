package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisabledModuleIsNil(t *testing.T) {
	mod := NewModule("test-disabled")
	if z := mod.DebugZ("nothing"); z != nil {
		t.Fatalf("DebugZ on disabled module = %v, want nil", z)
	}

	// Chaining on a nil entry must not panic.
	mod.DebugZ("nothing").Hex16("addr", 0x8000).Uint8("val", 1).End()
}

func TestEnabledModuleWrites(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	mod := NewModule("test-enabled")
	EnableDebugModules(mod.Mask())
	defer DisableDebugModules(mod.Mask())

	mod.DebugZ("bank select").Hex8("val", 0x1f).Hex16("addr", 0xe000).Bool("ok", true).End()

	out := buf.String()
	for _, want := range []string{"bank select", "val=1f", "addr=e000", "ok=true", "_mod=test-enabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}
}

func TestWarnAlwaysEnabled(t *testing.T) {
	mod := NewModule("test-warn")
	if !mod.Enabled(WarnLevel) {
		t.Errorf("warn level should be enabled by default")
	}
	if mod.Enabled(DebugLevel) {
		t.Errorf("debug level should be disabled by default")
	}
}

func TestModuleByName(t *testing.T) {
	mod := NewModule("test-byname")
	got, ok := ModuleByName("test-byname")
	if !ok || got != mod {
		t.Fatalf("ModuleByName = %v, %t, want %v, true", got, ok, mod)
	}
	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName should not resolve the error placeholder")
	}
}

func TestStandardModules(t *testing.T) {
	tcs := []struct {
		name string
		mod  Module
	}{
		{"emu", ModEmu},
		{"hwio", ModHwIo},
		{"snapshot", ModSnapshot},
	}
	for _, tc := range tcs {
		got, ok := ModuleByName(tc.name)
		if !ok || got != tc.mod {
			t.Errorf("ModuleByName(%q) = %v, %t, want %v, true", tc.name, got, ok, tc.mod)
		}
		if tc.mod.String() != tc.name {
			t.Errorf("%v.String() = %q, want %q", tc.mod, tc.mod.String(), tc.name)
		}
	}
}
