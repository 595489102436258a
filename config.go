package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"nesboard/emu/log"
	"nesboard/hw/mappers"
)

type Config struct {
	General GeneralConfig `toml:"general"`
	Board   BoardConfig   `toml:"board"`
}

type GeneralConfig struct {
	// Log lists the modules with debug logs enabled, on top of the ones
	// given with --log. '--log no' still silences everything.
	Log []string `toml:"log"`
}

type BoardConfig struct {
	// Discipline overrides the program bank shift discipline of the board
	// variant. Empty keeps the default.
	Discipline mappers.ShiftDiscipline `toml:"discipline"`

	// Mirroring overrides the 2-bit mirroring configuration of the rom
	// header, -1 keeps the header value.
	Mirroring int `toml:"mirroring"`
}

func defaultConfig() Config {
	return Config{
		Board: BoardConfig{Mirroring: -1},
	}
}

const cfgFilename = "config.toml"

// defaultConfigPath returns the path of the configuration file in the user
// configuration directory.
func defaultConfigPath() string {
	return filepath.Join(configdir.LocalConfig("nesboard"), cfgFilename)
}

// LoadConfigOrDefault loads the configuration at path, or provide a default
// one if there's none.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg := defaultConfig()
	_, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.check(); err != nil {
		return defaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg at path, creating the directory if needed.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := configdir.MakePath(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// initConfig writes the default configuration at path. An existing file is
// only replaced if force is set.
func initConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return SaveConfig(path, defaultConfig())
}

func (cfg *Config) check() error {
	if cfg.Board.Mirroring < -1 || cfg.Board.Mirroring > 3 {
		return fmt.Errorf("board.mirroring: %d out of range [-1, 3]", cfg.Board.Mirroring)
	}
	for _, name := range cfg.General.Log {
		if _, ok := log.ModuleByName(name); !ok {
			return fmt.Errorf("general.log: unknown module %q", name)
		}
	}
	return nil
}

// debugModules returns the mask of the modules listed in the configuration.
func (cfg *Config) debugModules() log.ModuleMask {
	var mask log.ModuleMask
	for _, name := range cfg.General.Log {
		if mod, ok := log.ModuleByName(name); ok {
			mask |= mod.Mask()
		}
	}
	return mask
}

// boardOptions converts the board section to mapper options.
func (cfg *Config) boardOptions() mappers.Options {
	opts := mappers.Options{Discipline: cfg.Board.Discipline}
	if cfg.Board.Mirroring >= 0 {
		opts.OverrideMirroring = true
		opts.MirroringBits = uint8(cfg.Board.Mirroring)
	}
	return opts
}
