package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"nesboard/emu"
	"nesboard/emu/log"
	"nesboard/ines"
)

func main() {
	cli := parseArgs(os.Args[1:])

	cfg, err := LoadConfigOrDefault(cli.Config)
	checkf(err, "failed to load configuration")
	log.EnableDebugModules(cfg.debugModules())

	switch cli.mode {
	case romInfosMode:
		rom, err := ines.ReadRom(cli.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		rom.PrintInfos(os.Stdout)

	case replayMode:
		checkf(runReplay(cli.Replay, cfg, os.Stdout), "replay failed")

	case restoreMode:
		checkf(runRestore(cli.Restore, cfg, os.Stdout), "restore failed")

	case verifyMode:
		if n := verifyRoms(os.Stdout, cli.Verify.RomPaths, cfg.boardOptions()); n != 0 {
			fatalf("%d/%d roms failed verification", n, len(cli.Verify.RomPaths))
		}

	case initConfigMode:
		checkf(initConfig(cli.Config, cli.InitConfig.Force), "failed to write configuration")
		fmt.Println("configuration written to", cli.Config)

	case versionMode:
		printVersion()
	}
}

func runReplay(args Replay, cfg Config, w io.Writer) error {
	script, err := LoadScript(args.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	nes, err := powerUp(args.RomPath, cfg)
	if err != nil {
		return err
	}
	defer nes.Close()

	return replay(nes, script, w, args.JSON, args.Save)
}

func runRestore(args Restore, cfg Config, w io.Writer) error {
	nes, err := powerUp(args.RomPath, cfg)
	if err != nil {
		return err
	}
	defer nes.Close()

	return restore(nes, args.SnapshotPath, w, args.JSON)
}

func powerUp(path string, cfg Config) (*emu.NES, error) {
	rom, err := ines.ReadRom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rom: %w", err)
	}

	nes, err := emu.PowerUp(rom, cfg.boardOptions())
	if err != nil {
		return nil, fmt.Errorf("error during power up: %w", err)
	}
	return nes, nil
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("nesboard", version)
}
