package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nesboard/emu/log"
)

type mode byte

const (
	romInfosMode   mode = iota // Show ROM infos
	replayMode                 // Replay a write script
	restoreMode                // Restore a snapshot
	verifyMode                 // Verify roms
	initConfigMode             // Write default configuration
	versionMode                // Show version
)

type (
	CLI struct {
		RomInfos   RomInfos   `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Replay     Replay     `cmd:"" help:"Replay a bus write script and show the resulting mapping."`
		Restore    Restore    `cmd:"" help:"Restore a snapshot and show the resulting mapping."`
		Verify     Verify     `cmd:"" help:"Check power-on and snapshot round-trip of ROMs."`
		InitConfig InitConfig `cmd:"" help:"Write the default configuration file." name:"init-config"`
		Version    Version    `cmd:"" help:"Show version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"Configuration file." type:"path" default:"${config_path}"`

		mode mode
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Replay struct {
		RomPath    string `arg:"" name:"/path/to/rom" type:"existingfile"`
		ScriptPath string `arg:"" name:"/path/to/script" help:"${script_help}" type:"existingfile"`

		JSON bool   `name:"json" help:"Output the mapping as JSON."`
		Save string `name:"save" help:"Write a snapshot after replay." type:"path" placeholder:"FILE"`
	}

	Restore struct {
		RomPath      string `arg:"" name:"/path/to/rom" type:"existingfile"`
		SnapshotPath string `arg:"" name:"/path/to/snapshot" type:"existingfile"`

		JSON bool `name:"json" help:"Output the mapping as JSON."`
	}

	Verify struct {
		RomPaths []string `arg:"" name:"/path/to/rom"`
	}

	InitConfig struct {
		Force bool `name:"force" help:"Overwrite an existing configuration file."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"log_help":    "Enable logging for specified modules.",
	"script_help": "Toml file listing the writes, as [[write]] tables with addr, val and optional repeat keys.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("nesboard"),
		kong.Description("NES cartridge board 248 bench."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars,
		kong.Vars{"config_path": defaultConfigPath()})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "rom-infos </path/to/rom>":
		cfg.mode = romInfosMode
	case "replay </path/to/rom> </path/to/script>":
		cfg.mode = replayMode
	case "restore </path/to/rom> </path/to/snapshot>":
		cfg.mode = restoreMode
	case "verify </path/to/rom>":
		cfg.mode = verifyMode
	case "init-config":
		cfg.mode = initConfigMode
	case "version":
		cfg.mode = versionMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	mask, nolog, err := parseLogModules(strings.Split(tok.Value.(string), ","))
	if err != nil {
		return err
	}
	if nolog {
		log.Disable()
		return nil
	}
	log.EnableDebugModules(mask)
	return nil
}

// parseLogModules returns the mask of the named modules. 'all' selects every
// module, 'no' disables logging altogether and can't be combined.
func parseLogModules(names []string) (mask log.ModuleMask, nolog bool, err error) {
	allLogs := false
	for _, v := range names {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, false, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, false, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, false, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return 0, true, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, false, nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
