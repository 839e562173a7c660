package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"famicore/emu"
)

func main() {
	cli := parseArgs(os.Args[1:])

	if cli.StatsView {
		if !statsViewAvailable() {
			fatalf("statsview is not available, rebuild with -tags statsview")
		}
		launchStatsView(os.Stderr)
	}

	switch cli.mode {
	case versionMode:
		printVersion()
		return
	case romInfosMode:
		romInfosMain(cli.RomInfos)
		return
	}

	cfg := loadConfig(cli)
	switch cli.mode {
	case runMode:
		runMain(cli.Run, cfg)
	case headlessMode:
		headlessMain(cli.Headless, cfg)
	case stateGraphMode:
		stateGraphMain(cli.StateGraph, cfg)
	}
}

func loadConfig(cli CLI) emu.Config {
	var cfg emu.Config
	if cli.Config != "" {
		var err error
		cfg, err = emu.LoadConfig(cli.Config)
		checkf(err, "failed to load configuration")
	} else {
		cfg = emu.LoadConfigOrDefault()
	}

	if cli.SaveConfig {
		if cli.Config != "" {
			checkf(emu.WriteConfig(cli.Config, cfg), "failed to save configuration")
		} else {
			checkf(emu.SaveConfig(cfg), "failed to save configuration")
		}
	}
	return cfg
}

func printVersion() {
	version, revision := "(devel)", ""
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" {
			version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				revision = s.Value
			}
		}
	}

	fmt.Printf("famicore %s", version)
	if revision != "" {
		fmt.Printf(" (%s)", revision)
	}
	fmt.Println()
}
