package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/bradleyjkemp/memviz"
	"github.com/go-faster/jx"
	"github.com/veandco/go-sdl2/sdl"

	"famicore/emu"
	"famicore/emu/input"
	"famicore/emu/log"
	"famicore/emu/output"
	"famicore/hw"
	"famicore/hw/hwdefs"
	"famicore/ines"
)

// runMain runs the emulator in a window with the given rom.
func runMain(args Run, cfg emu.Config) {
	var exitcode int
	sdl.Main(func() {
		exitcode = run(args, cfg)
	})
	os.Exit(exitcode)
}

func run(args Run, cfg emu.Config) int {
	rom, err := ines.Open(args.RomPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading ROM: %s\n", err)
		return 1
	}
	if tv, ok := forcedTV(args.TV, cfg); ok {
		rom.ForceTVSystem(tv)
	}

	nes, err := emu.PowerUp(rom, cfg.Audio.Options())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
		return 1
	}

	if args.Trace != nil {
		defer args.Trace.Close()
		format, err := hw.ParseTraceFormat(args.TraceFmt)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		nes.CPU.SetTracer(hw.NewTracer(args.Trace, format, nes.PPU))
	}

	win, err := output.NewWindow("famicore - "+rom.Name, cfg.Video.Scale, !cfg.Video.DisableVSync)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create window: %v\n", err)
		return 1
	}
	defer win.Close()

	var audio emu.AudioSink
	if !cfg.Audio.DisableAudio && !args.NoAudio {
		a, err := output.NewAudio(cfg.Audio.SampleRate)
		if err != nil {
			log.ModSound.WarnZ("Audio disabled").Error("err", err).End()
		} else {
			defer a.Close()
			audio = a
		}
	}

	e := emu.New(nes, emu.Options{
		Video:  win,
		Audio:  audio,
		Input:  input.NewProvider(cfg.Input, win.GameControllers()),
		Poller: win,
	})
	win.SetControls(e)

	if args.CPUProfile != "" {
		stop := startCPUProfile(args.CPUProfile)
		defer stop()
	}

	e.Run()
	return 0
}

// headlessMain runs roms without window nor audio device. Interrupting the
// process cancels the runs.
func headlessMain(args Headless, cfg emu.Config) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := emu.HeadlessOptions{
		Frames:     args.Frames,
		Audio:      cfg.Audio.Options(),
		OutDir:     args.OutDir,
		WAV:        args.WAV,
		Screenshot: args.Screenshot,
	}
	if tv, ok := forcedTV(args.TV, cfg); ok {
		opts.TVSystem = &tv
	}

	if args.CPUProfile != "" {
		stop := startCPUProfile(args.CPUProfile)
		defer stop()
	}

	results, err := emu.RunHeadless(ctx, args.RomPaths, opts)
	if err != nil {
		cancel()
		fatalf("headless run failed: %v", err)
	}
	for _, res := range results {
		fmt.Printf("%s: %d frames in %v (%.1f fps, %.2f MHz)\n",
			res.Rom, res.Stats.Frames, res.Stats.PlayTime, res.Stats.FrameRate(), res.Stats.ClockSpeed())
	}
}

func romInfosMain(args RomInfos) {
	var e jx.Encoder
	for _, path := range args.RomPaths {
		rom, err := ines.Open(path)
		checkf(err, "failed to open rom")

		if !args.JSON {
			rom.PrintInfos(os.Stdout)
			continue
		}
		e.Reset()
		rom.EncodeJSON(&e)
		_, err = os.Stdout.Write(append(e.Bytes(), '\n'))
		checkf(err, "failed to write rom infos")
	}
}

// stateGraphMain runs a rom for a number of frames, then writes the graph of
// the console state.
func stateGraphMain(args StateGraph, cfg emu.Config) {
	defer args.Out.Close()

	rom, err := ines.Open(args.RomPath)
	checkf(err, "failed to open rom")

	nes, err := emu.PowerUp(rom, cfg.Audio.Options())
	checkf(err, "failed to start emulator")

	e := emu.New(nes, emu.Options{NoPacing: true})
	for range args.Frames {
		e.RunOneFrame()
	}

	memviz.Map(args.Out, nes.Snapshot())
}

// forcedTV returns the TV system forced on the command line, or else in the
// configuration.
func forcedTV(flag string, cfg emu.Config) (hwdefs.TVSystem, bool) {
	if flag != "" {
		tv, ok := emu.EmulationConfig{TVSystem: flag}.ForcedTVSystem()
		if !ok {
			fatalf("invalid TV system %q", flag)
		}
		return tv, true
	}
	return cfg.Emulation.ForcedTVSystem()
}

func startCPUProfile(path string) (stop func()) {
	f, err := os.Create(path)
	checkf(err, "failed to create cpu profile file")
	checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
	return func() {
		pprof.StopCPUProfile()
		f.Close()
		fmt.Println("CPU profile written to", path)
	}
}
