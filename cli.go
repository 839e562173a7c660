package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"famicore/emu/log"
)

type mode byte

const (
	runMode        mode = iota // Run a ROM in a window
	headlessMode               // Run ROMs without window nor audio device
	romInfosMode               // Show ROM infos
	stateGraphMode             // Graph the console state
	versionMode                // Show version
)

type (
	CLI struct {
		Run        Run        `cmd:"" help:"Run ROM in emulator."`
		Headless   Headless   `cmd:"" help:"Run ROMs for a number of frames, without window."`
		RomInfos   RomInfos   `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		StateGraph StateGraph `cmd:"" help:"Write a graph of the console state, in DOT format." name:"state-graph"`
		Version    Version    `cmd:"" help:"Show version."`

		Log        logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		StatsView  bool       `name:"statsview" help:"${statsview_help}"`
		Config     string     `name:"config" help:"Configuration file (default: user config directory)." type:"path"`
		SaveConfig bool       `name:"save-config" help:"Save the configuration in use, then continue."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"ROM to run." type:"existingfile"`

		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		TraceFmt   string   `name:"trace-format" help:"CPU trace format (text|json)." default:"text" enum:"text,json"`
		TV         string   `name:"tv" help:"Force TV system (ntsc|pal)."`
		NoAudio    bool     `name:"no-audio" help:"Disable audio output."`
	}

	Headless struct {
		RomPaths []string `arg:"" name:"/path/to/rom" help:"ROMs to run, in parallel." type:"existingfile"`

		Frames     int    `name:"frames" help:"Number of frames to run." default:"600"`
		OutDir     string `name:"outdir" help:"Output directory for WAV and PNG files." type:"existingdir" default:"."`
		WAV        bool   `name:"wav" help:"Record audio into ROM.wav."`
		Screenshot bool   `name:"screenshot" help:"Save the last frame into ROM.png."`
		TV         string `name:"tv" help:"Force TV system (ntsc|pal)."`
		CPUProfile string `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
	}

	RomInfos struct {
		RomPaths []string `arg:"" name:"/path/to/rom" type:"existingfile"`
		JSON     bool     `name:"json" help:"Output JSON, one object per line."`
	}

	StateGraph struct {
		RomPath string   `arg:"" name:"/path/to/rom" type:"existingfile"`
		Frames  int      `name:"frames" help:"Number of frames to run before the snapshot." default:"60"`
		Out     *outfile `name:"out" help:"Output file." placeholder:"FILE|stdout|stderr" default:"stdout"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"cpuprofile_help": "Write CPU profile to file.",
	"log_help":        "Enable logging for specified modules.",
	"statsview_help":  "Start the runtime statistics server (needs the statsview build tag).",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("famicore"),
		kong.Description("Cycle accurate NES emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch strings.Fields(ctx.Command())[0] {
	case "headless":
		cfg.mode = headlessMode
	case "rom-infos":
		cfg.mode = romInfosMode
	case "state-graph":
		cfg.mode = stateGraphMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if ctx.Command() == "" || strings.HasPrefix(ctx.Command(), "run") || strings.HasPrefix(ctx.Command(), "headless") {
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
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of log modules and enables them.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	val := tok.Value.(string)

	if val == "no" {
		log.Disable()
		return nil
	}
	mask, err := log.ParseMask(val)
	if err != nil {
		return err
	}
	log.EnableDebugModules(mask)
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	return f.open(tok.Value.(string))
}

func (f *outfile) open(name string) error {
	f.name = name
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

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
