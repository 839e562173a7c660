package emu

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"famicore/emu/log"
	"famicore/emu/output"
	"famicore/hw/apu"
	"famicore/hw/hwdefs"
	"famicore/ines"
)

// HeadlessOptions configures headless runs.
type HeadlessOptions struct {
	Frames int         // number of frames to run
	Audio  apu.Options // APU configuration

	// OutDir is the directory where the WAV recordings and screenshots are
	// written, named after the rom file.
	OutDir     string
	WAV        bool // record audio
	Screenshot bool // save the last frame as PNG

	// TVSystem, if not nil, overrides the rom TV system.
	TVSystem *hwdefs.TVSystem
}

// HeadlessResult is the outcome of the headless run of a rom.
type HeadlessResult struct {
	Rom   string
	Stats Stats
}

// RunHeadless runs each rom for opts.Frames frames, without pacing, in
// parallel. Results are in the same order as roms. The first error cancels
// the remaining runs.
func RunHeadless(ctx context.Context, roms []string, opts HeadlessOptions) ([]HeadlessResult, error) {
	results := make([]HeadlessResult, len(roms))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range roms {
		g.Go(func() error {
			stats, err := runHeadless(ctx, path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = HeadlessResult{Rom: path, Stats: stats}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runHeadless(ctx context.Context, path string, opts HeadlessOptions) (Stats, error) {
	rom, err := ines.Open(path)
	if err != nil {
		return Stats{}, err
	}
	if opts.TVSystem != nil {
		rom.ForceTVSystem(*opts.TVSystem)
	}

	nes, err := PowerUp(rom, opts.Audio)
	if err != nil {
		return Stats{}, err
	}

	base := filepath.Join(opts.OutDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	emuOpts := Options{NoPacing: true}
	if opts.WAV {
		rate := opts.Audio.SampleRate
		if rate == 0 {
			rate = apu.DefaultSampleRate
		}
		rec, err := output.NewWAVRecorder(base+".wav", rate)
		if err != nil {
			return Stats{}, err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.ModSound.WarnZ("failed to close WAV recording").Error("err", err).End()
			}
		}()
		emuOpts.Audio = rec
	}

	e := New(nes, emuOpts)
	start := time.Now()
	for range opts.Frames {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		e.RunOneFrame()
	}
	e.stats.PlayTime = time.Since(start)

	if opts.Screenshot {
		if err := output.SavePNG(nes.PPU.Frame().Image(), base+".png"); err != nil {
			return Stats{}, err
		}
	}

	log.ModEmu.InfoZ("Headless run done").
		String("rom", rom.Name).
		Uint64("frames", e.stats.Frames).
		Duration("elapsed", e.stats.PlayTime).
		End()
	return e.stats, nil
}
