package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"famicore/emu/input"
	"famicore/emu/log"
	"famicore/hw/apu"
	"famicore/hw/hwdefs"
)

type Config struct {
	Input     input.Config    `toml:"input"`
	Video     VideoConfig     `toml:"video"`
	Audio     AudioConfig     `toml:"audio"`
	Emulation EmulationConfig `toml:"emulation"`
}

type VideoConfig struct {
	Scale        int  `toml:"scale"`
	DisableVSync bool `toml:"disable_vsync"`
}

type AudioConfig struct {
	DisableAudio bool    `toml:"disable_audio"`
	Volume       float64 `toml:"volume"`
	SampleRate   int     `toml:"sample_rate"`
	Resampler    string  `toml:"resampler"` // "adaptive" or "blip"
}

// Options returns the APU audio options.
func (acfg AudioConfig) Options() apu.Options {
	opts := apu.Options{
		SampleRate: acfg.SampleRate,
		Volume:     acfg.Volume,
	}
	if acfg.Resampler == "blip" {
		opts.Resampler = apu.BandLimited
	}
	return opts
}

type EmulationConfig struct {
	// TVSystem forces the TV system ("ntsc" or "pal"), empty to use the one
	// of the rom.
	TVSystem string `toml:"tv_system"`
}

// ForcedTVSystem returns the TV system set in the configuration, if any.
func (ecfg EmulationConfig) ForcedTVSystem() (hwdefs.TVSystem, bool) {
	switch strings.ToLower(ecfg.TVSystem) {
	case "ntsc":
		return hwdefs.NTSC, true
	case "pal":
		return hwdefs.PAL, true
	}
	return hwdefs.NTSC, false
}

// Check fixes invalid values, logging them.
func (cfg *Config) Check() {
	if cfg.Video.Scale < 1 || cfg.Video.Scale > 8 {
		log.ModEmu.Warnf("Invalid video scale %d, fallback to 2", cfg.Video.Scale)
		cfg.Video.Scale = 2
	}
	if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 1 {
		log.ModEmu.Warnf("Invalid audio volume %.2f, fallback to 1", cfg.Audio.Volume)
		cfg.Audio.Volume = 1
	}
	switch rate := cfg.Audio.SampleRate; {
	case rate == 0:
		cfg.Audio.SampleRate = apu.DefaultSampleRate
	case rate < apu.MinSampleRate || rate > apu.MaxSampleRate:
		log.ModEmu.Warnf("Invalid sample rate %dHz, fallback to %dHz", rate, apu.DefaultSampleRate)
		cfg.Audio.SampleRate = apu.DefaultSampleRate
	}
	switch cfg.Audio.Resampler {
	case "adaptive", "blip":
	default:
		log.ModEmu.Warnf("Invalid resampler %q, fallback to \"adaptive\"", cfg.Audio.Resampler)
		cfg.Audio.Resampler = "adaptive"
	}
	switch strings.ToLower(cfg.Emulation.TVSystem) {
	case "", "ntsc", "pal":
	default:
		log.ModEmu.Warnf("Invalid tv system %q, using the rom one", cfg.Emulation.TVSystem)
		cfg.Emulation.TVSystem = ""
	}
	cfg.Input.Check()
}

func DefaultConfig() Config {
	return Config{
		Input: input.DefaultConfig(),
		Video: VideoConfig{
			Scale: 2,
		},
		Audio: AudioConfig{
			Volume:     0.8,
			SampleRate: apu.DefaultSampleRate,
			Resampler:  "adaptive",
		},
	}
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "famicore")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the config directory, or
// provide a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(filepath.Join(ConfigDir(), cfgFilename))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("Failed to load config, using defaults").Error("err", err).End()
		}
		return DefaultConfig()
	}
	return cfg
}

// LoadConfig loads the configuration at path. Missing values take their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.ModEmu.WarnZ("Unknown config keys").String("keys", fmt.Sprint(undecoded)).End()
	}
	cfg.Check()
	return cfg, nil
}

// SaveConfig into the config directory.
func SaveConfig(cfg Config) error {
	return WriteConfig(filepath.Join(ConfigDir(), cfgFilename), cfg)
}

// WriteConfig writes cfg at path, in TOML.
func WriteConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
