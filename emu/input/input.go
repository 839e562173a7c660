// Package input reads the host keyboard and game controllers, and maps them
// onto the buttons of the NES controllers.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"famicore/hw"
)

// PaddlePreset holds the mapping configuration of a paddle, one code per
// button, in hw.Buttons bit order.
type PaddlePreset struct {
	Buttons [hw.NumButtons]Code `toml:"buttons"`
}

const numPresets = 8

type Config struct {
	Paddles [2]PaddleConfig          `toml:"paddles"`
	Presets [numPresets]PaddlePreset `toml:"presets"`
}

type PaddleConfig struct {
	Plugged      bool `toml:"plugged"`
	PaddlePreset uint `toml:"preset"`
}

// Check replaces out of range presets with the first one.
func (cfg *Config) Check() {
	for i := range cfg.Paddles {
		if cfg.Paddles[i].PaddlePreset >= numPresets {
			cfg.Paddles[i].PaddlePreset = 0
		}
	}
}

// Preset returns the preset used by paddle idx.
func (cfg *Config) Preset(idx int) *PaddlePreset {
	return &cfg.Presets[cfg.Paddles[idx].PaddlePreset]
}

// DefaultConfig plugs a keyboard controlled paddle in port 1.
func DefaultConfig() Config {
	var cfg Config
	cfg.Paddles[0] = PaddleConfig{Plugged: true, PaddlePreset: 0}
	cfg.Paddles[1] = PaddleConfig{Plugged: false, PaddlePreset: 1}
	cfg.Presets[0].Buttons = [hw.NumButtons]Code{
		Key(sdl.SCANCODE_J),
		Key(sdl.SCANCODE_K),
		Key(sdl.SCANCODE_RSHIFT),
		Key(sdl.SCANCODE_RETURN),
		Key(sdl.SCANCODE_UP),
		Key(sdl.SCANCODE_DOWN),
		Key(sdl.SCANCODE_LEFT),
		Key(sdl.SCANCODE_RIGHT),
		Key(sdl.SCANCODE_H),
		Key(sdl.SCANCODE_L),
	}
	return cfg
}

// Provider provides the state of the NES controllers from the keyboard and
// game controllers state. SDL must have been initialized.
type Provider struct {
	keystate []uint8
	ctrls    *GameControllers
	cfg      Config
}

func NewProvider(cfg Config, ctrls *GameControllers) *Provider {
	cfg.Check()

	var keystate []uint8
	sdl.Do(func() { keystate = sdl.GetKeyboardState() })
	return &Provider{keystate: keystate, ctrls: ctrls, cfg: cfg}
}

// Buttons returns the buttons currently pressed on the paddle plugged in
// port (0 or 1).
func (p *Provider) Buttons(port int) hw.Buttons {
	if !p.cfg.Paddles[port].Plugged {
		return 0
	}

	var state hw.Buttons
	for i, code := range p.cfg.Preset(port).Buttons {
		if p.pressed(code) {
			state |= 1 << i
		}
	}
	return state
}

func (p *Provider) pressed(code Code) bool {
	switch code.Type {
	case Keyboard:
		return p.keystate[code.Scancode] != 0
	case ControllerButton:
		if ctrl := p.ctrls.get(code.CtrlGUID); ctrl != nil {
			return ctrl.Button(code.CtrlButton) != 0
		}
	case ControllerAxis:
		if ctrl := p.ctrls.get(code.CtrlGUID); ctrl != nil {
			return int(ctrl.Axis(code.CtrlAxis))*int(code.CtrlAxisDir) >= JoyAxisThreshold
		}
	}
	return false
}
