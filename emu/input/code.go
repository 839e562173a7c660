package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

// ControllerType is the kind of host device a Code refers to.
type ControllerType uint8

const (
	UnsetController ControllerType = iota
	Keyboard
	ControllerButton
	ControllerAxis
)

// Text prefixes of the serialized codes.
var typePrefixes = [...]string{
	Keyboard:         "key",
	ControllerButton: "joybtn",
	ControllerAxis:   "joyaxis",
}

func (t ControllerType) String() string {
	switch t {
	case Keyboard:
		return "key"
	case ControllerButton:
		return "joy button"
	case ControllerAxis:
		return "joy axis"
	}
	return "not set"
}

// A Code identifies the host input bound to a NES button: a keyboard key, a
// game controller button, or a game controller axis pushed in one
// direction. Type tells which fields are meaningful.
type Code struct {
	Scancode sdl.Scancode

	CtrlGUID    string
	CtrlButton  sdl.GameControllerButton
	CtrlAxis    sdl.GameControllerAxis
	CtrlAxisDir int16 // 1 or -1

	Type ControllerType
}

// Key returns the Code of a keyboard key.
func Key(sc sdl.Scancode) Code {
	return Code{Type: Keyboard, Scancode: sc}
}

// Name returns the SDL name of the key, button or axis. Axis names end with
// their direction, + or -.
func (mc Code) Name() string {
	switch mc.Type {
	case Keyboard:
		return sdl.GetScancodeName(mc.Scancode)
	case ControllerButton:
		return sdl.GameControllerGetStringForButton(mc.CtrlButton)
	case ControllerAxis:
		dir := "+"
		if mc.CtrlAxisDir < 0 {
			dir = "-"
		}
		return sdl.GameControllerGetStringForAxis(mc.CtrlAxis) + dir
	}
	return ""
}

// MarshalText encodes the code as "key NAME", "joybtn NAME GUID" or
// "joyaxis NAME GUID". An unset code is empty.
func (mc Code) MarshalText() ([]byte, error) {
	switch mc.Type {
	case UnsetController:
		return nil, nil
	case Keyboard:
		return []byte(typePrefixes[Keyboard] + " " + mc.Name()), nil
	}
	return []byte(strings.Join([]string{typePrefixes[mc.Type], mc.Name(), mc.CtrlGUID}, " ")), nil
}

func (mc *Code) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*mc = Code{}
		return nil
	}

	prefix, rest, _ := strings.Cut(s, " ")
	switch prefix {
	case typePrefixes[Keyboard]:
		return mc.parseKey(strings.TrimSpace(rest))
	case typePrefixes[ControllerButton], typePrefixes[ControllerAxis]:
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return fmt.Errorf("malformed %s code: %q", prefix, s)
		}
		if prefix == typePrefixes[ControllerButton] {
			return mc.parseButton(fields[0], fields[1])
		}
		return mc.parseAxis(fields[0], fields[1])
	}
	return fmt.Errorf("unrecognized input code: %q", s)
}

// Key names may contain spaces, like "Right Shift".
func (mc *Code) parseKey(name string) error {
	if name == "" {
		return fmt.Errorf("malformed key code: missing key name")
	}
	sc := sdl.GetScancodeFromName(name)
	if sc == sdl.SCANCODE_UNKNOWN {
		return fmt.Errorf("unrecognized key %q", name)
	}
	*mc = Key(sc)
	return nil
}

func (mc *Code) parseButton(name, guid string) error {
	btn := sdl.GameControllerGetButtonFromString(name)
	if btn == sdl.CONTROLLER_BUTTON_INVALID {
		return fmt.Errorf("unrecognized button %q", name)
	}
	*mc = Code{Type: ControllerButton, CtrlButton: btn, CtrlGUID: guid}
	return nil
}

func (mc *Code) parseAxis(name, guid string) error {
	var dir int16
	switch {
	case strings.HasSuffix(name, "+"):
		dir = 1
	case strings.HasSuffix(name, "-"):
		dir = -1
	default:
		return fmt.Errorf("axis %q has no direction", name)
	}

	axis := sdl.GameControllerGetAxisFromString(name[:len(name)-1])
	if axis == sdl.CONTROLLER_AXIS_INVALID {
		return fmt.Errorf("unrecognized axis %q", name)
	}
	*mc = Code{Type: ControllerAxis, CtrlAxis: axis, CtrlAxisDir: dir, CtrlGUID: guid}
	return nil
}
