package hw

import (
	"strings"

	"famicore/hw/snapshot"
)

// Buttons holds the state of the buttons of a standard controller. Bits 0-7
// are reported to the CPU in this order, turbo bits are host only.
type Buttons uint16

const (
	ButtonA Buttons = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonTurboA
	ButtonTurboB

	NumButtons = 10
)

var buttonNames = [NumButtons]string{
	"A", "B", "Select", "Start", "Up", "Down", "Left", "Right", "TurboA", "TurboB",
}

func (b Buttons) String() string {
	var names []string
	for i := range NumButtons {
		if b&(1<<i) != 0 {
			names = append(names, buttonNames[i])
		}
	}
	return strings.Join(names, "|")
}

// ParseButton returns the button with the given name (case insensitive).
func ParseButton(name string) (Buttons, bool) {
	for i, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return 1 << i, true
		}
	}
	return 0, false
}

// ResetCombo is the button combination triggering a soft reset.
const ResetCombo = ButtonStart | ButtonSelect

// Joypad is a standard controller, plugged to $4016 or $4017.
//
// Writing 1 to bit 0 of $4016 (strobe) continuously reloads the shift
// register, once cleared each read returns the next button, in the A, B,
// Select, Start, Up, Down, Left, Right order, then 1s.
type Joypad struct {
	strobe bool
	index  uint8
	status Buttons
}

func (j *Joypad) Write(val uint8) {
	j.strobe = val&1 != 0
	if j.strobe {
		j.index = 0
	}
}

func (j *Joypad) Read() uint8 {
	val := j.Peek()
	if !j.strobe && j.index <= 7 {
		j.index++
	}
	return val
}

// Peek returns the next bit Read would return, without shifting.
func (j *Joypad) Peek() uint8 {
	if j.index > 7 {
		return 1
	}
	if j.status&(1<<j.index) != 0 {
		return 1
	}
	return 0
}

// SetButtons sets the state of all buttons. A held turbo button presses its
// button, which is then toggled by ToggleTurbo.
func (j *Joypad) SetButtons(b Buttons) {
	prev := j.status
	j.status = b
	for _, turbo := range [...]Buttons{ButtonTurboA, ButtonTurboB} {
		btn := turbo >> 8
		if b&turbo == 0 || b&btn != 0 {
			continue
		}
		if prev&turbo == 0 {
			j.status |= btn
		} else {
			// keep the current turbo phase.
			j.status |= prev & btn
		}
	}
}

// Buttons returns the current state of the buttons.
func (j *Joypad) Buttons() Buttons { return j.status }

// ToggleTurbo toggles the buttons whose turbo button is held.
func (j *Joypad) ToggleTurbo() {
	j.status ^= j.status >> 8 & (ButtonA | ButtonB)
}

func (j *Joypad) State() snapshot.Joypad {
	return snapshot.Joypad{
		Strobe: j.strobe,
		Index:  j.index,
		Status: uint16(j.status),
	}
}

func (j *Joypad) SetState(s snapshot.Joypad) {
	j.strobe = s.Strobe
	j.index = s.Index
	j.status = Buttons(s.Status)
}
