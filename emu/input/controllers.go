package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"famicore/emu/log"
)

// JoyAxisThreshold is the axis value, in [-32768, 32767], above which an
// axis counts as pressed in its direction.
const JoyAxisThreshold = 32000

type gameController struct {
	*sdl.GameController
	guid string
}

// GameControllers tracks the plugged game controllers. Bindings refer to
// controllers by GUID, which is stable across sessions, while SDL events
// refer to them by joystick instance ID.
type GameControllers struct {
	byID   map[sdl.JoystickID]gameController
	byGUID map[string]*sdl.GameController
}

// NewGameControllers opens the game controllers currently plugged. The
// caller must then forward controller device events to UpdateDevices.
func NewGameControllers() *GameControllers {
	gcs := &GameControllers{
		byID:   make(map[sdl.JoystickID]gameController),
		byGUID: make(map[string]*sdl.GameController),
	}
	for idx := range sdl.NumJoysticks() {
		if sdl.IsGameController(idx) {
			gcs.add(idx)
		}
	}
	return gcs
}

func (gcs *GameControllers) add(idx int) {
	c := sdl.GameControllerOpen(idx)
	if c == nil {
		log.ModInput.WarnZ("Failed to open game controller").Int("index", idx).End()
		return
	}

	joy := c.Joystick()
	id := joy.InstanceID()
	guid := sdl.JoystickGetGUIDString(joy.GUID())
	gcs.byID[id] = gameController{GameController: c, guid: guid}
	gcs.byGUID[guid] = c

	log.ModInput.InfoZ("Game controller plugged").Int("id", int(id)).String("guid", guid).End()
}

func (gcs *GameControllers) remove(id sdl.JoystickID) {
	c, ok := gcs.byID[id]
	if !ok {
		log.ModInput.WarnZ("Unknown game controller unplugged").Int("id", int(id)).End()
		return
	}
	delete(gcs.byID, id)
	delete(gcs.byGUID, c.guid)
	c.Close()

	log.ModInput.InfoZ("Game controller unplugged").Int("id", int(id)).String("guid", c.guid).End()
}

// get returns the controller with the given GUID, nil if it's not plugged.
func (gcs *GameControllers) get(guid string) *sdl.GameController {
	return gcs.byGUID[guid]
}

// UpdateDevices handles a controller hotplug event.
func (gcs *GameControllers) UpdateDevices(e *sdl.ControllerDeviceEvent) {
	switch e.Type {
	case sdl.CONTROLLERDEVICEADDED:
		// Which is the device index here, and the instance ID on removal.
		gcs.add(int(e.Which))
	case sdl.CONTROLLERDEVICEREMOVED:
		gcs.remove(e.Which)
	}
}

// Close closes all controllers.
func (gcs *GameControllers) Close() {
	for _, c := range gcs.byID {
		c.Close()
	}
	clear(gcs.byID)
	clear(gcs.byGUID)
}
