// Package output implements the host side sinks of the emulator: an SDL
// window and audio device, and file recorders for headless runs.
package output

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"famicore/emu/input"
	"famicore/emu/log"
	"famicore/hw"
	"famicore/hw/hwdefs"
)

// Controls is the set of emulator actions triggered by hotkeys.
type Controls interface {
	TogglePause()
	Reset()
	Restart()
	SaveQuickState()
	LoadQuickState()
	Stop()
}

// Window is an SDL window displaying emulator frames. It also polls the
// SDL event queue, dispatching hotkeys and game controller hotplug events.
type Window struct {
	win *sdl.Window
	ren *sdl.Renderer
	tex *sdl.Texture

	ctrls    *input.GameControllers
	controls Controls
}

// NewWindow initializes SDL video and opens a window of the NES screen size,
// scaled by scale. All SDL calls are run on the main thread, so sdl.Main
// must be running.
func NewWindow(title string, scale int, vsync bool) (*Window, error) {
	type result struct {
		w   *Window
		err error
	}
	errc := make(chan result, 1)
	sdl.Do(func() {
		w, err := newWindow(title, scale, vsync)
		errc <- result{w, err}
	})
	res := <-errc
	return res.w, res.err
}

func newWindow(title string, scale int, vsync bool) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %s", err)
	}

	winw := int32(hwdefs.ScreenWidth * scale)
	winh := int32(hwdefs.ScreenHeight * scale)
	win, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		winw, winh,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %s", err)
	}

	flags := uint32(sdl.RENDERER_ACCELERATED)
	if vsync {
		flags |= sdl.RENDERER_PRESENTVSYNC
	}
	ren, err := sdl.CreateRenderer(win, -1, flags)
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to create renderer: %s", err)
	}
	// Keep the aspect ratio when the window is resized.
	ren.SetLogicalSize(hwdefs.ScreenWidth, hwdefs.ScreenHeight)

	tex, err := ren.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING,
		hwdefs.ScreenWidth, hwdefs.ScreenHeight)
	if err != nil {
		ren.Destroy()
		win.Destroy()
		return nil, fmt.Errorf("failed to create texture: %s", err)
	}

	return &Window{
		win:   win,
		ren:   ren,
		tex:   tex,
		ctrls: input.NewGameControllers(),
	}, nil
}

// GameControllers returns the game controllers tracked by the window.
func (w *Window) GameControllers() *input.GameControllers {
	return w.ctrls
}

// SetControls sets the target of hotkeys.
func (w *Window) SetControls(c Controls) {
	w.controls = c
}

func (w *Window) PresentFrame(frame *hw.Frame) {
	sdl.Do(func() {
		const pitch = hwdefs.ScreenWidth * 4
		if err := w.tex.Update(nil, unsafe.Pointer(&frame[0]), pitch); err != nil {
			log.ModEmu.WarnZ("failed to update texture").Error("err", err).End()
			return
		}
		w.ren.Clear()
		w.ren.Copy(w.tex, nil, nil)
		w.ren.Present()
	})
}

// Poll handles pending SDL events. It returns false once the window has been
// closed or the quit hotkey pressed.
func (w *Window) Poll() bool {
	running := true
	sdl.Do(func() {
		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			switch ev := ev.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.ControllerDeviceEvent:
				w.ctrls.UpdateDevices(ev)
			case *sdl.KeyboardEvent:
				if ev.Type == sdl.KEYDOWN && ev.Repeat == 0 {
					running = w.hotkey(ev.Keysym.Sym) && running
				}
			}
		}
	})
	return running
}

// hotkey dispatches a key press, returning false for the quit key.
func (w *Window) hotkey(key sdl.Keycode) bool {
	if key == sdl.K_ESCAPE {
		return false
	}
	if w.controls == nil {
		return true
	}

	switch key {
	case sdl.K_SPACE:
		w.controls.TogglePause()
	case sdl.K_F2:
		w.controls.SaveQuickState()
	case sdl.K_F4:
		w.controls.LoadQuickState()
	case sdl.K_F5:
		w.controls.Reset()
	case sdl.K_F6:
		w.controls.Restart()
	}
	return true
}

func (w *Window) Close() error {
	errc := make(chan error, 1)
	sdl.Do(func() {
		w.ctrls.Close()
		w.tex.Destroy()
		w.ren.Destroy()
		err := w.win.Destroy()
		sdl.Quit()
		errc <- err
	})
	return <-errc
}
