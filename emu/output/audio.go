package output

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"famicore/hw/apu"
)

// Audio is an audio sink playing samples on the default SDL audio device.
type Audio struct {
	dev sdl.AudioDeviceID
}

// NewAudio initializes SDL audio and opens the default output device for
// 16-bit mono playback.
func NewAudio(sampleRate int) (*Audio, error) {
	var (
		a   Audio
		err error
	)
	sdl.Do(func() {
		if err = sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
			err = fmt.Errorf("failed to initialize SDL audio: %s", err)
			return
		}

		want := sdl.AudioSpec{
			Freq:     int32(sampleRate),
			Format:   sdl.AUDIO_S16SYS,
			Channels: 1,
			Samples:  apu.BufferSize,
		}
		var got sdl.AudioSpec
		a.dev, err = sdl.OpenAudioDevice("", false, &want, &got, 0)
		if err != nil {
			err = fmt.Errorf("failed to open audio device: %s", err)
			return
		}
		sdl.PauseAudioDevice(a.dev, false)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Audio) QueueAudio(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	// SDL copies the buffer.
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*2)
	var err error
	sdl.Do(func() { err = sdl.QueueAudio(a.dev, buf) })
	return err
}

func (a *Audio) QueuedSamples() int {
	var size uint32
	sdl.Do(func() { size = sdl.GetQueuedAudioSize(a.dev) })
	return int(size / 2)
}

func (a *Audio) Close() {
	sdl.Do(func() {
		sdl.CloseAudioDevice(a.dev)
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
	})
}
