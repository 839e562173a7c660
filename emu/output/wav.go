package output

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"famicore/hw/apu"
)

// WAVRecorder is an audio sink writing samples to a 16-bit mono WAV file.
type WAVRecorder struct {
	f   *os.File
	enc *wav.Encoder
	buf audio.IntBuffer
}

// NewWAVRecorder creates the WAV file at path.
func NewWAVRecorder(path string, sampleRate int) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav recorder: %w", err)
	}
	const (
		bitDepth   = 16
		pcmFormat  = 1
		numChannel = 1
	)
	return &WAVRecorder{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, bitDepth, numChannel, pcmFormat),
		buf: audio.IntBuffer{
			Format:         &audio.Format{NumChannels: numChannel, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

func (r *WAVRecorder) QueueAudio(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	return r.enc.Write(&r.buf)
}

// QueuedSamples always reports the nominal queue depth since a file is never
// late nor early.
func (r *WAVRecorder) QueuedSamples() int {
	return apu.NominalQueue
}

// Close finalizes the WAV header and closes the file.
func (r *WAVRecorder) Close() error {
	err := r.enc.Close()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}
