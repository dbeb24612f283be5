// Package audio plays the CHIP-8 tone: a decoded mp3 beep looped for as
// long as the sound timer is nonzero.
package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"github.com/beanboi7/chyp8/emu/logger"
)

// Beeper implements runner.Speaker. A nil *Beeper is silent.
type Beeper struct {
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
}

// NewBeeper decodes the mp3 at path and starts the speaker paused.
func NewBeeper(path string) (*Beeper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audio: decoding %s: %w", path, err)
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		streamer.Close()
		return nil, fmt.Errorf("audio: %w", err)
	}
	b := &Beeper{
		streamer: streamer,
		ctrl:     &beep.Ctrl{Streamer: beep.Loop(-1, streamer), Paused: true},
	}
	speaker.Play(b.ctrl)
	logger.Logf("audio", "beep loaded from %s", path)
	return b, nil
}

// SetTone starts or pauses the beep.
func (b *Beeper) SetTone(on bool) {
	if b == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = !on
	if !on {
		// restart from the top next time
		if err := b.streamer.Seek(0); err != nil {
			logger.Logf("audio", "rewind: %v", err)
		}
	}
	speaker.Unlock()
}

// Close silences the speaker and releases the decoder.
func (b *Beeper) Close() error {
	if b == nil {
		return nil
	}
	speaker.Lock()
	b.ctrl.Paused = true
	speaker.Unlock()
	return b.streamer.Close()
}
