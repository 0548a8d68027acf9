package voice

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
)

// Player decodes and plays synthesized MP3 clips through the local
// speaker. Initialization is lazy: headless hosts never touch audio.
type Player struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
}

func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) init(format beep.Format) error {
	if p.initialized {
		return nil
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	p.sampleRate = format.SampleRate
	p.initialized = true
	return nil
}

// Play decodes the MP3 at path and plays it, blocking until done.
func (p *Player) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode mp3: %w", err)
	}
	defer streamer.Close()

	if err := p.init(format); err != nil {
		return fmt.Errorf("failed to init speaker: %w", err)
	}

	done := make(chan struct{})
	if format.SampleRate == p.sampleRate {
		speaker.Play(beep.Seq(streamer, beep.Callback(func() { close(done) })))
	} else {
		resampled := beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
		speaker.Play(beep.Seq(resampled, beep.Callback(func() { close(done) })))
	}
	<-done
	return nil
}
