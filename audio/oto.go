//go:build !headless

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-bricks/synth"
	"github.com/ebitengine/oto/v3"
)

// OtoSink plays a Source on the default output device.
type OtoSink struct {
	sampleRate int
	bufferSize time.Duration

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

// NewOtoSink returns a device sink. The device is opened on first Start.
func NewOtoSink(sampleRate int, bufferSize time.Duration) *OtoSink {
	return &OtoSink{sampleRate: sampleRate, bufferSize: bufferSize}
}

// Start opens the device if needed and begins pulling from src.
func (s *OtoSink) Start(src synth.Source) error {
	if src == nil {
		return ErrNoSource
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		return nil
	}
	if s.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   s.sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   s.bufferSize,
		})
		if err != nil {
			return fmt.Errorf("open audio device: %w", err)
		}
		<-ready
		s.ctx = ctx
	}
	frames := int(s.bufferSize.Seconds() * float64(s.sampleRate))
	s.player = s.ctx.NewPlayer(newStreamReader(src, max(frames, synth.DefaultBlockSize)))
	s.player.Play()
	return nil
}

// Stop halts playback. The device context stays open for a later Start.
func (s *OtoSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}

// Running reports whether a player is active.
func (s *OtoSink) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player != nil
}
