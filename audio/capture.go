package audio

import (
	"fmt"

	"github.com/cwbudde/algo-bricks/synth"
)

// Capture is an offline sink that records everything it pulls.
type Capture struct {
	sampleRate int
	block      []float32
	samples    []float32
	src        synth.Source
}

// NewCapture returns a capture that pulls blockFrames frames at a time.
func NewCapture(sampleRate, blockFrames int) *Capture {
	if blockFrames < 1 {
		blockFrames = synth.DefaultBlockSize
	}
	return &Capture{sampleRate: sampleRate, block: make([]float32, 2*blockFrames)}
}

// Start attaches src.
func (c *Capture) Start(src synth.Source) error {
	if src == nil {
		return ErrNoSource
	}
	c.src = src
	return nil
}

// Stop detaches the source. Recorded samples are kept.
func (c *Capture) Stop() error {
	c.src = nil
	return nil
}

// Advance pulls frames more frames from the source.
func (c *Capture) Advance(frames int) error {
	if c.src == nil {
		return fmt.Errorf("capture: not started")
	}
	blockFrames := len(c.block) / 2
	for frames > 0 {
		n := min(frames, blockFrames)
		buf := c.block[:2*n]
		c.src.Render(buf)
		c.samples = append(c.samples, buf...)
		frames -= n
	}
	return nil
}

// Frames returns the number of recorded frames.
func (c *Capture) Frames() int { return len(c.samples) / 2 }

// Samples returns the recorded interleaved stereo data.
func (c *Capture) Samples() []float32 { return c.samples }

// Tail returns the last frames recorded frames as interleaved stereo.
func (c *Capture) Tail(frames int) []float32 {
	n := min(2*frames, len(c.samples))
	return c.samples[len(c.samples)-n:]
}

// SampleRate returns the rate the recording was made at.
func (c *Capture) SampleRate() int { return c.sampleRate }
