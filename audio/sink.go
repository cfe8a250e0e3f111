// Package audio connects a synth.Source to an output: a realtime device,
// a caller-driven pull buffer, or an offline capture.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-bricks/synth"
)

// ErrNoSource is returned when a sink is started with a nil source.
var ErrNoSource = errors.New("audio: nil source")

type sourceRef struct {
	src synth.Source
}

// PullSink renders only when Pull is called. Hosts that own the audio
// callback, such as a browser AudioWorklet, drive the engine through it.
type PullSink struct {
	ref atomic.Pointer[sourceRef]
}

// Start attaches src.
func (s *PullSink) Start(src synth.Source) error {
	if src == nil {
		return ErrNoSource
	}
	s.ref.Store(&sourceRef{src: src})
	return nil
}

// Stop detaches the source. Later pulls produce silence.
func (s *PullSink) Stop() error {
	s.ref.Store(nil)
	return nil
}

// Running reports whether a source is attached.
func (s *PullSink) Running() bool { return s.ref.Load() != nil }

// Pull fills out with interleaved stereo frames and returns the number
// of frames rendered. A stopped sink writes silence and returns 0.
func (s *PullSink) Pull(out []float32) int {
	r := s.ref.Load()
	if r == nil {
		clear(out)
		return 0
	}
	r.src.Render(out)
	return len(out) / 2
}

// streamReader adapts a Source to io.Reader as little-endian float32
// stereo for device players. Large reads are rendered through the fixed
// buffer in several passes.
type streamReader struct {
	src synth.Source
	buf []float32
}

func newStreamReader(src synth.Source, frames int) *streamReader {
	frames = max(frames, 1)
	return &streamReader{src: src, buf: make([]float32, 2*frames)}
}

func (r *streamReader) Read(p []byte) (int, error) {
	n := len(p) / 8 * 2
	for off := 0; off < n; {
		buf := r.buf[:min(len(r.buf), n-off)]
		r.src.Render(buf)
		for i, v := range buf {
			binary.LittleEndian.PutUint32(p[4*(off+i):], math.Float32bits(v))
		}
		off += len(buf)
	}
	clear(p[4*n:])
	return len(p), nil
}
