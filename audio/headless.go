//go:build headless

package audio

import "time"

// OtoSink is the device-free stand-in used by headless builds. It
// behaves like a PullSink.
type OtoSink struct {
	PullSink
}

// NewOtoSink returns a headless sink.
func NewOtoSink(sampleRate int, bufferSize time.Duration) *OtoSink {
	return &OtoSink{}
}
