package synth

import (
	"sync/atomic"

	"github.com/cwbudde/algo-bricks/dsp"
	"github.com/cwbudde/algo-dsp/dsp/effects/reverb"
)

// presetFadeSeconds is the crossfade time between two reverb rooms.
const presetFadeSeconds = 0.02

type pendingReverb struct {
	fdn    *reverb.FDNReverb
	preset int
}

// Reverb mixes a preset FDN room into the signal. Presets are built off
// the audio path by SetPreset and picked up by Process at the next block,
// where the old and new rooms crossfade.
type Reverb struct {
	sampleRate  float64
	fadeSamples int
	rampSamples int

	pending atomic.Pointer[pendingReverb]
	active  atomic.Int32

	current *reverb.FDNReverb
	next    *reverb.FDNReverb
	fade    dsp.Ramp
	mix     dsp.Ramp
}

// NewReverb returns a reverb on preset with a dry mix.
func NewReverb(sampleRate float64, preset int) (*Reverb, error) {
	preset = clampPreset(preset)
	fdn, err := newPresetReverb(sampleRate, preset)
	if err != nil {
		return nil, err
	}
	r := &Reverb{
		sampleRate:  sampleRate,
		fadeSamples: secondsToSamples(presetFadeSeconds, sampleRate),
		rampSamples: secondsToSamples(controlRampSeconds, sampleRate),
		current:     fdn,
		mix:         dsp.NewRamp(0),
	}
	r.active.Store(int32(preset))
	return r, nil
}

// SetPreset builds the room for preset and queues it for the audio path.
// It is safe to call concurrently with Process. A preset queued while a
// previous one is still waiting replaces it.
func (r *Reverb) SetPreset(preset int) error {
	preset = clampPreset(preset)
	fdn, err := newPresetReverb(r.sampleRate, preset)
	if err != nil {
		return err
	}
	r.pending.Store(&pendingReverb{fdn: fdn, preset: preset})
	return nil
}

// Preset returns the room currently audible (or fading in).
func (r *Reverb) Preset() int { return int(r.active.Load()) }

// SetMix sets the dry/wet balance in [0,1]. Audio path only.
func (r *Reverb) SetMix(wet float64) {
	r.mix.SetTarget(clampNormalized(wet), r.rampSamples)
}

// Mix returns the current dry/wet balance.
func (r *Reverb) Mix() float64 { return r.mix.Value() }

// Fading reports whether a preset crossfade is in progress.
func (r *Reverb) Fading() bool { return r.next != nil }

// Process applies the reverb to buf in place.
func (r *Reverb) Process(buf []float64) {
	if r.next == nil {
		if p := r.pending.Swap(nil); p != nil {
			r.next = p.fdn
			r.fade.Jump(0)
			r.fade.SetTarget(1, r.fadeSamples)
			r.active.Store(int32(p.preset))
		}
	}
	for i, x := range buf {
		wet := r.current.ProcessSample(x)
		if r.next != nil {
			f := r.fade.Next()
			wet = wet*(1-f) + r.next.ProcessSample(x)*f
		}
		m := r.mix.Next()
		buf[i] = x*(1-m) + wet*m
	}
	if r.next != nil && r.fade.Done() {
		r.current = r.next
		r.next = nil
	}
}

// Reset clears the room state and drops any queued preset.
func (r *Reverb) Reset() {
	if p := r.pending.Swap(nil); p != nil {
		r.current = p.fdn
		r.active.Store(int32(p.preset))
	}
	if r.next != nil {
		r.current = r.next
		r.next = nil
	}
	r.current.Reset()
}
