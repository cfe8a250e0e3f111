package synth

import (
	"github.com/cwbudde/algo-bricks/dsp"
	"github.com/cwbudde/algo-bricks/notes"
)

const (
	// MaxFilterResonance is the top of the resonance control range.
	MaxFilterResonance = 6.0

	// minFilterCutoffHz keeps the filter open a little when the filter
	// envelope is near zero.
	minFilterCutoffHz = 20.0

	maxDamping = 2.0
	minDamping = 0.1
)

// resonanceToDamping maps resonance in [0, MaxFilterResonance] to the SVF
// damping factor k. Zero resonance is a Butterworth-ish k=2 low-pass.
func resonanceToDamping(resonance float64) float64 {
	if !isFinite(resonance) || resonance < 0 {
		resonance = 0
	} else if resonance > MaxFilterResonance {
		resonance = MaxFilterResonance
	}
	return maxDamping - (maxDamping-minDamping)*resonance/MaxFilterResonance
}

// voiceParams are the per-block settings shared by every voice.
type voiceParams struct {
	amp       EnvelopeParams
	filter    EnvelopeParams
	cutoffMul float64
	damping   float64
}

// Voice is one sawtooth oscillator through a resonant low-pass with its own
// amplitude and filter envelopes.
type Voice struct {
	sampleRate float64

	pitch    notes.Pitch
	freq     float64
	velocity float64
	held     bool
	order    uint64

	osc    dsp.Saw
	svf    dsp.SVF
	amp    Envelope
	filter Envelope

	cutoffMul float64
	damping   float64
}

func newVoice(sampleRate float64, vp voiceParams) Voice {
	return Voice{
		sampleRate: sampleRate,
		amp:        NewEnvelope(sampleRate, vp.amp),
		filter:     NewEnvelope(sampleRate, vp.filter),
		cutoffMul:  vp.cutoffMul,
		damping:    vp.damping,
	}
}

// Pitch returns the pitch the voice is playing.
func (v *Voice) Pitch() notes.Pitch { return v.pitch }

// Held reports whether the voice has not yet received a NoteOff.
func (v *Voice) Held() bool { return v.held }

// Active reports whether the voice is producing sound.
func (v *Voice) Active() bool { return v.amp.Active() }

// AmpEnvelope exposes the amplitude envelope for inspection.
func (v *Voice) AmpEnvelope() *Envelope { return &v.amp }

// FilterEnvelope exposes the filter envelope for inspection.
func (v *Voice) FilterEnvelope() *Envelope { return &v.filter }

func (v *Voice) setParams(vp voiceParams) {
	v.amp.SetParams(vp.amp)
	v.filter.SetParams(vp.filter)
	v.cutoffMul = vp.cutoffMul
	v.damping = vp.damping
}

// start (re)triggers the voice. An idle voice starts from a clean
// oscillator and filter; a sounding one keeps its state so the output
// stays continuous.
func (v *Voice) start(pitch notes.Pitch, velocity float64, order uint64) {
	if !v.amp.Active() {
		v.osc.Reset()
		v.svf.Reset()
	}
	v.pitch = pitch
	v.freq = pitchToFreq(int(pitch))
	v.velocity = velocity
	v.held = true
	v.order = order
	v.amp.NoteOn()
	v.filter.NoteOn()
}

// reset silences the voice at once and frees it.
func (v *Voice) reset() {
	v.held = false
	v.amp.Reset()
	v.filter.Reset()
	v.osc.Reset()
	v.svf.Reset()
}

func (v *Voice) release() {
	v.held = false
	v.amp.NoteOff()
	v.filter.NoteOff()
}

// render adds the voice output into out. ratios holds the vibrato
// frequency multiplier for each sample.
func (v *Voice) render(out, ratios []float64) {
	if !v.amp.Active() {
		return
	}
	inc := v.freq / v.sampleRate
	cutoffBase := v.freq * v.cutoffMul
	for i := range out {
		s := v.osc.Next(inc * ratios[i])
		cutoff := cutoffBase * v.filter.Next()
		if cutoff < minFilterCutoffHz {
			cutoff = minFilterCutoffHz
		}
		y := v.svf.ProcessLowpass(s, dsp.SVFGain(cutoff, v.sampleRate), v.damping)
		out[i] += y * v.amp.Next() * v.velocity
		if !v.amp.Active() {
			v.held = false
			v.filter.Reset()
			return
		}
	}
}
