package synth

import "github.com/cwbudde/algo-bricks/dsp"

// VibratoRateHz is the fixed rate of the shared pitch LFO.
const VibratoRateHz = 5.0

// MaxVibratoDepth is the largest pitch deviation in semitones.
const MaxVibratoDepth = 1.0

// Vibrato is one sine LFO shared by all voices. It produces a per-sample
// frequency ratio so every voice bends in phase.
type Vibrato struct {
	lfo         dsp.SineLFO
	depth       dsp.Ramp
	rampSamples int
}

// NewVibrato returns a vibrato at depth 0.
func NewVibrato(sampleRate float64) Vibrato {
	return Vibrato{
		lfo:         dsp.NewSineLFO(VibratoRateHz, sampleRate),
		depth:       dsp.NewRamp(0),
		rampSamples: secondsToSamples(controlRampSeconds, sampleRate),
	}
}

// SetDepth sets the depth in semitones, clamped to [0, MaxVibratoDepth].
func (v *Vibrato) SetDepth(semitones float64) {
	if !isFinite(semitones) || semitones < 0 {
		semitones = 0
	} else if semitones > MaxVibratoDepth {
		semitones = MaxVibratoDepth
	}
	v.depth.SetTarget(semitones, v.rampSamples)
}

// Depth returns the current depth in semitones.
func (v *Vibrato) Depth() float64 { return v.depth.Value() }

// Render fills ratios with frequency multipliers for the next len(ratios)
// samples.
func (v *Vibrato) Render(ratios []float64) {
	for i := range ratios {
		semis := v.depth.Next() * v.lfo.Next()
		if semis == 0 {
			ratios[i] = 1
			continue
		}
		ratios[i] = float64(pow2Approx(float32(semis / 12)))
	}
}
