package synth

import (
	"fmt"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// controlRampSeconds is the glide applied to continuous mix and depth
// controls.
const controlRampSeconds = 0.02

// Param identifies one normalized control.
type Param int

const (
	ParamVibratoDepth Param = iota
	ParamAttackDecay
	ParamRelease
	ParamSustain
	ParamFilterAttackDecay
	ParamFilterResonance
	ParamFilterSustain
	ParamFilterCutoff
	ParamPhaserRate
	ParamPhaserFeedback
	ParamDelayTime
	ParamDelayLowPassCutoff
	ParamReverbAmount
	ParamMasterVolume
	NumParams
)

type paramSpec struct {
	name     string
	scale    float64
	offset   float64
	min, max float64
	def      float64
}

// Native value = scale*v + offset, then clamped to [min, max].
var paramSpecs = [NumParams]paramSpec{
	ParamVibratoDepth:       {name: "vibratoDepth", scale: 1, min: 0, max: MaxVibratoDepth, def: 0.2},
	ParamAttackDecay:        {name: "attackDecay", scale: 4, min: 0, max: 4, def: 0.025},
	ParamRelease:            {name: "release", scale: 4, min: 0, max: 4, def: 0.05},
	ParamSustain:            {name: "sustain", scale: 1, min: MinSustainLevel, max: 1, def: 0.7},
	ParamFilterAttackDecay:  {name: "filterAttackDecay", scale: 2, min: 0, max: 2, def: 0.05},
	ParamFilterResonance:    {name: "filterResonance", scale: MaxFilterResonance, min: 0, max: MaxFilterResonance, def: 0.8 / MaxFilterResonance},
	ParamFilterSustain:      {name: "filterSustain", scale: 1, min: MinSustainLevel, max: 1, def: 0.8},
	ParamFilterCutoff:       {name: "filterCutoff", scale: 15, offset: 1, min: 1, max: 16, def: 0.5},
	ParamPhaserRate:         {name: "phaserRate", scale: MaxPhaserRateBPM - MinPhaserRateBPM, offset: MinPhaserRateBPM, min: MinPhaserRateBPM, max: MaxPhaserRateBPM, def: 0.25},
	ParamPhaserFeedback:     {name: "phaserFeedback", scale: MaxPhaserFeedback, min: 0, max: MaxPhaserFeedback, def: 0.3},
	ParamDelayTime:          {name: "delayTime", scale: 1, min: 0, max: 1, def: 0.25},
	ParamDelayLowPassCutoff: {name: "delayLowPassCutoff", scale: MaxDelayLowPassHz - MinDelayLowPassHz, offset: MinDelayLowPassHz, min: MinDelayLowPassHz, max: MaxDelayLowPassHz, def: 0.5},
	ParamReverbAmount:       {name: "reverbAmount", scale: 1, min: 0, max: 1, def: 0.25},
	ParamMasterVolume:       {name: "masterVolume", scale: 1, min: 0, max: 1, def: 0.5},
}

func (p Param) valid() bool { return p >= 0 && p < NumParams }

func (p Param) String() string {
	if !p.valid() {
		return fmt.Sprintf("Param(%d)", int(p))
	}
	return paramSpecs[p].name
}

// Range returns the native range of p.
func (p Param) Range() (lo, hi float64) {
	if !p.valid() {
		return 0, 0
	}
	return paramSpecs[p].min, paramSpecs[p].max
}

// ParseParam resolves a control name such as "phaserRate".
func ParseParam(name string) (Param, error) {
	for i := range paramSpecs {
		if paramSpecs[i].name == name {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("unknown parameter %q", name)
}

// ParamNames lists all control names in Param order.
func ParamNames() []string {
	out := make([]string, NumParams)
	for i := range paramSpecs {
		out[i] = paramSpecs[i].name
	}
	return out
}

// MapParam converts a normalized value to p's native unit. The input is
// clamped to [0,1] (NaN reads as 0) and the result to p's native range.
func MapParam(p Param, v float64) float64 {
	if !p.valid() {
		return 0
	}
	s := paramSpecs[p]
	return dspcore.Clamp(s.scale*clampNormalized(v)+s.offset, s.min, s.max)
}

// Controls holds one normalized value per Param.
type Controls [NumParams]float64

// DefaultControls returns the factory patch.
func DefaultControls() Controls {
	var c Controls
	for i := range paramSpecs {
		c[i] = paramSpecs[i].def
	}
	return c
}

// native is a snapshot of mapped values read once per block.
type native [NumParams]float64

func defaultNative() native {
	var n native
	c := DefaultControls()
	for i := range c {
		n[i] = MapParam(Param(i), c[i])
	}
	return n
}

func (n *native) voiceParams() voiceParams {
	ad := n[ParamAttackDecay]
	fad := n[ParamFilterAttackDecay]
	release := n[ParamRelease]
	return voiceParams{
		amp:       EnvelopeParams{Attack: ad, Decay: ad, Sustain: n[ParamSustain], Release: release},
		filter:    EnvelopeParams{Attack: fad, Decay: fad, Sustain: n[ParamFilterSustain], Release: release},
		cutoffMul: n[ParamFilterCutoff],
		damping:   resonanceToDamping(n[ParamFilterResonance]),
	}
}

func defaultVoiceParams() voiceParams {
	n := defaultNative()
	return n.voiceParams()
}
