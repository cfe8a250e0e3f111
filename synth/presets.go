package synth

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/effects/reverb"
)

// NumReverbPresets is the number of selectable rooms.
const NumReverbPresets = 13

// DefaultReverbPreset is the large hall.
const DefaultReverbPreset = 4

type reverbPreset struct {
	name     string
	rt60     float64
	damp     float64
	preDelay float64
	modDepth float64
	modRate  float64
	gain     float64
}

var reverbPresets = [NumReverbPresets]reverbPreset{
	{name: "Small Room", rt60: 0.4, damp: 0.45, preDelay: 0.004, modDepth: 0.0008, modRate: 0.3, gain: 0.9},
	{name: "Medium Room", rt60: 0.7, damp: 0.4, preDelay: 0.008, modDepth: 0.001, modRate: 0.25, gain: 0.85},
	{name: "Large Room", rt60: 1.1, damp: 0.35, preDelay: 0.012, modDepth: 0.0012, modRate: 0.2, gain: 0.8},
	{name: "Medium Hall", rt60: 1.6, damp: 0.3, preDelay: 0.018, modDepth: 0.0015, modRate: 0.15, gain: 0.75},
	{name: "Large Hall", rt60: 2.4, damp: 0.28, preDelay: 0.025, modDepth: 0.002, modRate: 0.1, gain: 0.7},
	{name: "Plate", rt60: 1.3, damp: 0.1, preDelay: 0, modDepth: 0.0015, modRate: 0.6, gain: 0.8},
	{name: "Medium Chamber", rt60: 1.0, damp: 0.35, preDelay: 0.01, modDepth: 0.001, modRate: 0.2, gain: 0.8},
	{name: "Large Chamber", rt60: 1.4, damp: 0.32, preDelay: 0.015, modDepth: 0.0012, modRate: 0.18, gain: 0.75},
	{name: "Cathedral", rt60: 4.5, damp: 0.2, preDelay: 0.04, modDepth: 0.0025, modRate: 0.08, gain: 0.6},
	{name: "Large Room 2", rt60: 1.2, damp: 0.5, preDelay: 0.02, modDepth: 0.001, modRate: 0.22, gain: 0.8},
	{name: "Medium Hall 2", rt60: 1.8, damp: 0.25, preDelay: 0.02, modDepth: 0.0018, modRate: 0.12, gain: 0.72},
	{name: "Medium Hall 3", rt60: 2.0, damp: 0.35, preDelay: 0.022, modDepth: 0.0016, modRate: 0.14, gain: 0.72},
	{name: "Large Hall 2", rt60: 3.0, damp: 0.22, preDelay: 0.03, modDepth: 0.002, modRate: 0.09, gain: 0.65},
}

// ReverbPresetName returns the display name of preset i.
func ReverbPresetName(i int) (string, error) {
	if i < 0 || i >= NumReverbPresets {
		return "", fmt.Errorf("reverb preset out of range: %d", i)
	}
	return reverbPresets[i].name, nil
}

// ReverbPresetNames returns all preset names in index order.
func ReverbPresetNames() []string {
	out := make([]string, NumReverbPresets)
	for i := range reverbPresets {
		out[i] = reverbPresets[i].name
	}
	return out
}

// clampPreset limits i to a valid preset index.
func clampPreset(i int) int {
	if i < 0 {
		return 0
	}
	if i >= NumReverbPresets {
		return NumReverbPresets - 1
	}
	return i
}

// newPresetReverb builds a fully wet FDN configured for preset i.
func newPresetReverb(sampleRate float64, i int) (*reverb.FDNReverb, error) {
	p := reverbPresets[clampPreset(i)]
	r, err := reverb.NewFDNReverb(sampleRate)
	if err != nil {
		return nil, err
	}
	steps := []func() error{
		func() error { return r.SetDry(0) },
		func() error { return r.SetWet(p.gain) },
		func() error { return r.SetRT60(p.rt60) },
		func() error { return r.SetDamp(p.damp) },
		func() error { return r.SetPreDelay(p.preDelay) },
		func() error { return r.SetModDepth(p.modDepth) },
		func() error { return r.SetModRate(p.modRate) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("reverb preset %q: %w", p.name, err)
		}
	}
	return r, nil
}
