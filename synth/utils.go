package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// pitchToFreq converts a MIDI pitch index to frequency in Hz.
func pitchToFreq(pitch int) float64 {
	const a4Freq = 440.0
	const a4Pitch = 69
	return a4Freq * float64(pow2Approx(float32(pitch-a4Pitch)/12.0))
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

// clampNormalized maps NaN to 0 and clamps to [0,1].
func clampNormalized(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return dspcore.Clamp(v, 0, 1)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func secondsToSamples(seconds, sampleRate float64) int {
	n := int(math.Round(seconds * sampleRate))
	if n < 1 {
		return 1
	}
	return n
}
