package main

import (
	"fmt"

	"github.com/cwbudde/algo-bricks/analysis"
	"github.com/cwbudde/algo-bricks/internal/wavio"
	"github.com/cwbudde/algo-bricks/notes"
)

// writeOutput writes interleaved stereo rendered at rate to path, resampled
// to outRate and downmixed when mono is set. outRate 0 keeps rate.
func writeOutput(path string, stereo []float32, rate, outRate int, mono bool) error {
	if outRate <= 0 {
		outRate = rate
	}
	if outRate == rate && !mono {
		return wavio.WriteStereo(path, stereo, rate)
	}
	if mono {
		x, err := wavio.Resample(wavio.Mono64(stereo), rate, outRate)
		if err != nil {
			return err
		}
		return wavio.WriteMono(path, wavio.Mono32(x), outRate)
	}

	frames := len(stereo) / 2
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range frames {
		left[i] = float64(stereo[2*i])
		right[i] = float64(stereo[2*i+1])
	}
	l, err := wavio.Resample(left, rate, outRate)
	if err != nil {
		return err
	}
	r, err := wavio.Resample(right, rate, outRate)
	if err != nil {
		return err
	}
	n := min(len(l), len(r))
	out := make([]float32, 2*n)
	for i := range n {
		out[2*i] = float32(l[i])
		out[2*i+1] = float32(r[i])
	}
	return wavio.WriteStereo(path, out, outRate)
}

// singlePitch reports the pitch shared by every sounding step.
func singlePitch(steps []step) (notes.Pitch, bool) {
	var p notes.Pitch
	found := false
	for _, st := range steps {
		if st.rest {
			continue
		}
		if found && st.pitch != p {
			return 0, false
		}
		p, found = st.pitch, true
	}
	return p, found
}

// describePitch measures the strongest frequency in x and names the
// nearest note, e.g. "220.1 Hz (A3 +0.8 cents)".
func describePitch(x []float64, sampleRate int) (string, error) {
	f, err := analysis.DominantFrequency(x, sampleRate)
	if err != nil {
		return "", err
	}
	p, cents, err := analysis.NearestPitch(f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.1f Hz (%s %+.1f cents)", f, p, cents), nil
}
