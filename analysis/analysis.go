// Package analysis measures rendered audio: levels, clicks, decay and pitch.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-bricks/notes"
	"github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
)

// ErrTooShort is returned when a signal is too short to analyse.
var ErrTooShort = errors.New("analysis: signal too short")

// Summary collects the level measurements reported for a render.
type Summary struct {
	RMS              float64
	PeakDB           float64
	MaxStep          float64
	DecayDBPerSecond float64
	Clipped          int
}

// Summarize measures x at sampleRate. The decay slope is fitted from
// releaseAt (a sample index, usually the last note-off) onward; a negative
// releaseAt fits from the loudest frame. Decay is NaN when there is too
// little signal to fit.
func Summarize(x []float64, sampleRate, releaseAt int) Summary {
	s := Summary{
		RMS:              RMS(x),
		PeakDB:           LinToDB(Peak(x)),
		MaxStep:          MaxStep(x),
		DecayDBPerSecond: math.NaN(),
	}
	for _, v := range x {
		if math.Abs(v) >= 1 {
			s.Clipped++
		}
	}
	if sampleRate > 0 {
		frame := sampleRate / 50
		hop := frame / 2
		if env := RMSEnvelope(x, frame, hop); env != nil {
			from := -1
			if releaseAt >= 0 {
				from = releaseAt / hop
			}
			s.DecayDBPerSecond = DecaySlopeDBPerS(env, float64(hop)/float64(sampleRate), from)
		}
	}
	return s
}

// RMS returns the root mean square of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// Peak returns the largest absolute sample.
func Peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		if a := math.Abs(v); a > p {
			p = a
		}
	}
	return p
}

// MaxStep returns the largest difference between adjacent samples.
// Clicks show up as steps far above what the signal bandwidth allows.
func MaxStep(x []float64) float64 {
	var m float64
	for i := 1; i < len(x); i++ {
		if d := math.Abs(x[i] - x[i-1]); d > m {
			m = d
		}
	}
	return m
}

// RMSEnvelope returns frame RMS values taken every hop samples.
func RMSEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = RMS(x[start : start+frame])
	}
	return out
}

// LinToDB converts a linear amplitude to dB, floored at -240 dB.
func LinToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

// DecaySlopeDBPerS fits a line, in dB per second, to the envelope frames
// starting at frame from and ending once the level is 60 dB below its value
// there. A negative from starts just after the loudest frame. The result is
// negative for a decaying signal and NaN when fewer than six frames are
// usable.
func DecaySlopeDBPerS(env []float64, hopSec float64, from int) float64 {
	if hopSec <= 0 || len(env) == 0 || from >= len(env) {
		return math.NaN()
	}
	if from < 0 {
		loudest := 0
		for i, v := range env {
			if v > env[loudest] {
				loudest = i
			}
		}
		from = loudest + 1
	}
	if from >= len(env) {
		return math.NaN()
	}

	floor := LinToDB(env[from]) - 60
	ys := make([]float64, 0, len(env)-from)
	for _, v := range env[from:] {
		db := LinToDB(v)
		if db < floor {
			break
		}
		ys = append(ys, db)
	}
	if len(ys) < 6 {
		return math.NaN()
	}
	return lineSlope(ys, hopSec)
}

// lineSlope returns the least-squares slope of ys sampled every dx.
func lineSlope(ys []float64, dx float64) float64 {
	n := float64(len(ys))
	meanX := dx * (n - 1) / 2
	var meanY float64
	for _, y := range ys {
		meanY += y
	}
	meanY /= n

	var num, den float64
	for i, y := range ys {
		d := float64(i)*dx - meanX
		num += d * (y - meanY)
		den += d * d
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// DominantFrequency returns the strongest spectral peak of x in Hz. It
// analyses the first power-of-two block of x under a Hann window and
// refines the peak bin by parabolic interpolation.
func DominantFrequency(x []float64, sampleRate int) (float64, error) {
	size := 1
	for size*2 <= len(x) && size < 1<<16 {
		size *= 2
	}
	if size < 64 || sampleRate <= 0 {
		return 0, ErrTooShort
	}

	coeffs := window.Generate(window.TypeHann, size)
	in := make([]complex128, size)
	for i := range in {
		in[i] = complex(x[i]*coeffs[i], 0)
	}
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0, err
	}
	spec := make([]complex128, size)
	if err := plan.Forward(spec, in); err != nil {
		return 0, err
	}

	half := size / 2
	mag := make([]float64, half+1)
	best := 1
	for k := 1; k <= half; k++ {
		mag[k] = cmplx.Abs(spec[k])
		if mag[k] > mag[best] {
			best = k
		}
	}
	if mag[best] == 0 {
		return 0, nil
	}

	bin := float64(best)
	if best > 1 && best < half {
		a, b, c := mag[best-1], mag[best], mag[best+1]
		if den := a - 2*b + c; den != 0 {
			bin += 0.5 * (a - c) / den
		}
	}
	return bin * float64(sampleRate) / float64(size), nil
}

// NearestPitch returns the equal-tempered pitch closest to freq (A4 = 440 Hz)
// and the offset from it in cents.
func NearestPitch(freq float64) (notes.Pitch, float64, error) {
	if !(freq > 0) || math.IsInf(freq, 1) {
		return 0, 0, fmt.Errorf("frequency must be > 0: %f", freq)
	}
	semis := 69 + 12*math.Log2(freq/440)
	p := math.Round(semis)
	if p < 0 || p >= notes.NumPitches {
		return 0, 0, fmt.Errorf("frequency outside the pitch range: %f", freq)
	}
	return notes.Pitch(p), 100 * (semis - p), nil
}
