package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-bricks/dsp"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/delay"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

const (
	// MaxDelaySeconds is the longest echo time.
	MaxDelaySeconds = 1.5

	MinDelayLowPassHz = 200.0
	MaxDelayLowPassHz = 1500.0

	delayFeedback    = 0.45
	delayMix         = 0.3
	delayRampSeconds = 0.2
	minDelaySamples  = 1.0
)

// Delay is a feedback echo with a one-pole low-pass in the loop. Delay
// time changes glide so the read head never jumps.
type Delay struct {
	sampleRate  float64
	line        *delay.Line
	maxSamples  float64
	time        dsp.Ramp
	rampSamples int
	lp          biquad.Section
	cutoff      float64
}

// NewDelay allocates a line long enough for MaxDelaySeconds.
func NewDelay(sampleRate float64) (*Delay, error) {
	maxSamples := math.Ceil(MaxDelaySeconds * sampleRate)
	line, err := delay.New(int(maxSamples) + 4)
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	d := &Delay{
		sampleRate:  sampleRate,
		line:        line,
		maxSamples:  maxSamples,
		time:        dsp.NewRamp(maxSamples / 2),
		rampSamples: secondsToSamples(delayRampSeconds, sampleRate),
	}
	d.SetLowPassCutoff(MaxDelayLowPassHz)
	return d, nil
}

// SetTime sets the echo time as a fraction of MaxDelaySeconds.
func (d *Delay) SetTime(fraction float64) {
	target := clampNormalized(fraction) * d.maxSamples
	if target < minDelaySamples {
		target = minDelaySamples
	}
	d.time.SetTarget(target, d.rampSamples)
}

// TimeSeconds returns the current echo time.
func (d *Delay) TimeSeconds() float64 { return d.time.Value() / d.sampleRate }

// SetLowPassCutoff sets the feedback low-pass corner, clamped to
// [MinDelayLowPassHz, MaxDelayLowPassHz].
func (d *Delay) SetLowPassCutoff(hz float64) {
	if !isFinite(hz) {
		hz = MaxDelayLowPassHz
	}
	hz = dspcore.Clamp(hz, MinDelayLowPassHz, MaxDelayLowPassHz)
	if hz == d.cutoff {
		return
	}
	d.cutoff = hz
	d.lp.Coefficients = onePoleLowpass(hz, d.sampleRate)
}

// LowPassCutoff returns the active corner frequency.
func (d *Delay) LowPassCutoff() float64 { return d.cutoff }

// Process applies the echo to buf in place.
func (d *Delay) Process(buf []float64) {
	for i, x := range buf {
		wet := d.line.ReadFractional(d.time.Next())
		fb := d.lp.ProcessSample(wet)
		d.line.Write(dspcore.FlushDenormals(x + fb*delayFeedback))
		buf[i] = x*(1-delayMix) + wet*delayMix
	}
}

// Reset clears the line and filter.
func (d *Delay) Reset() {
	d.line.Reset()
	d.lp = biquad.Section{Coefficients: d.lp.Coefficients}
}

// onePoleLowpass returns bilinear first-order Butterworth coefficients.
// It matches design.ButterworthLP(freq, 1, sr) without the slice.
func onePoleLowpass(freq, sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)
	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}
