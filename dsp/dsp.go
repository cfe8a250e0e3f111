// Package dsp holds small allocation-free building blocks used per sample
// by the synth voices and effects.
package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// svfStateLimit bounds the SVF integrator state so high resonance cannot
// run away.
const svfStateLimit = 8.0

// SVF is a topology-preserving-transform state-variable low-pass filter
// (no heap allocations in Process).
type SVF struct {
	ic1eq float64
	ic2eq float64
}

// SVFGain returns the integrator gain g = tan(pi*f/fs) for cutoff f.
// The cutoff is clamped to [1 Hz, 0.49*fs].
func SVFGain(cutoff, sampleRate float64) float64 {
	ratio := dspcore.Clamp(cutoff/sampleRate, 1/sampleRate, 0.49)
	return math.Tan(math.Pi * ratio)
}

// ProcessLowpass filters one sample with integrator gain g and damping
// k = 1/Q. k is clamped to a small positive floor.
func (s *SVF) ProcessLowpass(x, g, k float64) float64 {
	if k < 0.02 {
		k = 0.02
	}
	a1 := 1 / (1 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	v3 := x - s.ic2eq
	v1 := a1*s.ic1eq + a2*v3
	v2 := s.ic2eq + a2*s.ic1eq + a3*v3
	s.ic1eq = clampState(2*v1 - s.ic1eq)
	s.ic2eq = clampState(2*v2 - s.ic2eq)
	return v2
}

// Reset clears the filter state.
func (s *SVF) Reset() {
	s.ic1eq, s.ic2eq = 0, 0
}

func clampState(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return dspcore.FlushDenormals(dspcore.Clamp(v, -svfStateLimit, svfStateLimit))
}

// Ramp moves linearly toward a target over a fixed number of samples.
type Ramp struct {
	value     float64
	target    float64
	step      float64
	remaining int
}

// NewRamp returns a ramp resting at v.
func NewRamp(v float64) Ramp {
	return Ramp{value: v, target: v}
}

// SetTarget starts a ramp to target lasting the given number of samples.
// Re-setting the current target is a no-op so per-block calls keep the
// ramp running.
func (r *Ramp) SetTarget(target float64, samples int) {
	if target == r.target {
		return
	}
	r.target = target
	if samples < 1 {
		r.value = target
		r.remaining = 0
		return
	}
	r.remaining = samples
	r.step = (target - r.value) / float64(samples)
}

// Jump sets value and target without ramping.
func (r *Ramp) Jump(v float64) {
	r.value, r.target, r.remaining = v, v, 0
}

// Next advances one sample and returns the new value.
func (r *Ramp) Next() float64 {
	if r.remaining > 0 {
		r.remaining--
		if r.remaining == 0 {
			r.value = r.target
		} else {
			r.value += r.step
		}
	}
	return r.value
}

// Value returns the current value.
func (r *Ramp) Value() float64 { return r.value }

// Target returns the value the ramp is heading to.
func (r *Ramp) Target() float64 { return r.target }

// Done reports whether the ramp has reached its target.
func (r *Ramp) Done() bool { return r.remaining == 0 }

// Saw is a PolyBLEP band-limited sawtooth oscillator.
type Saw struct {
	phase float64
}

// Next returns one sample for a phase increment of f/fs.
func (o *Saw) Next(inc float64) float64 {
	if inc < 0 {
		inc = 0
	} else if inc > 0.5 {
		inc = 0.5
	}
	y := 2*o.phase - 1 - polyBLEP(o.phase, inc)
	o.phase += inc
	if o.phase >= 1 {
		o.phase -= 1
	}
	return y
}

// Reset restarts the waveform at phase 0.
func (o *Saw) Reset() {
	o.phase = 0
}

func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

// SineLFO is a unit-amplitude sine low-frequency oscillator.
type SineLFO struct {
	phase float64
	inc   float64
}

// NewSineLFO returns an LFO running at rateHz.
func NewSineLFO(rateHz, sampleRate float64) SineLFO {
	return SineLFO{inc: 2 * math.Pi * rateHz / sampleRate}
}

// Next returns the current value in [-1, 1] and advances one sample.
func (l *SineLFO) Next() float64 {
	y := math.Sin(l.phase)
	l.phase += l.inc
	if l.phase >= 2*math.Pi {
		l.phase -= 2 * math.Pi
	}
	return y
}
