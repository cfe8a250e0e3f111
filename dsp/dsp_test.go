package dsp

import (
	"math"
	"testing"
)

func TestSVFPassesDCAndAttenuatesNyquist(t *testing.T) {
	const sr = 48000.0
	g := SVFGain(1000, sr)
	k := 1.41

	var dc SVF
	var y float64
	for i := 0; i < 4800; i++ {
		y = dc.ProcessLowpass(1, g, k)
	}
	if math.Abs(y-1) > 1e-3 {
		t.Fatalf("expected unity DC gain, got %f", y)
	}

	var hf SVF
	peak := 0.0
	for i := 0; i < 4800; i++ {
		x := 1.0
		if i%2 == 1 {
			x = -1
		}
		out := hf.ProcessLowpass(x, g, k)
		if i > 2400 && math.Abs(out) > peak {
			peak = math.Abs(out)
		}
	}
	if peak > 0.01 {
		t.Fatalf("expected strong nyquist attenuation, got peak %f", peak)
	}
}

func TestSVFStaysBoundedAtMaximumResonance(t *testing.T) {
	const sr = 48000.0
	var f SVF
	for i := 0; i < 48000; i++ {
		// Drive at the cutoff frequency with a square wave and minimal damping.
		x := 1.0
		if (i/24)%2 == 1 {
			x = -1
		}
		y := f.ProcessLowpass(x, SVFGain(1000, sr), 0)
		if math.IsNaN(y) || math.IsInf(y, 0) || math.Abs(y) > 2*svfStateLimit {
			t.Fatalf("unstable output at sample %d: %f", i, y)
		}
	}
}

func TestSVFGainClampsCutoff(t *testing.T) {
	hi := SVFGain(1e9, 48000)
	if want := math.Tan(math.Pi * 0.49); math.Abs(hi-want) > 1e-9 {
		t.Fatalf("expected clamp at 0.49*fs: got=%f want=%f", hi, want)
	}
	if lo := SVFGain(-5, 48000); lo <= 0 {
		t.Fatalf("expected positive gain for negative cutoff, got %f", lo)
	}
}

func TestRampReachesTargetLinearly(t *testing.T) {
	r := NewRamp(0)
	r.SetTarget(1, 4)
	want := []float64{0.25, 0.5, 0.75, 1, 1}
	for i, w := range want {
		if got := r.Next(); math.Abs(got-w) > 1e-12 {
			t.Fatalf("step %d: got=%f want=%f", i, got, w)
		}
	}
	if !r.Done() {
		t.Fatalf("expected ramp to be done")
	}
	r.SetTarget(0.5, 0)
	if r.Value() != 0.5 {
		t.Fatalf("zero-length ramp should jump, got %f", r.Value())
	}
}

func TestRampRetargetMidway(t *testing.T) {
	r := NewRamp(0)
	r.SetTarget(1, 10)
	for i := 0; i < 5; i++ {
		r.Next()
	}
	r.SetTarget(1, 10) // same target keeps the current ramp
	r.Next()
	if math.Abs(r.Value()-0.6) > 1e-12 {
		t.Fatalf("expected ramp to continue, got %f", r.Value())
	}
	r.SetTarget(0, 6)
	prev := r.Value()
	for !r.Done() {
		v := r.Next()
		if v > prev+1e-12 {
			t.Fatalf("ramp down not monotonic: %f after %f", v, prev)
		}
		prev = v
	}
	if r.Value() != 0 {
		t.Fatalf("expected target 0, got %f", r.Value())
	}
}

func TestSawIsBoundedAndPeriodic(t *testing.T) {
	var o Saw
	inc := 440.0 / 48000.0
	crossings := 0
	skip := false
	prev := o.Next(inc)
	for i := 1; i < 48000; i++ {
		y := o.Next(inc)
		if math.Abs(y) > 1.01 {
			t.Fatalf("saw out of range at %d: %f", i, y)
		}
		// The band-limited reset can spread over two samples.
		if skip {
			skip = false
		} else if prev-y > 0.5 {
			crossings++
			skip = true
		}
		prev = y
	}
	if crossings < 438 || crossings > 441 {
		t.Fatalf("expected ~440 resets per second, got %d", crossings)
	}
}

func TestSineLFORange(t *testing.T) {
	l := NewSineLFO(5, 48000)
	maxV, minV := -2.0, 2.0
	for i := 0; i < 48000; i++ {
		v := l.Next()
		maxV = math.Max(maxV, v)
		minV = math.Min(minV, v)
	}
	if maxV < 0.999 || minV > -0.999 || maxV > 1 || minV < -1 {
		t.Fatalf("unexpected LFO range [%f, %f]", minV, maxV)
	}
}
