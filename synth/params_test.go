package synth

import (
	"math"
	"testing"
)

func TestMapParamExtremes(t *testing.T) {
	cases := []struct {
		p        Param
		lo, hi   float64
		mid, val float64
	}{
		{ParamVibratoDepth, 0, 1, 0.5, 0.5},
		{ParamAttackDecay, 0, 4, 0.5, 2},
		{ParamRelease, 0, 4, 0.25, 1},
		{ParamSustain, MinSustainLevel, 1, 0.5, 0.5},
		{ParamFilterAttackDecay, 0, 2, 0.5, 1},
		{ParamFilterResonance, 0, 6, 0.5, 3},
		{ParamFilterSustain, MinSustainLevel, 1, 0.7, 0.7},
		{ParamFilterCutoff, 1, 16, 0.2, 4},
		{ParamPhaserRate, 24, 360, 0.5, 192},
		{ParamPhaserFeedback, 0, 0.8, 0.5, 0.4},
		{ParamDelayTime, 0, 1, 0.3, 0.3},
		{ParamDelayLowPassCutoff, 200, 1500, 0.5, 850},
		{ParamReverbAmount, 0, 1, 0.6, 0.6},
		{ParamMasterVolume, 0, 1, 0.4, 0.4},
	}
	for _, tc := range cases {
		if got := MapParam(tc.p, 0); math.Abs(got-tc.lo) > 1e-12 {
			t.Fatalf("%s(0): got=%f want=%f", tc.p, got, tc.lo)
		}
		if got := MapParam(tc.p, 1); math.Abs(got-tc.hi) > 1e-12 {
			t.Fatalf("%s(1): got=%f want=%f", tc.p, got, tc.hi)
		}
		if got := MapParam(tc.p, tc.mid); math.Abs(got-tc.val) > 1e-9 {
			t.Fatalf("%s(%f): got=%f want=%f", tc.p, tc.mid, got, tc.val)
		}
		lo, hi := tc.p.Range()
		if lo != tc.lo || hi != tc.hi {
			t.Fatalf("%s range [%f, %f], want [%f, %f]", tc.p, lo, hi, tc.lo, tc.hi)
		}
	}
}

func TestMapParamClampsInput(t *testing.T) {
	for p := Param(0); p < NumParams; p++ {
		lo, hi := p.Range()
		if got := MapParam(p, -3); got != MapParam(p, 0) {
			t.Fatalf("%s(-3) = %f, want %f", p, got, MapParam(p, 0))
		}
		if got := MapParam(p, 7); got != MapParam(p, 1) {
			t.Fatalf("%s(7) = %f, want %f", p, got, MapParam(p, 1))
		}
		if got := MapParam(p, math.NaN()); got != MapParam(p, 0) {
			t.Fatalf("%s(NaN) = %f, want %f", p, got, MapParam(p, 0))
		}
		for v := 0.0; v <= 1.0; v += 0.01 {
			if got := MapParam(p, v); got < lo || got > hi {
				t.Fatalf("%s(%f) = %f outside [%f, %f]", p, v, got, lo, hi)
			}
		}
	}
}

func TestParseParamRoundTrip(t *testing.T) {
	for _, name := range ParamNames() {
		p, err := ParseParam(name)
		if err != nil {
			t.Fatalf("ParseParam(%q): %v", name, err)
		}
		if p.String() != name {
			t.Fatalf("name mismatch: got=%s want=%s", p, name)
		}
	}
	if _, err := ParseParam("wobble"); err == nil {
		t.Fatalf("expected error for unknown parameter")
	}
	if got := Param(99).String(); got != "Param(99)" {
		t.Fatalf("unexpected String for invalid param: %s", got)
	}
}

func TestDefaultControlsMapToFactorySound(t *testing.T) {
	n := defaultNative()
	if math.Abs(n[ParamAttackDecay]-0.1) > 1e-12 {
		t.Fatalf("default attack: got=%f want=0.1", n[ParamAttackDecay])
	}
	if math.Abs(n[ParamRelease]-0.2) > 1e-12 {
		t.Fatalf("default release: got=%f want=0.2", n[ParamRelease])
	}
	if math.Abs(n[ParamFilterResonance]-0.8) > 1e-12 {
		t.Fatalf("default resonance: got=%f want=0.8", n[ParamFilterResonance])
	}
	if n[ParamPhaserRate] != defaultPhaserBPM {
		t.Fatalf("default phaser rate: got=%f want=%f", n[ParamPhaserRate], defaultPhaserBPM)
	}
	vp := n.voiceParams()
	if vp.amp.Attack != vp.amp.Decay || vp.filter.Release != vp.amp.Release {
		t.Fatalf("shared envelope times not applied: %+v", vp)
	}
}

func TestResonanceToDamping(t *testing.T) {
	if got := resonanceToDamping(0); got != maxDamping {
		t.Fatalf("damping at 0: got=%f want=%f", got, maxDamping)
	}
	if got := resonanceToDamping(MaxFilterResonance); math.Abs(got-minDamping) > 1e-12 {
		t.Fatalf("damping at max: got=%f want=%f", got, minDamping)
	}
	if got := resonanceToDamping(math.Inf(1)); got != maxDamping {
		t.Fatalf("non-finite resonance should fall back to %f, got %f", maxDamping, got)
	}
}
