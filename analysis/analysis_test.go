package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-bricks/notes"
	"github.com/cwbudde/algo-bricks/synth"
)

func makeDecaySine(sr int, freq, seconds, tau float64) []float64 {
	n := int(seconds * float64(sr))
	out := make([]float64, n)
	for i := range out {
		tm := float64(i) / float64(sr)
		out[i] = 0.8 * math.Exp(-tm/tau) * math.Sin(2*math.Pi*freq*tm)
	}
	return out
}

func TestLevels(t *testing.T) {
	x := []float64{0, 0.5, -1, 0.25}
	if got := Peak(x); got != 1 {
		t.Fatalf("Peak() = %f, want 1", got)
	}
	if got := MaxStep(x); got != 1.5 {
		t.Fatalf("MaxStep() = %f, want 1.5", got)
	}
	want := math.Sqrt((0.25 + 1 + 0.0625) / 4)
	if got := RMS(x); math.Abs(got-want) > 1e-12 {
		t.Fatalf("RMS() = %f, want %f", got, want)
	}
	if RMS(nil) != 0 || Peak(nil) != 0 || MaxStep(nil) != 0 {
		t.Fatalf("empty input should measure zero")
	}
	if got := LinToDB(0); got != -240 {
		t.Fatalf("LinToDB(0) = %f, want -240", got)
	}
}

func TestRMSEnvelopeFrames(t *testing.T) {
	x := make([]float64, 1000)
	if env := RMSEnvelope(x, 100, 50); len(env) != 19 {
		t.Fatalf("expected 19 frames, got %d", len(env))
	}
	if env := RMSEnvelope(x[:10], 100, 50); env != nil {
		t.Fatalf("expected nil envelope for short input")
	}
}

func TestDecaySlopeMatchesTimeConstant(t *testing.T) {
	const sr = 48000
	tau := 0.3
	x := makeDecaySine(sr, 440, 2, tau)
	s := Summarize(x, sr, -1)
	// exp(-t/tau) falls 20*log10(e)/tau dB per second.
	want := -20 * math.Log10(math.E) / tau
	if math.Abs(s.DecayDBPerSecond-want) > 0.1*math.Abs(want) {
		t.Fatalf("decay slope %f dB/s, want about %f", s.DecayDBPerSecond, want)
	}
	if s.Clipped != 0 {
		t.Fatalf("unexpected clipped samples: %d", s.Clipped)
	}
}

func TestDecaySlopeNaNOnShortEnvelope(t *testing.T) {
	env := []float64{1, 0.5, 0.25, 0.125}
	if got := DecaySlopeDBPerS(env, 0.01, 0); !math.IsNaN(got) {
		t.Fatalf("expected NaN for a short envelope, got %f", got)
	}
}

func TestDecaySlopeFromRelease(t *testing.T) {
	const sr = 48000
	tau := 0.2
	x := make([]float64, 3*sr)
	for i := range x {
		tm := float64(i) / sr
		amp := 0.5
		if i >= sr {
			amp *= math.Exp(-(tm - 1) / tau)
		}
		x[i] = amp * math.Sin(2*math.Pi*330*tm)
	}
	want := -20 * math.Log10(math.E) / tau
	release := Summarize(x, sr, sr)
	if math.Abs(release.DecayDBPerSecond-want) > 0.1*math.Abs(want) {
		t.Fatalf("release slope %f dB/s, want about %f", release.DecayDBPerSecond, want)
	}
	whole := Summarize(x, sr, 0)
	if !(whole.DecayDBPerSecond > release.DecayDBPerSecond) {
		t.Fatalf("fit over the held part should be shallower: whole=%f release=%f", whole.DecayDBPerSecond, release.DecayDBPerSecond)
	}
	if got := DecaySlopeDBPerS([]float64{1, 1}, 0.01, 5); !math.IsNaN(got) {
		t.Fatalf("expected NaN for a start past the envelope, got %f", got)
	}
}

func TestNearestPitch(t *testing.T) {
	cases := []struct {
		freq  float64
		want  notes.Pitch
		cents float64
	}{
		{440, 69, 0},
		{261.6256, 60, 0},
		{466.1638 * math.Pow(2, 10.0/1200), 70, 10},
	}
	for _, tc := range cases {
		p, cents, err := NearestPitch(tc.freq)
		if err != nil {
			t.Fatalf("NearestPitch(%f): %v", tc.freq, err)
		}
		if p != tc.want || math.Abs(cents-tc.cents) > 0.1 {
			t.Fatalf("NearestPitch(%f) = %s %+.2f cents, want %s %+.2f", tc.freq, p, cents, tc.want, tc.cents)
		}
	}
	if _, _, err := NearestPitch(0); err == nil {
		t.Fatalf("expected error for 0 Hz")
	}
}

func TestDominantFrequencyFindsSine(t *testing.T) {
	const sr = 48000
	for _, freq := range []float64{110, 440, 1234} {
		x := makeDecaySine(sr, freq, 0.5, 10)
		got, err := DominantFrequency(x, sr)
		if err != nil {
			t.Fatalf("DominantFrequency: %v", err)
		}
		if math.Abs(got-freq) > 2 {
			t.Fatalf("DominantFrequency() = %f, want %f", got, freq)
		}
	}
	if _, err := DominantFrequency(make([]float64, 10), sr); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}
}

func TestEngineNoteHasExpectedPitch(t *testing.T) {
	cfg := synth.NewDefaultConfig()
	cfg.Controls[synth.ParamDelayTime] = 0
	cfg.Controls[synth.ParamReverbAmount] = 0
	e, err := synth.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.TriggerNote("A3"); err != nil {
		t.Fatalf("TriggerNote: %v", err)
	}
	out := make([]float64, e.SampleRate())
	e.RenderMono(out)

	got, err := DominantFrequency(out[len(out)/2:], e.SampleRate())
	if err != nil {
		t.Fatalf("DominantFrequency: %v", err)
	}
	if math.Abs(got-220)/220 > 0.02 {
		t.Fatalf("A3 rendered at %f Hz, want about 220", got)
	}
	if s := Summarize(out, e.SampleRate(), -1); s.Clipped != 0 || s.MaxStep > 0.5 {
		t.Fatalf("unexpected render summary: %+v", s)
	}
}
