package main

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-bricks/audio"
	"github.com/cwbudde/algo-bricks/internal/wavio"
	"github.com/cwbudde/algo-bricks/notes"
	"github.com/cwbudde/algo-bricks/synth"
)

func TestParseSequenceDefaultIsScaleUpAndDown(t *testing.T) {
	scale, err := notes.Scale(notes.DefaultRoot)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	steps, err := parseSequence("", scale)
	if err != nil {
		t.Fatalf("parseSequence: %v", err)
	}
	if len(steps) != 2*notes.ScaleSize-1 {
		t.Fatalf("expected %d steps, got %d", 2*notes.ScaleSize-1, len(steps))
	}
	if steps[0].pitch != scale[0] || steps[len(steps)-1].pitch != scale[0] {
		t.Fatalf("sequence should start and end on the root")
	}
	if steps[notes.ScaleSize-1].pitch != scale[notes.ScaleSize-1] {
		t.Fatalf("sequence should peak on the top brick")
	}
}

func TestParseSequenceLabelsAndRests(t *testing.T) {
	var scale [notes.ScaleSize]notes.Pitch
	steps, err := parseSequence(" A3, -,C#4 ", scale)
	if err != nil {
		t.Fatalf("parseSequence: %v", err)
	}
	if len(steps) != 3 || steps[0].pitch != 57 || !steps[1].rest || steps[2].pitch != 61 {
		t.Fatalf("unexpected steps: %+v", steps)
	}
	if _, err := parseSequence("A3,Q9", scale); !errors.Is(err, notes.ErrInvalidNoteLabel) {
		t.Fatalf("expected ErrInvalidNoteLabel, got %v", err)
	}
}

func TestRenderTailStopsOnSilence(t *testing.T) {
	c := audio.NewCapture(synth.DefaultSampleRate, synth.DefaultBlockSize)
	cfg := synth.NewDefaultConfig()
	cfg.Sink = c
	e, err := synth.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := renderTail(c, synth.DefaultSampleRate, -90); err != nil {
		t.Fatalf("renderTail: %v", err)
	}
	if got := c.Frames(); got != 6*synth.DefaultBlockSize {
		t.Fatalf("expected early stop after six silent blocks, got %d frames", got)
	}
}

func sineStereo(freq float64, rate, frames int) []float32 {
	out := make([]float32, 2*frames)
	for i := range frames {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		out[2*i] = v
		out[2*i+1] = v
	}
	return out
}

func TestWriteOutputResamplesAndDownmixes(t *testing.T) {
	const rate = 48000
	in := sineStereo(440, rate, rate/2)
	dir := t.TempDir()

	cases := []struct {
		name    string
		outRate int
		mono    bool
		want    int
	}{
		{"same.wav", 0, false, rate},
		{"mono.wav", 0, true, rate},
		{"low.wav", 22050, false, 22050},
		{"low-mono.wav", 16000, true, 16000},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name)
		if err := writeOutput(path, in, rate, tc.outRate, tc.mono); err != nil {
			t.Fatalf("%s: writeOutput: %v", tc.name, err)
		}
		x, sr, err := wavio.ReadMono(path)
		if err != nil {
			t.Fatalf("%s: ReadMono: %v", tc.name, err)
		}
		if sr != tc.want {
			t.Fatalf("%s: sample rate got=%d want=%d", tc.name, sr, tc.want)
		}
		wantFrames := tc.want / 2
		if d := len(x) - wantFrames; d < -wantFrames/50 || d > wantFrames/50 {
			t.Fatalf("%s: frames got=%d want about %d", tc.name, len(x), wantFrames)
		}
	}
}

func TestSinglePitch(t *testing.T) {
	if p, ok := singlePitch([]step{{pitch: 57}, {rest: true}, {pitch: 57}}); !ok || p != 57 {
		t.Fatalf("expected A3, got %s ok=%v", p, ok)
	}
	if _, ok := singlePitch([]step{{pitch: 57}, {pitch: 60}}); ok {
		t.Fatalf("two pitches should not report a single pitch")
	}
	if _, ok := singlePitch([]step{{rest: true}}); ok {
		t.Fatalf("rests only should not report a pitch")
	}
}

func TestDescribePitchNamesRenderedNote(t *testing.T) {
	const rate = 48000
	got, err := describePitch(wavio.Mono64(sineStereo(220, rate, rate/4)), rate)
	if err != nil {
		t.Fatalf("describePitch: %v", err)
	}
	if !strings.Contains(got, "(A3 ") {
		t.Fatalf("expected A3 in %q", got)
	}
}
