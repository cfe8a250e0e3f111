package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/cwbudde/algo-bricks/analysis"
	"github.com/cwbudde/algo-bricks/audio"
	"github.com/cwbudde/algo-bricks/internal/wavio"
	"github.com/cwbudde/algo-bricks/patch"
	"github.com/cwbudde/algo-bricks/synth"
)

func main() {
	patchPath := flag.String("patch", "", "Patch JSON/YAML file (optional)")
	sequence := flag.String("notes", "", "Comma separated note labels, '-' for a rest. Default: scale up and down")
	noteLength := flag.Float64("note-length", 0.25, "Seconds each note is held")
	gap := flag.Float64("gap", 0.05, "Seconds between a release and the next note")
	tail := flag.Float64("tail", 3.0, "Seconds rendered after the last release")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Stop the tail early once block RMS falls below this dBFS (e.g. -90). Disabled by default")
	preset := flag.Int("reverb", -1, "Reverb preset index override (0-12)")
	sampleRate := flag.Int("sample-rate", synth.DefaultSampleRate, "Render sample rate in Hz")
	verbose := flag.Bool("v", false, "Log engine events to stderr")
	output := flag.String("output", "bricks.wav", "Output WAV file path")
	outRate := flag.Int("out-rate", 0, "Resample the output file to this rate in Hz (0 keeps -sample-rate)")
	mono := flag.Bool("mono", false, "Write a mono downmix")
	flag.Parse()

	p := patch.Default()
	if *patchPath != "" {
		var err error
		p, err = patch.Load(*patchPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading patch %q: %v\n", *patchPath, err)
			os.Exit(1)
		}
	}
	if *preset >= 0 {
		p.Config.ReverbPreset = *preset
	}

	scale, err := p.Scale()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building scale: %v\n", err)
		os.Exit(1)
	}
	steps, err := parseSequence(*sequence, scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing notes: %v\n", err)
		os.Exit(1)
	}

	capture := audio.NewCapture(*sampleRate, synth.DefaultBlockSize)
	cfg := p.Config
	cfg.SampleRate = *sampleRate
	cfg.Sink = capture
	if *verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	engine, err := synth.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating engine: %v\n", err)
		os.Exit(1)
	}
	if err := engine.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Stop()

	name, _ := synth.ReverbPresetName(engine.ReverbPreset())
	fmt.Printf("Rendering %d steps at %d Hz (room: %s)...\n", len(steps), *sampleRate, name)

	secs := func(s float64) int { return max(0, int(s*float64(*sampleRate))) }
	releaseAt := -1
	for _, st := range steps {
		if !st.rest {
			engine.NoteOn(st.pitch, cfg.Velocity)
		}
		if err := capture.Advance(secs(*noteLength)); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
			os.Exit(1)
		}
		if !st.rest {
			engine.NoteOff(st.pitch)
			releaseAt = capture.Frames()
		}
		if err := capture.Advance(secs(*gap)); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
			os.Exit(1)
		}
	}

	if err := renderTail(capture, secs(*tail), *decayDBFS); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering tail: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutput(*output, capture.Samples(), capture.SampleRate(), *outRate, *mono); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	x := wavio.Mono64(capture.Samples())
	s := analysis.Summarize(x, *sampleRate, releaseAt)
	fmt.Printf("Peak %.1f dBFS, RMS %.1f dBFS, max step %.4f, clipped %d, voices stolen %d\n",
		s.PeakDB, analysis.LinToDB(s.RMS), s.MaxStep, s.Clipped, engine.Steals())
	if !math.IsNaN(s.DecayDBPerSecond) {
		fmt.Printf("Release decay %.1f dB/s\n", s.DecayDBPerSecond)
	}
	if pitch, ok := singlePitch(steps); ok {
		if got, err := describePitch(x, *sampleRate); err == nil {
			fmt.Printf("Dominant pitch %s, played %s\n", got, pitch)
		}
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, capture.Frames())
}

// renderTail renders up to frames more frames. With a finite threshold it
// stops after six consecutive blocks below it.
func renderTail(c *audio.Capture, frames int, thresholdDBFS float64) error {
	const block = synth.DefaultBlockSize
	const holdBlocks = 6
	if math.IsInf(thresholdDBFS, 1) {
		return c.Advance(frames)
	}
	below := 0
	for done := 0; done < frames; done += block {
		n := min(block, frames-done)
		if err := c.Advance(n); err != nil {
			return err
		}
		if analysis.LinToDB(analysis.RMS(wavio.Mono64(c.Tail(n)))) < thresholdDBFS {
			below++
			if below >= holdBlocks {
				fmt.Printf("Auto-stop at %d frames, threshold %.1f dBFS\n", c.Frames(), thresholdDBFS)
				return nil
			}
		} else {
			below = 0
		}
	}
	return nil
}
