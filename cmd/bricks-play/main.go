package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/algo-bricks/audio"
	"github.com/cwbudde/algo-bricks/patch"
	"github.com/cwbudde/algo-bricks/synth"
	"golang.org/x/term"
)

func main() {
	patchPath := flag.String("patch", "", "Patch JSON/YAML file (optional)")
	bufferMs := flag.Int("buffer-ms", 20, "Output device buffer in milliseconds")
	hold := flag.Duration("hold", 350*time.Millisecond, "How long a key press holds its brick")
	midiPort := flag.String("midi", "", "Open the MIDI input whose name starts with this prefix")
	useMIDI := flag.Bool("midi-in", false, "Enable MIDI input (first port unless -midi is set)")
	logPath := flag.String("log", "", "Write engine logs to this file")
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

	cfg := p.Config
	cfg.Sink = audio.NewOtoSink(cfg.SampleRate, time.Duration(*bufferMs)*time.Millisecond)
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		cfg.Logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	engine, err := synth.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating engine: %v\n", err)
		os.Exit(1)
	}
	if err := engine.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting audio: %v\n", err)
		os.Exit(1)
	}
	defer engine.Stop()

	if *useMIDI || *midiPort != "" {
		in, err := openMIDI(engine, *midiPort)
		if err != nil {
			fmt.Fprintf(os.Stderr, "MIDI disabled: %v\n", err)
		} else {
			defer in.Close()
			fmt.Printf("MIDI input: %s\n", in)
		}
	}

	var reload func() (*patch.Patch, error)
	if *patchPath != "" {
		reload = func() (*patch.Patch, error) { return patch.Load(*patchPath) }
	}
	kb, err := newKeyboard(engine, p, *hold, reload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building keyboard: %v\n", err)
		os.Exit(1)
	}
	defer kb.close()

	fmt.Println("Bricks: a s d f g h j k l ; '   root: z/x   room: ,/.   control: [ ] - =")
	fmt.Println("All notes off: m   reset: space   reload patch: r   quit: q")
	fmt.Println("Rooms:")
	for i, name := range synth.ReverbPresetNames() {
		marker := " "
		if i == engine.ReverbPreset() {
			marker = "*"
		}
		fmt.Printf(" %s %2d %s\n", marker, i, name)
	}

	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting raw mode: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(fd, old)

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			status, done := kb.handle(buf[0])
			if done {
				return
			}
			if status != "" {
				fmt.Printf("%s\r\n", status)
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-sig:
	}
	fmt.Printf("voices stolen: %d\r\n", engine.Steals())
}
