//go:build cgo

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-bricks/notes"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// midiInput forwards note messages from one hardware port to the engine.
type midiInput struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
}

// openMIDI opens the first input port whose name starts with prefix. An
// empty prefix takes the first port.
func openMIDI(e player, prefix string) (*midiInput, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("midi driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("midi inputs: %w", err)
	}
	var in drivers.In
	for _, candidate := range ins {
		if strings.HasPrefix(candidate.String(), prefix) {
			in = candidate
			break
		}
	}
	if in == nil {
		driver.Close()
		return nil, errors.New("no matching midi input")
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening midi input %s: %w", in, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		handleMIDI(e, msg)
	})
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("listen %s: %w", in, err)
	}
	return &midiInput{driver: driver, in: in, stop: stop}, nil
}

func (m *midiInput) String() string { return m.in.String() }

func (m *midiInput) Close() {
	m.stop()
	if m.in.IsOpen() {
		m.in.Close()
	}
	m.driver.Close()
}

func handleMIDI(e player, msg midi.Message) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		e.NoteOn(notes.Pitch(key), float64(velocity)/127)
	case msg.GetNoteEnd(&channel, &key):
		e.NoteOff(notes.Pitch(key))
	}
}
