//go:build !cgo

package main

import "errors"

type midiInput struct{}

func openMIDI(player, string) (*midiInput, error) {
	return nil, errors.New("midi input needs a cgo build")
}

func (m *midiInput) String() string { return "" }

func (m *midiInput) Close() {}
