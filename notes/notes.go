// Package notes maps note labels such as "A3" to MIDI-style pitch indices
// and back. The lookup tables are built once at init and never mutated.
package notes

import (
	"errors"
	"fmt"
	"strconv"
)

// NumPitches is the size of the pitch space (MIDI 0..127).
const NumPitches = 128

// ErrInvalidNoteLabel is returned when a label is not <NoteName><Octave>
// or falls outside the 0..127 pitch range.
var ErrInvalidNoteLabel = errors.New("invalid note label")

// Pitch is a semitone index in 0..127. C4 is 60, A4 is 69.
type Pitch uint8

var names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var (
	labels     [NumPitches]string
	labelIndex map[string]Pitch
)

func init() {
	labelIndex = make(map[string]Pitch, NumPitches)
	for p := 0; p < NumPitches; p++ {
		octave := p/12 - 1
		l := names[p%12] + strconv.Itoa(octave)
		labels[p] = l
		labelIndex[l] = Pitch(p)
	}
}

// Resolve returns the pitch for a label like "C#4" or "G-1".
func Resolve(label string) (Pitch, error) {
	if p, ok := labelIndex[label]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidNoteLabel, label)
}

// Name returns the label of pitch index p.
func Name(p int) (string, error) {
	if p < 0 || p >= NumPitches {
		return "", fmt.Errorf("%w: pitch %d out of range", ErrInvalidNoteLabel, p)
	}
	return labels[p], nil
}

// String returns the note label, e.g. "A4".
func (p Pitch) String() string {
	if int(p) >= NumPitches {
		return "Pitch(" + strconv.Itoa(int(p)) + ")"
	}
	return labels[p]
}

// Octave returns the octave number used in the label.
func (p Pitch) Octave() int {
	return int(p)/12 - 1
}

// Semitone returns the offset of p within its octave (C = 0).
func (p Pitch) Semitone() int {
	return int(p) % 12
}
