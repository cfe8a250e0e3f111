package notes

import "fmt"

// ScaleSize is the number of bricks in one on-screen scale.
const ScaleSize = 11

// DefaultRoot is the root shown at startup (F).
const DefaultRoot = 5

// scaleBaseOctave is the octave the lowest brick starts in for every root.
const scaleBaseOctave = 2

var pentatonicSteps = [5]int{0, 2, 4, 7, 9}

// Roots lists the selectable scale roots in semitone order.
var Roots = names

// Scale returns the 11 major-pentatonic brick pitches for root index
// 0..11, two octaves up from octave 2 plus the closing root.
func Scale(root int) ([ScaleSize]Pitch, error) {
	var out [ScaleSize]Pitch
	if root < 0 || root >= len(Roots) {
		return out, fmt.Errorf("scale root must be in [0, %d]: %d", len(Roots)-1, root)
	}
	base := (scaleBaseOctave+1)*12 + root
	for i := range out {
		out[i] = Pitch(base + 12*(i/5) + pentatonicSteps[i%5])
	}
	return out, nil
}

// ScaleLabels returns the brick labels for root index 0..11.
func ScaleLabels(root int) ([ScaleSize]string, error) {
	var out [ScaleSize]string
	pitches, err := Scale(root)
	if err != nil {
		return out, err
	}
	for i, p := range pitches {
		out[i] = p.String()
	}
	return out, nil
}

// RootIndex returns the index of a root name such as "F#".
func RootIndex(name string) (int, error) {
	for i, n := range Roots {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown scale root %q", name)
}
