package main

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-bricks/notes"
)

// step is one entry in an offline performance. A rest has no pitch.
type step struct {
	pitch notes.Pitch
	rest  bool
}

// parseSequence reads a comma separated list of note labels. "-" is a rest.
// An empty list plays the scale up and back down.
func parseSequence(s string, scale [notes.ScaleSize]notes.Pitch) ([]step, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		out := make([]step, 0, 2*notes.ScaleSize-1)
		for _, p := range scale {
			out = append(out, step{pitch: p})
		}
		for i := notes.ScaleSize - 2; i >= 0; i-- {
			out = append(out, step{pitch: scale[i]})
		}
		return out, nil
	}

	var out []step
	for i, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "-" {
			out = append(out, step{rest: true})
			continue
		}
		p, err := notes.Resolve(tok)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out = append(out, step{pitch: p})
	}
	return out, nil
}
