// Package patch loads synth patch files. A patch is a set of normalized
// control values plus a scale root and reverb room, stored as JSON or
// YAML.
package patch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cwbudde/algo-bricks/notes"
	"github.com/cwbudde/algo-bricks/synth"
	"gopkg.in/yaml.v3"
)

// File is the on-disk schema.
type File struct {
	Root         string             `json:"root" yaml:"root"`
	ReverbPreset *int               `json:"reverb_preset" yaml:"reverb_preset"`
	Polyphony    *int               `json:"polyphony" yaml:"polyphony"`
	Velocity     *float64           `json:"velocity" yaml:"velocity"`
	Controls     map[string]float64 `json:"controls" yaml:"controls"`
}

// Patch is a parsed file applied on top of the factory defaults.
type Patch struct {
	Config *synth.Config
	Root   int
}

// Default returns the factory patch.
func Default() *Patch {
	return &Patch{Config: synth.NewDefaultConfig(), Root: notes.DefaultRoot}
}

// Load reads path, choosing the decoder by extension (.json, .yaml, .yml).
func Load(path string) (*Patch, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	default:
		return nil, fmt.Errorf("unsupported patch format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := Default()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ApplyFile applies a parsed file onto dst.
func ApplyFile(dst *Patch, f *File) error {
	if dst == nil || dst.Config == nil {
		return fmt.Errorf("nil destination patch")
	}
	if f == nil {
		return nil
	}

	if root := strings.TrimSpace(f.Root); root != "" {
		idx, err := notes.RootIndex(root)
		if err != nil {
			return err
		}
		dst.Root = idx
	}
	if f.ReverbPreset != nil {
		if *f.ReverbPreset < 0 || *f.ReverbPreset >= synth.NumReverbPresets {
			return fmt.Errorf("reverb_preset must be in [0, %d]", synth.NumReverbPresets-1)
		}
		dst.Config.ReverbPreset = *f.ReverbPreset
	}
	if f.Polyphony != nil {
		if *f.Polyphony < synth.MinPolyphony {
			return fmt.Errorf("polyphony must be >= %d", synth.MinPolyphony)
		}
		dst.Config.Polyphony = *f.Polyphony
	}
	if f.Velocity != nil {
		if *f.Velocity <= 0 || *f.Velocity > 1 {
			return fmt.Errorf("velocity must be in (0, 1]")
		}
		dst.Config.Velocity = *f.Velocity
	}

	names := make([]string, 0, len(f.Controls))
	for name := range f.Controls {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := synth.ParseParam(name)
		if err != nil {
			return fmt.Errorf("controls: %w", err)
		}
		v := f.Controls[name]
		if v < 0 || v > 1 {
			return fmt.Errorf("controls.%s must be in [0, 1]: %f", name, v)
		}
		dst.Config.Controls[p] = v
	}
	return nil
}

// Target receives patch values. *synth.Engine implements it.
type Target interface {
	SetParameter(p synth.Param, v float64)
	SetReverbPreset(i int) error
}

// Apply pushes the patch controls and reverb room into a running engine.
func (p *Patch) Apply(e Target) error {
	for i, v := range p.Config.Controls {
		e.SetParameter(synth.Param(i), v)
	}
	return e.SetReverbPreset(p.Config.ReverbPreset)
}

// Scale returns the brick pitches for the patch root.
func (p *Patch) Scale() ([notes.ScaleSize]notes.Pitch, error) {
	return notes.Scale(p.Root)
}
