package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cwbudde/algo-bricks/notes"
	"github.com/cwbudde/algo-bricks/patch"
	"github.com/cwbudde/algo-bricks/synth"
)

// brickKeys maps the home row to the 11 bricks, lowest first.
const brickKeys = "asdfghjkl;'"

// player is the subset of *synth.Engine the keyboard drives.
type player interface {
	patch.Target
	NoteOn(pitch notes.Pitch, velocity float64)
	NoteOff(pitch notes.Pitch)
	AllNotesOff()
	Reset()
	GetParameter(p synth.Param) float64
	ReverbPreset() int
}

// heldKey is a pressed brick waiting for its release timer. gen changes
// on every press so a timer that already fired cannot release a newer
// press.
type heldKey struct {
	gen   uint64
	timer *time.Timer
}

// keyboard turns raw terminal bytes into note and control changes. A
// terminal sends no key-up, so every press holds its brick for hold and
// key repeat extends it.
type keyboard struct {
	e        player
	hold     time.Duration
	velocity float64
	reload   func() (*patch.Patch, error)

	mu       sync.Mutex
	gen      uint64
	root     int
	scale    [notes.ScaleSize]notes.Pitch
	held     map[notes.Pitch]*heldKey
	selected synth.Param
	controls synth.Controls
}

func newKeyboard(e player, p *patch.Patch, hold time.Duration, reload func() (*patch.Patch, error)) (*keyboard, error) {
	scale, err := p.Scale()
	if err != nil {
		return nil, err
	}
	return &keyboard{
		e:        e,
		hold:     hold,
		velocity: p.Config.Velocity,
		reload:   reload,
		root:     p.Root,
		scale:    scale,
		held:     make(map[notes.Pitch]*heldKey),
		controls: p.Config.Controls,
	}, nil
}

// handle processes one byte and returns a status line, or "" when there
// is nothing to report. quit is true for q and Ctrl-C.
func (k *keyboard) handle(b byte) (status string, quit bool) {
	if i := strings.IndexByte(brickKeys, b); i >= 0 {
		k.press(i)
		return "", false
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	switch b {
	case 'q', 3:
		return "", true
	case ' ':
		k.dropHeldLocked()
		k.e.Reset()
		return "reset", false
	case 'm':
		k.dropHeldLocked()
		k.e.AllNotesOff()
		return "all notes off", false
	case 'r':
		return k.reloadLocked(), false
	case 'z', 'x':
		step := 1
		if b == 'z' {
			step = len(notes.Roots) - 1
		}
		k.dropHeldLocked()
		k.e.AllNotesOff()
		k.root = (k.root + step) % len(notes.Roots)
		k.scale, _ = notes.Scale(k.root)
		return "root " + notes.Roots[k.root], false
	case ',', '.':
		step := -1
		if b == '.' {
			step = 1
		}
		preset := k.e.ReverbPreset() + step
		preset = min(max(preset, 0), synth.NumReverbPresets-1)
		if err := k.e.SetReverbPreset(preset); err != nil {
			return err.Error(), false
		}
		name, _ := synth.ReverbPresetName(preset)
		return fmt.Sprintf("room %d: %s", preset, name), false
	case '[', ']':
		step := synth.NumParams - 1
		if b == ']' {
			step = 1
		}
		k.selected = (k.selected + step) % synth.NumParams
		return k.describeLocked(), false
	case '-', '=':
		delta := -0.05
		if b == '=' {
			delta = 0.05
		}
		v := min(max(k.controls[k.selected]+delta, 0), 1)
		k.controls[k.selected] = v
		k.e.SetParameter(k.selected, v)
		return k.describeLocked(), false
	}
	return "", false
}

func (k *keyboard) describeLocked() string {
	return fmt.Sprintf("%s = %.2f (%.3f)", k.selected, k.controls[k.selected], k.e.GetParameter(k.selected))
}

func (k *keyboard) reloadLocked() string {
	if k.reload == nil {
		return "no patch file to reload"
	}
	p, err := k.reload()
	if err != nil {
		return "reload: " + err.Error()
	}
	scale, err := p.Scale()
	if err != nil {
		return "reload: " + err.Error()
	}
	if err := p.Apply(k.e); err != nil {
		return "reload: " + err.Error()
	}
	k.dropHeldLocked()
	k.e.AllNotesOff()
	k.root = p.Root
	k.scale = scale
	k.controls = p.Config.Controls
	k.velocity = p.Config.Velocity
	return "patch reloaded, root " + notes.Roots[k.root]
}

func (k *keyboard) press(brick int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	pitch := k.scale[brick]
	k.gen++
	gen := k.gen
	if h, ok := k.held[pitch]; ok {
		h.timer.Stop()
		h.gen = gen
		h.timer = time.AfterFunc(k.hold, func() { k.release(pitch, gen) })
		return
	}
	k.e.NoteOn(pitch, k.velocity)
	k.held[pitch] = &heldKey{gen: gen, timer: time.AfterFunc(k.hold, func() { k.release(pitch, gen) })}
}

// release lifts pitch if gen is still its newest press.
func (k *keyboard) release(pitch notes.Pitch, gen uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	h, ok := k.held[pitch]
	if !ok || h.gen != gen {
		return
	}
	delete(k.held, pitch)
	k.e.NoteOff(pitch)
}

// dropHeldLocked forgets every held brick without sending note offs.
func (k *keyboard) dropHeldLocked() {
	for pitch, h := range k.held {
		h.timer.Stop()
		delete(k.held, pitch)
	}
}

// close stops pending release timers and releases what is still held.
func (k *keyboard) close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.dropHeldLocked()
	k.e.AllNotesOff()
}
