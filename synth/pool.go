package synth

import (
	"fmt"

	"github.com/cwbudde/algo-bricks/notes"
)

// MinPolyphony is the smallest pool that can hold every brick at once.
const MinPolyphony = notes.ScaleSize

// DefaultPolyphony is the pool size used by NewDefaultConfig.
const DefaultPolyphony = 16

// VoicePool owns a fixed set of voices and assigns them to pitches.
// At most one voice holds a given pitch while it is held.
type VoicePool struct {
	voices  []Voice
	params  voiceParams
	counter uint64
	steals  uint64
}

// NewVoicePool preallocates capacity voices.
func NewVoicePool(sampleRate float64, capacity int) (*VoicePool, error) {
	if capacity < MinPolyphony {
		return nil, fmt.Errorf("polyphony must be >= %d: %d", MinPolyphony, capacity)
	}
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return nil, fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}
	vp := defaultVoiceParams()
	p := &VoicePool{
		voices: make([]Voice, capacity),
		params: vp,
	}
	for i := range p.voices {
		p.voices[i] = newVoice(sampleRate, vp)
	}
	return p, nil
}

// Capacity returns the number of voices.
func (p *VoicePool) Capacity() int { return len(p.voices) }

// SetParams applies envelope and filter settings to every voice.
func (p *VoicePool) SetParams(vp voiceParams) {
	if vp == p.params {
		return
	}
	p.params = vp
	for i := range p.voices {
		p.voices[i].setParams(vp)
	}
}

// NoteOn starts pitch. A pitch that is already held is left alone; a
// pitch still in Release is retriggered on the same voice. Otherwise the
// first idle voice is used, or one is stolen.
func (p *VoicePool) NoteOn(pitch notes.Pitch, velocity float64) {
	if v := p.find(pitch); v != nil {
		if v.held {
			return
		}
		p.trigger(v, pitch, velocity)
		return
	}
	for i := range p.voices {
		if !p.voices[i].Active() {
			p.trigger(&p.voices[i], pitch, velocity)
			return
		}
	}
	p.steals++
	p.trigger(p.victim(), pitch, velocity)
}

// NoteOff releases the voice holding pitch. Unknown pitches are ignored.
func (p *VoicePool) NoteOff(pitch notes.Pitch) {
	if v := p.find(pitch); v != nil && v.held {
		v.release()
	}
}

// ReleaseAll moves every held voice into Release.
func (p *VoicePool) ReleaseAll() {
	for i := range p.voices {
		if p.voices[i].held {
			p.voices[i].release()
		}
	}
}

// Reset silences every voice immediately. The steal counter is kept.
func (p *VoicePool) Reset() {
	for i := range p.voices {
		p.voices[i].reset()
	}
}

// Render adds all active voices into out. len(ratios) must be >= len(out).
func (p *VoicePool) Render(out, ratios []float64) {
	for i := range p.voices {
		p.voices[i].render(out, ratios[:len(out)])
	}
}

// Active returns the number of sounding voices.
func (p *VoicePool) Active() int {
	n := 0
	for i := range p.voices {
		if p.voices[i].Active() {
			n++
		}
	}
	return n
}

// Steals returns how many times a sounding voice was reassigned.
func (p *VoicePool) Steals() uint64 { return p.steals }

// Voice returns the voice at index i.
func (p *VoicePool) Voice(i int) *Voice { return &p.voices[i] }

// Lookup returns the sounding voice playing pitch, if any.
func (p *VoicePool) Lookup(pitch notes.Pitch) (*Voice, bool) {
	v := p.find(pitch)
	return v, v != nil
}

func (p *VoicePool) find(pitch notes.Pitch) *Voice {
	for i := range p.voices {
		v := &p.voices[i]
		if v.Active() && v.pitch == pitch {
			return v
		}
	}
	return nil
}

func (p *VoicePool) trigger(v *Voice, pitch notes.Pitch, velocity float64) {
	p.counter++
	v.start(pitch, velocity, p.counter)
}

// victim picks the releasing voice with the lowest level, falling back to
// the voice triggered longest ago.
func (p *VoicePool) victim() *Voice {
	var released, oldest *Voice
	for i := range p.voices {
		v := &p.voices[i]
		if !v.held {
			if released == nil || v.amp.Level() < released.amp.Level() {
				released = v
			}
			continue
		}
		if oldest == nil || v.order < oldest.order {
			oldest = v
		}
	}
	if released != nil {
		return released
	}
	return oldest
}
