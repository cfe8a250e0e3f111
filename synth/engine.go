package synth

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-bricks/dsp"
	"github.com/cwbudde/algo-bricks/notes"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Engine is the polyphonic synth: voices summed into phaser, delay and
// reverb. Control methods may be called from any goroutine; Render is
// driven by a single audio goroutine.
type Engine struct {
	sampleRate float64
	blockSize  int
	velocity   float64
	log        *slog.Logger

	slots  paramSlots
	events noteQueue
	keys   keyStateTracker
	preset atomic.Int32

	activeVoices atomic.Int32
	steals       atomic.Uint64

	// Audio path state.
	pool    *VoicePool
	vibrato Vibrato
	phaser  *Phaser
	delay   *Delay
	reverb  *Reverb
	master  dsp.Ramp
	ramp    int
	ctl     native
	mix     []float64
	ratios  []float64

	mu      sync.Mutex
	sink    Sink
	running bool
}

// NewEngine builds an engine from cfg. A nil cfg uses NewDefaultConfig.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	sr := float64(cfg.SampleRate)
	pool, err := NewVoicePool(sr, cfg.Polyphony)
	if err != nil {
		return nil, err
	}
	phaser, err := NewPhaser(sr)
	if err != nil {
		return nil, err
	}
	dly, err := NewDelay(sr)
	if err != nil {
		return nil, err
	}
	rev, err := NewReverb(sr, cfg.ReverbPreset)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		sampleRate: sr,
		blockSize:  cfg.BlockSize,
		velocity:   cfg.Velocity,
		log:        cfg.logger(),
		pool:       pool,
		vibrato:    NewVibrato(sr),
		phaser:     phaser,
		delay:      dly,
		reverb:     rev,
		ramp:       secondsToSamples(controlRampSeconds, sr),
		mix:        make([]float64, cfg.BlockSize),
		ratios:     make([]float64, cfg.BlockSize),
		sink:       cfg.Sink,
	}
	e.preset.Store(int32(cfg.ReverbPreset))
	for i, v := range cfg.Controls {
		e.slots.store(Param(i), MapParam(Param(i), v))
	}
	// Start effects at their configured values instead of ramping from zero.
	e.slots.snapshot(&e.ctl)
	e.applyControls()
	e.vibrato.depth.Jump(e.ctl[ParamVibratoDepth])
	e.reverb.mix.Jump(e.ctl[ParamReverbAmount])
	e.delay.time.Jump(e.delay.time.Target())
	e.master.Jump(e.ctl[ParamMasterVolume])
	return e, nil
}

// SampleRate returns the output rate in Hz.
func (e *Engine) SampleRate() int { return int(e.sampleRate) }

// BlockSize returns the internal processing block length in frames.
func (e *Engine) BlockSize() int { return e.blockSize }

// Start opens the audio sink. Calling Start on a running engine is a
// no-op. A failed start is retried once.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	if e.sink == nil {
		return fmt.Errorf("%w: no sink configured", ErrAudioStream)
	}
	if err := e.sink.Start(e); err != nil {
		e.log.Warn("audio stream start failed, retrying", "err", err)
		_ = e.sink.Stop()
		if err := e.sink.Start(e); err != nil {
			e.log.Error("audio stream start failed", "err", err)
			return fmt.Errorf("%w: start: %w", ErrAudioStream, err)
		}
	}
	e.running = true
	e.log.Info("audio stream started", "sample_rate", e.SampleRate(), "block_size", e.blockSize)
	return nil
}

// Stop closes the audio sink. Stopping a stopped engine is a no-op.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}
	e.running = false
	if err := e.sink.Stop(); err != nil {
		e.log.Error("audio stream stop failed", "err", err)
		return fmt.Errorf("%w: stop: %w", ErrAudioStream, err)
	}
	e.log.Info("audio stream stopped")
	return nil
}

// Running reports whether the sink is started.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// TriggerNote starts the note named by label, e.g. "C4". An unknown
// label is logged and returned; the engine state is left untouched.
func (e *Engine) TriggerNote(label string) error {
	p, err := notes.Resolve(label)
	if err != nil {
		e.log.Warn("trigger note", "label", label, "err", err)
		return err
	}
	e.NoteOn(p, e.velocity)
	return nil
}

// ReleaseNote releases the note named by label.
func (e *Engine) ReleaseNote(label string) error {
	p, err := notes.Resolve(label)
	if err != nil {
		e.log.Warn("release note", "label", label, "err", err)
		return err
	}
	e.NoteOff(p)
	return nil
}

// NoteOn queues a note start. Velocity is a linear gain in (0,1]; values
// outside fall back to the configured velocity. A pitch that is already
// down is ignored.
func (e *Engine) NoteOn(pitch notes.Pitch, velocity float64) {
	if pitch >= notes.NumPitches {
		return
	}
	if velocity <= 0 || velocity > 1 || !isFinite(velocity) {
		velocity = e.velocity
	}
	if !e.keys.press(pitch) {
		return
	}
	if !e.events.push(NoteEvent{Kind: EventNoteOn, Pitch: pitch, Velocity: velocity}) {
		e.keys.lift(pitch)
		e.log.Warn("note queue full, dropping note on", "pitch", pitch.String())
	}
}

// NoteOff queues a note release. Releasing a pitch that is not down is a
// no-op.
func (e *Engine) NoteOff(pitch notes.Pitch) {
	if pitch >= notes.NumPitches {
		return
	}
	if !e.keys.lift(pitch) {
		return
	}
	if !e.events.push(NoteEvent{Kind: EventNoteOff, Pitch: pitch}) {
		e.keys.press(pitch)
		e.log.Warn("note queue full, dropping note off", "pitch", pitch.String())
	}
}

// AllNotesOff releases every pressed pitch. Voices fade out through their
// release stage.
func (e *Engine) AllNotesOff() {
	n := e.keys.liftAll()
	if !e.events.push(NoteEvent{Kind: EventAllNotesOff}) {
		e.log.Warn("note queue full, dropping all notes off", "held", n)
	}
}

// Reset lifts every key and, at the next block, silences all voices and
// clears the phaser, delay and reverb state. Events queued before Reset
// are applied first.
func (e *Engine) Reset() {
	n := e.keys.liftAll()
	if !e.events.push(NoteEvent{Kind: EventReset}) {
		e.log.Warn("note queue full, dropping reset", "held", n)
		return
	}
	e.log.Info("engine reset", "held", n)
}

// IsNoteDown reports whether pitch is currently pressed.
func (e *Engine) IsNoteDown(pitch notes.Pitch) bool {
	if pitch >= notes.NumPitches {
		return false
	}
	return e.keys.down(pitch)
}

// SetParameter stores the normalized value v for p. Values are clamped
// to [0,1] and mapped immediately; the audio path picks them up at the
// next block.
func (e *Engine) SetParameter(p Param, v float64) {
	if !p.valid() {
		return
	}
	e.slots.store(p, MapParam(p, v))
}

// SetParameterByName is SetParameter keyed by control name.
func (e *Engine) SetParameterByName(name string, v float64) error {
	p, err := ParseParam(name)
	if err != nil {
		return err
	}
	e.SetParameter(p, v)
	return nil
}

// GetParameter returns the native value of p.
func (e *Engine) GetParameter(p Param) float64 {
	if !p.valid() {
		return 0
	}
	return e.slots.load(p)
}

// GetParameterByName is GetParameter keyed by control name.
func (e *Engine) GetParameterByName(name string) (float64, error) {
	p, err := ParseParam(name)
	if err != nil {
		return 0, err
	}
	return e.GetParameter(p), nil
}

// SetReverbPreset selects room i, clamped to [0, NumReverbPresets-1].
func (e *Engine) SetReverbPreset(i int) error {
	i = clampPreset(i)
	if err := e.reverb.SetPreset(i); err != nil {
		e.log.Error("reverb preset", "index", i, "err", err)
		return err
	}
	e.preset.Store(int32(i))
	name, _ := ReverbPresetName(i)
	e.log.Debug("reverb preset selected", "index", i, "name", name)
	return nil
}

// ReverbPreset returns the last selected room.
func (e *Engine) ReverbPreset() int { return int(e.preset.Load()) }

// ActiveVoices returns the voice count after the last rendered block.
func (e *Engine) ActiveVoices() int { return int(e.activeVoices.Load()) }

// Steals returns how many voices have been stolen since creation.
func (e *Engine) Steals() uint64 { return e.steals.Load() }

// Render fills out with interleaved stereo frames. len(out) should be
// even; a trailing odd sample is zeroed.
func (e *Engine) Render(out []float32) {
	frames := len(out) / 2
	if len(out)%2 != 0 {
		out[len(out)-1] = 0
	}
	for off := 0; off < frames; off += e.blockSize {
		n := min(e.blockSize, frames-off)
		e.renderBlock(n)
		dst := out[2*off : 2*(off+n)]
		for i := 0; i < n; i++ {
			s := float32(dspcore.Clamp(e.mix[i], -1, 1))
			dst[2*i] = s
			dst[2*i+1] = s
		}
	}
}

// RenderMono fills out with mono samples.
func (e *Engine) RenderMono(out []float64) {
	for off := 0; off < len(out); off += e.blockSize {
		n := min(e.blockSize, len(out)-off)
		e.renderBlock(n)
		for i := 0; i < n; i++ {
			out[off+i] = dspcore.Clamp(e.mix[i], -1, 1)
		}
	}
}

func (e *Engine) renderBlock(n int) {
	e.drainEvents()
	e.slots.snapshot(&e.ctl)
	e.applyControls()

	mix := e.mix[:n]
	clear(mix)
	ratios := e.ratios[:n]
	e.vibrato.Render(ratios)
	e.pool.Render(mix, ratios)
	e.phaser.Process(mix)
	e.delay.Process(mix)
	e.reverb.Process(mix)
	for i := range mix {
		y := mix[i] * e.master.Next()
		if !isFinite(y) {
			y = 0
		}
		mix[i] = y
	}

	e.activeVoices.Store(int32(e.pool.Active()))
	e.steals.Store(e.pool.Steals())
}

func (e *Engine) drainEvents() {
	for {
		ev, ok := e.events.pop()
		if !ok {
			return
		}
		switch ev.Kind {
		case EventNoteOn:
			e.pool.NoteOn(ev.Pitch, ev.Velocity)
		case EventNoteOff:
			e.pool.NoteOff(ev.Pitch)
		case EventAllNotesOff:
			e.pool.ReleaseAll()
		case EventReset:
			e.pool.Reset()
			e.phaser.Reset()
			e.delay.Reset()
			e.reverb.Reset()
		}
	}
}

func (e *Engine) applyControls() {
	c := &e.ctl
	e.pool.SetParams(c.voiceParams())
	e.vibrato.SetDepth(c[ParamVibratoDepth])
	e.phaser.SetRateBPM(c[ParamPhaserRate])
	e.phaser.SetFeedback(c[ParamPhaserFeedback])
	e.delay.SetTime(c[ParamDelayTime])
	e.delay.SetLowPassCutoff(c[ParamDelayLowPassCutoff])
	e.reverb.SetMix(c[ParamReverbAmount])
	e.master.SetTarget(c[ParamMasterVolume], e.ramp)
}
