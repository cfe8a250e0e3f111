package synth

// Stage is the state of an envelope generator.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// MinSustainLevel is the floor applied to every sustain level.
const MinSustainLevel = 0.1

// sustainSlewSeconds is the time a full-scale sustain change takes while
// a note is held.
const sustainSlewSeconds = 0.005

// releaseFloor is the level below which Release finishes.
const releaseFloor = 1e-5

// EnvelopeParams holds ADSR times in seconds and the sustain level.
type EnvelopeParams struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Envelope is a linear-segment ADSR generator advanced once per sample.
// Level stays in [0,1]; Attack rises at a fixed slope so a retrigger
// continues from the current level.
type Envelope struct {
	sampleRate float64
	params     EnvelopeParams

	attackStep  float64
	decayStep   float64
	sustainSlew float64
	releaseStep float64
	releaseFrom float64

	stage   Stage
	level   float64
	elapsed int
}

// NewEnvelope returns an idle envelope for the given sample rate.
func NewEnvelope(sampleRate float64, params EnvelopeParams) Envelope {
	e := Envelope{
		sampleRate:  sampleRate,
		sustainSlew: 1 / (sustainSlewSeconds * sampleRate),
	}
	e.SetParams(params)
	return e
}

// SetParams updates segment times. A running segment keeps going at the
// new slope.
func (e *Envelope) SetParams(p EnvelopeParams) {
	if p.Sustain < MinSustainLevel {
		p.Sustain = MinSustainLevel
	} else if p.Sustain > 1 {
		p.Sustain = 1
	}
	if p.Attack < 0 {
		p.Attack = 0
	}
	if p.Decay < 0 {
		p.Decay = 0
	}
	if p.Release < 0 {
		p.Release = 0
	}
	e.params = p
	e.attackStep = 1 / float64(secondsToSamples(p.Attack, e.sampleRate))
	e.decayStep = (1 - p.Sustain) / float64(secondsToSamples(p.Decay, e.sampleRate))
	e.releaseStep = e.releaseFrom / float64(secondsToSamples(p.Release, e.sampleRate))
}

// Params returns the active parameters after clamping.
func (e *Envelope) Params() EnvelopeParams { return e.params }

// NoteOn enters Attack. From Idle the level restarts at 0, otherwise it
// ramps up from wherever it is.
func (e *Envelope) NoteOn() {
	if e.stage == StageIdle {
		e.level = 0
	}
	e.enter(StageAttack)
}

// NoteOff enters Release from any sounding stage.
func (e *Envelope) NoteOff() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.releaseFrom = e.level
	e.releaseStep = e.releaseFrom / float64(secondsToSamples(e.params.Release, e.sampleRate))
	e.enter(StageRelease)
}

// Reset forces the envelope to Idle at level 0.
func (e *Envelope) Reset() {
	e.level = 0
	e.releaseFrom = 0
	e.enter(StageIdle)
}

// Next advances one sample and returns the level.
func (e *Envelope) Next() float64 {
	e.elapsed++
	switch e.stage {
	case StageAttack:
		e.level += e.attackStep
		if e.level >= 1 {
			e.level = 1
			e.enter(StageDecay)
		}
	case StageDecay:
		target := e.params.Sustain
		if e.level > target {
			e.level -= e.decayStep
			if e.level < target {
				e.level = target
			}
		}
		if e.level <= target {
			e.enter(StageSustain)
		}
	case StageSustain:
		target := e.params.Sustain
		switch {
		case e.level < target-e.sustainSlew:
			e.level += e.sustainSlew
		case e.level > target+e.sustainSlew:
			e.level -= e.sustainSlew
		default:
			e.level = target
		}
	case StageRelease:
		e.level -= e.releaseStep
		if e.level <= releaseFloor {
			e.level = 0
			e.enter(StageIdle)
		}
	default:
		e.level = 0
	}
	return e.level
}

// Level returns the current output level.
func (e *Envelope) Level() float64 { return e.level }

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Elapsed returns the number of samples spent in the current stage.
func (e *Envelope) Elapsed() int { return e.elapsed }

// Active reports whether the envelope is producing a non-idle level.
func (e *Envelope) Active() bool { return e.stage != StageIdle }

func (e *Envelope) enter(s Stage) {
	e.stage = s
	e.elapsed = 0
}
