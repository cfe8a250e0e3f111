package synth

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/effects/modulation"
)

const (
	MinPhaserRateBPM   = 24.0
	MaxPhaserRateBPM   = 360.0
	MaxPhaserFeedback  = 0.8
	phaserStages       = 6
	phaserMinFreqHz    = 300.0
	phaserMaxFreqHz    = 1600.0
	phaserMix          = 0.5
	defaultPhaserBPM   = 108.0
	defaultPhaserFBack = 0.24
)

// Phaser is an allpass sweep whose LFO rate is set in cycles per minute.
type Phaser struct {
	fx       *modulation.Phaser
	rateBPM  float64
	feedback float64
}

// NewPhaser builds a phaser with a fixed sweep range and mix.
func NewPhaser(sampleRate float64) (*Phaser, error) {
	fx, err := modulation.NewPhaser(sampleRate,
		modulation.WithPhaserStages(phaserStages),
		modulation.WithPhaserFrequencyRangeHz(phaserMinFreqHz, phaserMaxFreqHz),
		modulation.WithPhaserMix(phaserMix),
		modulation.WithPhaserRateHz(defaultPhaserBPM/60),
		modulation.WithPhaserFeedback(defaultPhaserFBack),
	)
	if err != nil {
		return nil, fmt.Errorf("phaser: %w", err)
	}
	return &Phaser{fx: fx, rateBPM: defaultPhaserBPM, feedback: defaultPhaserFBack}, nil
}

// SetRateBPM sets the sweep rate, clamped to [MinPhaserRateBPM, MaxPhaserRateBPM].
func (p *Phaser) SetRateBPM(bpm float64) {
	if !isFinite(bpm) || bpm < MinPhaserRateBPM {
		bpm = MinPhaserRateBPM
	} else if bpm > MaxPhaserRateBPM {
		bpm = MaxPhaserRateBPM
	}
	if bpm == p.rateBPM {
		return
	}
	if err := p.fx.SetRateHz(bpm / 60); err == nil {
		p.rateBPM = bpm
	}
}

// SetFeedback sets the feedback amount, clamped to [0, MaxPhaserFeedback].
func (p *Phaser) SetFeedback(fb float64) {
	if !isFinite(fb) || fb < 0 {
		fb = 0
	} else if fb > MaxPhaserFeedback {
		fb = MaxPhaserFeedback
	}
	if fb == p.feedback {
		return
	}
	if err := p.fx.SetFeedback(fb); err == nil {
		p.feedback = fb
	}
}

// RateBPM returns the active rate.
func (p *Phaser) RateBPM() float64 { return p.rateBPM }

// Feedback returns the active feedback.
func (p *Phaser) Feedback() float64 { return p.feedback }

// Process filters buf in place.
func (p *Phaser) Process(buf []float64) {
	for i := range buf {
		buf[i] = p.fx.Process(buf[i])
	}
}

// Reset clears the allpass state.
func (p *Phaser) Reset() { p.fx.Reset() }
