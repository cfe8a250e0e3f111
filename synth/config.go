package synth

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAudioStream reports that the output stream could not be started or
// stopped.
var ErrAudioStream = errors.New("audio stream error")

const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 128
	DefaultVelocity   = 30.0 / 127.0
	maxBlockSize      = 8192
)

// Source produces interleaved stereo frames on demand.
type Source interface {
	Render(out []float32)
}

// Sink is an audio output that pulls from a Source once started.
type Sink interface {
	Start(src Source) error
	Stop() error
}

// Config describes an Engine.
type Config struct {
	SampleRate   int
	BlockSize    int
	Polyphony    int
	Velocity     float64
	ReverbPreset int
	Controls     Controls

	// Sink is optional. Without one the engine is driven by Render.
	Sink   Sink
	Logger *slog.Logger
}

// NewDefaultConfig returns the factory configuration.
func NewDefaultConfig() *Config {
	return &Config{
		SampleRate:   DefaultSampleRate,
		BlockSize:    DefaultBlockSize,
		Polyphony:    DefaultPolyphony,
		Velocity:     DefaultVelocity,
		ReverbPreset: DefaultReverbPreset,
		Controls:     DefaultControls(),
	}
}

func (c *Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0: %d", c.SampleRate)
	}
	if c.BlockSize <= 0 || c.BlockSize > maxBlockSize {
		return fmt.Errorf("block size must be in [1, %d]: %d", maxBlockSize, c.BlockSize)
	}
	if c.Polyphony < MinPolyphony {
		return fmt.Errorf("polyphony must be >= %d: %d", MinPolyphony, c.Polyphony)
	}
	if c.Velocity <= 0 || c.Velocity > 1 || !isFinite(c.Velocity) {
		return fmt.Errorf("velocity must be in (0, 1]: %f", c.Velocity)
	}
	if c.ReverbPreset < 0 || c.ReverbPreset >= NumReverbPresets {
		return fmt.Errorf("reverb preset must be in [0, %d]: %d", NumReverbPresets-1, c.ReverbPreset)
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
