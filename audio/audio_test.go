package audio

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-bricks/internal/wavio"
	"github.com/cwbudde/algo-bricks/synth"
)

type countingSource struct {
	next float32
}

func (s *countingSource) Render(out []float32) {
	for i := range out {
		s.next++
		out[i] = s.next
	}
}

func TestPullSinkSilentUntilStarted(t *testing.T) {
	var s PullSink
	out := []float32{9, 9, 9, 9}
	if n := s.Pull(out); n != 0 || out[0] != 0 || out[3] != 0 {
		t.Fatalf("expected silence before start, got n=%d out=%v", n, out)
	}
	if err := s.Start(nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
	src := &countingSource{}
	if err := s.Start(src); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n := s.Pull(out); n != 2 || out[3] != 4 {
		t.Fatalf("expected two frames from source, got n=%d out=%v", n, out)
	}
	_ = s.Stop()
	if s.Running() {
		t.Fatalf("expected stopped sink")
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := newStreamReader(&countingSource{}, 4)
	p := make([]byte, 8*3+5)
	n, err := r.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read: n=%d err=%v", n, err)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
		if got != float32(i+1) {
			t.Fatalf("sample %d: got=%f want=%f", i, got, float32(i+1))
		}
	}
	for i := 24; i < len(p); i++ {
		if p[i] != 0 {
			t.Fatalf("expected zero padding at byte %d", i)
		}
	}
}

func TestCaptureRecordsEngine(t *testing.T) {
	cfg := synth.NewDefaultConfig()
	capture := NewCapture(cfg.SampleRate, 100)
	cfg.Sink = capture
	e, err := synth.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := capture.Advance(10); err == nil {
		t.Fatalf("expected error before start")
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.TriggerNote("A4"); err != nil {
		t.Fatalf("TriggerNote: %v", err)
	}
	if err := capture.Advance(4801); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if capture.Frames() != 4801 {
		t.Fatalf("frame count mismatch: got=%d want=4801", capture.Frames())
	}
	var energy float64
	for _, s := range capture.Tail(2400) {
		energy += float64(s) * float64(s)
	}
	if energy == 0 {
		t.Fatalf("expected sound in the recording")
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	path := filepath.Join(t.TempDir(), "capture.wav")
	if capture.SampleRate() != cfg.SampleRate {
		t.Fatalf("capture rate got=%d want=%d", capture.SampleRate(), cfg.SampleRate)
	}
	if err := wavio.WriteStereo(path, capture.Samples(), capture.SampleRate()); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	mono, rate, err := wavio.ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != cfg.SampleRate || len(mono) != 4801 {
		t.Fatalf("unexpected file: rate=%d frames=%d", rate, len(mono))
	}
}

func TestStreamReaderLargeReadDoesNotGrowBuffer(t *testing.T) {
	r := newStreamReader(&countingSource{}, 3)
	p := make([]byte, 8*10)
	allocs := testing.AllocsPerRun(5, func() {
		if _, err := r.Read(p); err != nil {
			t.Fatalf("Read: %v", err)
		}
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations per Read, got %f", allocs)
	}
	if len(r.buf) != 6 {
		t.Fatalf("buffer grew to %d samples", len(r.buf))
	}

	r = newStreamReader(&countingSource{}, 3)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := 0; i < 20; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
		if got != float32(i+1) {
			t.Fatalf("sample %d: got=%f want=%f", i, got, float32(i+1))
		}
	}
}
