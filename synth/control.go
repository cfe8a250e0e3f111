package synth

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-bricks/notes"
)

// EventKind distinguishes note events.
type EventKind uint8

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	// EventAllNotesOff releases every held voice.
	EventAllNotesOff
	// EventReset silences all voices and clears effect tails.
	EventReset
)

// NoteEvent is a note change queued by the control path.
type NoteEvent struct {
	Kind     EventKind
	Pitch    notes.Pitch
	Velocity float64
}

const noteQueueSize = 256

// noteQueue is a bounded ring of note events. Producers serialize on mu;
// the single consumer on the audio path only touches the atomics.
type noteQueue struct {
	mu   sync.Mutex
	buf  [noteQueueSize]NoteEvent
	head atomic.Uint32
	tail atomic.Uint32
}

// push appends ev, returning false when the ring is full.
func (q *noteQueue) push(ev NoteEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := q.tail.Load()
	if t-q.head.Load() >= noteQueueSize {
		return false
	}
	q.buf[t%noteQueueSize] = ev
	q.tail.Store(t + 1)
	return true
}

// pop removes the oldest event. Audio path only.
func (q *noteQueue) pop() (NoteEvent, bool) {
	h := q.head.Load()
	if h == q.tail.Load() {
		return NoteEvent{}, false
	}
	ev := q.buf[h%noteQueueSize]
	q.head.Store(h + 1)
	return ev, true
}

func (q *noteQueue) len() int {
	return int(q.tail.Load() - q.head.Load())
}

// paramSlots stores each mapped native value as float64 bits so a
// concurrent reader never sees a torn value.
type paramSlots struct {
	v [NumParams]atomic.Uint64
}

func (s *paramSlots) store(p Param, native float64) {
	s.v[p].Store(math.Float64bits(native))
}

func (s *paramSlots) load(p Param) float64 {
	return math.Float64frombits(s.v[p].Load())
}

func (s *paramSlots) snapshot(dst *native) {
	for i := range s.v {
		dst[i] = math.Float64frombits(s.v[i].Load())
	}
}

// keyStateTracker mirrors which pitches the control path has pressed so
// duplicate presses and stray releases never reach the queue.
type keyStateTracker struct {
	keyDown [notes.NumPitches]atomic.Bool
}

// press marks pitch down and reports whether it was up before.
func (k *keyStateTracker) press(pitch notes.Pitch) bool {
	return k.keyDown[pitch].CompareAndSwap(false, true)
}

// lift marks pitch up and reports whether it was down before.
func (k *keyStateTracker) lift(pitch notes.Pitch) bool {
	return k.keyDown[pitch].CompareAndSwap(true, false)
}

func (k *keyStateTracker) down(pitch notes.Pitch) bool {
	return k.keyDown[pitch].Load()
}

// liftAll marks every pitch up and returns how many were down.
func (k *keyStateTracker) liftAll() int {
	n := 0
	for i := range k.keyDown {
		if k.keyDown[i].CompareAndSwap(true, false) {
			n++
		}
	}
	return n
}
