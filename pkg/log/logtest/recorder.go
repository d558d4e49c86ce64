// Package logtest provides a Sink that records writes for assertions in tests.
package logtest

import (
	"sync"

	"github.com/bft-labs/errlog/pkg/log"
)

// Entry is one recorded sink write.
type Entry struct {
	Level  log.Level
	Values []any
}

// Recorder implements log.Sink by keeping every write in memory.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Write records the level and a copy of the values slice.
func (r *Recorder) Write(level log.Level, values ...any) {
	cp := make([]any, len(values))
	copy(cp, values)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Values: cp})
}

// Entries returns a snapshot of all recorded writes in order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded writes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Last returns the most recent write.
func (r *Recorder) Last() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Reset discards all recorded writes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
