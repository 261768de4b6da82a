package brass

import (
	"fmt"
	"sync"
)

// DefaultLogSize is the capacity of the engine's default ring log.
const DefaultLogSize = 200

// LogEntry is one human-readable line of game history.
type LogEntry struct {
	Era     Era    `json:"era,omitempty"`
	Round   int    `json:"round"`
	Player  string `json:"player,omitempty"`
	Message string `json:"message"`
}

func (e LogEntry) String() string {
	if e.Player == "" {
		return fmt.Sprintf("[%s %d] %s", e.Era, e.Round, e.Message)
	}
	return fmt.Sprintf("[%s %d] %s: %s", e.Era, e.Round, e.Player, e.Message)
}

func newLogEntry(gs *GameState, playerID, format string, args ...any) LogEntry {
	return LogEntry{
		Era:     gs.Era,
		Round:   gs.Round,
		Player:  playerID,
		Message: fmt.Sprintf(format, args...),
	}
}

// LogSink receives log entries of committed transitions.
type LogSink interface {
	Append(LogEntry)
}

// RingLog keeps the most recent entries up to a fixed capacity.
type RingLog struct {
	mu    sync.Mutex
	buf   []LogEntry
	start int
	n     int
}

// NewRingLog creates a ring log holding at most size entries.
func NewRingLog(size int) *RingLog {
	if size < 1 {
		size = 1
	}
	return &RingLog{buf: make([]LogEntry, size)}
}

// Append adds an entry, evicting the oldest when full.
func (r *RingLog) Append(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = e
		r.n++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

// Entries returns the retained entries, oldest first.
func (r *RingLog) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, r.n)
	for i := range r.n {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of retained entries.
func (r *RingLog) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// MultiSink fans entries out to several sinks.
type MultiSink []LogSink

func (ms MultiSink) Append(e LogEntry) {
	for _, s := range ms {
		s.Append(e)
	}
}

type discardSink struct{}

func (discardSink) Append(LogEntry) {}
