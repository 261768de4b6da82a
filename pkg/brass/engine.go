package brass

import (
	"sort"
	"time"
)

// Engine drives one game. Each event is applied to a copy of the state
// and committed only if every guard and effect succeeds.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	data  *GameData
	path  StatePath
	state *GameState
	sink  LogSink
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the shuffle seed used when the game starts.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.state.Seed = seed }
}

// WithLogSink sends game log entries to s instead of the default ring log.
func WithLogSink(s LogSink) Option {
	return func(e *Engine) { e.sink = s }
}

// NewEngine returns an engine in the setup state.
func NewEngine(data *GameData, opts ...Option) *Engine {
	e := &Engine{
		data:  data,
		path:  StateSetup,
		state: &GameState{Seed: time.Now().UnixNano()},
		sink:  NewRingLog(DefaultLogSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Send applies one event. It returns an *InvalidEventError if the
// current state has no transition for it and a *RuleError if a guard or
// effect rejects it; in both cases the state is unchanged.
func (e *Engine) Send(ev Event) error {
	h, ok := transitions[e.path][ev.Type]
	if !ok {
		return &InvalidEventError{State: e.path, Event: ev.Type}
	}
	m := &machine{data: e.data, gs: e.state.Clone(), path: e.path}
	if err := h(m, ev); err != nil {
		return err
	}
	m.settle()
	e.state, e.path = m.gs, m.path
	for _, entry := range m.logs {
		e.sink.Append(entry)
	}
	return nil
}

// SendAll applies events in order, stopping at the first error.
func (e *Engine) SendAll(events ...Event) error {
	for _, ev := range events {
		if err := e.Send(ev); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the current state path.
func (e *Engine) Path() StatePath { return e.path }

// State returns a copy of the current game state.
func (e *Engine) State() *GameState { return e.state.Clone() }

// Data returns the static game data.
func (e *Engine) Data() *GameData { return e.data }

// Sink returns the engine's log sink.
func (e *Engine) Sink() LogSink { return e.sink }

// CurrentPlayer returns the id of the player to act, or "".
func (e *Engine) CurrentPlayer() string {
	if e.path == StateSetup || e.path == StateGameOver {
		return ""
	}
	if p := e.state.Current(); p != nil {
		return p.ID
	}
	return ""
}

// IsGameOver reports whether the game has ended.
func (e *Engine) IsGameOver() bool {
	return e.path == StateGameOver
}

// Accepts reports whether the current state has a transition for t.
func (e *Engine) Accepts(t EventType) bool {
	_, ok := transitions[e.path][t]
	return ok
}

// AcceptedEvents lists the event types the current state handles.
func (e *Engine) AcceptedEvents() []EventType {
	var out []EventType
	for t := range transitions[e.path] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent engine at the same position whose log
// output is discarded.
func (e *Engine) Clone() *Engine {
	return &Engine{data: e.data, path: e.path, state: e.state.Clone(), sink: discardSink{}}
}
