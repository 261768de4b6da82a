package brass

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serializable form of an engine: its state path and
// the full game context.
type Snapshot struct {
	State   StatePath  `json:"state"`
	Context *GameState `json:"context"`
}

// Snapshot captures the engine's current position.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{State: e.path, Context: e.state.Clone()}
}

// MarshalSnapshot encodes the current position as JSON.
func (e *Engine) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}

// Restore rebuilds an engine from a snapshot. Options configure the
// engine itself; a seed option does not override the snapshot's seed.
func Restore(data *GameData, snap Snapshot, opts ...Option) (*Engine, error) {
	if !knownState(snap.State) {
		return nil, fmt.Errorf("restore: unknown state %q", snap.State)
	}
	if snap.Context == nil {
		return nil, fmt.Errorf("restore: missing context")
	}
	if snap.State != StateSetup {
		if len(snap.Context.Players) < MinPlayers || len(snap.Context.Players) > MaxPlayers {
			return nil, fmt.Errorf("restore: %d players", len(snap.Context.Players))
		}
		if snap.Context.Current() == nil {
			return nil, fmt.Errorf("restore: current player %d out of range", snap.Context.CurrentPlayer)
		}
	}
	e := NewEngine(data, opts...)
	e.path = snap.State
	e.state = snap.Context.Clone()
	return e, nil
}

// RestoreJSON decodes a snapshot produced by MarshalSnapshot.
func RestoreJSON(data *GameData, b []byte, opts ...Option) (*Engine, error) {
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return Restore(data, snap, opts...)
}
