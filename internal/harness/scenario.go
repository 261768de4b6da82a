// Package harness runs scripted games described in YAML. A scenario
// seats players, feeds the engine a list of events and checks the
// outcome; it backs the replay command and the engine's golden tests.
package harness

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/freeeve/brass-engine/pkg/brass"
)

// Scenario is one scripted game.
type Scenario struct {
	Name    string  `yaml:"name"`
	Seed    int64   `yaml:"seed"`
	Players []Seat  `yaml:"players"`
	Steps   []Step  `yaml:"steps"`
	Expect  *Expect `yaml:"expect,omitempty"`
}

// Seat is a player taking part in a scenario.
type Seat struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// Step is a single event. Fields other than reject are event fields using
// their JSON names; string values of the form $hand:N are replaced by the
// id of the Nth card in the acting player's hand.
type Step struct {
	// Reject is "", "rule" or "invalid": the error the event must produce.
	Reject string         `yaml:"reject,omitempty"`
	Fields map[string]any `yaml:",inline"`
}

// Expect describes the position after the last step. Zero fields are not
// checked.
type Expect struct {
	State   brass.StatePath `yaml:"state"`
	Current string          `yaml:"current"`
	Era     brass.Era       `yaml:"era"`
	Round   int             `yaml:"round"`
	Money   map[string]int  `yaml:"money"`
	Income  map[string]int  `yaml:"income"`
}

// Load parses a scenario document.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Players) < brass.MinPlayers {
		return nil, fmt.Errorf("scenario %q: need at least %d players", s.Name, brass.MinPlayers)
	}
	return &s, nil
}

// LoadFile parses the scenario at path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Run plays the scenario on a fresh engine and returns it. The returned
// engine is valid up to the failing step when err is non-nil.
func (s *Scenario) Run(data *brass.GameData, opts ...brass.Option) (*brass.Engine, error) {
	opts = append([]brass.Option{brass.WithSeed(s.Seed)}, opts...)
	e := brass.NewEngine(data, opts...)

	setup := make([]brass.PlayerSetup, len(s.Players))
	for i, p := range s.Players {
		setup[i] = brass.PlayerSetup{ID: p.ID, Name: p.Name, Color: p.Color}
	}
	start := brass.StartGame(setup...)
	start.Seed = s.Seed
	if err := e.Send(start); err != nil {
		return e, fmt.Errorf("start: %w", err)
	}

	for i, step := range s.Steps {
		if err := s.play(e, step); err != nil {
			return e, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if s.Expect != nil {
		return e, s.Expect.check(e)
	}
	return e, nil
}

func (s *Scenario) play(e *brass.Engine, step Step) error {
	ev, err := step.event(e.State())
	if err != nil {
		return err
	}
	err = e.Send(ev)
	switch step.Reject {
	case "":
		return err
	case "rule":
		if !errors.Is(err, brass.ErrRuleViolation) {
			return fmt.Errorf("%s: expected a rule violation, got %v", ev.Type, err)
		}
	case "invalid":
		if !errors.Is(err, brass.ErrInvalidEvent) {
			return fmt.Errorf("%s: expected an invalid event, got %v", ev.Type, err)
		}
	default:
		return fmt.Errorf("unknown reject kind %q", step.Reject)
	}
	return nil
}

// event resolves placeholders against gs and decodes the step into an
// engine event.
func (step Step) event(gs *brass.GameState) (brass.Event, error) {
	var ev brass.Event
	fields, err := resolve(step.Fields, gs)
	if err != nil {
		return ev, err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      &ev,
	})
	if err != nil {
		return ev, err
	}
	if err := dec.Decode(fields); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return ev, errors.New("event has no type")
	}
	return ev, nil
}

func resolve(v any, gs *brass.GameState) (any, error) {
	switch t := v.(type) {
	case string:
		return placeholder(t, gs)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			r, err := resolve(val, gs)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	}
	return v, nil
}

func placeholder(s string, gs *brass.GameState) (string, error) {
	idx, ok := strings.CutPrefix(s, "$hand:")
	if !ok {
		return s, nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return "", fmt.Errorf("bad placeholder %q", s)
	}
	p := gs.Current()
	if p == nil || n < 0 || n >= len(p.Hand) {
		return "", fmt.Errorf("placeholder %q: hand has no card %d", s, n)
	}
	return p.Hand[n].ID, nil
}

func (x *Expect) check(e *brass.Engine) error {
	gs := e.State()
	var diffs []string
	mismatch := func(what string, want, got any) {
		diffs = append(diffs, fmt.Sprintf("%s: want %v, got %v", what, want, got))
	}
	if x.State != "" && x.State != e.Path() {
		mismatch("state", x.State, e.Path())
	}
	if x.Current != "" && x.Current != e.CurrentPlayer() {
		mismatch("current", x.Current, e.CurrentPlayer())
	}
	if x.Era != "" && x.Era != gs.Era {
		mismatch("era", x.Era, gs.Era)
	}
	if x.Round != 0 && x.Round != gs.Round {
		mismatch("round", x.Round, gs.Round)
	}
	for id, want := range x.Money {
		if p := gs.Player(id); p == nil || p.Money != want {
			mismatch(id+" money", want, moneyOf(p))
		}
	}
	for id, want := range x.Income {
		if p := gs.Player(id); p == nil || p.Income != want {
			mismatch(id+" income", want, incomeOf(p))
		}
	}
	if len(diffs) > 0 {
		return fmt.Errorf("unexpected outcome:\n  %s", strings.Join(diffs, "\n  "))
	}
	return nil
}

func moneyOf(p *brass.Player) any {
	if p == nil {
		return "no such player"
	}
	return p.Money
}

func incomeOf(p *brass.Player) any {
	if p == nil {
		return "no such player"
	}
	return p.Income
}
