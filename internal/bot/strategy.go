// Package bot plays seats in hosted games by trying candidate actions on
// cloned engines.
package bot

import (
	"github.com/freeeve/brass-engine/pkg/brass"
)

// Strategy picks the next action for a player. ChooseAction is only called
// while the engine waits in action selection on that player's turn.
type Strategy interface {
	Name() string
	ChooseAction(e *brass.Engine, playerID string) Script
}

// StrategyForDifficulty returns the strategy for a bot difficulty level.
func StrategyForDifficulty(difficulty string) Strategy {
	switch difficulty {
	case "pass":
		return PassStrategy{}
	case "medium", "hard":
		return GreedyStrategy{}
	default:
		return RandomStrategy{}
	}
}

// NextScript returns the events that complete one action for the current
// player from wherever e rests. It returns nil when no one is to act.
func NextScript(e *brass.Engine, s Strategy) Script {
	playerID := e.CurrentPlayer()
	if playerID == "" {
		return nil
	}
	prelude := unwind(e)
	base := e
	if len(prelude) > 0 {
		base = e.Clone()
		if err := base.SendAll(prelude...); err != nil {
			return nil
		}
	}
	action := s.ChooseAction(base, playerID)
	if action == nil {
		return nil
	}
	return append(Script(prelude), action...)
}

// PassStrategy always passes.
type PassStrategy struct{}

func (PassStrategy) Name() string { return "pass" }

func (PassStrategy) ChooseAction(e *brass.Engine, playerID string) Script {
	p := e.State().Player(playerID)
	if p == nil {
		return nil
	}
	return passScript(p)
}

// RandomStrategy plays a uniformly chosen legal action.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) ChooseAction(e *brass.Engine, playerID string) Script {
	cands := candidates(e, playerID)
	botShuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
	for _, s := range cands {
		if s.Try(e) != nil {
			return s
		}
	}
	return PassStrategy{}.ChooseAction(e, playerID)
}

// GreedyStrategy plays the legal action whose resulting position
// evaluates best for the acting player.
type GreedyStrategy struct{}

func (GreedyStrategy) Name() string { return "greedy" }

func (GreedyStrategy) ChooseAction(e *brass.Engine, playerID string) Script {
	pass := PassStrategy{}.ChooseAction(e, playerID)
	best, bestScore := pass, -1e9
	if trial := pass.Try(e); trial != nil {
		bestScore = Evaluate(trial.State(), e.Data(), playerID)
	}
	for _, s := range candidates(e, playerID) {
		trial := s.Try(e)
		if trial == nil {
			continue
		}
		// Jitter breaks ties so mirrored seats do not play identically.
		score := Evaluate(trial.State(), e.Data(), playerID) + botFloat64()*0.01
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}
