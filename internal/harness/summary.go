package harness

import (
	"fmt"
	"strings"

	"github.com/freeeve/brass-engine/pkg/brass"
)

// Summary renders the public parts of a position as stable text. Card ids
// are left out so the output does not depend on the shuffle.
func Summary(e *brass.Engine) string {
	gs := e.State()
	var b strings.Builder
	fmt.Fprintf(&b, "state: %s\n", e.Path())
	fmt.Fprintf(&b, "era: %s round: %d\n", gs.Era, gs.Round)
	if cur := e.CurrentPlayer(); cur != "" {
		fmt.Fprintf(&b, "current: %s actions: %d\n", cur, gs.ActionsRemaining)
	}
	fmt.Fprintf(&b, "draw: %d discard: %d\n", len(gs.DrawPile), len(gs.DiscardPile))
	fmt.Fprintf(&b, "industries: %d links: %d\n", len(gs.Industries), len(gs.Links))
	for _, p := range gs.Players {
		fmt.Fprintf(&b, "%-6s money=%d income=%d vp=%d hand=%d\n", p.ID, p.Money, p.Income, p.VP, len(p.Hand))
	}
	if r := gs.Result; r != nil {
		if r.Draw {
			b.WriteString("result: draw\n")
		} else {
			fmt.Fprintf(&b, "result: %s wins\n", r.Winner)
		}
	}
	return b.String()
}
