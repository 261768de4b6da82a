package bot

import (
	"github.com/freeeve/brass-engine/pkg/brass"
)

// comfortableMoney is the cash level past which extra money is worth little.
const comfortableMoney = 40

// Evaluate scores a position from playerID's point of view. Higher is
// better; the scale only matters relative to other positions.
func Evaluate(gs *brass.GameState, d *brass.GameData, playerID string) float64 {
	p := gs.Player(playerID)
	if p == nil {
		return 0
	}
	score := float64(p.VP)*3 + float64(p.Income)*3

	money := float64(p.Money)
	if money > comfortableMoney {
		score += comfortableMoney*0.2 + (money-comfortableMoney)*0.05
	} else {
		score += money * 0.2
	}

	for _, ind := range gs.IndustriesOf(playerID) {
		tile := d.Tile(ind.Type, ind.Level)
		if tile == nil {
			continue
		}
		if ind.Flipped {
			score += float64(tile.VP+tile.LinkVP) * 2
		} else {
			score += 3 + float64(tile.VP)*0.7
		}
	}
	score += float64(len(gs.LinksOf(playerID))) * 1.5
	return score
}
