package brass

import "sort"

// collectIncome pays each player their income. A player left below zero
// sells tiles back cheapest first for half their cost, then loses the
// remaining shortfall in victory points.
func (m *machine) collectIncome() {
	for i := range m.gs.Players {
		p := &m.gs.Players[i]
		p.Money += p.Income
		if p.Money < 0 {
			m.coverShortfall(p)
		}
	}
}

func (m *machine) coverShortfall(p *Player) {
	gs := m.gs
	type owned struct {
		id, cost int
	}
	var tiles []owned
	for _, ind := range gs.IndustriesOf(p.ID) {
		tile := m.data.Tile(ind.Type, ind.Level)
		if tile != nil && tile.Cost/2 > 0 {
			tiles = append(tiles, owned{ind.ID, tile.Cost})
		}
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].cost != tiles[j].cost {
			return tiles[i].cost < tiles[j].cost
		}
		return tiles[i].id < tiles[j].id
	})
	for _, t := range tiles {
		if p.Money >= 0 {
			break
		}
		gs.removeIndustry(t.id)
		p.Money += t.cost / 2
		m.logf(p.ID, "sold a tile back for £%d to cover income", t.cost/2)
	}
	if p.Money < 0 {
		lost := min(-p.Money, p.VP)
		p.VP -= lost
		p.Money = 0
		m.logf(p.ID, "lost %d VP to cover income", lost)
	}
}
