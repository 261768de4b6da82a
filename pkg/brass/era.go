package brass

import "sort"

// linkValue is what a link end scores: the link VP of flipped tiles
// there plus the location's own link VP.
func (m *machine) linkValue(loc string) int {
	v := 0
	if l := m.data.Location(loc); l != nil {
		v += l.LinkVP
	}
	for _, ind := range m.gs.IndustriesAt(loc) {
		if !ind.Flipped {
			continue
		}
		if tile := m.data.Tile(ind.Type, ind.Level); tile != nil {
			v += tile.LinkVP
		}
	}
	return v
}

// scoreEra awards VP for every link, removes the links, then awards VP
// for every flipped industry.
func (m *machine) scoreEra() {
	gs := m.gs
	for _, l := range gs.Links {
		if p := gs.Player(l.Owner); p != nil {
			p.VP += m.linkValue(l.From) + m.linkValue(l.To)
		}
	}
	gs.Links = nil
	gs.topology++
	for _, ind := range gs.Industries {
		if !ind.Flipped {
			continue
		}
		if p, tile := gs.Player(ind.Owner), m.data.Tile(ind.Type, ind.Level); p != nil && tile != nil {
			p.VP += tile.VP
		}
	}
	for _, p := range gs.Players {
		m.logf(p.ID, "%s era score: %d VP", gs.Era, p.VP)
	}
}

// endCanalEra scores the canal era and sets up the rail era.
func (m *machine) endCanalEra() {
	gs := m.gs
	m.scoreEra()

	kept := gs.Industries[:0]
	for _, ind := range gs.Industries {
		if ind.Level > 1 {
			kept = append(kept, ind)
		}
	}
	gs.Industries = kept
	gs.topology++
	for i := range gs.Merchants {
		gs.Merchants[i].Beer = 1
	}

	deck := append(gs.DrawPile, gs.DiscardPile...)
	for i := range gs.Players {
		for _, c := range gs.Players[i].Hand {
			if c.IsWild() {
				gs.returnCard(c)
			} else {
				deck = append(deck, c)
			}
		}
		gs.Players[i].Hand = nil
	}
	gs.DiscardPile = nil
	gs.shuffle(deck)
	gs.DrawPile = deck
	for i := range gs.Players {
		gs.refillHand(&gs.Players[i])
	}

	gs.Era = Rail
	gs.Round = 1
	gs.CurrentPlayer = 0
	gs.ActionsRemaining = gs.actionsPerTurn()
	m.logf("", "rail era begins")
}

// endRailEra scores the rail era and records the result.
func (m *machine) endRailEra() {
	m.scoreEra()
	m.gs.Result = rank(m.gs.Players)
	if m.gs.Result.Draw {
		m.logf("", "game over: draw")
	} else {
		m.logf("", "game over: %s wins", m.gs.Result.Winner)
	}
}

// rank orders players by VP, then income, then money. The game is a
// draw when the top two are equal on all three.
func rank(players []Player) *Result {
	st := make([]Standing, len(players))
	for i, p := range players {
		st[i] = Standing{PlayerID: p.ID, VP: p.VP, Income: p.Income, Money: p.Money}
	}
	sort.SliceStable(st, func(i, j int) bool {
		a, b := st[i], st[j]
		if a.VP != b.VP {
			return a.VP > b.VP
		}
		if a.Income != b.Income {
			return a.Income > b.Income
		}
		return a.Money > b.Money
	})
	r := &Result{Standings: st}
	if len(st) > 1 && st[0].VP == st[1].VP && st[0].Income == st[1].Income && st[0].Money == st[1].Money {
		r.Draw = true
	} else if len(st) > 0 {
		r.Winner = st[0].PlayerID
	}
	return r
}

// deckExhausted reports whether no player can act again this era.
func (gs *GameState) deckExhausted() bool {
	if len(gs.DrawPile) > 0 {
		return false
	}
	for _, p := range gs.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// endRound runs round-end bookkeeping: turn order, income and the era
// transition when the round limit is reached or cards run out.
func (m *machine) endRound() {
	gs := m.gs
	gs.sortTurnOrder()
	final := gs.deckExhausted() || gs.Round >= gs.roundLimit()
	if !(final && gs.Era == Rail) {
		m.collectIncome()
	}
	gs.Round++
	if !final {
		m.logf("", "%s era round %d", gs.Era, gs.Round)
		return
	}
	m.endEra()
}

func (m *machine) endEra() {
	if m.gs.Era == Canal {
		m.endCanalEra()
		return
	}
	m.endRailEra()
}
