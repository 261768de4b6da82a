package brass

// ScoutDiscards is the number of cards discarded to scout.
const ScoutDiscards = 3

func (m *machine) checkScout(ev EventType) error {
	gs := m.gs
	p := gs.Current()
	for _, c := range p.Hand {
		if c.IsWild() {
			return reject(ev, "already holding a wild card")
		}
	}
	if len(gs.WildLocationPile) == 0 || len(gs.WildIndustryPile) == 0 {
		return reject(ev, "wild card piles are empty")
	}
	if len(p.Hand) < ScoutDiscards {
		return reject(ev, "need %d cards to scout", ScoutDiscards)
	}
	return nil
}

func (m *machine) resolveScout(ev EventType) error {
	if err := m.checkScout(ev); err != nil {
		return err
	}
	gs := m.gs
	p := gs.Current()
	ids := gs.Selection.ScoutCards
	if len(ids) != ScoutDiscards {
		return reject(ev, "select %d cards to scout", ScoutDiscards)
	}
	for _, id := range ids {
		if !gs.spendCard(p, id) {
			return reject(ev, "card %s is not in hand", id)
		}
	}
	p.Hand = append(p.Hand, gs.WildLocationPile[0], gs.WildIndustryPile[0])
	gs.WildLocationPile = gs.WildLocationPile[1:]
	gs.WildIndustryPile = gs.WildIndustryPile[1:]
	m.logf(p.ID, "scouted for wild cards")
	return nil
}
