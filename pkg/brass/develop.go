package brass

// checkDevelop validates removing the next tile of t given the tiles
// already queued this action.
func (m *machine) checkDevelop(ev EventType, t IndustryType, queued []IndustryType) error {
	p := m.gs.Current()
	k := 0
	for _, q := range queued {
		if q == t {
			k++
		}
	}
	levels := p.Mat[t]
	if len(levels) <= k {
		return reject(ev, "no %s tile left to develop", t)
	}
	if tile := m.data.Tile(t, levels[k]); tile == nil || tile.NoDevelop {
		return reject(ev, "level %d %s cannot be developed", levels[k], t)
	}
	return nil
}

func (m *machine) resolveDevelop(ev EventType) error {
	gs := m.gs
	p := gs.Current()
	types := gs.Selection.Develop
	if len(types) == 0 {
		return reject(ev, "no tiles selected")
	}
	for i, t := range types {
		if err := m.checkDevelop(ev, t, types[:i]); err != nil {
			return err
		}
	}
	cost := m.consumeIron(len(types))
	if cost > p.Money {
		return reject(ev, "iron costs £%d, have £%d", cost, p.Money)
	}
	p.pay(cost)
	for _, t := range types {
		m.logf(p.ID, "developed level %d %s", p.NextTile(t), t)
		p.popTile(t)
	}
	gs.spendCard(p, gs.Selection.Card)
	return nil
}
