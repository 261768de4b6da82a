package brass

// buyers returns the merchants in play that accept ind's goods and are
// connected to its location.
func (m *machine) buyers(ind *Industry) []*Merchant {
	var out []*Merchant
	for i := range m.gs.Merchants {
		mc := &m.gs.Merchants[i]
		if mc.Buys(ind.Type) && m.gs.Connected(ind.Location, mc.Location) {
			out = append(out, mc)
		}
	}
	return out
}

// checkSale finds the current player's unflipped tile described by ref
// that is not already queued and has a buyer.
func (m *machine) checkSale(ev EventType, ref TileRef, queued []int) (*Industry, error) {
	p := m.gs.Current()
	if !ref.Industry.Sellable() {
		return nil, reject(ev, "%s cannot be sold", ref.Industry)
	}
	for _, ind := range m.gs.IndustriesAt(ref.Location) {
		if ind.Owner != p.ID || ind.Type != ref.Industry || ind.Flipped || containsID(queued, ind.ID) {
			continue
		}
		if ref.Level != 0 && ind.Level != ref.Level {
			continue
		}
		if len(m.buyers(ind)) == 0 {
			return nil, reject(ev, "no connected merchant buys %s from %s", ind.Type, ind.Location)
		}
		return ind, nil
	}
	return nil, reject(ev, "no unsold %s of yours at %s", ref.Industry, ref.Location)
}

func (m *machine) resolveSell(ev EventType) error {
	gs := m.gs
	p := gs.Current()
	if len(gs.Selection.Sales) == 0 {
		return reject(ev, "no tiles selected")
	}
	for _, id := range gs.Selection.Sales {
		ind := gs.Industry(id)
		if ind == nil || ind.Flipped {
			return reject(ev, "tile %d is no longer for sale", id)
		}
		buyers := m.buyers(ind)
		if len(buyers) == 0 {
			return reject(ev, "no connected merchant buys %s from %s", ind.Type, ind.Location)
		}
		merchant := buyers[0]
		for _, b := range buyers {
			if b.Beer > 0 {
				merchant = b
				break
			}
		}
		tile := m.data.Tile(ind.Type, ind.Level)
		usedBarrel, err := m.consumeBeer(ev, p.ID, []string{ind.Location}, tile.BeerToSell, merchant)
		if err != nil {
			return err
		}
		ind = gs.Industry(id)
		m.logf(p.ID, "sold level %d %s at %s to %s", ind.Level, ind.Type, ind.Location, merchant.Location)
		m.flip(ind)
		if usedBarrel {
			m.merchantBonus(p, merchant, ind.Type)
		}
	}
	gs.spendCard(p, gs.Selection.Card)
	return nil
}

// merchantBonus pays out the reward for drinking a merchant's barrel.
func (m *machine) merchantBonus(p *Player, mc *Merchant, sold IndustryType) {
	b := mc.Bonus
	switch b.Kind {
	case BonusVP:
		p.VP += b.Amount
	case BonusMoney:
		p.Money += b.Amount
	case BonusIncome:
		p.addIncome(b.Amount)
	case BonusDevelop:
		for range b.Amount {
			level := p.NextTile(sold)
			if tile := m.data.Tile(sold, level); tile == nil || tile.NoDevelop {
				break
			}
			p.popTile(sold)
		}
	}
	m.logf(p.ID, "%s merchant bonus: %s %d", mc.Location, b.Kind, b.Amount)
}

func containsID(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
