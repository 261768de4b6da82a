package brass

// buildPlan is a validated placement for a build action.
type buildPlan struct {
	tile    *IndustryTile
	slot    int
	replace int // id of the overbuilt industry, 0 if none
}

// checkCardLocation validates that the card permits building at loc,
// independent of the industry chosen.
func (m *machine) checkCardLocation(ev EventType, p *Player, card Card, loc *Location) error {
	if loc.Kind == MerchantLocation {
		return reject(ev, "cannot build at merchant %s", loc.ID)
	}
	inNetwork := m.gs.InNetwork(p.ID, loc.ID) || !m.gs.hasPresence(p.ID)
	switch card.Kind {
	case LocationCard:
		if card.Location != loc.ID {
			return reject(ev, "card %s is for %s, not %s", card.ID, card.Location, loc.ID)
		}
	case WildLocationCard:
		if loc.Kind != Town {
			return reject(ev, "wild location cards only build in towns")
		}
	case IndustryCard:
		if !inNetwork {
			return reject(ev, "%s is not in your network", loc.ID)
		}
		fits := false
		for _, slot := range loc.Slots {
			for _, t := range slot {
				fits = fits || card.Names(t)
			}
		}
		if !fits {
			return reject(ev, "%s has no slot for card %s", loc.ID, card.ID)
		}
	case WildIndustryCard:
		if !inNetwork {
			return reject(ev, "%s is not in your network", loc.ID)
		}
	}
	return nil
}

// planBuild validates building industry t at loc with the given card,
// ignoring resources and money, and picks the slot.
func (m *machine) planBuild(ev EventType, cardID, locID string, t IndustryType) (*buildPlan, error) {
	gs := m.gs
	p := gs.Current()
	hi := handIndex(p.Hand, cardID)
	if hi < 0 {
		return nil, reject(ev, "card %s is not in hand", cardID)
	}
	card := p.Hand[hi]
	loc := m.data.Location(locID)
	if loc == nil {
		return nil, reject(ev, "unknown location %q", locID)
	}
	if err := m.checkCardLocation(ev, p, card, loc); err != nil {
		return nil, err
	}
	if card.Kind == IndustryCard && !card.Names(t) {
		return nil, reject(ev, "card %s does not allow %s", card.ID, t)
	}

	level := p.NextTile(t)
	if level == 0 {
		return nil, reject(ev, "no %s tiles left", t)
	}
	tile := m.data.Tile(t, level)
	if !tile.BuildableIn(gs.Era) {
		return nil, reject(ev, "level %d %s cannot be built in the %s era", level, t, gs.Era)
	}

	occupied := make(map[int]*Industry)
	for _, ind := range gs.IndustriesAt(loc.ID) {
		occupied[ind.Slot] = ind
	}
	plan := &buildPlan{tile: tile, slot: -1}
	for i, types := range loc.Slots {
		if !containsIndustry(types, t) || occupied[i] != nil {
			continue
		}
		if plan.slot < 0 || (len(types) == 1 && len(loc.Slots[plan.slot]) > 1) {
			plan.slot = i
		}
	}
	if plan.slot < 0 {
		for i, types := range loc.Slots {
			ind := occupied[i]
			if ind == nil || !containsIndustry(types, t) || ind.Type != t || ind.Level >= level {
				continue
			}
			if ind.Owner == p.ID || m.canOverbuildRival(t) {
				plan.slot, plan.replace = i, ind.ID
				break
			}
		}
	}
	if plan.slot < 0 {
		return nil, reject(ev, "no free %s slot at %s", t, loc.ID)
	}

	if gs.Era == Canal {
		for _, ind := range gs.IndustriesAt(loc.ID) {
			if ind.Owner == p.ID && ind.ID != plan.replace {
				return nil, reject(ev, "only one industry per location in the canal era")
			}
		}
	}
	return plan, nil
}

// canOverbuildRival reports whether an opponent's tile of type t may be
// replaced: only mines and works, once their resource is gone everywhere.
func (m *machine) canOverbuildRival(t IndustryType) bool {
	switch t {
	case CoalMine:
		return m.gs.resourceExhausted(ResourceCoal)
	case IronWorks:
		return m.gs.resourceExhausted(ResourceIron)
	}
	return false
}

func (m *machine) resolveBuild(ev EventType) error {
	gs := m.gs
	sel := gs.Selection
	plan, err := m.planBuild(ev, sel.Card, sel.Location, sel.Industry)
	if err != nil {
		return err
	}
	p := gs.Current()
	tile := plan.tile

	if plan.replace != 0 {
		old := gs.Industry(plan.replace)
		m.logf(p.ID, "overbuilt level %d %s at %s", old.Level, old.Type, old.Location)
		gs.removeIndustry(plan.replace)
	}
	coalCost, err := m.consumeCoal(ev, []string{sel.Location}, tile.Coal)
	if err != nil {
		return err
	}
	ironCost := m.consumeIron(tile.Iron)
	total := tile.Cost + coalCost + ironCost
	if total > p.Money {
		return reject(ev, "costs £%d, have £%d", total, p.Money)
	}
	p.pay(total)
	p.popTile(tile.Industry)

	ind := gs.addIndustry(Industry{
		Owner:    p.ID,
		Location: sel.Location,
		Slot:     plan.slot,
		Type:     tile.Industry,
		Level:    tile.Level,
		Coal:     tile.ProducesCoal,
		Iron:     tile.ProducesIron,
		Beer:     tile.BeerProduced(gs.Era),
	})
	m.logf(p.ID, "built level %d %s at %s for £%d", tile.Level, tile.Industry, sel.Location, total)
	m.sellToMarket(ind.ID)
	gs.spendCard(p, sel.Card)
	return nil
}

func containsIndustry(types []IndustryType, t IndustryType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
