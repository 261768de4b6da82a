package brass

// flip turns a tile face-up and advances its owner's income.
func (m *machine) flip(ind *Industry) {
	if ind.Flipped {
		return
	}
	ind.Flipped = true
	tile := m.data.Tile(ind.Type, ind.Level)
	owner := m.gs.Player(ind.Owner)
	if tile == nil || owner == nil {
		return
	}
	owner.addIncome(tile.Income)
	m.logf(owner.ID, "level %d %s at %s flipped, income now %d", ind.Level, ind.Type, ind.Location, owner.Income)
}

// autoFlip flips resource industries whose last cube was just taken.
func (m *machine) autoFlip(ids ...int) {
	for _, id := range ids {
		ind := m.gs.Industry(id)
		if ind == nil || ind.Flipped {
			continue
		}
		var left int
		switch ind.Type {
		case CoalMine:
			left = ind.Coal
		case IronWorks:
			left = ind.Iron
		case Brewery:
			left = ind.Beer
		default:
			continue
		}
		if left == 0 {
			m.flip(ind)
		}
	}
}

// sellToMarket moves the cubes of a newly built mine or works into the
// market. Coal only moves when the mine reaches a merchant.
func (m *machine) sellToMarket(id int) {
	gs := m.gs
	ind := gs.Industry(id)
	if ind == nil {
		return
	}
	owner := gs.Player(ind.Owner)
	var sold, income int
	switch ind.Type {
	case CoalMine:
		if !gs.ConnectedToMarket(m.data, ind.Location) {
			return
		}
		sold, income = gs.CoalMarket.Sell(ind.Coal)
		ind.Coal -= sold
	case IronWorks:
		sold, income = gs.IronMarket.Sell(ind.Iron)
		ind.Iron -= sold
	default:
		return
	}
	if sold > 0 {
		owner.Money += income
		m.logf(owner.ID, "sold %d %s to the market for £%d", sold, ind.Type, income)
	}
	m.autoFlip(id)
}
