package brass

import "sort"

// Resource names a cube type consumed by actions.
type Resource string

const (
	ResourceCoal Resource = "coal"
	ResourceIron Resource = "iron"
	ResourceBeer Resource = "beer"
)

type source struct {
	ind  *Industry
	dist int
}

func sortSources(srcs []source) {
	sort.Slice(srcs, func(i, j int) bool {
		if srcs[i].dist != srcs[j].dist {
			return srcs[i].dist < srcs[j].dist
		}
		return srcs[i].ind.ID < srcs[j].ind.ID
	})
}

// consumeCoal takes n coal for something built at one of the given
// locations. Connected unflipped mines are drained nearest first; any
// shortfall is bought from the market if a location reaches a merchant.
// It returns the market cost.
func (m *machine) consumeCoal(ev EventType, at []string, n int) (int, error) {
	if n == 0 {
		return 0, nil
	}
	gs := m.gs
	var srcs []source
	for i := range gs.Industries {
		ind := &gs.Industries[i]
		if ind.Type != CoalMine || ind.Flipped || ind.Coal == 0 {
			continue
		}
		if d := gs.distanceFromAny(at, ind.Location); d >= 0 {
			srcs = append(srcs, source{ind, d})
		}
	}
	sortSources(srcs)

	var touched []int
	for _, s := range srcs {
		if n == 0 {
			break
		}
		take := min(n, s.ind.Coal)
		s.ind.Coal -= take
		n -= take
		touched = append(touched, s.ind.ID)
	}

	cost := 0
	if n > 0 {
		if !gs.anyConnectedToMarket(m.data, at) {
			return 0, reject(ev, "no connected coal source for %d coal", n)
		}
		cost = gs.CoalMarket.Buy(n)
	}
	m.autoFlip(touched...)
	return cost, nil
}

// consumeIron takes n iron from any iron works, lowest id first, then
// from the market. Iron needs no connection. It returns the market cost.
func (m *machine) consumeIron(n int) int {
	if n == 0 {
		return 0
	}
	gs := m.gs
	var touched []int
	for i := range gs.Industries {
		if n == 0 {
			break
		}
		ind := &gs.Industries[i]
		if ind.Type != IronWorks || ind.Flipped || ind.Iron == 0 {
			continue
		}
		take := min(n, ind.Iron)
		ind.Iron -= take
		n -= take
		touched = append(touched, ind.ID)
	}
	cost := 0
	if n > 0 {
		cost = gs.IronMarket.Buy(n)
	}
	m.autoFlip(touched...)
	return cost
}

// consumeBeer takes n beer for the player acting at the given locations:
// own breweries anywhere, then opponents' breweries connected to a
// location, then the merchant's barrel if one is offered. It reports
// whether the barrel was used.
func (m *machine) consumeBeer(ev EventType, playerID string, at []string, n int, merchant *Merchant) (bool, error) {
	if n == 0 {
		return false, nil
	}
	gs := m.gs
	var own, other []source
	for i := range gs.Industries {
		ind := &gs.Industries[i]
		if ind.Type != Brewery || ind.Flipped || ind.Beer == 0 {
			continue
		}
		if ind.Owner == playerID {
			own = append(own, source{ind, 0})
			continue
		}
		if d := gs.distanceFromAny(at, ind.Location); d >= 0 {
			other = append(other, source{ind, d})
		}
	}
	sortSources(own)
	sortSources(other)

	var touched []int
	for _, s := range append(own, other...) {
		if n == 0 {
			break
		}
		take := min(n, s.ind.Beer)
		s.ind.Beer -= take
		n -= take
		touched = append(touched, s.ind.ID)
	}

	usedBarrel := false
	if n > 0 && merchant != nil && merchant.Beer > 0 {
		merchant.Beer--
		n--
		usedBarrel = true
	}
	if n > 0 {
		return false, reject(ev, "not enough beer: %d more needed", n)
	}
	m.autoFlip(touched...)
	return usedBarrel, nil
}

// resourceExhausted reports whether no cube of r remains on the board or
// in the finite market tiers.
func (gs *GameState) resourceExhausted(r Resource) bool {
	for _, ind := range gs.Industries {
		switch {
		case r == ResourceCoal && ind.Coal > 0, r == ResourceIron && ind.Iron > 0:
			return false
		}
	}
	if r == ResourceCoal {
		return gs.CoalMarket.Available() == 0
	}
	return gs.IronMarket.Available() == 0
}
