package brass

// Unbounded marks a market tier that never runs out.
const Unbounded = -1

// Tier is one price step of a resource market.
type Tier struct {
	Price    int `json:"price"`
	Cubes    int `json:"cubes"`
	MaxCubes int `json:"maxCubes"`
}

func (t Tier) unbounded() bool { return t.MaxCubes == Unbounded }

// Market is a priced ladder of resource cubes, cheapest tier first.
type Market struct {
	Tiers []Tier `json:"tiers"`
}

// NewCoalMarket returns the coal market in its starting position.
func NewCoalMarket() Market {
	return Market{Tiers: []Tier{
		{Price: 1, Cubes: 1, MaxCubes: 2},
		{Price: 2, Cubes: 2, MaxCubes: 2},
		{Price: 3, Cubes: 2, MaxCubes: 2},
		{Price: 4, Cubes: 2, MaxCubes: 2},
		{Price: 5, Cubes: 2, MaxCubes: 2},
		{Price: 6, Cubes: 2, MaxCubes: 2},
		{Price: 7, Cubes: 2, MaxCubes: 2},
		{Price: 8, Cubes: 0, MaxCubes: Unbounded},
	}}
}

// NewIronMarket returns the iron market in its starting position.
func NewIronMarket() Market {
	return Market{Tiers: []Tier{
		{Price: 1, Cubes: 0, MaxCubes: 2},
		{Price: 2, Cubes: 2, MaxCubes: 2},
		{Price: 3, Cubes: 2, MaxCubes: 2},
		{Price: 4, Cubes: 2, MaxCubes: 2},
		{Price: 5, Cubes: 2, MaxCubes: 2},
		{Price: 6, Cubes: 0, MaxCubes: Unbounded},
	}}
}

func (m Market) clone() Market {
	return Market{Tiers: append([]Tier(nil), m.Tiers...)}
}

// Cost returns the price of buying n cubes without changing the market.
func (m Market) Cost(n int) int {
	total := 0
	for _, t := range m.Tiers {
		if n == 0 {
			break
		}
		if t.unbounded() {
			total += n * t.Price
			n = 0
			break
		}
		take := min(n, t.Cubes)
		total += take * t.Price
		n -= take
	}
	return total
}

// Buy removes n cubes, cheapest first, and returns what they cost. The
// last tier is unbounded so a purchase always completes.
func (m *Market) Buy(n int) int {
	total := 0
	for i := range m.Tiers {
		if n == 0 {
			break
		}
		t := &m.Tiers[i]
		if t.unbounded() {
			total += n * t.Price
			n = 0
			break
		}
		take := min(n, t.Cubes)
		t.Cubes -= take
		total += take * t.Price
		n -= take
	}
	return total
}

// Sell fills vacancies from the most expensive finite tier down and
// returns how many of n cubes were accepted and the money paid for them.
func (m *Market) Sell(n int) (sold, income int) {
	for i := len(m.Tiers) - 1; i >= 0 && n > 0; i-- {
		t := &m.Tiers[i]
		if t.unbounded() {
			continue
		}
		room := min(n, t.MaxCubes-t.Cubes)
		t.Cubes += room
		sold += room
		income += room * t.Price
		n -= room
	}
	return sold, income
}

// Available returns the number of cubes in finite tiers.
func (m Market) Available() int {
	n := 0
	for _, t := range m.Tiers {
		if !t.unbounded() {
			n += t.Cubes
		}
	}
	return n
}
