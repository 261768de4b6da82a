package brass

// Rule constants.
const (
	MinPlayers     = 2
	MaxPlayers     = 4
	HandSize       = 8
	StartingMoney  = 17
	StartingIncome = 10
	MinIncome      = -10
	MaxIncome      = 30
	LoanAmount     = 30
	LoanPenalty    = 3
)

// roundLimits is the number of rounds per era by player count.
var roundLimits = map[int]int{2: 10, 3: 9, 4: 8}

// Player is one seat at the table.
type Player struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Color      string                 `json:"color"`
	Character  string                 `json:"character,omitempty"`
	Money      int                    `json:"money"`
	Income     int                    `json:"income"`
	VP         int                    `json:"victoryPoints"`
	SpentMoney int                    `json:"spentMoney"`
	Hand       []Card                 `json:"hand"`
	Mat        map[IndustryType][]int `json:"mat"`
}

// NextTile returns the lowest remaining level of an industry, or 0.
func (p *Player) NextTile(t IndustryType) int {
	if levels := p.Mat[t]; len(levels) > 0 {
		return levels[0]
	}
	return 0
}

func (p *Player) popTile(t IndustryType) {
	if levels := p.Mat[t]; len(levels) > 0 {
		p.Mat[t] = levels[1:]
	}
}

func (p *Player) pay(amount int) {
	p.Money -= amount
	p.SpentMoney += amount
}

func (p *Player) addIncome(n int) {
	p.Income += n
	if p.Income > MaxIncome {
		p.Income = MaxIncome
	}
	if p.Income < MinIncome {
		p.Income = MinIncome
	}
}

func (p Player) clone() Player {
	c := p
	c.Hand = cloneCards(p.Hand)
	c.Mat = make(map[IndustryType][]int, len(p.Mat))
	for t, levels := range p.Mat {
		c.Mat[t] = append([]int(nil), levels...)
	}
	return c
}

// Industry is a tile placed on the board.
type Industry struct {
	ID       int          `json:"id"`
	Owner    string       `json:"owner"`
	Location string       `json:"location"`
	Slot     int          `json:"slot"`
	Type     IndustryType `json:"type"`
	Level    int          `json:"level"`
	Flipped  bool         `json:"flipped"`
	Coal     int          `json:"coal,omitempty"`
	Iron     int          `json:"iron,omitempty"`
	Beer     int          `json:"beer,omitempty"`
}

// Link is a built canal or rail segment.
type Link struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Type  Era    `json:"type"`
	Owner string `json:"owner"`
}

// Touches reports whether the link ends at loc.
func (l Link) Touches(loc string) bool {
	return l.From == loc || l.To == loc
}

func (l Link) joins(a, b string) bool {
	return (l.From == a && l.To == b) || (l.From == b && l.To == a)
}

// Merchant is a merchant slot in play.
type Merchant struct {
	ID       int            `json:"id"`
	Location string         `json:"location"`
	Accepts  []IndustryType `json:"accepts"`
	Bonus    Bonus          `json:"bonus"`
	Beer     int            `json:"beer"`
}

// Buys reports whether the merchant accepts goods of type t.
func (m Merchant) Buys(t IndustryType) bool {
	for _, a := range m.Accepts {
		if a == t {
			return true
		}
	}
	return false
}

// LinkRef names a connection chosen during a network action.
type LinkRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Selection holds the in-progress choices of the current action.
type Selection struct {
	Card       string         `json:"selectedCard,omitempty"`
	Location   string         `json:"selectedLocation,omitempty"`
	Industry   IndustryType   `json:"selectedIndustryType,omitempty"`
	Tile       *TileRef       `json:"selectedIndustryTile,omitempty"`
	Develop    []IndustryType `json:"selectedDevelopTiles,omitempty"`
	Sales      []int          `json:"selectedSales,omitempty"`
	Link       *LinkRef       `json:"selectedLink,omitempty"`
	SecondLink *LinkRef       `json:"selectedSecondLink,omitempty"`
	DoubleLink bool           `json:"doubleLink,omitempty"`
	ScoutCards []string       `json:"selectedCardsForScout,omitempty"`
}

func (s Selection) clone() Selection {
	c := s
	if s.Tile != nil {
		t := *s.Tile
		c.Tile = &t
	}
	if s.Link != nil {
		l := *s.Link
		c.Link = &l
	}
	if s.SecondLink != nil {
		l := *s.SecondLink
		c.SecondLink = &l
	}
	c.Develop = append([]IndustryType(nil), s.Develop...)
	c.Sales = append([]int(nil), s.Sales...)
	c.ScoutCards = append([]string(nil), s.ScoutCards...)
	return c
}

// Standing is a player's final position.
type Standing struct {
	PlayerID string `json:"playerId"`
	VP       int    `json:"victoryPoints"`
	Income   int    `json:"income"`
	Money    int    `json:"money"`
}

// Result is the outcome of a finished game.
type Result struct {
	Winner    string     `json:"winner,omitempty"`
	Draw      bool       `json:"draw,omitempty"`
	Standings []Standing `json:"standings"`
}

// GameState is the complete mutable context of a game.
type GameState struct {
	Players          []Player   `json:"players"`
	CurrentPlayer    int        `json:"currentPlayerIndex"`
	Era              Era        `json:"era"`
	Round            int        `json:"round"`
	ActionsRemaining int        `json:"actionsRemaining"`
	DrawPile         []Card     `json:"drawPile"`
	DiscardPile      []Card     `json:"discardPile"`
	WildLocationPile []Card     `json:"wildLocationPile"`
	WildIndustryPile []Card     `json:"wildIndustryPile"`
	CoalMarket       Market     `json:"coalMarket"`
	IronMarket       Market     `json:"ironMarket"`
	Industries       []Industry `json:"industries"`
	Links            []Link     `json:"links"`
	Merchants        []Merchant `json:"merchants"`
	NextIndustryID   int        `json:"nextIndustryId"`
	Selection        Selection  `json:"selection"`
	Seed             int64      `json:"seed"`
	Shuffles         int        `json:"shuffles"`
	Result           *Result    `json:"result,omitempty"`

	// topology changes whenever links or industries are added or
	// removed; the network cache is keyed on it.
	topology int
	net      *network
}

// Clone returns a deep copy of the game state.
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Players = make([]Player, len(gs.Players))
	for i, p := range gs.Players {
		c.Players[i] = p.clone()
	}
	c.DrawPile = cloneCards(gs.DrawPile)
	c.DiscardPile = cloneCards(gs.DiscardPile)
	c.WildLocationPile = cloneCards(gs.WildLocationPile)
	c.WildIndustryPile = cloneCards(gs.WildIndustryPile)
	c.CoalMarket = gs.CoalMarket.clone()
	c.IronMarket = gs.IronMarket.clone()
	c.Industries = append([]Industry(nil), gs.Industries...)
	c.Links = append([]Link(nil), gs.Links...)
	c.Merchants = make([]Merchant, len(gs.Merchants))
	for i, m := range gs.Merchants {
		m.Accepts = append([]IndustryType(nil), m.Accepts...)
		c.Merchants[i] = m
	}
	c.Selection = gs.Selection.clone()
	if gs.Result != nil {
		r := *gs.Result
		r.Standings = append([]Standing(nil), gs.Result.Standings...)
		c.Result = &r
	}
	c.net = nil
	return &c
}

// Current returns the player whose turn it is, or nil before the game starts.
func (gs *GameState) Current() *Player {
	if gs.CurrentPlayer < 0 || gs.CurrentPlayer >= len(gs.Players) {
		return nil
	}
	return &gs.Players[gs.CurrentPlayer]
}

// Player returns the player with the given id, or nil.
func (gs *GameState) Player(id string) *Player {
	for i := range gs.Players {
		if gs.Players[i].ID == id {
			return &gs.Players[i]
		}
	}
	return nil
}

// Industry returns the placed industry with the given id, or nil.
func (gs *GameState) Industry(id int) *Industry {
	for i := range gs.Industries {
		if gs.Industries[i].ID == id {
			return &gs.Industries[i]
		}
	}
	return nil
}

// IndustriesAt returns the industries built at a location.
func (gs *GameState) IndustriesAt(loc string) []*Industry {
	var out []*Industry
	for i := range gs.Industries {
		if gs.Industries[i].Location == loc {
			out = append(out, &gs.Industries[i])
		}
	}
	return out
}

// IndustriesOf returns the industries owned by a player.
func (gs *GameState) IndustriesOf(playerID string) []*Industry {
	var out []*Industry
	for i := range gs.Industries {
		if gs.Industries[i].Owner == playerID {
			out = append(out, &gs.Industries[i])
		}
	}
	return out
}

// LinksOf returns the links owned by a player.
func (gs *GameState) LinksOf(playerID string) []Link {
	var out []Link
	for _, l := range gs.Links {
		if l.Owner == playerID {
			out = append(out, l)
		}
	}
	return out
}

// HasLink reports whether a link already joins a and b.
func (gs *GameState) HasLink(a, b string) bool {
	for _, l := range gs.Links {
		if l.joins(a, b) {
			return true
		}
	}
	return false
}

// Merchant returns the merchant slot with the given id, or nil.
func (gs *GameState) Merchant(id int) *Merchant {
	for i := range gs.Merchants {
		if gs.Merchants[i].ID == id {
			return &gs.Merchants[i]
		}
	}
	return nil
}

func (gs *GameState) addIndustry(ind Industry) *Industry {
	gs.NextIndustryID++
	ind.ID = gs.NextIndustryID
	gs.Industries = append(gs.Industries, ind)
	gs.topology++
	return &gs.Industries[len(gs.Industries)-1]
}

func (gs *GameState) removeIndustry(id int) {
	for i := range gs.Industries {
		if gs.Industries[i].ID == id {
			gs.Industries = append(gs.Industries[:i], gs.Industries[i+1:]...)
			gs.topology++
			return
		}
	}
}

func (gs *GameState) addLink(l Link) {
	gs.Links = append(gs.Links, l)
	gs.topology++
}

// IsGameOver reports whether the rail era has run past its round limit
// or a result has been recorded.
func (gs *GameState) IsGameOver() bool {
	if gs.Result != nil {
		return true
	}
	return gs.Era == Rail && gs.Round > gs.roundLimit()
}

func (gs *GameState) roundLimit() int {
	if n, ok := roundLimits[len(gs.Players)]; ok {
		return n
	}
	return roundLimits[MaxPlayers]
}

// RoundLimit returns the number of rounds in each era for this game.
func (gs *GameState) RoundLimit() int {
	return gs.roundLimit()
}

// actionsPerTurn is 1 for the very first round of the game, 2 otherwise.
func (gs *GameState) actionsPerTurn() int {
	if gs.Era == Canal && gs.Round == 1 {
		return 1
	}
	return 2
}

func (gs *GameState) clearSelection() {
	gs.Selection = Selection{}
}
