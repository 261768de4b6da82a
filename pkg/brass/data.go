package brass

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// IndustryType identifies one of the six industries.
type IndustryType string

const (
	CoalMine     IndustryType = "coal"
	IronWorks    IndustryType = "iron"
	Brewery      IndustryType = "brewery"
	CottonMill   IndustryType = "cotton"
	Manufacturer IndustryType = "manufacturer"
	Pottery      IndustryType = "pottery"
)

// AllIndustries lists industry types in mat order.
var AllIndustries = []IndustryType{CoalMine, IronWorks, Brewery, CottonMill, Manufacturer, Pottery}

// Sellable reports whether tiles of this type are flipped by selling.
func (t IndustryType) Sellable() bool {
	return t == CottonMill || t == Manufacturer || t == Pottery
}

// Era is the current game era. It doubles as the link type built in it.
type Era string

const (
	Canal Era = "canal"
	Rail  Era = "rail"
)

// LocationKind distinguishes buildable towns, farm breweries and merchants.
type LocationKind string

const (
	Town             LocationKind = "town"
	FarmBrewery      LocationKind = "farm"
	MerchantLocation LocationKind = "merchant"
)

// Location is a node of the board graph.
type Location struct {
	ID           string           `yaml:"id" json:"id"`
	Name         string           `yaml:"name" json:"name"`
	Kind         LocationKind     `yaml:"kind" json:"kind"`
	Color        string           `yaml:"color" json:"color,omitempty"`
	Slots        [][]IndustryType `yaml:"slots" json:"slots,omitempty"`
	MarketAccess bool             `yaml:"market_access" json:"marketAccess,omitempty"`
	LinkVP       int              `yaml:"link_vp" json:"linkVP,omitempty"`
}

// Connection is a buildable edge between two locations.
type Connection struct {
	A     string `yaml:"a" json:"a"`
	B     string `yaml:"b" json:"b"`
	Canal bool   `yaml:"canal" json:"canal"`
	Rail  bool   `yaml:"rail" json:"rail"`
}

// Allows reports whether a link of the given era may be built along c.
func (c Connection) Allows(era Era) bool {
	if era == Canal {
		return c.Canal
	}
	return c.Rail
}

// IndustryTile is the static definition of one tile level.
type IndustryTile struct {
	Industry     IndustryType `yaml:"industry" json:"industry"`
	Level        int          `yaml:"level" json:"level"`
	Count        int          `yaml:"count" json:"count"`
	Cost         int          `yaml:"cost" json:"cost"`
	Coal         int          `yaml:"coal" json:"coal"`
	Iron         int          `yaml:"iron" json:"iron"`
	BeerToSell   int          `yaml:"beer_to_sell" json:"beerToSell"`
	ProducesCoal int          `yaml:"produces_coal" json:"producesCoal"`
	ProducesIron int          `yaml:"produces_iron" json:"producesIron"`
	ProducesBeer [2]int       `yaml:"produces_beer" json:"producesBeer"`
	VP           int          `yaml:"vp" json:"vp"`
	Income       int          `yaml:"income" json:"income"`
	LinkVP       int          `yaml:"link_vp" json:"linkVP"`
	CanalOK      bool         `yaml:"canal" json:"canal"`
	RailOK       bool         `yaml:"rail" json:"rail"`
	NoDevelop    bool         `yaml:"no_develop" json:"noDevelop"`
}

// BuildableIn reports whether the tile may be placed in the era.
func (t *IndustryTile) BuildableIn(era Era) bool {
	if era == Canal {
		return t.CanalOK
	}
	return t.RailOK
}

// BeerProduced returns the beer a newly built brewery of this tile holds.
func (t *IndustryTile) BeerProduced(era Era) int {
	if era == Canal {
		return t.ProducesBeer[0]
	}
	return t.ProducesBeer[1]
}

// BonusKind is the reward for consuming a merchant's beer barrel.
type BonusKind string

const (
	BonusDevelop BonusKind = "develop"
	BonusIncome  BonusKind = "income"
	BonusVP      BonusKind = "vp"
	BonusMoney   BonusKind = "money"
)

// Bonus is a merchant reward.
type Bonus struct {
	Kind   BonusKind `yaml:"kind" json:"kind"`
	Amount int       `yaml:"amount" json:"amount"`
}

// MerchantTile is the static definition of a merchant slot.
type MerchantTile struct {
	Location   string         `yaml:"location" json:"location"`
	Accepts    []IndustryType `yaml:"accepts" json:"accepts"`
	Bonus      Bonus          `yaml:"bonus" json:"bonus"`
	MinPlayers int            `yaml:"min_players" json:"minPlayers"`
}

// CardSpec describes copies of one card face, keyed by player count.
type CardSpec struct {
	Kind       CardKind       `yaml:"kind"`
	Location   string         `yaml:"location"`
	Industries []IndustryType `yaml:"industries"`
	Counts     map[int]int    `yaml:"counts"`
}

// GameData is the immutable board, tile, merchant and deck data.
type GameData struct {
	WildCards   int            `yaml:"wild_cards"`
	Locations   []Location     `yaml:"locations"`
	Connections []Connection   `yaml:"connections"`
	Tiles       []IndustryTile `yaml:"tiles"`
	Merchants   []MerchantTile `yaml:"merchants"`
	Cards       []CardSpec     `yaml:"cards"`

	locations map[string]*Location
	tiles     map[IndustryType][]*IndustryTile
	edges     map[string]map[string]*Connection
}

//go:embed data/standard.yaml
var standardYAML []byte

var (
	standardOnce sync.Once
	standardData *GameData
	standardErr  error
)

// StandardData returns the embedded standard board. It panics if the
// embedded file is malformed, which is a build defect.
func StandardData() *GameData {
	standardOnce.Do(func() {
		standardData, standardErr = ParseGameData(standardYAML)
	})
	if standardErr != nil {
		panic(fmt.Sprintf("brass: embedded data: %v", standardErr))
	}
	return standardData
}

// LoadGameData decodes game data from r.
func LoadGameData(r io.Reader) (*GameData, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read game data: %w", err)
	}
	return ParseGameData(b)
}

// ParseGameData decodes and validates a YAML game data document.
func ParseGameData(b []byte) (*GameData, error) {
	var d GameData
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode game data: %w", err)
	}
	if err := d.index(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *GameData) index() error {
	d.locations = make(map[string]*Location, len(d.Locations))
	for i := range d.Locations {
		loc := &d.Locations[i]
		if _, dup := d.locations[loc.ID]; dup {
			return fmt.Errorf("duplicate location %q", loc.ID)
		}
		d.locations[loc.ID] = loc
	}

	d.edges = make(map[string]map[string]*Connection)
	for i := range d.Connections {
		c := &d.Connections[i]
		for _, id := range []string{c.A, c.B} {
			if d.locations[id] == nil {
				return fmt.Errorf("connection %s-%s: unknown location %q", c.A, c.B, id)
			}
		}
		if !c.Canal && !c.Rail {
			return fmt.Errorf("connection %s-%s allows no link type", c.A, c.B)
		}
		d.addEdge(c.A, c.B, c)
		d.addEdge(c.B, c.A, c)
	}

	d.tiles = make(map[IndustryType][]*IndustryTile)
	for i := range d.Tiles {
		t := &d.Tiles[i]
		d.tiles[t.Industry] = append(d.tiles[t.Industry], t)
	}
	for _, ts := range d.tiles {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Level < ts[j].Level })
	}

	for _, m := range d.Merchants {
		loc := d.locations[m.Location]
		if loc == nil || loc.Kind != MerchantLocation {
			return fmt.Errorf("merchant at %q: not a merchant location", m.Location)
		}
	}
	for _, c := range d.Cards {
		if c.Kind == LocationCard && d.locations[c.Location] == nil {
			return fmt.Errorf("card for unknown location %q", c.Location)
		}
	}
	return nil
}

func (d *GameData) addEdge(a, b string, c *Connection) {
	if d.edges[a] == nil {
		d.edges[a] = make(map[string]*Connection)
	}
	d.edges[a][b] = c
}

// Location returns the location with the given id, or nil.
func (d *GameData) Location(id string) *Location {
	return d.locations[id]
}

// Connection returns the connection between a and b, or nil.
func (d *GameData) Connection(a, b string) *Connection {
	return d.edges[a][b]
}

// Tile returns the tile definition for an industry level, or nil.
func (d *GameData) Tile(t IndustryType, level int) *IndustryTile {
	for _, tile := range d.tiles[t] {
		if tile.Level == level {
			return tile
		}
	}
	return nil
}

// initialMat returns a fresh player mat: remaining tile levels per
// industry, lowest level first.
func (d *GameData) initialMat() map[IndustryType][]int {
	mat := make(map[IndustryType][]int, len(d.tiles))
	for t, tiles := range d.tiles {
		var levels []int
		for _, tile := range tiles {
			for range tile.Count {
				levels = append(levels, tile.Level)
			}
		}
		mat[t] = levels
	}
	return mat
}

// deck builds the ordered, unshuffled draw pile for a player count.
func (d *GameData) deck(players int) []Card {
	var cards []Card
	for _, def := range d.Cards {
		n := def.Counts[players]
		for i := 1; i <= n; i++ {
			c := Card{Kind: def.Kind, Location: def.Location, Industries: def.Industries}
			c.ID = fmt.Sprintf("%s-%d", c.face(), i)
			if loc := d.locations[def.Location]; loc != nil {
				c.Color = loc.Color
			}
			cards = append(cards, c)
		}
	}
	return cards
}

func (d *GameData) wildPile(kind CardKind) []Card {
	cards := make([]Card, d.WildCards)
	for i := range cards {
		cards[i] = Card{ID: fmt.Sprintf("%s-%d", kind, i+1), Kind: kind}
	}
	return cards
}
