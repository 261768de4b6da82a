package brass

import (
	"math/rand"
	"strings"
)

// CardKind is the type of a card.
type CardKind string

const (
	LocationCard     CardKind = "location"
	IndustryCard     CardKind = "industry"
	WildLocationCard CardKind = "wild_location"
	WildIndustryCard CardKind = "wild_industry"
)

// Card is a single card instance. IDs are unique within a game.
type Card struct {
	ID         string         `json:"id"`
	Kind       CardKind       `json:"kind"`
	Location   string         `json:"location,omitempty"`
	Color      string         `json:"color,omitempty"`
	Industries []IndustryType `json:"industries,omitempty"`
}

// IsWild reports whether the card came from a wild pile.
func (c Card) IsWild() bool {
	return c.Kind == WildLocationCard || c.Kind == WildIndustryCard
}

// Names reports whether an industry card names t.
func (c Card) Names(t IndustryType) bool {
	for _, it := range c.Industries {
		if it == t {
			return true
		}
	}
	return false
}

func (c Card) face() string {
	switch c.Kind {
	case LocationCard:
		return "loc-" + c.Location
	case IndustryCard:
		parts := make([]string, len(c.Industries))
		for i, t := range c.Industries {
			parts[i] = string(t)
		}
		return "ind-" + strings.Join(parts, "-")
	}
	return string(c.Kind)
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

// rng returns the generator for the next shuffle. Each shuffle advances
// the counter so a restored snapshot continues the same sequence.
func (gs *GameState) rng() *rand.Rand {
	r := rand.New(rand.NewSource(gs.Seed + int64(gs.Shuffles)))
	gs.Shuffles++
	return r
}

func (gs *GameState) shuffle(cards []Card) {
	r := gs.rng()
	r.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// handIndex returns the position of a card in the hand, or -1.
func handIndex(hand []Card, id string) int {
	for i, c := range hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// spendCard removes a card from the player's hand and returns it to the
// discard pile, or to its wild pile.
func (gs *GameState) spendCard(p *Player, id string) bool {
	i := handIndex(p.Hand, id)
	if i < 0 {
		return false
	}
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	gs.returnCard(c)
	return true
}

func (gs *GameState) returnCard(c Card) {
	switch c.Kind {
	case WildLocationCard:
		gs.WildLocationPile = append(gs.WildLocationPile, c)
	case WildIndustryCard:
		gs.WildIndustryPile = append(gs.WildIndustryPile, c)
	default:
		gs.DiscardPile = append(gs.DiscardPile, c)
	}
}

// refillHand draws up to the hand size from the draw pile.
func (gs *GameState) refillHand(p *Player) {
	for len(p.Hand) < HandSize && len(gs.DrawPile) > 0 {
		p.Hand = append(p.Hand, gs.DrawPile[0])
		gs.DrawPile = gs.DrawPile[1:]
	}
}
