package bot

import (
	"github.com/freeeve/brass-engine/pkg/brass"
)

// Script is one complete action as engine events, from the action choice
// through CONFIRM.
type Script []brass.Event

// Action returns the action event type that opens the script.
func (s Script) Action() brass.EventType {
	if len(s) == 0 {
		return ""
	}
	return s[0].Type
}

// Try plays the script on a clone of e and returns the clone, or nil if
// any event is refused.
func (s Script) Try(e *brass.Engine) *brass.Engine {
	trial := e.Clone()
	if err := trial.SendAll(s...); err != nil {
		return nil
	}
	return trial
}

func confirmed(events ...brass.Event) Script {
	return append(Script(events), brass.Simple(brass.EventConfirm))
}

// passScript spends the first card in hand.
func passScript(p *brass.Player) Script {
	if len(p.Hand) == 0 {
		return nil
	}
	return confirmed(brass.Simple(brass.EventPass), brass.SelectCard(p.Hand[0].ID))
}

// unwind returns the CANCEL events that take e back to action selection.
func unwind(e *brass.Engine) []brass.Event {
	var out []brass.Event
	trial := e.Clone()
	for i := 0; i < 8 && trial.Path() != brass.StateSelectingAction; i++ {
		if err := trial.Send(brass.Simple(brass.EventCancel)); err != nil {
			return out
		}
		out = append(out, brass.Simple(brass.EventCancel))
	}
	return out
}

// candidates enumerates the action scripts worth trying for playerID.
// Scripts may still be refused by the engine; callers try them on clones.
func candidates(e *brass.Engine, playerID string) []Script {
	gs := e.State()
	d := e.Data()
	p := gs.Player(playerID)
	if p == nil || len(p.Hand) == 0 {
		return nil
	}
	spare := p.Hand[botIntn(len(p.Hand))].ID

	var out []Script
	for _, c := range p.Hand {
		for _, loc := range buildLocations(d, c) {
			for _, t := range buildIndustries(d, c, loc) {
				out = append(out, confirmed(
					brass.Simple(brass.EventBuild), brass.SelectCard(c.ID),
					brass.SelectLocation(loc), brass.SelectIndustryType(t)))
			}
		}
	}

	for _, t := range brass.AllIndustries {
		if p.NextTile(t) == 0 {
			continue
		}
		develop := brass.SelectIndustryType(t)
		out = append(out,
			confirmed(brass.Simple(brass.EventDevelop), brass.SelectCard(spare), develop),
			confirmed(brass.Simple(brass.EventDevelop), brass.SelectCard(spare), develop, develop))
	}

	for _, ind := range gs.IndustriesOf(playerID) {
		if ind.Flipped || !ind.Type.Sellable() {
			continue
		}
		out = append(out, confirmed(brass.Simple(brass.EventSell), brass.SelectCard(spare),
			brass.SelectTile(ind.Type, ind.Location)))
	}

	out = append(out, confirmed(brass.Simple(brass.EventTakeLoan), brass.SelectCard(spare)))

	var links []brass.Connection
	for _, c := range d.Connections {
		if c.Allows(gs.Era) && !gs.HasLink(c.A, c.B) {
			links = append(links, c)
			out = append(out, confirmed(brass.Simple(brass.EventNetwork), brass.SelectCard(spare),
				brass.SelectLink(c.A, c.B)))
		}
	}
	if gs.Era == brass.Rail {
		out = append(out, doubleLinks(links, spare)...)
	}

	if scout := scoutScript(p); scout != nil {
		out = append(out, scout)
	}
	return out
}

// maxDoubleLinks bounds how many double rail pairs are sampled per turn.
const maxDoubleLinks = 24

func doubleLinks(links []brass.Connection, card string) []Script {
	var out []Script
	for i := 0; i < maxDoubleLinks && len(links) > 1; i++ {
		a := links[botIntn(len(links))]
		b := links[botIntn(len(links))]
		if a == b {
			continue
		}
		out = append(out, confirmed(brass.Simple(brass.EventNetwork), brass.SelectCard(card),
			brass.SelectLink(a.A, a.B), brass.Simple(brass.EventChooseDoubleLink),
			brass.SelectSecondLink(b.A, b.B)))
	}
	return out
}

func scoutScript(p *brass.Player) Script {
	var ids []string
	for _, c := range p.Hand {
		if c.IsWild() {
			return nil
		}
		ids = append(ids, c.ID)
	}
	if len(ids) < brass.ScoutDiscards {
		return nil
	}
	botShuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	s := Script{brass.Simple(brass.EventScout)}
	for _, id := range ids[:brass.ScoutDiscards] {
		s = append(s, brass.SelectCard(id))
	}
	return confirmed(s...)
}

func buildLocations(d *brass.GameData, c brass.Card) []string {
	if c.Kind == brass.LocationCard {
		return []string{c.Location}
	}
	var out []string
	for _, loc := range d.Locations {
		switch {
		case loc.Kind == brass.Town:
			out = append(out, loc.ID)
		case loc.Kind == brass.FarmBrewery && c.Kind != brass.WildLocationCard:
			out = append(out, loc.ID)
		}
	}
	return out
}

func buildIndustries(d *brass.GameData, c brass.Card, locID string) []brass.IndustryType {
	loc := d.Location(locID)
	if loc == nil {
		return nil
	}
	seen := make(map[brass.IndustryType]bool)
	var out []brass.IndustryType
	for _, slot := range loc.Slots {
		for _, t := range slot {
			if seen[t] || (c.Kind == brass.IndustryCard && !c.Names(t)) {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
