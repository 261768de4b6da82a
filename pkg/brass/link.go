package brass

// Link costs.
const (
	CanalLinkCost      = 3
	RailLinkCost       = 5
	DoubleRailLinkCost = 15
)

// checkLink validates building a link of the current era between from
// and to. first is the already chosen link of a double build, or nil.
func (m *machine) checkLink(ev EventType, from, to string, first *LinkRef) error {
	gs := m.gs
	conn := m.data.Connection(from, to)
	if conn == nil {
		return reject(ev, "no connection between %s and %s", from, to)
	}
	if !conn.Allows(gs.Era) {
		return reject(ev, "%s link not allowed between %s and %s", gs.Era, from, to)
	}
	if gs.HasLink(from, to) {
		return reject(ev, "link between %s and %s already built", from, to)
	}
	p := gs.Current()
	adjacent := gs.InNetwork(p.ID, from) || gs.InNetwork(p.ID, to)
	if first != nil {
		if (first.From == from && first.To == to) || (first.From == to && first.To == from) {
			return reject(ev, "second link must differ from the first")
		}
		adjacent = adjacent || first.From == from || first.From == to || first.To == from || first.To == to
	}
	if !adjacent && (gs.hasPresence(p.ID) || first != nil) {
		return reject(ev, "link %s-%s does not touch your network", from, to)
	}
	return nil
}

func (m *machine) resolveNetwork(ev EventType) error {
	gs := m.gs
	p := gs.Current()
	sel := gs.Selection
	if sel.Link == nil {
		return reject(ev, "no link selected")
	}
	if err := m.checkLink(ev, sel.Link.From, sel.Link.To, nil); err != nil {
		return err
	}
	links := []LinkRef{*sel.Link}
	if sel.DoubleLink {
		if gs.Era != Rail || sel.SecondLink == nil {
			return reject(ev, "double link needs a second rail link")
		}
		if err := m.checkLink(ev, sel.SecondLink.From, sel.SecondLink.To, sel.Link); err != nil {
			return err
		}
		links = append(links, *sel.SecondLink)
	}

	for _, l := range links {
		gs.addLink(Link{From: l.From, To: l.To, Type: gs.Era, Owner: p.ID})
	}

	total := CanalLinkCost
	if gs.Era == Rail {
		total = RailLinkCost
		if len(links) == 2 {
			total = DoubleRailLinkCost
		}
		var ends []string
		for _, l := range links {
			cost, err := m.consumeCoal(ev, []string{l.From, l.To}, 1)
			if err != nil {
				return err
			}
			total += cost
			ends = append(ends, l.From, l.To)
		}
		if len(links) == 2 {
			if _, err := m.consumeBeer(ev, p.ID, ends, 1, nil); err != nil {
				return err
			}
		}
	}
	if total > p.Money {
		return reject(ev, "costs £%d, have £%d", total, p.Money)
	}
	p.pay(total)
	for _, l := range links {
		m.logf(p.ID, "built %s link %s-%s", gs.Era, l.From, l.To)
	}
	gs.spendCard(p, sel.Card)
	return nil
}
