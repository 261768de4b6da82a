package brass

func (m *machine) resolvePass(ev EventType) error {
	p := m.gs.Current()
	if !m.gs.spendCard(p, m.gs.Selection.Card) {
		return reject(ev, "card %s is not in hand", m.gs.Selection.Card)
	}
	m.logf(p.ID, "passed")
	return nil
}
