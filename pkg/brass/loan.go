package brass

func (m *machine) checkLoan(ev EventType) error {
	if p := m.gs.Current(); p.Income <= MinIncome {
		return reject(ev, "income is already at %d", MinIncome)
	}
	return nil
}

func (m *machine) resolveLoan(ev EventType) error {
	if err := m.checkLoan(ev); err != nil {
		return err
	}
	p := m.gs.Current()
	p.Money += LoanAmount
	p.addIncome(-LoanPenalty)
	m.logf(p.ID, "took a £%d loan, income now %d", LoanAmount, p.Income)
	m.gs.spendCard(p, m.gs.Selection.Card)
	return nil
}
