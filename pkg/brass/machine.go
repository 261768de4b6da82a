package brass

// StatePath is a flattened hierarchical state name.
type StatePath string

const (
	StateSetup           StatePath = "setup"
	StateSelectingAction StatePath = "playing.playerTurn.selectingAction"
	StateBuildCard       StatePath = "playing.playerTurn.building.selectingCard"
	StateBuildLocation   StatePath = "playing.playerTurn.building.selectingLocation"
	StateBuildIndustry   StatePath = "playing.playerTurn.building.selectingIndustryType"
	StateBuildConfirm    StatePath = "playing.playerTurn.building.confirming"
	StateDevelopCard     StatePath = "playing.playerTurn.developing.selectingCard"
	StateDevelopTiles    StatePath = "playing.playerTurn.developing.selectingTiles"
	StateDevelopConfirm  StatePath = "playing.playerTurn.developing.confirming"
	StateSellCard        StatePath = "playing.playerTurn.selling.selectingCard"
	StateSellTiles       StatePath = "playing.playerTurn.selling.selectingIndustries"
	StateLoanCard        StatePath = "playing.playerTurn.takingLoan.selectingCard"
	StateLoanConfirm     StatePath = "playing.playerTurn.takingLoan.confirming"
	StateScoutCards      StatePath = "playing.playerTurn.scouting.selectingCards"
	StateScoutConfirm    StatePath = "playing.playerTurn.scouting.confirming"
	StateNetworkCard     StatePath = "playing.playerTurn.networking.selectingCard"
	StateNetworkLink     StatePath = "playing.playerTurn.networking.selectingLink"
	StateNetworkSecond   StatePath = "playing.playerTurn.networking.selectingSecondLink"
	StateNetworkConfirm  StatePath = "playing.playerTurn.networking.confirming"
	StatePassCard        StatePath = "playing.playerTurn.passing.selectingCard"
	StatePassConfirm     StatePath = "playing.playerTurn.passing.confirming"
	StateActionComplete  StatePath = "playing.actionComplete"
	StateNextPlayer      StatePath = "playing.nextPlayer"
	StateGameOver        StatePath = "gameOver"
)

// machine is one in-flight transition: a working copy of the state that
// is committed only if the handler succeeds.
type machine struct {
	data *GameData
	gs   *GameState
	path StatePath
	logs []LogEntry
}

func (m *machine) logf(playerID, format string, args ...any) {
	m.logs = append(m.logs, newLogEntry(m.gs, playerID, format, args...))
}

type handler func(m *machine, ev Event) error

var transitions = map[StatePath]map[EventType]handler{
	StateSetup: {
		EventStartGame: (*machine).startGame,
	},
	StateSelectingAction: {
		EventBuild:           beginAction(StateBuildCard, nil),
		EventDevelop:         beginAction(StateDevelopCard, nil),
		EventSell:            beginAction(StateSellCard, (*machine).checkCanSell),
		EventTakeLoan:        beginAction(StateLoanCard, (*machine).checkLoan),
		EventScout:           beginAction(StateScoutCards, (*machine).checkScout),
		EventNetwork:         beginAction(StateNetworkCard, nil),
		EventPass:            beginAction(StatePassCard, nil),
		EventTriggerCanalEnd: (*machine).triggerCanalEnd,
		EventTriggerRailEnd:  (*machine).triggerRailEnd,
	},

	StateBuildCard: {
		EventSelectCard: selectCard(StateBuildLocation),
		EventCancel:     cancelAction,
	},
	StateBuildLocation: {
		EventSelectLocation: (*machine).selectBuildLocation,
		EventCancel:         back(StateBuildCard, func(s *Selection) { s.Card = "" }),
	},
	StateBuildIndustry: {
		EventSelectIndustryType: (*machine).selectBuildIndustry,
		EventSelectIndustryTile: (*machine).selectBuildIndustry,
		EventCancel:             back(StateBuildLocation, func(s *Selection) { s.Location = "" }),
	},
	StateBuildConfirm: {
		EventConfirm: confirm((*machine).resolveBuild),
		EventCancel:  back(StateBuildIndustry, func(s *Selection) { s.Industry, s.Tile = "", nil }),
	},

	StateDevelopCard: {
		EventSelectCard: selectCard(StateDevelopTiles),
		EventCancel:     cancelAction,
	},
	StateDevelopTiles: {
		EventSelectIndustryTile: (*machine).selectDevelopTile,
		EventSelectIndustryType: (*machine).selectDevelopTile,
		EventConfirm:            confirm((*machine).resolveDevelop),
		EventCancel:             (*machine).cancelDevelopTile,
	},
	StateDevelopConfirm: {
		EventConfirm: confirm((*machine).resolveDevelop),
		EventCancel:  (*machine).cancelDevelopTile,
	},

	StateSellCard: {
		EventSelectCard: selectCard(StateSellTiles),
		EventCancel:     cancelAction,
	},
	StateSellTiles: {
		EventSelectIndustryTile: (*machine).selectSaleTile,
		EventConfirm:            confirm((*machine).resolveSell),
		EventCancel:             (*machine).cancelSaleTile,
	},

	StateLoanCard: {
		EventSelectCard: selectCard(StateLoanConfirm),
		EventCancel:     cancelAction,
	},
	StateLoanConfirm: {
		EventConfirm: confirm((*machine).resolveLoan),
		EventCancel:  back(StateLoanCard, func(s *Selection) { s.Card = "" }),
	},

	StateScoutCards: {
		EventSelectCard: (*machine).selectScoutCard,
		EventCancel:     (*machine).cancelScoutCard,
	},
	StateScoutConfirm: {
		EventConfirm: confirm((*machine).resolveScout),
		EventCancel:  (*machine).cancelScoutCard,
	},

	StateNetworkCard: {
		EventSelectCard: selectCard(StateNetworkLink),
		EventCancel:     cancelAction,
	},
	StateNetworkLink: {
		EventSelectLink: (*machine).selectLink,
		EventCancel:     back(StateNetworkCard, func(s *Selection) { s.Card = "" }),
	},
	StateNetworkConfirm: {
		EventConfirm:          confirm((*machine).resolveNetwork),
		EventChooseDoubleLink: (*machine).chooseDoubleLink,
		EventCancel:           (*machine).cancelNetworkConfirm,
	},
	StateNetworkSecond: {
		EventSelectSecondLink: (*machine).selectSecondLink,
		EventCancel:           back(StateNetworkConfirm, func(s *Selection) { s.DoubleLink, s.SecondLink = false, nil }),
	},

	StatePassCard: {
		EventSelectCard: selectCard(StatePassConfirm),
		EventCancel:     cancelAction,
	},
	StatePassConfirm: {
		EventConfirm: confirm((*machine).resolvePass),
		EventCancel:  back(StatePassCard, func(s *Selection) { s.Card = "" }),
	},
}

// knownState reports whether p names a state a snapshot may rest in.
func knownState(p StatePath) bool {
	if p == StateGameOver {
		return true
	}
	_, ok := transitions[p]
	return ok
}

func beginAction(next StatePath, guard func(*machine, EventType) error) handler {
	return func(m *machine, ev Event) error {
		if len(m.gs.Current().Hand) == 0 {
			return reject(ev.Type, "no cards in hand")
		}
		if guard != nil {
			if err := guard(m, ev.Type); err != nil {
				return err
			}
		}
		m.gs.clearSelection()
		m.path = next
		return nil
	}
}

func selectCard(next StatePath) handler {
	return func(m *machine, ev Event) error {
		if handIndex(m.gs.Current().Hand, ev.CardID) < 0 {
			return reject(ev.Type, "card %q is not in hand", ev.CardID)
		}
		m.gs.Selection.Card = ev.CardID
		m.path = next
		return nil
	}
}

func cancelAction(m *machine, _ Event) error {
	m.gs.clearSelection()
	m.path = StateSelectingAction
	return nil
}

func back(to StatePath, reset func(*Selection)) handler {
	return func(m *machine, _ Event) error {
		reset(&m.gs.Selection)
		m.path = to
		return nil
	}
}

// confirm wraps an action resolver: on success the action is spent and
// the machine moves to the transient action-complete state.
func confirm(resolve func(*machine, EventType) error) handler {
	return func(m *machine, ev Event) error {
		if err := resolve(m, ev.Type); err != nil {
			return err
		}
		m.gs.ActionsRemaining--
		m.gs.clearSelection()
		m.path = StateActionComplete
		return nil
	}
}

// settle runs transient states until the machine rests in one that
// waits for input.
func (m *machine) settle() {
	for {
		switch m.path {
		case StateActionComplete:
			p := m.gs.Current()
			m.gs.refillHand(p)
			if m.gs.ActionsRemaining > 0 && len(p.Hand) > 0 {
				m.path = StateSelectingAction
			} else {
				m.path = StateNextPlayer
			}
		case StateNextPlayer:
			m.nextPlayer()
		default:
			if m.gs.IsGameOver() {
				m.path = StateGameOver
			}
			return
		}
	}
}

// nextPlayer passes the turn on, closing the round when the last player
// in turn order has acted. Players without cards are skipped.
func (m *machine) nextPlayer() {
	gs := m.gs
	gs.clearSelection()
	for {
		idx := gs.CurrentPlayer + 1
		if idx >= len(gs.Players) {
			m.endRound()
			if gs.IsGameOver() {
				m.path = StateGameOver
				return
			}
			idx = 0
		}
		gs.CurrentPlayer = idx
		gs.ActionsRemaining = gs.actionsPerTurn()
		p := gs.Current()
		gs.refillHand(p)
		if len(p.Hand) > 0 {
			m.path = StateSelectingAction
			return
		}
	}
}

func (m *machine) startGame(ev Event) error {
	n := len(ev.Players)
	if n < MinPlayers || n > MaxPlayers {
		return reject(ev.Type, "need %d to %d players, got %d", MinPlayers, MaxPlayers, n)
	}
	seen := make(map[string]bool, n)
	for _, ps := range ev.Players {
		if ps.ID == "" || seen[ps.ID] {
			return reject(ev.Type, "player ids must be unique and non-empty")
		}
		seen[ps.ID] = true
	}

	gs := m.gs
	if ev.Seed != 0 {
		gs.Seed = ev.Seed
	}
	gs.Era = Canal
	gs.Round = 1
	gs.CurrentPlayer = 0
	gs.CoalMarket = NewCoalMarket()
	gs.IronMarket = NewIronMarket()
	gs.Industries, gs.Links = nil, nil

	gs.Players = make([]Player, n)
	for i, ps := range ev.Players {
		gs.Players[i] = Player{
			ID:        ps.ID,
			Name:      ps.Name,
			Color:     ps.Color,
			Character: ps.Character,
			Money:     StartingMoney,
			Income:    StartingIncome,
			Mat:       m.data.initialMat(),
		}
	}

	deck := m.data.deck(n)
	gs.shuffle(deck)
	gs.DrawPile = deck
	gs.DiscardPile = nil
	gs.WildLocationPile = m.data.wildPile(WildLocationCard)
	gs.WildIndustryPile = m.data.wildPile(WildIndustryCard)

	gs.Merchants = nil
	for i, mt := range m.data.Merchants {
		if mt.MinPlayers > n {
			continue
		}
		gs.Merchants = append(gs.Merchants, Merchant{
			ID:       i + 1,
			Location: mt.Location,
			Accepts:  append([]IndustryType(nil), mt.Accepts...),
			Bonus:    mt.Bonus,
			Beer:     1,
		})
	}

	for i := range gs.Players {
		gs.refillHand(&gs.Players[i])
	}
	// One card per player goes face down to the discard pile, so the canal
	// era runs out of cards on its last round.
	cut := max(len(gs.DrawPile)-n, 0)
	gs.DiscardPile = append(gs.DiscardPile, gs.DrawPile[cut:]...)
	gs.DrawPile = gs.DrawPile[:cut]
	gs.ActionsRemaining = gs.actionsPerTurn()
	m.logf("", "game started with %d players", n)
	m.path = StateSelectingAction
	return nil
}

func (m *machine) triggerCanalEnd(ev Event) error {
	if m.gs.Era != Canal {
		return reject(ev.Type, "not in the canal era")
	}
	m.gs.clearSelection()
	m.endCanalEra()
	m.path = StateSelectingAction
	return nil
}

func (m *machine) triggerRailEnd(ev Event) error {
	if m.gs.Era != Rail {
		return reject(ev.Type, "not in the rail era")
	}
	m.gs.clearSelection()
	m.endRailEra()
	m.path = StateGameOver
	return nil
}

func (m *machine) checkCanSell(ev EventType) error {
	for _, ind := range m.gs.IndustriesOf(m.gs.Current().ID) {
		if ind.Type.Sellable() && !ind.Flipped {
			return nil
		}
	}
	return reject(ev, "nothing to sell")
}

func (ev Event) industry() IndustryType {
	if ev.Tile != nil && ev.Tile.Industry != "" {
		return ev.Tile.Industry
	}
	return ev.Industry
}

func (m *machine) selectBuildLocation(ev Event) error {
	gs := m.gs
	p := gs.Current()
	loc := m.data.Location(ev.CityID)
	if loc == nil {
		return reject(ev.Type, "unknown location %q", ev.CityID)
	}
	card := p.Hand[handIndex(p.Hand, gs.Selection.Card)]
	if err := m.checkCardLocation(ev.Type, p, card, loc); err != nil {
		return err
	}
	gs.Selection.Location = loc.ID
	m.path = StateBuildIndustry
	return nil
}

func (m *machine) selectBuildIndustry(ev Event) error {
	gs := m.gs
	t := ev.industry()
	plan, err := m.planBuild(ev.Type, gs.Selection.Card, gs.Selection.Location, t)
	if err != nil {
		return err
	}
	gs.Selection.Industry = t
	gs.Selection.Tile = &TileRef{Industry: t, Level: plan.tile.Level, Location: gs.Selection.Location}
	m.path = StateBuildConfirm
	return nil
}

// MaxDevelop is the number of tiles one develop action may remove.
const MaxDevelop = 2

func (m *machine) selectDevelopTile(ev Event) error {
	sel := &m.gs.Selection
	t := ev.industry()
	if err := m.checkDevelop(ev.Type, t, sel.Develop); err != nil {
		return err
	}
	sel.Develop = append(sel.Develop, t)
	if len(sel.Develop) == MaxDevelop {
		m.path = StateDevelopConfirm
	} else {
		m.path = StateDevelopTiles
	}
	return nil
}

func (m *machine) cancelDevelopTile(_ Event) error {
	sel := &m.gs.Selection
	if len(sel.Develop) == 0 {
		sel.Card = ""
		m.path = StateDevelopCard
		return nil
	}
	sel.Develop = sel.Develop[:len(sel.Develop)-1]
	m.path = StateDevelopTiles
	return nil
}

func (m *machine) selectSaleTile(ev Event) error {
	ref := TileRef{Industry: ev.industry(), Location: ev.CityID}
	if ev.Tile != nil {
		ref.Level = ev.Tile.Level
		if ev.Tile.Location != "" {
			ref.Location = ev.Tile.Location
		}
	}
	ind, err := m.checkSale(ev.Type, ref, m.gs.Selection.Sales)
	if err != nil {
		return err
	}
	m.gs.Selection.Sales = append(m.gs.Selection.Sales, ind.ID)
	return nil
}

func (m *machine) cancelSaleTile(_ Event) error {
	sel := &m.gs.Selection
	if len(sel.Sales) == 0 {
		sel.Card = ""
		m.path = StateSellCard
		return nil
	}
	sel.Sales = sel.Sales[:len(sel.Sales)-1]
	return nil
}

func (m *machine) selectScoutCard(ev Event) error {
	sel := &m.gs.Selection
	if handIndex(m.gs.Current().Hand, ev.CardID) < 0 {
		return reject(ev.Type, "card %q is not in hand", ev.CardID)
	}
	for _, id := range sel.ScoutCards {
		if id == ev.CardID {
			return reject(ev.Type, "card %q already selected", ev.CardID)
		}
	}
	sel.ScoutCards = append(sel.ScoutCards, ev.CardID)
	if len(sel.ScoutCards) == ScoutDiscards {
		m.path = StateScoutConfirm
	}
	return nil
}

func (m *machine) cancelScoutCard(_ Event) error {
	sel := &m.gs.Selection
	if len(sel.ScoutCards) == 0 {
		m.path = StateSelectingAction
		return nil
	}
	sel.ScoutCards = sel.ScoutCards[:len(sel.ScoutCards)-1]
	m.path = StateScoutCards
	return nil
}

func (m *machine) selectLink(ev Event) error {
	if err := m.checkLink(ev.Type, ev.From, ev.To, nil); err != nil {
		return err
	}
	m.gs.Selection.Link = &LinkRef{From: ev.From, To: ev.To}
	m.path = StateNetworkConfirm
	return nil
}

func (m *machine) chooseDoubleLink(ev Event) error {
	if m.gs.Era != Rail {
		return reject(ev.Type, "double links are only built in the rail era")
	}
	if m.gs.Selection.DoubleLink {
		return reject(ev.Type, "double link already chosen")
	}
	m.gs.Selection.DoubleLink = true
	m.path = StateNetworkSecond
	return nil
}

func (m *machine) selectSecondLink(ev Event) error {
	sel := &m.gs.Selection
	if err := m.checkLink(ev.Type, ev.From, ev.To, sel.Link); err != nil {
		return err
	}
	sel.SecondLink = &LinkRef{From: ev.From, To: ev.To}
	m.path = StateNetworkConfirm
	return nil
}

func (m *machine) cancelNetworkConfirm(_ Event) error {
	sel := &m.gs.Selection
	if sel.SecondLink != nil {
		sel.SecondLink = nil
		m.path = StateNetworkSecond
		return nil
	}
	sel.Link = nil
	m.path = StateNetworkLink
	return nil
}
