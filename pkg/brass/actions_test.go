package brass

import (
	"errors"
	"testing"
)

// Helper to run a build up to (but not including) CONFIRM.
func startBuild(t *testing.T, e *Engine, card, loc string, ind IndustryType) {
	t.Helper()
	mustSend(t, e, Simple(EventBuild), SelectCard(card), SelectLocation(loc), SelectIndustryType(ind))
}

func industryAt(gs *GameState, loc string, t IndustryType) *Industry {
	for _, ind := range gs.IndustriesAt(loc) {
		if ind.Type == t {
			return ind
		}
	}
	return nil
}

// --- Build ---

func TestBuildCottonMill(t *testing.T) {
	e := newGame(t)
	setHand(e, locCard("birmingham"))
	startBuild(t, e, "test-birmingham", "birmingham", CottonMill)
	if e.Path() != StateBuildConfirm {
		t.Fatalf("expected %s, got %s", StateBuildConfirm, e.Path())
	}
	mustSend(t, e, Simple(EventConfirm))

	gs := e.State()
	p1 := gs.Player("p1")
	if p1.Money != 5 || p1.SpentMoney != 12 {
		t.Errorf("expected £5 left with £12 spent, got £%d / £%d", p1.Money, p1.SpentMoney)
	}
	ind := industryAt(gs, "birmingham", CottonMill)
	if ind == nil || ind.Owner != "p1" || ind.Level != 1 || ind.Slot != 0 || ind.Flipped {
		t.Fatalf("unexpected industry %+v", ind)
	}
	if got := len(p1.Mat[CottonMill]); got != 10 {
		t.Errorf("expected 10 cotton tiles left, got %d", got)
	}
	if e.CurrentPlayer() != "p2" {
		t.Errorf("expected p2 to act next, got %s", e.CurrentPlayer())
	}
}

func TestBuildPrefersSingleTypeSlot(t *testing.T) {
	e := newGame(t)
	setHand(e, locCard("birmingham"))
	e.state.addLink(Link{From: "birmingham", To: "oxford", Type: Canal, Owner: "p2"})
	startBuild(t, e, "test-birmingham", "birmingham", Manufacturer)
	mustSend(t, e, Simple(EventConfirm))

	gs := e.State()
	ind := industryAt(gs, "birmingham", Manufacturer)
	if ind == nil || ind.Slot != 1 {
		t.Fatalf("expected manufacturer in slot 1, got %+v", ind)
	}
	// £8 tile plus one £1 coal from the market.
	if got := gs.Player("p1").Money; got != 8 {
		t.Errorf("expected £8 left, got £%d", got)
	}
	if gs.CoalMarket.Tiers[0].Cubes != 0 {
		t.Errorf("expected £1 coal tier emptied, got %d", gs.CoalMarket.Tiers[0].Cubes)
	}
}

func TestBuildFailsWithoutCoalSourceAndIsAtomic(t *testing.T) {
	e := newGame(t)
	setHand(e, locCard("birmingham"))
	startBuild(t, e, "test-birmingham", "birmingham", Manufacturer)
	err := e.Send(Simple(EventConfirm))
	if !errors.Is(err, ErrRuleViolation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if e.Path() != StateBuildConfirm {
		t.Errorf("expected to remain in %s, got %s", StateBuildConfirm, e.Path())
	}
	p1 := e.state.Player("p1")
	if p1.Money != StartingMoney || len(p1.Hand) != 1 || p1.NextTile(Manufacturer) != 1 {
		t.Errorf("state mutated by failed build: £%d, %d cards", p1.Money, len(p1.Hand))
	}
	if len(e.state.Industries) != 0 {
		t.Errorf("expected no industries, got %d", len(e.state.Industries))
	}
}

func TestBuildConsumesNearestCoal(t *testing.T) {
	e := newGame(t)
	gs := e.state
	gs.addLink(Link{From: "birmingham", To: "dudley", Type: Canal, Owner: "p2"})
	gs.addLink(Link{From: "dudley", To: "wolverhampton", Type: Canal, Owner: "p2"})
	far := gs.addIndustry(Industry{Owner: "p2", Location: "wolverhampton", Slot: 1, Type: CoalMine, Level: 1, Coal: 2}).ID
	near := gs.addIndustry(Industry{Owner: "p2", Location: "dudley", Slot: 0, Type: CoalMine, Level: 1, Coal: 2}).ID

	setHand(e, locCard("birmingham"))
	startBuild(t, e, "test-birmingham", "birmingham", Manufacturer)
	mustSend(t, e, Simple(EventConfirm))

	if got := e.state.Industry(near).Coal; got != 1 {
		t.Errorf("expected nearest mine to give 1 coal, has %d", got)
	}
	if got := e.state.Industry(far).Coal; got != 2 {
		t.Errorf("expected far mine untouched, has %d", got)
	}
	if got := e.state.Player("p1").Money; got != 9 {
		t.Errorf("expected £9 left, got £%d", got)
	}
}

func TestCoalTieBreaksOnLowestIDAndFlips(t *testing.T) {
	e := newGame(t)
	gs := e.state
	gs.addLink(Link{From: "birmingham", To: "dudley", Type: Canal, Owner: "p2"})
	gs.addLink(Link{From: "birmingham", To: "tamworth", Type: Canal, Owner: "p2"})
	first := gs.addIndustry(Industry{Owner: "p2", Location: "dudley", Slot: 0, Type: CoalMine, Level: 1, Coal: 1}).ID
	second := gs.addIndustry(Industry{Owner: "p2", Location: "tamworth", Slot: 0, Type: CoalMine, Level: 1, Coal: 1}).ID

	setHand(e, locCard("birmingham"))
	startBuild(t, e, "test-birmingham", "birmingham", Manufacturer)
	mustSend(t, e, Simple(EventConfirm))

	a, b := e.state.Industry(first), e.state.Industry(second)
	if a.Coal != 0 || !a.Flipped {
		t.Errorf("expected lowest id mine emptied and flipped, got %+v", a)
	}
	if b.Coal != 1 || b.Flipped {
		t.Errorf("expected other mine untouched, got %+v", b)
	}
	if got := e.state.Player("p2").Income; got != StartingIncome+4 {
		t.Errorf("expected p2 income %d, got %d", StartingIncome+4, got)
	}
}

func TestBuildCoalMineSellsToMarket(t *testing.T) {
	e := newGame(t)
	e.state.addLink(Link{From: "coalbrookdale", To: "shrewsbury", Type: Canal, Owner: "p2"})
	e.state.CoalMarket.Tiers[0].Cubes = 0
	setHand(e, locCard("coalbrookdale"))
	startBuild(t, e, "test-coalbrookdale", "coalbrookdale", CoalMine)
	mustSend(t, e, Simple(EventConfirm))

	gs := e.State()
	mine := industryAt(gs, "coalbrookdale", CoalMine)
	if mine == nil || mine.Coal != 0 || !mine.Flipped {
		t.Fatalf("expected emptied flipped mine, got %+v", mine)
	}
	p1 := gs.Player("p1")
	// £5 tile, two cubes sold at £1.
	if p1.Money != 14 || p1.Income != StartingIncome+4 {
		t.Errorf("expected £14 income %d, got £%d income %d", StartingIncome+4, p1.Money, p1.Income)
	}
	if gs.CoalMarket.Tiers[0].Cubes != 2 {
		t.Errorf("expected £1 coal tier full, got %d", gs.CoalMarket.Tiers[0].Cubes)
	}
}

func TestBuildUnconnectedCoalMineKeepsCoal(t *testing.T) {
	e := newGame(t)
	setHand(e, locCard("dudley"))
	startBuild(t, e, "test-dudley", "dudley", CoalMine)
	mustSend(t, e, Simple(EventConfirm))
	mine := industryAt(e.state, "dudley", CoalMine)
	if mine == nil || mine.Coal != 2 || mine.Flipped {
		t.Errorf("expected mine with 2 coal, got %+v", mine)
	}
}

func TestBuildIronWorksAlwaysSellsToMarket(t *testing.T) {
	e := newGame(t)
	e.state.addLink(Link{From: "coalbrookdale", To: "shrewsbury", Type: Canal, Owner: "p2"})
	setHand(e, locCard("coalbrookdale"))
	startBuild(t, e, "test-coalbrookdale", "coalbrookdale", IronWorks)
	mustSend(t, e, Simple(EventConfirm))

	gs := e.State()
	works := industryAt(gs, "coalbrookdale", IronWorks)
	if works == nil || works.Iron != 2 || works.Flipped {
		t.Fatalf("expected works with 2 iron left, got %+v", works)
	}
	// £5 tile plus £1 coal, then two iron sold at £1.
	if got := gs.Player("p1").Money; got != 13 {
		t.Errorf("expected £13, got £%d", got)
	}
	if gs.IronMarket.Tiers[0].Cubes != 2 {
		t.Errorf("expected £1 iron tier full, got %d", gs.IronMarket.Tiers[0].Cubes)
	}
}

func TestBuildCanalEraOneIndustryPerLocation(t *testing.T) {
	e := newGame(t)
	e.state.addIndustry(Industry{Owner: "p1", Location: "cannock", Slot: 1, Type: CoalMine, Level: 1, Coal: 2})
	setHand(e, locCard("cannock"))
	mustSend(t, e, Simple(EventBuild), SelectCard("test-cannock"), SelectLocation("cannock"))
	if err := e.Send(SelectIndustryType(Manufacturer)); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected second canal industry refused, got %v", err)
	}
}

func TestBuildWrongLocationCard(t *testing.T) {
	e := newGame(t)
	setHand(e, locCard("dudley"))
	mustSend(t, e, Simple(EventBuild), SelectCard("test-dudley"))
	if err := e.Send(SelectLocation("birmingham")); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected location card mismatch refused, got %v", err)
	}
}

func TestBuildIndustryCardNeedsNetwork(t *testing.T) {
	e := newGame(t)
	card := Card{ID: "test-iron", Kind: IndustryCard, Industries: []IndustryType{IronWorks}}
	e.state.addIndustry(Industry{Owner: "p1", Location: "coventry", Slot: 0, Type: Pottery, Level: 1})
	setHand(e, card)
	mustSend(t, e, Simple(EventBuild), SelectCard("test-iron"))
	if err := e.Send(SelectLocation("dudley")); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected build outside network refused, got %v", err)
	}
}

func TestOverbuildOwnTile(t *testing.T) {
	e := newGame(t)
	p1 := e.state.Current()
	p1.popTile(CoalMine)
	old := e.state.addIndustry(Industry{Owner: "p1", Location: "dudley", Slot: 0, Type: CoalMine, Level: 1, Coal: 1}).ID
	setHand(e, locCard("dudley"))
	startBuild(t, e, "test-dudley", "dudley", CoalMine)
	mustSend(t, e, Simple(EventConfirm))

	at := e.state.IndustriesAt("dudley")
	if len(at) != 1 || at[0].ID == old || at[0].Level != 2 || at[0].Coal != 3 {
		t.Errorf("expected a single level 2 mine with 3 coal, got %+v", at)
	}
}

func TestOverbuildRivalNeedsExhaustedResource(t *testing.T) {
	e := newGame(t)
	e.state.Current().popTile(CoalMine)
	e.state.addIndustry(Industry{Owner: "p2", Location: "dudley", Slot: 0, Type: CoalMine, Level: 1, Flipped: true})
	setHand(e, locCard("dudley"))
	mustSend(t, e, Simple(EventBuild), SelectCard("test-dudley"), SelectLocation("dudley"))
	if err := e.Send(SelectIndustryType(CoalMine)); !errors.Is(err, ErrRuleViolation) {
		t.Fatalf("expected rival overbuild refused while coal remains, got %v", err)
	}

	for i := range e.state.CoalMarket.Tiers {
		if e.state.CoalMarket.Tiers[i].MaxCubes != Unbounded {
			e.state.CoalMarket.Tiers[i].Cubes = 0
		}
	}
	mustSend(t, e, SelectIndustryType(CoalMine))
}

func TestLevelOneTilesAreCanalOnly(t *testing.T) {
	e := newGame(t)
	e.state.Era = Rail
	setHand(e, locCard("birmingham"))
	mustSend(t, e, Simple(EventBuild), SelectCard("test-birmingham"), SelectLocation("birmingham"))
	if err := e.Send(SelectIndustryType(CottonMill)); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected level 1 cotton refused in rail era, got %v", err)
	}
}

// --- Develop ---

func TestDevelopTwoTiles(t *testing.T) {
	e := newGame(t)
	mustSend(t, e, Simple(EventDevelop), SelectCard(firstCard(e)),
		SelectTile(CoalMine, ""), SelectTile(CoalMine, ""))
	if e.Path() != StateDevelopConfirm {
		t.Fatalf("expected %s after two tiles, got %s", StateDevelopConfirm, e.Path())
	}
	mustSend(t, e, Simple(EventConfirm))
	p1 := e.state.Player("p1")
	if p1.NextTile(CoalMine) != 2 || len(p1.Mat[CoalMine]) != 5 {
		t.Errorf("expected coal mat starting at level 2 with 5 tiles, got %v", p1.Mat[CoalMine])
	}
	// Two iron from the £2 tier.
	if p1.Money != 13 {
		t.Errorf("expected £13, got £%d", p1.Money)
	}
}

func TestDevelopRefusesLightbulbTile(t *testing.T) {
	e := newGame(t)
	mustSend(t, e, Simple(EventDevelop), SelectCard(firstCard(e)))
	if err := e.Send(SelectTile(Pottery, "")); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected level 1 pottery develop refused, got %v", err)
	}
}

// --- Sell ---

func sellSetup(t *testing.T) (*Engine, int) {
	t.Helper()
	e := newGame(t)
	e.state.addLink(Link{From: "birmingham", To: "oxford", Type: Canal, Owner: "p1"})
	id := e.state.addIndustry(Industry{Owner: "p1", Location: "birmingham", Slot: 0, Type: CottonMill, Level: 1}).ID
	return e, id
}

func TestSellUsesMerchantBeerAndBonus(t *testing.T) {
	e, id := sellSetup(t)
	mustSend(t, e, Simple(EventSell), SelectCard(firstCard(e)), SelectTile(CottonMill, "birmingham"), Simple(EventConfirm))

	gs := e.State()
	if !gs.Industry(id).Flipped {
		t.Error("expected cotton mill flipped")
	}
	// +5 from the mill, +2 from the Oxford bonus.
	if got := gs.Player("p1").Income; got != StartingIncome+7 {
		t.Errorf("expected income %d, got %d", StartingIncome+7, got)
	}
	for _, m := range gs.Merchants {
		if m.Location == "oxford" && m.Buys(CottonMill) && m.Beer != 0 {
			t.Errorf("expected oxford barrel drunk, has %d", m.Beer)
		}
	}
}

func TestSellPrefersOwnBrewery(t *testing.T) {
	e, id := sellSetup(t)
	brewery := e.state.addIndustry(Industry{Owner: "p1", Location: "stone", Slot: 0, Type: Brewery, Level: 1, Beer: 1}).ID
	mustSend(t, e, Simple(EventSell), SelectCard(firstCard(e)), SelectTile(CottonMill, "birmingham"), Simple(EventConfirm))

	gs := e.State()
	if !gs.Industry(id).Flipped || !gs.Industry(brewery).Flipped {
		t.Error("expected mill and emptied brewery flipped")
	}
	if got := gs.Player("p1").Income; got != StartingIncome+5+4 {
		t.Errorf("expected income %d, got %d", StartingIncome+9, got)
	}
	for _, m := range gs.Merchants {
		if m.Beer != 1 {
			t.Errorf("merchant %d barrel should be untouched", m.ID)
		}
	}
}

func TestSellFailsWithoutBeer(t *testing.T) {
	e, _ := sellSetup(t)
	for i := range e.state.Merchants {
		e.state.Merchants[i].Beer = 0
	}
	mustSend(t, e, Simple(EventSell), SelectCard(firstCard(e)), SelectTile(CottonMill, "birmingham"))
	if err := e.Send(Simple(EventConfirm)); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected sale refused without beer, got %v", err)
	}
}

func TestSellNeedsConnectedMerchant(t *testing.T) {
	e := newGame(t)
	e.state.addIndustry(Industry{Owner: "p1", Location: "birmingham", Slot: 0, Type: CottonMill, Level: 1})
	mustSend(t, e, Simple(EventSell), SelectCard(firstCard(e)))
	if err := e.Send(SelectTile(CottonMill, "birmingham")); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected unconnected sale refused, got %v", err)
	}
}

// --- Scout ---

func TestScout(t *testing.T) {
	e := newGame(t)
	hand := e.state.Current().Hand
	mustSend(t, e, Simple(EventScout),
		SelectCard(hand[0].ID), SelectCard(hand[1].ID), SelectCard(hand[2].ID))
	if e.Path() != StateScoutConfirm {
		t.Fatalf("expected %s, got %s", StateScoutConfirm, e.Path())
	}
	mustSend(t, e, Simple(EventConfirm))

	gs := e.State()
	var wildLoc, wildInd int
	for _, c := range gs.Player("p1").Hand {
		switch c.Kind {
		case WildLocationCard:
			wildLoc++
		case WildIndustryCard:
			wildInd++
		}
	}
	if wildLoc != 1 || wildInd != 1 {
		t.Errorf("expected one wild of each kind, got %d and %d", wildLoc, wildInd)
	}
	if len(gs.DiscardPile) != setAside+3 || len(gs.WildLocationPile) != 3 {
		t.Errorf("expected 3 more discards and 3 wild locations left, got %d and %d", len(gs.DiscardPile), len(gs.WildLocationPile))
	}
}

func TestScoutRefusedWithWildInHand(t *testing.T) {
	e := newGame(t)
	setHand(e, Card{ID: "wild", Kind: WildLocationCard}, locCard("a"), locCard("b"))
	if err := e.Send(Simple(EventScout)); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected scout refused, got %v", err)
	}
}

// --- Network ---

func TestCanalLink(t *testing.T) {
	e := newGame(t)
	mustSend(t, e, Simple(EventNetwork), SelectCard(firstCard(e)), SelectLink("birmingham", "coventry"), Simple(EventConfirm))
	gs := e.State()
	if !gs.HasLink("coventry", "birmingham") {
		t.Fatal("expected link built")
	}
	if got := gs.Player("p1").Money; got != StartingMoney-CanalLinkCost {
		t.Errorf("expected £%d, got £%d", StartingMoney-CanalLinkCost, got)
	}
}

func TestLinkRules(t *testing.T) {
	e := newGame(t)
	mustSend(t, e, Simple(EventNetwork), SelectCard(firstCard(e)))
	if err := e.Send(SelectLink("birmingham", "nuneaton")); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected rail-only connection refused in canal era, got %v", err)
	}
	if err := e.Send(SelectLink("birmingham", "leek")); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected missing connection refused, got %v", err)
	}
	e.state.addIndustry(Industry{Owner: "p1", Location: "stone", Slot: 0, Type: Brewery, Level: 1, Beer: 1})
	if err := e.Send(SelectLink("birmingham", "coventry")); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected link away from network refused, got %v", err)
	}
}

func TestDoubleRailLink(t *testing.T) {
	e := newGame(t)
	gs := e.state
	gs.Era, gs.Round = Rail, 2
	gs.Current().Money = 30
	brewery := gs.addIndustry(Industry{Owner: "p1", Location: "walsall", Slot: 1, Type: Brewery, Level: 2, Beer: 1}).ID

	mustSend(t, e, Simple(EventNetwork), SelectCard(firstCard(e)), SelectLink("walsall", "birmingham"),
		Simple(EventChooseDoubleLink), SelectSecondLink("birmingham", "oxford"), Simple(EventConfirm))

	gs = e.State()
	if len(gs.LinksOf("p1")) != 2 {
		t.Fatalf("expected 2 links, got %v", gs.Links)
	}
	// £15 plus coal at £1 and £2.
	if got := gs.Player("p1").Money; got != 12 {
		t.Errorf("expected £12, got £%d", got)
	}
	if !gs.Industry(brewery).Flipped {
		t.Error("expected brewery emptied and flipped")
	}
}

func TestDoubleLinkOnlyInRailEra(t *testing.T) {
	e := newGame(t)
	mustSend(t, e, Simple(EventNetwork), SelectCard(firstCard(e)), SelectLink("birmingham", "coventry"))
	if err := e.Send(Simple(EventChooseDoubleLink)); !errors.Is(err, ErrRuleViolation) {
		t.Errorf("expected double link refused in canal era, got %v", err)
	}
}

// --- Pass ---

func TestPassDiscardsCard(t *testing.T) {
	e := newGame(t)
	card := firstCard(e)
	mustSend(t, e, Simple(EventPass), SelectCard(card), Simple(EventConfirm))
	gs := e.State()
	if n := len(gs.DiscardPile); n != setAside+1 || gs.DiscardPile[n-1].ID != card {
		t.Errorf("expected %s discarded", card)
	}
	if gs.Player("p1").Money != StartingMoney {
		t.Error("passing should not change money")
	}
}
