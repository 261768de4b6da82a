package brass

// EventType names an input to the state machine.
type EventType string

const (
	EventStartGame          EventType = "START_GAME"
	EventBuild              EventType = "BUILD"
	EventDevelop            EventType = "DEVELOP"
	EventSell               EventType = "SELL"
	EventTakeLoan           EventType = "TAKE_LOAN"
	EventScout              EventType = "SCOUT"
	EventNetwork            EventType = "NETWORK"
	EventPass               EventType = "PASS"
	EventSelectCard         EventType = "SELECT_CARD"
	EventSelectLocation     EventType = "SELECT_LOCATION"
	EventSelectIndustryType EventType = "SELECT_INDUSTRY_TYPE"
	EventSelectIndustryTile EventType = "SELECT_INDUSTRY_TILE"
	EventSelectLink         EventType = "SELECT_LINK"
	EventChooseDoubleLink   EventType = "CHOOSE_DOUBLE_LINK_BUILD"
	EventSelectSecondLink   EventType = "SELECT_SECOND_LINK"
	EventConfirm            EventType = "CONFIRM"
	EventCancel             EventType = "CANCEL"
	EventTriggerCanalEnd    EventType = "TRIGGER_CANAL_ERA_END"
	EventTriggerRailEnd     EventType = "TRIGGER_RAIL_ERA_END"
)

// PlayerSetup seats one player at START_GAME.
type PlayerSetup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Character string `json:"character,omitempty"`
}

// TileRef picks an industry tile, optionally a placed one by location.
type TileRef struct {
	Industry IndustryType `json:"industry"`
	Level    int          `json:"level,omitempty"`
	Location string       `json:"location,omitempty"`
}

// Event is a single input. Only the fields relevant to Type are read.
type Event struct {
	Type     EventType     `json:"type"`
	Players  []PlayerSetup `json:"players,omitempty"`
	Seed     int64         `json:"seed,omitempty"`
	CardID   string        `json:"cardId,omitempty"`
	CityID   string        `json:"cityId,omitempty"`
	Industry IndustryType  `json:"industryType,omitempty"`
	Tile     *TileRef      `json:"tile,omitempty"`
	From     string        `json:"from,omitempty"`
	To       string        `json:"to,omitempty"`
}

// Simple returns an event that carries no payload.
func Simple(t EventType) Event { return Event{Type: t} }

// StartGame seats the given players.
func StartGame(players ...PlayerSetup) Event {
	return Event{Type: EventStartGame, Players: players}
}

// SelectCard picks a card from the current player's hand.
func SelectCard(id string) Event { return Event{Type: EventSelectCard, CardID: id} }

// SelectLocation picks a build location.
func SelectLocation(id string) Event { return Event{Type: EventSelectLocation, CityID: id} }

// SelectIndustryType picks the industry to build.
func SelectIndustryType(t IndustryType) Event {
	return Event{Type: EventSelectIndustryType, Industry: t}
}

// SelectTile picks a mat tile to develop, or a placed tile to sell when loc is set.
func SelectTile(t IndustryType, loc string) Event {
	return Event{Type: EventSelectIndustryTile, Tile: &TileRef{Industry: t, Location: loc}}
}

// SelectLink picks the first link of a network action.
func SelectLink(from, to string) Event {
	return Event{Type: EventSelectLink, From: from, To: to}
}

// SelectSecondLink picks the second link of a double rail build.
func SelectSecondLink(from, to string) Event {
	return Event{Type: EventSelectSecondLink, From: from, To: to}
}
