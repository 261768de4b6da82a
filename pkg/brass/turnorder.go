package brass

import "sort"

// sortTurnOrder reorders players by money spent this round, least first.
// Ties keep their previous relative order. Spending is then reset.
func (gs *GameState) sortTurnOrder() {
	sort.SliceStable(gs.Players, func(i, j int) bool {
		return gs.Players[i].SpentMoney < gs.Players[j].SpentMoney
	})
	for i := range gs.Players {
		gs.Players[i].SpentMoney = 0
	}
	gs.CurrentPlayer = 0
}

// TurnOrder returns player ids in the current turn order.
func (gs *GameState) TurnOrder() []string {
	ids := make([]string, len(gs.Players))
	for i, p := range gs.Players {
		ids[i] = p.ID
	}
	return ids
}
