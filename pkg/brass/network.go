package brass

import "sort"

// network is the adjacency index over built links. It is rebuilt when
// the state's topology counter moves past the version it was built for.
type network struct {
	version int
	adj     map[string][]string
	dist    map[string]map[string]int
}

func (gs *GameState) graph() *network {
	if gs.net != nil && gs.net.version == gs.topology {
		return gs.net
	}
	n := &network{
		version: gs.topology,
		adj:     make(map[string][]string),
		dist:    make(map[string]map[string]int),
	}
	for _, l := range gs.Links {
		n.adj[l.From] = append(n.adj[l.From], l.To)
		n.adj[l.To] = append(n.adj[l.To], l.From)
	}
	for _, nb := range n.adj {
		sort.Strings(nb)
	}
	gs.net = n
	return n
}

// distances runs (or recalls) a breadth-first search from src.
func (n *network) distances(src string) map[string]int {
	if d, ok := n.dist[src]; ok {
		return d
	}
	d := map[string]int{src: 0}
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range n.adj[cur] {
			if _, seen := d[nb]; !seen {
				d[nb] = d[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	n.dist[src] = d
	return d
}

// Distance returns the number of links between two locations through
// any player's links, or -1 if they are not connected.
func (gs *GameState) Distance(from, to string) int {
	if d, ok := gs.graph().distances(from)[to]; ok {
		return d
	}
	return -1
}

// Connected reports whether two locations are joined by built links.
func (gs *GameState) Connected(a, b string) bool {
	return gs.Distance(a, b) >= 0
}

// distanceFromAny returns the shortest distance from any source, or -1.
func (gs *GameState) distanceFromAny(sources []string, to string) int {
	best := -1
	for _, s := range sources {
		if d := gs.Distance(s, to); d >= 0 && (best < 0 || d < best) {
			best = d
		}
	}
	return best
}

// ConnectedToMarket reports whether loc reaches a merchant location with
// market access that has at least one merchant in play.
func (gs *GameState) ConnectedToMarket(d *GameData, loc string) bool {
	for _, m := range gs.Merchants {
		ml := d.Location(m.Location)
		if ml != nil && ml.MarketAccess && gs.Connected(loc, m.Location) {
			return true
		}
	}
	return false
}

// anyConnectedToMarket is ConnectedToMarket over several locations.
func (gs *GameState) anyConnectedToMarket(d *GameData, locs []string) bool {
	for _, l := range locs {
		if gs.ConnectedToMarket(d, l) {
			return true
		}
	}
	return false
}

// InNetwork reports whether loc is part of a player's network: the player
// has an industry there or owns a link touching it.
func (gs *GameState) InNetwork(playerID, loc string) bool {
	for _, ind := range gs.Industries {
		if ind.Owner == playerID && ind.Location == loc {
			return true
		}
	}
	for _, l := range gs.Links {
		if l.Owner == playerID && l.Touches(loc) {
			return true
		}
	}
	return false
}

// NetworkLocations returns every location in a player's network.
func (gs *GameState) NetworkLocations(playerID string) []string {
	seen := make(map[string]bool)
	for _, ind := range gs.Industries {
		if ind.Owner == playerID {
			seen[ind.Location] = true
		}
	}
	for _, l := range gs.Links {
		if l.Owner == playerID {
			seen[l.From] = true
			seen[l.To] = true
		}
	}
	out := make([]string, 0, len(seen))
	for loc := range seen {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// hasPresence reports whether the player has built anything at all.
func (gs *GameState) hasPresence(playerID string) bool {
	for _, ind := range gs.Industries {
		if ind.Owner == playerID {
			return true
		}
	}
	for _, l := range gs.Links {
		if l.Owner == playerID {
			return true
		}
	}
	return false
}
