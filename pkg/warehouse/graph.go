package warehouse

import "fmt"

// Graph is the directed adjacency over grid positions. Edges follow the
// one-way highway loop rules between highway tiles, and are bidirectional
// between a highway tile and any adjacent pick_station/parking/spawn tile,
// and between two non-highway walkable tiles (§3 invariants a-c).
//
// The returned graph is immutable during simulation: AddEdge is only ever
// called by the layout builder before the World starts ticking.
type Graph struct {
	adjacency map[Position][]Position
}

// NewGraph returns an empty directed graph.
func NewGraph() *Graph {
	return &Graph{adjacency: make(map[Position][]Position)}
}

// AddEdge adds a directed edge from -> to. It is idempotent: adding the
// same edge twice does not create a duplicate neighbor entry.
func (g *Graph) AddEdge(from, to Position) {
	for _, n := range g.adjacency[from] {
		if n == to {
			return
		}
	}
	g.adjacency[from] = append(g.adjacency[from], to)
}

// AddBidirectionalEdge adds edges in both directions between a and b.
func (g *Graph) AddBidirectionalEdge(a, b Position) {
	g.AddEdge(a, b)
	g.AddEdge(b, a)
}

// Neighbors returns the positions reachable by one directed edge from p,
// in the order edges were added. Returns nil if p has no outgoing edges.
func (g *Graph) Neighbors(p Position) []Position {
	return g.adjacency[p]
}

// HasNode reports whether p appears in the graph, either as a source with
// outgoing edges or as the target of some edge.
func (g *Graph) HasNode(p Position) bool {
	if _, ok := g.adjacency[p]; ok {
		return true
	}
	for _, neighbors := range g.adjacency {
		for _, n := range neighbors {
			if n == p {
				return true
			}
		}
	}
	return false
}

// HasEdge reports whether a directed edge from -> to exists.
func (g *Graph) HasEdge(from, to Position) bool {
	for _, n := range g.adjacency[from] {
		if n == to {
			return true
		}
	}
	return false
}

// Validate checks the graph invariants that pathfind and dispatch depend
// on: every edge's endpoints must be walkable tiles in tiles, and highway
// <-> highway edges are the caller's responsibility to have built
// correctly (Validate cannot re-derive the one-way loop rule, only that
// edges land on walkable ground).
func (g *Graph) Validate(tiles *TileMap) error {
	for from, neighbors := range g.adjacency {
		if !tiles.At(from).Kind.Walkable() {
			return fmt.Errorf("warehouse: graph node %s is not a walkable tile", from)
		}
		for _, to := range neighbors {
			if !tiles.At(to).Kind.Walkable() {
				return fmt.Errorf("warehouse: edge %s->%s targets a non-walkable tile", from, to)
			}
		}
	}
	return nil
}
