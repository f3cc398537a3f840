// Package pathfind implements weighted A* search over a warehouse.Graph,
// the route planner every AGV movement and replanning call goes through.
package pathfind

import (
	"container/heap"

	"github.com/dshills/agvsim/pkg/warehouse"
)

// highwayCost and asideCost are the per-edge weights FindPath applies when
// a tile lookup is supplied: entering a highway tile costs 1, entering any
// other tile costs 10. The bias keeps routine AGV traffic on the
// structured one-way loop, where local reservation-based collision
// avoidance actually works, and uses the slower off-highway tiles only as
// start/end spurs.
const (
	highwayCost = 1
	asideCost   = 10
)

// node is one entry of the open set. counter breaks ties between equal f
// scores in FIFO (insertion) order, matching a stable priority queue.
type node struct {
	pos     warehouse.Position
	g       int
	f       int
	counter int64
	index   int
}

type openHeap []*node

func (h openHeap) Len() int { return len(h) }

func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].counter < h[j].counter
}

func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// FindPath runs weighted A* from start to goal over g, using the Manhattan
// distance as the admissible heuristic. blocked excludes positions from
// expansion, except the goal itself, which is always reachable even if it
// appears in blocked (§9 design note: A* never excludes the goal). tiles
// is optional: when nil, every edge costs 1 instead of the highway/aside
// split.
//
// FindPath returns the sequence of positions from start to goal inclusive,
// and true, on success. It returns (nil, false) when start or goal is not
// a node of g, or when the open set empties before the goal is reached.
func FindPath(g *warehouse.Graph, tiles *warehouse.TileMap, start, goal warehouse.Position, blocked map[warehouse.Position]bool) ([]warehouse.Position, bool) {
	if !g.HasNode(start) || !g.HasNode(goal) {
		return nil, false
	}
	if start == goal {
		return []warehouse.Position{start}, true
	}

	open := &openHeap{}
	heap.Init(open)

	var counter int64
	push := func(pos warehouse.Position, gScore int) {
		heap.Push(open, &node{
			pos:     pos,
			g:       gScore,
			f:       gScore + pos.ManhattanDistance(goal),
			counter: counter,
		})
		counter++
	}

	cameFrom := make(map[warehouse.Position]warehouse.Position)
	bestG := map[warehouse.Position]int{start: 0}
	push(start, 0)

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		pos := cur.pos

		if g, ok := bestG[pos]; ok && cur.g > g {
			continue // stale entry superseded by a cheaper path already popped
		}

		if pos == goal {
			return reconstruct(cameFrom, start, goal), true
		}

		for _, next := range g.Neighbors(pos) {
			if next != goal && blocked != nil && blocked[next] {
				continue
			}

			cost := 1
			if tiles != nil {
				if next == goal {
					cost = highwayCost
				} else if tiles.At(next).Kind.IsHighway() {
					cost = highwayCost
				} else {
					cost = asideCost
				}
			}

			candidate := cur.g + cost
			if existing, ok := bestG[next]; ok && candidate >= existing {
				continue
			}
			bestG[next] = candidate
			cameFrom[next] = pos
			push(next, candidate)
		}
	}

	return nil, false
}

func reconstruct(cameFrom map[warehouse.Position]warehouse.Position, start, goal warehouse.Position) []warehouse.Position {
	path := []warehouse.Position{goal}
	cur := goal
	for cur != start {
		prev := cameFrom[cur]
		path = append(path, prev)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathCost computes the total g-score of path under the same weighting
// rule FindPath uses, for callers (tests, metrics) that need to verify a
// path's cost independent of the search that produced it.
func PathCost(tiles *warehouse.TileMap, path []warehouse.Position) int {
	if len(path) < 2 {
		return 0
	}
	total := 0
	for i := 1; i < len(path); i++ {
		switch {
		case tiles == nil:
			total++
		case i == len(path)-1:
			total += highwayCost // goal is always entered at cost 1
		case tiles.At(path[i]).Kind.IsHighway():
			total += highwayCost
		default:
			total += asideCost
		}
	}
	return total
}
