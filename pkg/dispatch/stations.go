package dispatch

import (
	"sort"
	"strconv"

	"github.com/dshills/agvsim/pkg/entity"
	"github.com/dshills/agvsim/pkg/metrics"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// reservedTiles returns the reservation set (§4.4 step 1, glossary
// "Reservation set"): every stationary cart's tile, plus every pending
// and active job's target. This is what findTile and stationFill both
// subtract from a station's tile group, so a job is never assigned a
// target another job or cart already occupies.
func (d *Dispatcher) reservedTiles(carts []*entity.Cart) map[warehouse.Position]bool {
	reserved := make(map[warehouse.Position]bool, len(carts)+len(d.pending)+len(d.active))
	for _, c := range carts {
		if c.Stationary() {
			reserved[c.Pos] = true
		}
	}
	for _, j := range d.pending {
		reserved[j.Target] = true
	}
	for _, j := range d.active {
		reserved[j.Target] = true
	}
	return reserved
}

// stationFill recomputes current/capacity/rate for every station from the
// reservation set (§4.4 step 1).
func (d *Dispatcher) stationFill(carts []*entity.Cart) metrics.StationFill {
	reserved := d.reservedTiles(carts)
	fill := make(metrics.StationFill, len(d.capacities))
	for sid, capacity := range d.capacities {
		current := 0
		for _, p := range d.tiles.StationPositions(sid) {
			if reserved[p] {
				current++
			}
		}
		rate := 0.0
		if capacity > 0 {
			rate = float64(current) / float64(capacity)
		}
		fill[sid] = metrics.Fill{Current: current, Capacity: capacity, Rate: rate}
	}
	return fill
}

// GetStationFill exposes the current station fill map (§6 query surface,
// §8 invariant 13).
func (d *Dispatcher) GetStationFill(carts []*entity.Cart) metrics.StationFill {
	return d.stationFill(carts)
}

func tier(rate float64) int {
	switch {
	case rate <= 0.5:
		return 1
	case rate <= 0.75:
		return 2
	default:
		return 3
	}
}

// pickBestStation ranks remaining station numbers by (tier, Manhattan
// distance) ascending and returns the top-ranked one, excluding any
// already at capacity (§4.6). It returns (0, false) if every candidate is
// saturated.
func (d *Dispatcher) pickBestStation(remaining []int, from warehouse.Position, carts []*entity.Cart) (int, bool) {
	fill := d.stationFill(carts)
	type candidate struct {
		station int
		tier    int
		dist    int
	}
	var candidates []candidate
	for _, n := range remaining {
		sid := stationID(n)
		f, ok := fill[sid]
		if !ok || (f.Capacity > 0 && f.Current >= f.Capacity) {
			continue
		}
		dist := nearestStationDistance(d.tiles, sid, from)
		candidates = append(candidates, candidate{station: n, tier: tier(f.Rate), dist: dist})
	}
	if len(candidates) == 0 {
		return 0, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].tier != candidates[j].tier {
			return candidates[i].tier < candidates[j].tier
		}
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].station < candidates[j].station
	})
	return candidates[0].station, true
}

func nearestStationDistance(tiles *warehouse.TileMap, sid string, from warehouse.Position) int {
	best := -1
	for _, p := range tiles.StationPositions(sid) {
		dist := from.ManhattanDistance(p)
		if best == -1 || dist < best {
			best = dist
		}
	}
	return best
}

// findTile returns the lowest-indexed free (unreserved) tile belonging to
// sid, or (Position{}, false) if every tile in the group is reserved
// (§4.7 "station/target full").
func findTile(tiles *warehouse.TileMap, sid string, reserved map[warehouse.Position]bool) (warehouse.Position, bool) {
	for _, p := range tiles.StationPositions(sid) {
		if !reserved[p] {
			return p, true
		}
	}
	return warehouse.Position{}, false
}

// findBufferSpot returns the nearest free unaffiliated parking tile to
// from — a Parking tile with no StationID, i.e. not part of any named
// station group.
func findBufferSpot(tiles *warehouse.TileMap, from warehouse.Position, reserved map[warehouse.Position]bool) (warehouse.Position, bool) {
	return nearestUnreserved(tiles, from, reserved, unaffiliatedParking)
}

// findParkOrSpawnTile returns the nearest free unaffiliated parking or
// AGV-spawn tile to from, used to park idle AGVs and to nudge blockers.
func findParkOrSpawnTile(tiles *warehouse.TileMap, from warehouse.Position, occupied map[warehouse.Position]bool) (warehouse.Position, bool) {
	return nearestUnreserved(tiles, from, occupied, func(t warehouse.Tile) bool {
		return unaffiliatedParking(t) || t.Kind == warehouse.AGVSpawn
	})
}

func unaffiliatedParking(t warehouse.Tile) bool {
	return t.Kind == warehouse.Parking && t.StationID == ""
}

func nearestUnreserved(tiles *warehouse.TileMap, from warehouse.Position, reserved map[warehouse.Position]bool, match func(warehouse.Tile) bool) (warehouse.Position, bool) {
	best := warehouse.Position{}
	bestDist := -1
	for y := 0; y < tiles.Height; y++ {
		for x := 0; x < tiles.Width; x++ {
			p := warehouse.Position{X: x, Y: y}
			if reserved[p] {
				continue
			}
			if !match(tiles.At(p)) {
				continue
			}
			dist := from.ManhattanDistance(p)
			if bestDist == -1 || dist < bestDist {
				bestDist = dist
				best = p
			}
		}
	}
	return best, bestDist != -1
}

func stationID(n int) string {
	return "S" + strconv.Itoa(n)
}
