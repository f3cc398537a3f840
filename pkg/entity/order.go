package entity

import (
	"sort"

	"github.com/dshills/agvsim/pkg/rng"
)

// Order is the multiset of picks a Cart carries through the pick
// stations once it reaches Box Depot. Picks holds one station number
// (1-9) per item; a station can appear more than once if the order needs
// several items from it.
type Order struct {
	ID                OrderID
	Picks             []int
	StationsToVisit   []int
	CompletedStations map[int]bool
}

// NewOrder draws a random order: between 1 and 9 picks, each assigned to
// a station number 1-9, deduplicated into StationsToVisit in ascending
// order. r must be a stage-isolated RNG (pkg/rng), never a shared one.
func NewOrder(id OrderID, r *rng.RNG) *Order {
	n := r.IntRange(1, 9)
	picks := make([]int, n)
	seen := make(map[int]bool)
	for i := range picks {
		station := r.IntRange(1, 9)
		picks[i] = station
		seen[station] = true
	}
	stations := make([]int, 0, len(seen))
	for s := range seen {
		stations = append(stations, s)
	}
	sort.Ints(stations)

	return &Order{
		ID:                id,
		Picks:             picks,
		StationsToVisit:   stations,
		CompletedStations: make(map[int]bool),
	}
}

// ItemsAtStation returns the number of picks assigned to station n.
func (o *Order) ItemsAtStation(n int) int {
	count := 0
	for _, s := range o.Picks {
		if s == n {
			count++
		}
	}
	return count
}

// AllPicked reports whether every station in StationsToVisit has been
// completed.
func (o *Order) AllPicked() bool {
	for _, s := range o.StationsToVisit {
		if !o.CompletedStations[s] {
			return false
		}
	}
	return true
}

// RemainingStations returns the stations not yet completed, in ascending
// order, the candidate list pick_best_station ranks over.
func (o *Order) RemainingStations() []int {
	var out []int
	for _, s := range o.StationsToVisit {
		if !o.CompletedStations[s] {
			out = append(out, s)
		}
	}
	return out
}

// CompleteStation marks station n completed. It is a no-op if n was
// already completed or is not one of the order's stations — an order
// never revisits a completed station (§4.7).
func (o *Order) CompleteStation(n int) {
	for _, s := range o.StationsToVisit {
		if s == n {
			o.CompletedStations[n] = true
			return
		}
	}
}
