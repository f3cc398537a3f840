// Package sim owns the World: the mutable simulation state (AGVs, carts,
// the dispatcher, and the static layout they run on) and the fixed-
// timestep tick loop that advances it. It is the construct/spawn/step/
// query surface named in §6's Engine API.
package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/dshills/agvsim/pkg/dispatch"
	"github.com/dshills/agvsim/pkg/entity"
	"github.com/dshills/agvsim/pkg/metrics"
	"github.com/dshills/agvsim/pkg/rng"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// World is one self-contained simulation: a fixed tile map and graph, a
// live roster of AGVs and carts, and the Dispatcher orchestrating them.
// A World is never shared across goroutines; RunHeadlessSweep gives each
// worker its own.
type World struct {
	Tiles      *warehouse.TileMap
	Graph      *warehouse.Graph
	Capacities warehouse.StationCapacity

	ids        *entity.IDFactory
	dispatcher *dispatch.Dispatcher

	AGVs  []*entity.AGV
	Carts []*entity.Cart

	Now float64

	idleTicks    int
	blockedTicks int
	totalTicks   int
}

// NewWorld constructs an empty World over tiles/g/capacities. seed drives
// the dispatcher's order-generation RNG (stage "order_generation"), per the
// "inject a seeded generator, never a process-global one" design note.
func NewWorld(tiles *warehouse.TileMap, g *warehouse.Graph, capacities warehouse.StationCapacity, seed uint64, timing dispatch.Config) *World {
	ids := entity.NewIDFactory()
	orderRNG := rng.NewRNG(seed, "order_generation", seedHash(seed))
	return &World{
		Tiles:      tiles,
		Graph:      g,
		Capacities: capacities,
		ids:        ids,
		dispatcher: dispatch.NewDispatcher(tiles, g, capacities, ids, orderRNG, timing),
	}
}

func seedHash(seed uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	h := sha256.Sum256(buf[:])
	return h[:]
}

// SpawnAGV places a new AGV at pos. Spawning on a tile already occupied
// by another AGV is refused (§4.7 "spawn conflict").
func (w *World) SpawnAGV(pos warehouse.Position) (*entity.AGV, error) {
	for _, a := range w.AGVs {
		if a.Pos == pos {
			return nil, fmt.Errorf("sim: cannot spawn AGV on occupied tile %s", pos)
		}
	}
	a := entity.NewAGV(w.ids.NextAGV(), pos)
	w.AGVs = append(w.AGVs, a)
	return a, nil
}

// SpawnCart places a new, stationary cart at pos.
func (w *World) SpawnCart(pos warehouse.Position) *entity.Cart {
	c := entity.NewCart(w.ids.NextCart(), pos)
	w.Carts = append(w.Carts, c)
	return c
}

// DespawnAGV removes the AGV with id, if present.
func (w *World) DespawnAGV(id entity.AgvID) {
	for i, a := range w.AGVs {
		if a.ID == id {
			w.AGVs = append(w.AGVs[:i], w.AGVs[i+1:]...)
			return
		}
	}
}

// DespawnCart removes the cart with id, if present.
func (w *World) DespawnCart(id entity.CartID) {
	for i, c := range w.Carts {
		if c.ID == id {
			w.Carts = append(w.Carts[:i], w.Carts[i+1:]...)
			return
		}
	}
}

// Step advances the world by dt: every AGV updates in list order
// (collision detection observes already-moved AGVs within the same
// tick, §5), then every cart's process timer, then the Dispatcher sees
// the post-movement world. paused=true advances zero sim-time and is a
// no-op, matching §6's Engine API.
func (w *World) Step(dt float64, paused bool) {
	if paused {
		return
	}
	for _, a := range w.AGVs {
		a.Update(dt, w.AGVs, w.Carts, w.Graph, w.Tiles)
		w.totalTicks++
		if a.State == entity.AGVIdle {
			w.idleTicks++
		}
		if a.IsBlocked {
			w.blockedTicks++
		}
	}
	for _, c := range w.Carts {
		c.Tick(dt)
	}
	w.Now += dt
	w.dispatcher.Update(w.AGVs, w.Carts, w.Now)
}

// PendingJobs returns the dispatcher's pending-job count.
func (w *World) PendingJobs() int { return w.dispatcher.PendingJobs() }

// ActiveJobs returns the dispatcher's active-job count.
func (w *World) ActiveJobs() int { return w.dispatcher.ActiveJobs() }

// CompletedOrders returns the dispatcher's completed-order count.
func (w *World) CompletedOrders() int { return w.dispatcher.CompletedOrders() }

// CycleTimes returns every order cycle time the dispatcher has sampled
// so far, in completion order.
func (w *World) CycleTimes() []float64 { return w.dispatcher.CycleTimes() }

// StationFill returns the current per-station fill map.
func (w *World) StationFill() metrics.StationFill { return w.dispatcher.GetStationFill(w.Carts) }

// BottleneckAlerts returns the dispatcher's current bottleneck alerts.
func (w *World) BottleneckAlerts() []string { return w.dispatcher.GetBottleneckAlerts(w.Carts) }

// Throughput returns completed-order count, average cycle time, and
// orders-per-hour given the world's elapsed sim time.
func (w *World) Throughput() metrics.Throughput { return w.dispatcher.GetThroughputStats(w.Now) }

// AGVUtilization returns 1 − idle_ticks/total_ticks pooled across every
// AGV-tick this World has advanced (§6).
func (w *World) AGVUtilization() float64 {
	if w.totalTicks == 0 {
		return 0
	}
	return 1 - float64(w.idleTicks)/float64(w.totalTicks)
}

// AGVBlockedFraction returns blocked_ticks/total_ticks pooled across
// every AGV-tick this World has advanced (§6).
func (w *World) AGVBlockedFraction() float64 {
	if w.totalTicks == 0 {
		return 0
	}
	return float64(w.blockedTicks) / float64(w.totalTicks)
}

// Snapshot captures the World's current entity listing and dispatcher
// counters for export (§4.9).
func (w *World) Snapshot() *Snapshot {
	agvs := make([]entity.AGV, len(w.AGVs))
	for i, a := range w.AGVs {
		agvs[i] = *a
	}
	carts := make([]entity.Cart, len(w.Carts))
	for i, c := range w.Carts {
		carts[i] = *c
	}
	return &Snapshot{
		Now:             w.Now,
		AGVs:            agvs,
		Carts:           carts,
		PendingJobs:     w.PendingJobs(),
		ActiveJobs:      w.ActiveJobs(),
		CompletedOrders: w.CompletedOrders(),
		StationFill:     w.StationFill(),
		Alerts:          w.BottleneckAlerts(),
	}
}

// Snapshot is an immutable point-in-time copy of a World's observable
// state, the shape pkg/export renders to JSON/SVG/TMJ.
type Snapshot struct {
	Now             float64
	AGVs            []entity.AGV
	Carts           []entity.Cart
	PendingJobs     int
	ActiveJobs      int
	CompletedOrders int
	StationFill     metrics.StationFill
	Alerts          []string
}
