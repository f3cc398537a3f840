// Package dispatch implements the Dispatcher: the single-threaded
// per-tick orchestrator that creates jobs from cart state, assigns them
// to free AGVs, advances two-phase carry jobs, breaks deadlocks, and
// aggregates throughput and fill metrics (§4.4).
package dispatch

import (
	"github.com/dshills/agvsim/pkg/entity"
	"github.com/dshills/agvsim/pkg/metrics"
	"github.com/dshills/agvsim/pkg/rng"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// Config holds the reference timing constants (§6) the Dispatcher uses.
// DefaultConfig reproduces the reference values exactly; callers that
// need a different tempo (faster sweeps, stress tests) construct their
// own Config.
type Config struct {
	BlockTimeout            float64
	RerouteCooldown         float64
	JobCancelTimeout        float64
	MaxConcurrentDispatches int
	BoxDepotTime            float64
	PickTimePerItem         float64
	PackoffTime             float64
}

// DefaultConfig returns the reference timing constants from §6.
func DefaultConfig() Config {
	return Config{
		BlockTimeout:            3,
		RerouteCooldown:         2,
		JobCancelTimeout:        30,
		MaxConcurrentDispatches: 12,
		BoxDepotTime:            45,
		PickTimePerItem:         90,
		PackoffTime:             60,
	}
}

// Dispatcher is the central coordinator described in §4.4. It owns the
// job queues, generated orders, and completed-order statistics; AGVs and
// carts are handed in fresh by the caller each tick, not owned here.
type Dispatcher struct {
	tiles      *warehouse.TileMap
	graph      *warehouse.Graph
	capacities warehouse.StationCapacity
	ids        *entity.IDFactory
	orderRNG   *rng.RNG
	cfg        Config

	pending []*entity.Job
	active  []*entity.Job
	orders  map[entity.OrderID]*entity.Order

	completedOrders int
	cycleTimes      []float64
	cartStartTime   map[entity.CartID]float64
}

// NewDispatcher constructs a Dispatcher over a fixed tile map, graph, and
// station-capacity table. ids mints AGV/Cart/Order/Job identities for the
// same World this Dispatcher serves; orderRNG drives Order generation and
// must be a stage-isolated RNG the caller does not share elsewhere.
func NewDispatcher(tiles *warehouse.TileMap, g *warehouse.Graph, capacities warehouse.StationCapacity, ids *entity.IDFactory, orderRNG *rng.RNG, cfg Config) *Dispatcher {
	return &Dispatcher{
		tiles:         tiles,
		graph:         g,
		capacities:    capacities,
		ids:           ids,
		orderRNG:      orderRNG,
		cfg:           cfg,
		orders:        make(map[entity.OrderID]*entity.Order),
		cartStartTime: make(map[entity.CartID]float64),
	}
}

// Update runs the fixed per-tick sequence: cancel stuck jobs, create jobs
// from cart state, assign pending jobs to free AGVs, progress active
// jobs, unblock deadlocked AGVs, and park idle ones. now is the current
// sim-time, used to sample cycle times on order completion.
func (d *Dispatcher) Update(agvs []*entity.AGV, carts []*entity.Cart, now float64) {
	d.cancelStuckJobs(agvs)
	d.createJobs(carts, now)
	d.assignJobs(agvs, carts)
	d.progressJobs(agvs, carts, now)
	d.handleBlockedAGVs(agvs)
	d.parkIdleAGVs(agvs)
}

// PendingJobs returns the number of jobs awaiting assignment.
func (d *Dispatcher) PendingJobs() int { return len(d.pending) }

// ActiveJobs returns the number of jobs currently assigned to an AGV.
func (d *Dispatcher) ActiveJobs() int { return len(d.active) }

// CompletedOrders returns the running count of fully delivered orders.
func (d *Dispatcher) CompletedOrders() int { return d.completedOrders }

// CycleTimes returns every sampled order cycle time, in completion order.
func (d *Dispatcher) CycleTimes() []float64 { return d.cycleTimes }

// GetStationTilePositions returns every tile belonging to stationID.
func (d *Dispatcher) GetStationTilePositions(stationID string) []warehouse.Position {
	return d.tiles.StationPositions(stationID)
}

// GetThroughputStats returns completed-order count, average cycle time,
// and orders-per-hour given the elapsed sim time (§6 "throughput stats").
func (d *Dispatcher) GetThroughputStats(elapsed float64) metrics.Throughput {
	t := metrics.Throughput{CompletedOrders: d.completedOrders}
	if len(d.cycleTimes) > 0 {
		sum := 0.0
		for _, c := range d.cycleTimes {
			sum += c
		}
		t.AvgCycleTime = sum / float64(len(d.cycleTimes))
	}
	if elapsed > 0 {
		t.PerHour = float64(d.completedOrders) / (elapsed / 3600)
	}
	return t
}

// GetBottleneckAlerts reports the dispatcher's current bottleneck alerts
// (§6), derived from station fill and queue depths over pending+active
// jobs.
func (d *Dispatcher) GetBottleneckAlerts(carts []*entity.Cart) []string {
	fill := d.stationFill(carts)

	moveToPackoffCount := 0
	waitingByStation := make(map[string]int)
	spawnedCartCount := 0

	for _, j := range append(append([]*entity.Job{}, d.pending...), d.active...) {
		if j.Type == entity.JobMoveToPackoff {
			moveToPackoffCount++
		}
		if j.Type == entity.JobMoveToPick {
			waitingByStation[stationID(j.Station)]++
		}
	}
	for _, c := range carts {
		if c.State == entity.CartSpawned {
			spawnedCartCount++
		}
	}

	return metrics.ComputeAlerts(fill, moveToPackoffCount, waitingByStation, spawnedCartCount)
}

func findAGVAt(agvs []*entity.AGV, pos warehouse.Position) *entity.AGV {
	for _, a := range agvs {
		if a.Pos == pos {
			return a
		}
	}
	return nil
}
