package sim

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dshills/agvsim/pkg/metrics"
	"github.com/dshills/agvsim/pkg/rng"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// ErrPlacementInfeasible is returned by RunHeadless when the requested
// fleet size exceeds the number of available spawn/parking tiles (§7
// "Placement infeasibility" — a configuration error, not a bug).
var ErrPlacementInfeasible = errors.New("sim: requested entity count exceeds available tiles")

// RunHeadless builds a fresh World over the reference layout, pre-places
// cfg.NumAGVs AGVs and cfg.NumCarts carts on shuffled distinct tiles,
// and ticks it at cfg.TickDT until cfg.SimDuration sim-seconds have
// elapsed, returning the headless metric bundle (§6).
func RunHeadless(cfg Config) (*metrics.Bundle, error) {
	bundle, _, err := RunHeadlessDetailed(cfg)
	return bundle, err
}

// RunHeadlessDetailed is RunHeadless plus the final World snapshot, for
// callers (the agvsim CLI's export path) that need entity positions
// alongside the metric bundle rather than just the bundle.
func RunHeadlessDetailed(cfg Config) (*metrics.Bundle, *Snapshot, error) {
	tiles, g, err := warehouse.ReferenceLayout()
	if err != nil {
		return nil, nil, fmt.Errorf("building reference layout: %w", err)
	}
	capacities := warehouse.StationCapacities()
	for sid, capacity := range cfg.StationCapacities {
		capacities[sid] = capacity
	}
	return runHeadlessOn(tiles, g, capacities, cfg)
}

func runHeadlessOn(tiles *warehouse.TileMap, g *warehouse.Graph, capacities warehouse.StationCapacity, cfg Config) (*metrics.Bundle, *Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	w := NewWorld(tiles, g, capacities, cfg.Seed, cfg.Timing.toDispatchConfig())
	placementRNG := rng.NewRNG(cfg.Seed, "placement", seedHash(cfg.Seed))

	spawnTiles := shuffledPositions(tiles, placementRNG, warehouse.AGVSpawn)
	if len(spawnTiles) < cfg.NumAGVs {
		return nil, nil, fmt.Errorf("%w: %d AGVs requested, %d spawn tiles available", ErrPlacementInfeasible, cfg.NumAGVs, len(spawnTiles))
	}
	for i := 0; i < cfg.NumAGVs; i++ {
		if _, err := w.SpawnAGV(spawnTiles[i]); err != nil {
			return nil, nil, fmt.Errorf("pre-placing AGV %d: %w", i, err)
		}
	}

	cartTiles := shuffledPositions(tiles, placementRNG, warehouse.Parking, warehouse.PickStation)
	if len(cartTiles) < cfg.NumCarts {
		return nil, nil, fmt.Errorf("%w: %d carts requested, %d parking/pick_station tiles available", ErrPlacementInfeasible, cfg.NumCarts, len(cartTiles))
	}
	for i := 0; i < cfg.NumCarts; i++ {
		w.SpawnCart(cartTiles[i])
	}

	start := time.Now()
	totalTicks := 0
	for w.Now < cfg.SimDuration {
		w.Step(cfg.TickDT, false)
		totalTicks++
		if cfg.Verbose && totalTicks%1000 == 0 {
			log.Printf("sim: t=%.1f completed=%d pending=%d active=%d", w.Now, w.CompletedOrders(), w.PendingJobs(), w.ActiveJobs())
		}
	}
	wallClock := time.Since(start).Seconds()

	throughput := w.Throughput()
	bundle := &metrics.Bundle{
		NumAGVs:            cfg.NumAGVs,
		NumCarts:           cfg.NumCarts,
		CompletedOrders:    throughput.CompletedOrders,
		OrdersPerHour:      throughput.PerHour,
		AvgCycleTime:       throughput.AvgCycleTime,
		CycleTimes:         w.dispatcher.CycleTimes(),
		AGVUtilization:     w.AGVUtilization(),
		AGVBlockedFraction: w.AGVBlockedFraction(),
		StationFill:        w.StationFill(),
		SimDuration:        w.Now,
		WallClockSeconds:   wallClock,
		TotalTicks:         totalTicks,
	}
	return bundle, w.Snapshot(), nil
}

// shuffledPositions returns every tile position of the given kinds, in a
// deterministic shuffle driven by r, so pre-placement spreads entities
// across the layout reproducibly rather than always filling row-major
// order starting tile (0,0).
func shuffledPositions(tiles *warehouse.TileMap, r *rng.RNG, kinds ...warehouse.TileKind) []warehouse.Position {
	positions := tiles.Positions(kinds...)
	r.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	return positions
}

// RunHeadlessSweep runs each cfg in cfgs as an independent World on its
// own goroutine. Every worker owns an unshared World and its own seeded
// RNGs, so the only synchronization needed is the final join (§5:
// "headless sweeps may run independent simulations on separate
// workers; each simulation is self-contained").
func RunHeadlessSweep(cfgs []Config) ([]*metrics.Bundle, error) {
	results := make([]*metrics.Bundle, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(i int, cfg Config) {
			defer wg.Done()
			bundle, err := RunHeadless(cfg)
			results[i] = bundle
			errs[i] = err
		}(i, cfg)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep run %d: %w", i, err)
		}
	}
	return results, nil
}
