package dispatch_test

import (
	"crypto/sha256"
	"testing"

	"github.com/dshills/agvsim/pkg/dispatch"
	"github.com/dshills/agvsim/pkg/entity"
	"github.com/dshills/agvsim/pkg/rng"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// smallWarehouse builds a minimal fully-connected layout exercising two
// pick stations, a Box_Depot dock, a Pack_off dock, and unaffiliated
// buffer parking, arranged along one highway row (y=1):
//
//	y=0: buf@(2,0)  S1@(0,0) S1@(1,0)  S2@(3,0) S2@(4,0) buf@(5,0)  BD@(6,0) BD@(7,0)   buffer@(9,0)
//	y=1: highway x=0..9
//	y=2: PO@(6,2) PO@(7,2)
func smallWarehouse(t *testing.T) (*warehouse.TileMap, *warehouse.Graph, warehouse.StationCapacity) {
	t.Helper()
	tiles := warehouse.NewTileMap(10, 3)
	for x := 0; x < 10; x++ {
		mustSet(t, tiles, warehouse.Position{X: x, Y: 1}, warehouse.Tile{Kind: warehouse.Highway})
	}
	mustSet(t, tiles, warehouse.Position{X: 0, Y: 0}, warehouse.Tile{Kind: warehouse.PickStation, StationID: "S1"})
	mustSet(t, tiles, warehouse.Position{X: 1, Y: 0}, warehouse.Tile{Kind: warehouse.PickStation, StationID: "S1"})
	mustSet(t, tiles, warehouse.Position{X: 2, Y: 0}, warehouse.Tile{Kind: warehouse.Parking})
	mustSet(t, tiles, warehouse.Position{X: 3, Y: 0}, warehouse.Tile{Kind: warehouse.PickStation, StationID: "S2"})
	mustSet(t, tiles, warehouse.Position{X: 4, Y: 0}, warehouse.Tile{Kind: warehouse.PickStation, StationID: "S2"})
	mustSet(t, tiles, warehouse.Position{X: 5, Y: 0}, warehouse.Tile{Kind: warehouse.Parking})
	mustSet(t, tiles, warehouse.Position{X: 6, Y: 0}, warehouse.Tile{Kind: warehouse.Parking, StationID: "Box_Depot"})
	mustSet(t, tiles, warehouse.Position{X: 7, Y: 0}, warehouse.Tile{Kind: warehouse.Parking, StationID: "Box_Depot"})
	mustSet(t, tiles, warehouse.Position{X: 9, Y: 0}, warehouse.Tile{Kind: warehouse.Parking})
	mustSet(t, tiles, warehouse.Position{X: 6, Y: 2}, warehouse.Tile{Kind: warehouse.Parking, StationID: "Pack_off"})
	mustSet(t, tiles, warehouse.Position{X: 7, Y: 2}, warehouse.Tile{Kind: warehouse.Parking, StationID: "Pack_off"})

	g := warehouse.NewGraph()
	for x := 0; x < 10; x++ {
		for y := 0; y < 3; y++ {
			p := warehouse.Position{X: x, Y: y}
			if tiles.At(p).Kind == warehouse.Empty {
				continue
			}
			for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				n := p.Add(off[0], off[1])
				if tiles.InBounds(n) && tiles.At(n).Kind != warehouse.Empty {
					g.AddEdge(p, n)
				}
			}
		}
	}

	capacities := warehouse.StationCapacity{
		"S1":        2,
		"S2":        2,
		"Box_Depot": 2,
		"Pack_off":  2,
	}
	return tiles, g, capacities
}

func mustSet(t *testing.T, tiles *warehouse.TileMap, p warehouse.Position, tile warehouse.Tile) {
	t.Helper()
	if err := tiles.Set(p, tile); err != nil {
		t.Fatalf("Set(%s): %v", p, err)
	}
}

func newOrderRNG(t *testing.T) *rng.RNG {
	t.Helper()
	hash := sha256.Sum256([]byte("dispatch-test"))
	return rng.NewRNG(1, "order_generation", hash[:])
}

// TestStationFill_EmptyWarehouse covers invariant 13: with no carts,
// every station reports current=0, rate=0, and its table capacity.
func TestStationFill_EmptyWarehouse(t *testing.T) {
	tiles, g, capacities := smallWarehouse(t)
	ids := entity.NewIDFactory()
	d := dispatch.NewDispatcher(tiles, g, capacities, ids, newOrderRNG(t), dispatch.DefaultConfig())

	fill := d.GetStationFill(nil)
	for sid, capacity := range capacities {
		f, ok := fill[sid]
		if !ok {
			t.Fatalf("missing station %s in fill map", sid)
		}
		if f.Current != 0 || f.Rate != 0 || f.Capacity != capacity {
			t.Errorf("station %s: got %+v, want current=0 rate=0 capacity=%d", sid, f, capacity)
		}
	}
}

// TestAssignJobs_NearestFreeAGVWins covers invariant 15: of two free
// AGVs, the one with smaller Manhattan distance to the cart is assigned.
func TestAssignJobs_NearestFreeAGVWins(t *testing.T) {
	tiles, g, capacities := smallWarehouse(t)
	ids := entity.NewIDFactory()
	d := dispatch.NewDispatcher(tiles, g, capacities, ids, newOrderRNG(t), dispatch.DefaultConfig())

	near := entity.NewAGV(ids.NextAGV(), warehouse.Position{X: 8, Y: 1})
	far := entity.NewAGV(ids.NextAGV(), warehouse.Position{X: 2, Y: 1})
	agvs := []*entity.AGV{far, near}

	cart := entity.NewCart(ids.NextCart(), warehouse.Position{X: 9, Y: 0})
	cart.State = entity.CartSpawned
	carts := []*entity.Cart{cart}

	d.Update(agvs, carts, 0)

	if near.CurrentJob == entity.NoJob {
		t.Fatalf("expected nearer AGV to be assigned a job, got idle")
	}
	if far.CurrentJob != entity.NoJob {
		t.Fatalf("expected farther AGV to remain jobless, got job %v", far.CurrentJob)
	}
}

// TestAssignJobs_RespectsMaxConcurrentDispatches covers invariant 16: once
// active jobs reach the cap, no further assignment occurs.
func TestAssignJobs_RespectsMaxConcurrentDispatches(t *testing.T) {
	tiles, g, capacities := smallWarehouse(t)
	ids := entity.NewIDFactory()
	cfg := dispatch.DefaultConfig()
	cfg.MaxConcurrentDispatches = 1
	d := dispatch.NewDispatcher(tiles, g, capacities, ids, newOrderRNG(t), cfg)

	agv1 := entity.NewAGV(ids.NextAGV(), warehouse.Position{X: 8, Y: 1})
	agv2 := entity.NewAGV(ids.NextAGV(), warehouse.Position{X: 9, Y: 1})
	agvs := []*entity.AGV{agv1, agv2}

	cartA := entity.NewCart(ids.NextCart(), warehouse.Position{X: 2, Y: 0})
	cartA.State = entity.CartSpawned
	cartB := entity.NewCart(ids.NextCart(), warehouse.Position{X: 5, Y: 0})
	cartB.State = entity.CartSpawned
	carts := []*entity.Cart{cartA, cartB}

	d.Update(agvs, carts, 0)

	assigned := 0
	for _, a := range agvs {
		if a.CurrentJob != entity.NoJob {
			assigned++
		}
	}
	if assigned != 1 {
		t.Fatalf("expected exactly 1 assignment under cap of 1, got %d", assigned)
	}
	if d.PendingJobs() != 1 {
		t.Fatalf("expected 1 job left pending, got %d", d.PendingJobs())
	}
}
