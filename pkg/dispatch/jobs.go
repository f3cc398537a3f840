package dispatch

import (
	"github.com/dshills/agvsim/pkg/entity"
	"github.com/dshills/agvsim/pkg/warehouse"
)

func hasJob(jobs []*entity.Job, cart entity.CartID) bool {
	for _, j := range jobs {
		if j.Cart == cart {
			return true
		}
	}
	return false
}

func (d *Dispatcher) enqueue(jobType entity.JobType, cart *entity.Cart, target warehouse.Position, station int, now float64) {
	j := entity.NewJob(d.ids.NextJob(), jobType, cart.ID, target, now)
	j.Station = station
	d.pending = append(d.pending, j)
}

// createJobs implements §4.4 step 3: for each cart with no pending or
// active job, inspect its state and create the next job in its pipeline.
func (d *Dispatcher) createJobs(carts []*entity.Cart, now float64) {
	reserved := d.reservedTiles(carts)
	for _, c := range carts {
		if hasJob(d.pending, c.ID) || hasJob(d.active, c.ID) {
			continue
		}
		switch c.State {
		case entity.CartSpawned:
			if target, ok := findTile(d.tiles, "Box_Depot", reserved); ok {
				d.cartStartTime[c.ID] = now
				d.enqueue(entity.JobPickupToBoxDepot, c, target, 0, now)
			}

		case entity.CartAtBoxDepot:
			if c.ProcessTimer > 0 {
				continue
			}
			order := d.orders[c.Order]
			if order == nil {
				order = entity.NewOrder(d.ids.NextOrder(), d.orderRNG)
				d.orders[order.ID] = order
				c.Order = order.ID
			}
			if n, ok := d.pickBestStation(order.RemainingStations(), c.Pos, carts); ok {
				if target, ok := findTile(d.tiles, stationID(n), reserved); ok {
					d.enqueue(entity.JobMoveToPick, c, target, n, now)
				}
			}

		case entity.CartPicking:
			if c.ProcessTimer > 0 {
				continue
			}
			order := d.orders[c.Order]
			if order == nil {
				continue
			}
			if remaining := order.RemainingStations(); len(remaining) > 0 {
				if n, ok := d.pickBestStation(remaining, c.Pos, carts); ok {
					if target, ok := findTile(d.tiles, stationID(n), reserved); ok {
						d.enqueue(entity.JobMoveToPick, c, target, n, now)
						continue
					}
				}
				if target, ok := findBufferSpot(d.tiles, c.Pos, reserved); ok {
					d.enqueue(entity.JobMoveToBuffer, c, target, 0, now)
				}
				continue
			}
			if target, ok := findTile(d.tiles, "Pack_off", reserved); ok {
				d.enqueue(entity.JobMoveToPackoff, c, target, 0, now)
			} else if target, ok := findBufferSpot(d.tiles, c.Pos, reserved); ok {
				d.enqueue(entity.JobMoveToBuffer, c, target, 0, now)
			}

		case entity.CartAtPackoff:
			if c.ProcessTimer > 0 {
				continue
			}
			if target, ok := findTile(d.tiles, "Box_Depot", reserved); ok {
				d.enqueue(entity.JobReturnToBoxDepot, c, target, 0, now)
			}

		case entity.CartWaitingForStation:
			if c.CarriedBy != entity.NoAGV {
				continue
			}
			order := d.orders[c.Order]
			if order == nil {
				continue
			}
			if remaining := order.RemainingStations(); len(remaining) > 0 {
				if n, ok := d.pickBestStation(remaining, c.Pos, carts); ok {
					if target, ok := findTile(d.tiles, stationID(n), reserved); ok {
						d.enqueue(entity.JobMoveToPick, c, target, n, now)
					}
				}
			} else if target, ok := findTile(d.tiles, "Pack_off", reserved); ok {
				d.enqueue(entity.JobMoveToPackoff, c, target, 0, now)
			}

		case entity.CartCompleted:
			if c.CarriedBy == entity.NoAGV {
				if target, ok := findTile(d.tiles, "Box_Depot", reserved); ok {
					d.enqueue(entity.JobReturnToBoxDepot, c, target, 0, now)
				}
			}
		}
	}
}

// assignJobs implements §4.4 step 4: assign pending jobs, in arrival
// order, to the nearest free AGV, capped at maxConcurrentDispatches total
// active jobs.
func (d *Dispatcher) assignJobs(agvs []*entity.AGV, carts []*entity.Cart) {
	free := make(map[entity.AgvID]bool)
	for _, a := range agvs {
		if a.State == entity.AGVIdle && a.CurrentJob == entity.NoJob && a.CarryingCart == entity.NoCart {
			free[a.ID] = true
		}
	}

	var stillPending []*entity.Job
	for _, j := range d.pending {
		if len(d.active) >= d.cfg.MaxConcurrentDispatches {
			stillPending = append(stillPending, j)
			continue
		}
		cart := entity.FindCart(carts, j.Cart)
		if cart == nil {
			continue
		}
		agv := nearestFreeAGV(agvs, free, cart.Pos)
		if agv == nil {
			stillPending = append(stillPending, j)
			continue
		}
		blocked := blockedPositions(agvs, agv.ID)
		if !agv.PickupCart(cart, d.graph, d.tiles, blocked) {
			stillPending = append(stillPending, j)
			continue
		}
		agv.CurrentJob = j.ID
		j.AssignedAGV = agv.ID
		delete(free, agv.ID)
		j.Status = entity.JobActive
		d.active = append(d.active, j)
	}
	d.pending = stillPending
}

func nearestFreeAGV(agvs []*entity.AGV, free map[entity.AgvID]bool, pos warehouse.Position) *entity.AGV {
	var best *entity.AGV
	bestDist := -1
	for _, a := range agvs {
		if !free[a.ID] {
			continue
		}
		dist := a.Pos.ManhattanDistance(pos)
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = a
		}
	}
	return best
}

func blockedPositions(agvs []*entity.AGV, self entity.AgvID) map[warehouse.Position]bool {
	blocked := make(map[warehouse.Position]bool, len(agvs))
	for _, a := range agvs {
		if a.ID == self {
			continue
		}
		blocked[a.Pos] = true
	}
	return blocked
}

// cartTransitState maps a job type to the cart state it adopts the moment
// its carrying AGV begins the dropoff leg (§4.4 step 5).
func cartTransitState(jobType entity.JobType) entity.CartState {
	switch jobType {
	case entity.JobPickupToBoxDepot, entity.JobReturnToBoxDepot:
		return entity.CartToBoxDepot
	case entity.JobMoveToPick:
		return entity.CartInTransitToPick
	case entity.JobMoveToPackoff:
		return entity.CartInTransitToPackoff
	default:
		return entity.CartInTransit
	}
}

// progressJobs implements §4.4 step 5: hand off the carry state once an
// AGV has picked up its job's cart, and complete the job once the AGV has
// finished the dropoff and released the cart.
func (d *Dispatcher) progressJobs(agvs []*entity.AGV, carts []*entity.Cart, now float64) {
	var stillActive []*entity.Job
	for _, j := range d.active {
		agv := entity.FindAGV(agvs, j.AssignedAGV)
		if agv == nil {
			stillActive = append(stillActive, j)
			continue
		}
		cart := entity.FindCart(carts, j.Cart)
		if cart == nil {
			continue
		}

		if agv.State == entity.AGVIdle && agv.CarryingCart == cart.ID && cart.CarriedBy == agv.ID {
			if cart.State != cartTransitState(j.Type) {
				cart.State = cartTransitState(j.Type)
				blocked := blockedPositions(agvs, agv.ID)
				agv.StartDropoff(j.Target, d.graph, d.tiles, blocked)
			}
			stillActive = append(stillActive, j)
			continue
		}

		if agv.State == entity.AGVIdle && agv.CarryingCart == entity.NoCart && cart.CarriedBy == entity.NoAGV {
			d.completeJob(j, cart, now)
			agv.CurrentJob = entity.NoJob
			continue
		}

		stillActive = append(stillActive, j)
	}
	d.active = stillActive
}

// completeJob applies the cart-processing transition for j's type (§4.5).
func (d *Dispatcher) completeJob(j *entity.Job, cart *entity.Cart, now float64) {
	switch j.Type {
	case entity.JobPickupToBoxDepot:
		cart.State = entity.CartAtBoxDepot
		cart.ProcessTimer = d.cfg.BoxDepotTime

	case entity.JobMoveToPick:
		cart.State = entity.CartPicking
		items := 0
		if order := d.orders[cart.Order]; order != nil {
			items = order.ItemsAtStation(j.Station)
			order.CompleteStation(j.Station)
		}
		cart.ProcessTimer = d.cfg.PickTimePerItem * float64(items)

	case entity.JobMoveToPackoff:
		cart.State = entity.CartAtPackoff
		cart.ProcessTimer = d.cfg.PackoffTime

	case entity.JobMoveToBuffer:
		cart.State = entity.CartWaitingForStation

	case entity.JobReturnToBoxDepot:
		cart.State = entity.CartAtBoxDepot
		cart.ProcessTimer = d.cfg.BoxDepotTime
		start := d.cartStartTime[cart.ID]
		d.cycleTimes = append(d.cycleTimes, now-start)
		d.completedOrders++
		delete(d.orders, cart.Order)
		cart.Order = entity.NoOrder
	}
}
