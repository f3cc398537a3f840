package entity

import (
	"github.com/dshills/agvsim/pkg/pathfind"
	"github.com/dshills/agvsim/pkg/warehouse"
)

// Reference timing constants for the AGV action timers (§6). Dispatcher-
// level timers (block timeout, reroute cooldown, job cancel timeout, the
// per-job-type process timers) live in pkg/sim and pkg/dispatch, since
// they govern cart processing and job liveness rather than AGV movement.
const (
	PickupTime   = 5.0
	DropoffTime  = 5.0
	DefaultSpeed = 1.0 // tiles per second
)

// AGV is one automated guided vehicle: its position, path, and the small
// state machine governing movement, collision avoidance, and arrival
// actions. CarryingCart is set at pickup-dispatch time as a target hint
// and becomes the cart's actual owner only when the pickup action timer
// completes (§4.3).
type AGV struct {
	ID    AgvID
	Pos   warehouse.Position
	State AGVState
	Speed float64

	Target       *warehouse.Position
	Path         []warehouse.Position
	PathIndex    int
	PathProgress float64

	CarryingCart CartID
	ActionTimer  float64
	CurrentJob   JobID

	IsBlocked    bool
	BlockedTimer float64
	LastReroute  float64
	JustRerouted bool
}

// NewAGV places a new, idle AGV at pos.
func NewAGV(id AgvID, pos warehouse.Position) *AGV {
	return &AGV{ID: id, Pos: pos, State: AGVIdle, CarryingCart: NoCart, CurrentJob: NoJob, Speed: DefaultSpeed}
}

// FindAGV returns the AGV with id from agvs, or nil if absent.
func FindAGV(agvs []*AGV, id AgvID) *AGV {
	for _, a := range agvs {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// NextTile returns the tile the AGV is about to enter, if its path has
// one left beyond its current index. The dispatcher's liveness pass uses
// this to identify which AGV is blocking a waiter.
func (a *AGV) NextTile() (warehouse.Position, bool) {
	if a.PathIndex+1 >= len(a.Path) {
		return warehouse.Position{}, false
	}
	return a.Path[a.PathIndex+1], true
}

// IsMoving reports whether the AGV is in one of the path-following
// states, as opposed to idle or running an arrival action timer.
func (a *AGV) IsMoving() bool {
	switch a.State {
	case AGVMoving, AGVReturningToSpawn, AGVMovingToPickup, AGVMovingToDropoff:
		return true
	default:
		return false
	}
}

// SetDestination plans a route from the AGV's current position to target
// and, on success, adopts state and resets path index, progress, and the
// block/reroute bookkeeping. blocked is forwarded to pathfind.FindPath
// unmodified — callers decide which positions to exclude.
func (a *AGV) SetDestination(target warehouse.Position, state AGVState, g *warehouse.Graph, tiles *warehouse.TileMap, blocked map[warehouse.Position]bool) bool {
	path, ok := pathfind.FindPath(g, tiles, a.Pos, target, blocked)
	if !ok {
		return false
	}
	a.Path = path
	a.PathIndex = 0
	a.PathProgress = 0
	a.State = state
	t := target
	a.Target = &t
	a.JustRerouted = false
	a.IsBlocked = false
	a.BlockedTimer = 0
	return true
}

// ReturnToSpawn routes the AGV back to an unoccupied spawn/parking tile.
func (a *AGV) ReturnToSpawn(spawn warehouse.Position, g *warehouse.Graph, tiles *warehouse.TileMap, blocked map[warehouse.Position]bool) bool {
	return a.SetDestination(spawn, AGVReturningToSpawn, g, tiles, blocked)
}

// PickupCart routes the AGV to cart's resting tile. On success,
// CarryingCart is set immediately as a target hint; cart.CarriedBy is not
// set until the pickup action timer completes in Update.
func (a *AGV) PickupCart(cart *Cart, g *warehouse.Graph, tiles *warehouse.TileMap, blocked map[warehouse.Position]bool) bool {
	if !a.SetDestination(cart.Pos, AGVMovingToPickup, g, tiles, blocked) {
		return false
	}
	a.CarryingCart = cart.ID
	return true
}

// StartDropoff routes an already-carrying AGV to target, where the
// carried cart will be released once the dropoff action timer completes.
func (a *AGV) StartDropoff(target warehouse.Position, g *warehouse.Graph, tiles *warehouse.TileMap, blocked map[warehouse.Position]bool) bool {
	return a.SetDestination(target, AGVMovingToDropoff, g, tiles, blocked)
}

// Reroute replans from the AGV's current position to its Target, blocked
// by every other AGV's current position and (if it has one) next tile. A
// candidate path whose first step matches the tile the AGV is currently
// blocked on is rejected — rerouting onto the same bottleneck achieves
// nothing (§8 invariant 9). Used both by Update's in-tick conflict
// resolution and by the dispatcher's liveness pass.
func (a *AGV) Reroute(agvs []*AGV, g *warehouse.Graph, tiles *warehouse.TileMap) bool {
	blockedNext, hasBlockedNext := a.NextTile()
	if !hasBlockedNext || a.Target == nil {
		return false
	}
	return a.reroute(blockedNext, agvs, g, tiles)
}

func (a *AGV) reroute(blockedNext warehouse.Position, agvs []*AGV, g *warehouse.Graph, tiles *warehouse.TileMap) bool {
	blocked := blockedSetFrom(agvs, a.ID)
	path, ok := pathfind.FindPath(g, tiles, a.Pos, *a.Target, blocked)
	if !ok || len(path) < 2 {
		return false
	}
	if path[1] == blockedNext {
		return false
	}
	a.Path = path
	a.PathIndex = 0
	if a.PathProgress > 0.99 {
		a.PathProgress = 0.99
	}
	a.JustRerouted = true
	a.IsBlocked = false
	return true
}

func blockedSetFrom(agvs []*AGV, self AgvID) map[warehouse.Position]bool {
	blocked := make(map[warehouse.Position]bool, len(agvs)*2)
	for _, other := range agvs {
		if other.ID == self {
			continue
		}
		blocked[other.Pos] = true
		if next, ok := other.NextTile(); ok {
			blocked[next] = true
		}
	}
	return blocked
}

func occupied(a *AGV, next warehouse.Position, agvs []*AGV, carts []*Cart) bool {
	for _, other := range agvs {
		if other.ID == a.ID {
			continue
		}
		if other.Pos == next {
			return true
		}
	}
	if a.CarryingCart != NoCart {
		if cart := FindCart(carts, a.CarryingCart); cart != nil && cart.CarriedBy == a.ID {
			for _, c := range carts {
				if c.Stationary() && c.Pos == next {
					return true
				}
			}
		}
	}
	return false
}

// Update advances the AGV exactly once for this tick (§4.3). agvs and
// carts are the full current rosters — collision detection observes
// positions already updated earlier in the same tick if this AGV is
// ordered after them.
func (a *AGV) Update(dt float64, agvs []*AGV, carts []*Cart, g *warehouse.Graph, tiles *warehouse.TileMap) {
	switch a.State {
	case AGVPickingUp, AGVDroppingOff:
		a.ActionTimer -= dt
		if a.ActionTimer <= 0 {
			a.completeAction(carts)
		}
		return
	case AGVIdle:
		return
	}

	speed := a.Speed
	if speed <= 0 {
		speed = DefaultSpeed
	}
	a.PathProgress += speed * dt

	for a.PathProgress >= 1.0 {
		next, ok := a.NextTile()
		if !ok {
			break
		}
		if occupied(a, next, agvs, carts) {
			if !a.JustRerouted && a.reroute(next, agvs, g, tiles) {
				continue
			}
			a.PathProgress = 0.99
			a.IsBlocked = true
			a.BlockedTimer += dt
			return
		}
		a.IsBlocked = false
		a.JustRerouted = false
		a.PathProgress -= 1.0
		a.PathIndex++
		a.Pos = next
		if a.CarryingCart != NoCart {
			if cart := FindCart(carts, a.CarryingCart); cart != nil && cart.CarriedBy == a.ID {
				cart.Pos = next
			}
		}
	}

	if len(a.Path) > 0 {
		if _, hasNext := a.NextTile(); !hasNext {
			a.handleArrival()
		}
	}
}

func (a *AGV) handleArrival() {
	switch a.State {
	case AGVMovingToPickup:
		a.State = AGVPickingUp
		a.ActionTimer = PickupTime
	case AGVMovingToDropoff:
		a.State = AGVDroppingOff
		a.ActionTimer = DropoffTime
	default:
		a.State = AGVIdle
	}
}

func (a *AGV) completeAction(carts []*Cart) {
	switch a.State {
	case AGVPickingUp:
		if cart := FindCart(carts, a.CarryingCart); cart != nil {
			cart.CarriedBy = a.ID
			cart.State = CartInTransit
			cart.Pos = a.Pos
		}
	case AGVDroppingOff:
		if cart := FindCart(carts, a.CarryingCart); cart != nil {
			cart.CarriedBy = NoAGV
			cart.State = CartIdle
			cart.Pos = a.Pos
		}
		a.CarryingCart = NoCart
	}
	a.State = AGVIdle
	a.Path = nil
	a.PathIndex = 0
	a.PathProgress = 0
	a.Target = nil
}
