package dispatch

import (
	"github.com/dshills/agvsim/pkg/entity"
)

// cancelStuckJobs implements §4.4 step 2: an AGV blocked for at least
// jobCancelTimeout holding a job is detached from it. A job still heading
// to pick up its cart is re-queued as pending; a job already carrying
// toward a dropoff is retargeted to the nearest free buffer tile instead
// of losing the in-progress carry.
func (d *Dispatcher) cancelStuckJobs(agvs []*entity.AGV) {
	for _, a := range agvs {
		if !a.IsBlocked || a.BlockedTimer < d.cfg.JobCancelTimeout || a.CurrentJob == entity.NoJob {
			continue
		}
		j := findActiveJob(d.active, a.CurrentJob)
		if j == nil {
			continue
		}
		d.active = removeActive(d.active, j.ID)

		if a.State == entity.AGVMovingToPickup {
			j.Status = entity.JobPending
			j.AssignedAGV = entity.NoAGV
			d.pending = append(d.pending, j)
			a.CurrentJob = entity.NoJob
			a.CarryingCart = entity.NoCart
			a.State = entity.AGVIdle
			a.Path = nil
			a.PathIndex = 0
			a.PathProgress = 0
			a.Target = nil
			a.IsBlocked = false
			a.BlockedTimer = 0
			continue
		}

		j.Type = entity.JobMoveToBuffer
		reserved := blockedPositions(agvs, a.ID)
		if target, ok := findBufferSpot(d.tiles, a.Pos, reserved); ok {
			j.Target = target
		}
		j.Status = entity.JobActive
		d.active = append(d.active, j)
		a.IsBlocked = false
		a.BlockedTimer = 0
	}
}

func findActiveJob(active []*entity.Job, id entity.JobID) *entity.Job {
	for _, j := range active {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func removeActive(active []*entity.Job, id entity.JobID) []*entity.Job {
	out := active[:0]
	for _, j := range active {
		if j.ID != id {
			out = append(out, j)
		}
	}
	return out
}

// handleBlockedAGVs implements §4.4 step 6: for every AGV blocked at
// least blockTimeout, identify what it is waiting on and either nudge an
// idle jobless blocker out of the way, wait on a blocker that is itself
// making progress, or attempt a reroute once the waiter's own cooldown
// has elapsed.
func (d *Dispatcher) handleBlockedAGVs(agvs []*entity.AGV) {
	for _, a := range agvs {
		if !a.IsBlocked || a.BlockedTimer < d.cfg.BlockTimeout {
			continue
		}
		next, ok := a.NextTile()
		if !ok {
			continue
		}
		blocker := findAGVAt(agvs, next)
		if blocker == nil {
			continue
		}

		if blocker.State == entity.AGVIdle && blocker.CurrentJob == entity.NoJob && blocker.CarryingCart == entity.NoCart {
			reserved := blockedPositions(agvs, blocker.ID)
			if spot, ok := findParkOrSpawnTile(d.tiles, blocker.Pos, reserved); ok {
				blocker.SetDestination(spot, entity.AGVReturningToSpawn, d.graph, d.tiles, reserved)
				a.BlockedTimer = 0
			}
			continue
		}

		if blocker.IsMoving() && !blocker.IsBlocked && a.BlockedTimer <= 2*d.cfg.BlockTimeout {
			continue
		}

		if a.BlockedTimer-a.LastReroute >= d.cfg.RerouteCooldown {
			a.Reroute(agvs, d.graph, d.tiles)
			a.LastReroute = a.BlockedTimer
		}
	}
}

// parkIdleAGVs implements §4.4 step 7: a jobless idle AGV standing on a
// highway tile is sent to the nearest unaffiliated parking/spawn tile so
// it does not block through traffic.
func (d *Dispatcher) parkIdleAGVs(agvs []*entity.AGV) {
	for _, a := range agvs {
		if a.State != entity.AGVIdle || a.CurrentJob != entity.NoJob || a.CarryingCart != entity.NoCart {
			continue
		}
		if !d.tiles.At(a.Pos).Kind.IsHighway() {
			continue
		}
		reserved := blockedPositions(agvs, a.ID)
		if spot, ok := findParkOrSpawnTile(d.tiles, a.Pos, reserved); ok && spot != a.Pos {
			a.SetDestination(spot, entity.AGVReturningToSpawn, d.graph, d.tiles, reserved)
		}
	}
}
