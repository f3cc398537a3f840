package entity

import "github.com/dshills/agvsim/pkg/warehouse"

// Job is a transport task pairing a cart with a target position. The
// dispatcher is the only writer of Status; everything else reads it.
type Job struct {
	ID       JobID
	Type     JobType
	Status   JobStatus
	Cart     CartID
	Target   warehouse.Position
	Station  int // pick station number, for JobMoveToPick; 0 otherwise
	AssignedAGV AgvID

	createdAt float64 // sim time the job was created
}

// NewJob creates a pending job for cart, targeting target. now is the
// current sim time, recorded on the job and returned by CreatedAt.
func NewJob(id JobID, jobType JobType, cart CartID, target warehouse.Position, now float64) *Job {
	return &Job{
		ID:          id,
		Type:        jobType,
		Status:      JobPending,
		Cart:        cart,
		Target:      target,
		AssignedAGV: NoAGV,
		createdAt:   now,
	}
}

// CreatedAt returns the sim time the job was created.
func (j *Job) CreatedAt() float64 { return j.createdAt }

// FindJob returns the job with id from jobs, or nil if absent.
func FindJob(jobs []*Job, id JobID) *Job {
	for _, j := range jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}
