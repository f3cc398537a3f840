package entity

// AGVState is the closed set of states an AGV's movement machine can be
// in. Kept as a distinct string type, not a raw string or int code, so a
// switch over it without a default case is a compile-time gap to notice,
// not a silent runtime fallthrough.
type AGVState string

const (
	AGVIdle             AGVState = "idle"
	AGVMoving           AGVState = "moving"
	AGVReturningToSpawn AGVState = "returning_to_spawn"
	AGVMovingToPickup   AGVState = "moving_to_pickup"
	AGVPickingUp        AGVState = "picking_up"
	AGVMovingToDropoff  AGVState = "moving_to_dropoff"
	AGVDroppingOff      AGVState = "dropping_off"
)

// CartState is the closed set of states a Cart can be in across the
// Box Depot -> pick stations -> Pack-off -> Box Depot lifecycle.
type CartState string

const (
	CartSpawned            CartState = "spawned"
	CartInTransit           CartState = "in_transit"
	CartIdle                CartState = "idle"
	CartToBoxDepot          CartState = "to_box_depot"
	CartAtBoxDepot          CartState = "at_box_depot"
	CartInTransitToPick     CartState = "in_transit_to_pick"
	CartPicking             CartState = "picking"
	CartInTransitToPackoff  CartState = "in_transit_to_packoff"
	CartAtPackoff           CartState = "at_packoff"
	CartWaitingForStation   CartState = "waiting_for_station"
	CartCompleted           CartState = "completed"
)

// JobType is the closed set of job kinds the Dispatcher creates.
type JobType string

const (
	JobPickupToBoxDepot  JobType = "pickup_to_box_depot"
	JobMoveToPick        JobType = "move_to_pick"
	JobMoveToPackoff     JobType = "move_to_packoff"
	JobReturnToBoxDepot  JobType = "return_to_box_depot"
	JobMoveToBuffer      JobType = "move_to_buffer"
)

// JobStatus is the closed set of a Job's lifecycle states.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobActive    JobStatus = "active"
	JobCompleted JobStatus = "completed"
)
