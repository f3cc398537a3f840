package entity

import "github.com/dshills/agvsim/pkg/warehouse"

// Cart is the passive carrier an AGV transports between Box Depot, the
// pick stations, and Pack-off. A cart is either stationary — CarriedBy is
// NoAGV and Pos is its resting tile — or in transit, where CarriedBy
// names the AGV whose position it mirrors every tick.
type Cart struct {
	ID        CartID
	Pos       warehouse.Position
	State     CartState
	CarriedBy AgvID
	Order     OrderID

	// ProcessTimer counts down (in sim-seconds) while the cart is parked
	// at Box Depot, a pick station, or Pack-off. The dispatcher only acts
	// on a cart once its timer reaches zero.
	ProcessTimer float64
}

// NewCart places a stationary, freshly spawned cart at pos.
func NewCart(id CartID, pos warehouse.Position) *Cart {
	return &Cart{ID: id, Pos: pos, State: CartSpawned, CarriedBy: NoAGV, Order: NoOrder}
}

// Stationary reports whether the cart is resting on a tile rather than
// being carried, the XOR half of the carrier invariant (§8 invariant 2).
func (c *Cart) Stationary() bool { return c.CarriedBy == NoAGV }

// Tick counts the cart's process timer down by dt while it is positive.
// The tick that exhausts it may leave it below zero; after that Tick is a
// no-op. The dispatcher treats any value <= 0 as "ready".
func (c *Cart) Tick(dt float64) {
	if c.ProcessTimer > 0 {
		c.ProcessTimer -= dt
	}
}

// FindCart returns the cart with id from carts, or nil if absent. Cross-
// entity references are stored as ids (see package doc); this is how a
// caller holding both a Job and the World's []*Cart slice resolves one
// from the other without the two types pointing at each other directly.
func FindCart(carts []*Cart, id CartID) *Cart {
	for _, c := range carts {
		if c.ID == id {
			return c
		}
	}
	return nil
}
