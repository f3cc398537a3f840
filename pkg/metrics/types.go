// Package metrics holds the data shapes the Dispatcher and headless
// runner report: per-station fill, bottleneck alerts, throughput stats,
// and the full headless metric bundle (§6).
package metrics

// Fill is one station's occupancy: how many of its tiles are currently
// reserved, its fixed capacity, and the resulting fill rate in [0, 1].
type Fill struct {
	Current  int
	Capacity int
	Rate     float64
}

// StationFill maps station id to its current Fill, recomputed once per
// tick by the Dispatcher from the reservation set.
type StationFill map[string]Fill

// Throughput bundles the Dispatcher's aggregate completion stats.
type Throughput struct {
	CompletedOrders int
	AvgCycleTime    float64
	PerHour         float64
}

// Bundle is the full headless run report (§6 "Headless metric bundle").
type Bundle struct {
	NumAGVs            int
	NumCarts           int
	CompletedOrders    int
	OrdersPerHour      float64
	AvgCycleTime       float64
	CycleTimes         []float64
	AGVUtilization     float64
	AGVBlockedFraction float64
	StationFill        StationFill
	SimDuration        float64
	WallClockSeconds   float64
	TotalTicks         int
}
