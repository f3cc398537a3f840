package metrics

import (
	"fmt"
	"sort"
)

// packoffQueueAlertThreshold is the move_to_packoff queue depth at which
// the dispatcher surfaces a bottleneck alert even before Pack-off is
// physically full (§6).
const packoffQueueAlertThreshold = 3

// ComputeAlerts inspects station fill and queue depths and returns the
// short strings the engine API surfaces as bottleneck alerts (§6).
// waitingByStation maps a pick station id to the number of pending/active
// jobs currently targeting it; moveToPackoffCount is the count of
// pending/active move_to_packoff jobs; spawnedCartCount is the number of
// carts still in the spawned state (queued for Box Depot pickup).
func ComputeAlerts(fill StationFill, moveToPackoffCount int, waitingByStation map[string]int, spawnedCartCount int) []string {
	var alerts []string

	if f, ok := fill["Pack_off"]; ok && f.Capacity > 0 && f.Current >= f.Capacity {
		alerts = append(alerts, "Pack-off FULL")
	}
	if moveToPackoffCount > packoffQueueAlertThreshold {
		alerts = append(alerts, "Pack-off queue > 3")
	}

	pickStations := make([]string, 0, len(fill))
	for sid := range fill {
		if sid == "Pack_off" || sid == "Box_Depot" {
			continue
		}
		pickStations = append(pickStations, sid)
	}
	sort.Strings(pickStations)
	for _, sid := range pickStations {
		f := fill[sid]
		if f.Capacity > 0 && f.Current >= f.Capacity {
			alerts = append(alerts, fmt.Sprintf("%s FULL (%d waiting)", sid, waitingByStation[sid]))
		}
	}

	if f, ok := fill["Box_Depot"]; ok && f.Capacity > 0 && f.Current >= f.Capacity {
		alerts = append(alerts, fmt.Sprintf("Box Depot FULL (%d spawned)", spawnedCartCount))
	}

	return alerts
}
