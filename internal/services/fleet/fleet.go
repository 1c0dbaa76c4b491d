package fleet

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/BearBump/CourierDesk/internal/models"
)

// Branch fleet keys and the vehicle-type labels vehicle records carry.
var vehicleTypeLabels = map[string]string{
	"motorbike":  "Motorbike",
	"truck_2t":   "2.0t Truck",
	"truck_3_5t": "3.5t Truck",
	"truck_5t":   "5.0t Truck",
	"van":        "Van",
}

// Label translates a branch fleet key. ok is false for keys outside the table.
func Label(key string) (string, bool) {
	l, ok := vehicleTypeLabels[strings.ToLower(strings.TrimSpace(key))]
	return l, ok
}

// Keys returns the known fleet keys, sorted.
func Keys() []string {
	out := make([]string, 0, len(vehicleTypeLabels))
	for k := range vehicleTypeLabels {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AvailableVehicles returns the vehicle records a branch can assign: those
// whose type matches a fleet key with a positive count. The count is an
// inventory figure and does not cap the list. Unknown keys are skipped.
func AvailableVehicles(branch models.Branch, vehicles []models.Vehicle) []models.Vehicle {
	allowed := make(map[string]struct{}, len(branch.Vehicles))
	for key, n := range branch.Vehicles {
		label, ok := Label(key)
		if !ok {
			slog.Warn("unknown branch vehicle type dropped", "branch_id", branch.ID, "key", key)
			continue
		}
		if n <= 0 {
			continue
		}
		allowed[strings.ToLower(label)] = struct{}{}
		allowed[strings.ToLower(key)] = struct{}{}
	}

	out := make([]models.Vehicle, 0)
	for _, v := range vehicles {
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(v.Type))]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Inventory is one row of a branch's fleet table.
type Inventory struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BranchInventory lists the branch's known fleet keys, sorted by key.
func BranchInventory(branch models.Branch) []Inventory {
	out := make([]Inventory, 0, len(branch.Vehicles))
	for key, n := range branch.Vehicles {
		label, ok := Label(key)
		if !ok {
			continue
		}
		out = append(out, Inventory{Key: key, Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
