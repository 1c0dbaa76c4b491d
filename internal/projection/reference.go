package projection

import (
	"strings"

	"github.com/BearBump/CourierDesk/internal/models"
)

func Branch(rec map[string]any) models.Branch {
	b := models.Branch{
		ID:       firstString(rec, "", "id", "_id", "branchId"),
		Name:     firstString(rec, models.PlaceholderText, "name", "branchName", "branch_name"),
		Code:     firstString(rec, models.PlaceholderText, "code", "branchCode", "branch_code"),
		City:     firstString(rec, models.PlaceholderText, "city", "address.city", "location.city"),
		District: firstString(rec, models.PlaceholderText, "district", "address.district", "location.district"),
		Vehicles: map[string]int{},
	}
	v, ok := firstValue(rec, "vehicles", "fleet")
	if !ok {
		return b
	}
	switch x := v.(type) {
	case map[string]any:
		for k, raw := range x {
			if n, ok := asInt64(raw); ok {
				b.Vehicles[strings.ToLower(strings.TrimSpace(k))] = int(n)
			}
		}
	case []any:
		// [{"type": "motorbike", "count": 2}, ...]
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			key := firstString(m, "", "type", "key")
			n, ok := firstNumber(m, "count", "quantity")
			if key != "" && ok {
				b.Vehicles[strings.ToLower(key)] += int(n)
			}
		}
	}
	return b
}

func Branches(recs []map[string]any) []models.Branch {
	out := make([]models.Branch, 0, len(recs))
	for _, r := range recs {
		out = append(out, Branch(r))
	}
	return out
}

func Vehicle(rec map[string]any) models.Vehicle {
	v := models.Vehicle{
		ID:   firstString(rec, "", "id", "_id", "vehicleId"),
		Type: firstString(rec, models.PlaceholderText, "type", "vehicleType", "vehicle_type"),
		Code: firstString(rec, models.PlaceholderText, "code", "plate", "licensePlate", "license_plate"),
	}
	if c, ok := firstNumber(rec, "capacity", "maxWeight", "max_weight"); ok {
		v.Capacity = c
	}
	return v
}

func Vehicles(recs []map[string]any) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(recs))
	for _, r := range recs {
		out = append(out, Vehicle(r))
	}
	return out
}

func Customer(rec map[string]any) models.Customer {
	c := models.Customer{
		ID:      firstString(rec, "", "id", "_id", "customerId"),
		Name:    firstString(rec, models.PlaceholderText, "name", "fullName", "full_name"),
		Email:   firstString(rec, models.PlaceholderText, "email"),
		Phone:   firstString(rec, models.PlaceholderText, "phone", "phoneNumber", "phone_number"),
		Address: address(rec, "address", "addressLine"),
		City:    firstString(rec, models.PlaceholderText, "city", "address.city"),
		Status:  models.CustomerActive,
	}
	if n, ok := firstNumber(rec, "successDeliveries", "success_deliveries", "stats.successDeliveries"); ok {
		c.SuccessDeliveries = int(n)
	}
	if n, ok := firstNumber(rec, "failedDeliveries", "failed_deliveries", "stats.failedDeliveries"); ok {
		c.FailedDeliveries = int(n)
	}
	c.TotalOrders = c.SuccessDeliveries + c.FailedDeliveries

	if blocked, ok := lookup(rec, "isBlocked"); ok {
		if b, _ := blocked.(bool); b {
			c.Status = models.CustomerBlocked
		}
	}
	if s := firstString(rec, "", "status"); strings.EqualFold(s, string(models.CustomerBlocked)) {
		c.Status = models.CustomerBlocked
	}
	return c
}

func Customers(recs []map[string]any) []models.Customer {
	out := make([]models.Customer, 0, len(recs))
	for _, r := range recs {
		out = append(out, Customer(r))
	}
	return out
}
