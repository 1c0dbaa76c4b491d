package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
)

// Backend is an in-memory stand-in for the console backend, used for demos
// and for wiring tests. Seeded data is deterministic.
type Backend struct {
	mu        sync.Mutex
	shipments []backend.Record
	branches  []backend.Record
	customers []backend.Record
	vehicles  []backend.Record
	now       func() time.Time

	// StatusUpdates counts UpdateShipmentStatus calls.
	StatusUpdates int
}

func New() *Backend {
	b := &Backend{now: func() time.Time { return time.Now().UTC() }}
	b.seed(24)
	return b
}

var seedStatuses = []string{
	"BOOKED", "BRANCH_ASSIGNED", "PICKUP_SCHEDULED", "PICKUP_RESCHEDULED",
	"ON_THE_WAY_PICKUP", "DELIVERED_SUCCESS", "DELIVERY_FAILED", "CLOSED",
}

func (b *Backend) seed(n int) {
	b.branches = []backend.Record{
		{"_id": "B1", "name": "Central", "code": "CEN", "city": "Ho Chi Minh", "district": "District 1",
			"vehicles": map[string]any{"motorbike": 2.0, "truck_2t": 0.0, "van": 1.0}},
		{"_id": "B2", "name": "Central East", "code": "CEE", "city": "Ho Chi Minh", "district": "Thu Duc",
			"vehicles": map[string]any{"motorbike": 1.0, "truck_3_5t": 1.0}},
	}
	b.vehicles = []backend.Record{
		{"_id": "V1", "type": "Motorbike", "licensePlate": "59A-00001", "capacity": 150.0},
		{"_id": "V2", "type": "Motorbike", "licensePlate": "59A-00002", "capacity": 150.0},
		{"_id": "V3", "type": "2.0t Truck", "licensePlate": "51C-00003", "capacity": 2000.0},
		{"_id": "V4", "type": "Van", "licensePlate": "51D-00004", "capacity": 800.0},
		{"_id": "V5", "type": "3.5t Truck", "licensePlate": "51C-00005", "capacity": 3500.0},
	}
	b.customers = []backend.Record{
		{"_id": "C1", "name": "Alice Tran", "email": "alice@example.com", "phone": "0900000001",
			"city": "Ho Chi Minh", "successDeliveries": 12.0, "failedDeliveries": 1.0, "status": "Active"},
		{"_id": "C2", "name": "Bao Le", "email": "bao@example.com", "phone": "0900000002",
			"city": "Da Nang", "successDeliveries": 3.0, "failedDeliveries": 2.0, "isBlocked": true},
	}

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("S%03d", i+1)
		h := fnv.New32a()
		_, _ = h.Write([]byte(id))
		v := h.Sum32()
		branch := "B1"
		if v%2 == 0 {
			branch = "B2"
		}
		service := "standard"
		if v%3 == 0 {
			service = "express"
		}
		created := base.Add(time.Duration(i) * time.Hour)
		b.shipments = append(b.shipments, backend.Record{
			"_id":         id,
			"trackingId":  fmt.Sprintf("TRK%06d", v%1000000),
			"status":      seedStatuses[i%len(seedStatuses)],
			"senderName":  "Sender " + id,
			"receiver":    map[string]any{"name": "Receiver " + id, "phone": "0911000000"},
			"serviceType": service,
			"branch_id":   branch,
			"weight":      float64(v%20) + 0.5,
			"fee":         float64(25000 * (1 + v%8)),
			"createdAt":   created.Format(time.RFC3339),
			"updatedAt":   created.Format(time.RFC3339),
		})
	}
}

func (b *Backend) ListShipments(ctx context.Context, q backend.Query) ([]backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	status := strings.ToUpper(q["status"])
	out := make([]backend.Record, 0, len(b.shipments))
	for _, s := range b.shipments {
		if status != "" && s["status"] != status {
			continue
		}
		out = append(out, clone(s))
	}
	return out, nil
}

func (b *Backend) GetShipment(ctx context.Context, id string) (backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := find(b.shipments, id)
	if s == nil {
		return nil, apperr.Business("Shipment not found")
	}
	return clone(s), nil
}

func (b *Backend) UpdateShipmentStatus(ctx context.Context, id, status string, payload map[string]any) (backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.StatusUpdates++
	s := find(b.shipments, id)
	if s == nil {
		return nil, apperr.Business("Shipment not found")
	}
	s["status"] = status
	s["updatedAt"] = b.now().Format(time.RFC3339)
	for k, v := range payload {
		s[k] = v
	}
	return clone(s), nil
}

func (b *Backend) ListBranches(ctx context.Context) ([]backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneAll(b.branches), nil
}

func (b *Backend) UpdateBranch(ctx context.Context, id string, patch map[string]any) (backend.Record, error) {
	return b.patch(&b.branches, id, patch, "Branch not found")
}

func (b *Backend) ListCustomers(ctx context.Context, q backend.Query) ([]backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneAll(b.customers), nil
}

func (b *Backend) GetCustomer(ctx context.Context, id string) (backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := find(b.customers, id)
	if c == nil {
		return nil, apperr.Business("Customer not found")
	}
	return clone(c), nil
}

func (b *Backend) UpdateCustomer(ctx context.Context, id string, patch map[string]any) (backend.Record, error) {
	return b.patch(&b.customers, id, patch, "Customer not found")
}

func (b *Backend) ListVehicles(ctx context.Context) ([]backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneAll(b.vehicles), nil
}

func (b *Backend) Login(ctx context.Context, email, password string) (backend.LoginResult, error) {
	if email == "" || password != "demo" {
		return backend.LoginResult{}, apperr.Unauthorized("Invalid email or password")
	}
	return backend.LoginResult{Token: "fake-token", User: backend.Record{"email": email, "role": "admin"}}, nil
}

func (b *Backend) Register(ctx context.Context, in backend.Record) (backend.Record, error) {
	return clone(in), nil
}

func (b *Backend) ForgotPassword(ctx context.Context, email string) error {
	return nil
}

func (b *Backend) DashboardStats(ctx context.Context, q backend.Query) (backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	byStatus := map[string]any{}
	revenue := 0.0
	for _, s := range b.shipments {
		st, _ := s["status"].(string)
		n, _ := byStatus[st].(float64)
		byStatus[st] = n + 1
		if st == "DELIVERED_SUCCESS" || st == "CLOSED" {
			f, _ := s["fee"].(float64)
			revenue += f
		}
	}
	return backend.Record{
		"totalShipments": float64(len(b.shipments)),
		"totalCustomers": float64(len(b.customers)),
		"totalBranches":  float64(len(b.branches)),
		"revenue":        revenue,
		"byStatus":       byStatus,
	}, nil
}

func (b *Backend) Report(ctx context.Context, q backend.Query) (backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	perBranch := map[string]float64{}
	for _, s := range b.shipments {
		br, _ := s["branch_id"].(string)
		perBranch[br]++
	}
	keys := make([]string, 0, len(perBranch))
	for k := range perBranch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]any, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, map[string]any{"label": k, "shipments": perBranch[k]})
	}
	return backend.Record{"title": "Shipments per branch", "rows": rows}, nil
}

func (b *Backend) patch(list *[]backend.Record, id string, patch map[string]any, notFound string) (backend.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := find(*list, id)
	if r == nil {
		return nil, apperr.Business(notFound)
	}
	for k, v := range patch {
		r[k] = v
	}
	return clone(r), nil
}

func find(list []backend.Record, id string) backend.Record {
	for _, r := range list {
		if r["_id"] == id {
			return r
		}
	}
	return nil
}

func clone(r backend.Record) backend.Record {
	out := make(backend.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func cloneAll(list []backend.Record) []backend.Record {
	out := make([]backend.Record, 0, len(list))
	for _, r := range list {
		out = append(out, clone(r))
	}
	return out
}
