package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/projection"
	"github.com/BearBump/CourierDesk/internal/shipstatus"
)

type Backend interface {
	DashboardStats(ctx context.Context, q backend.Query) (backend.Record, error)
}

type StatusCount struct {
	Status models.Status    `json:"status"`
	Label  string           `json:"label"`
	Style  shipstatus.Style `json:"style"`
	Count  int              `json:"count"`
}

// Series is chart data, ordered by label.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type Snapshot struct {
	TotalShipments int           `json:"totalShipments"`
	TotalCustomers int           `json:"totalCustomers"`
	TotalBranches  int           `json:"totalBranches"`
	Revenue        string        `json:"revenue"`
	ByStatus       []StatusCount `json:"byStatus"`
	StatusChart    Series        `json:"statusChart"`
	RevenueChart   Series        `json:"revenueChart"`
	FetchedAt      time.Time     `json:"fetchedAt"`
	Error          string        `json:"error,omitempty"`
}

type Service struct {
	backend   Backend
	projector *projection.Projector

	mu   sync.RWMutex
	snap Snapshot
}

func New(b Backend, p *projection.Projector) *Service {
	return &Service{backend: b, projector: p}
}

// Refresh replaces the snapshot with a fresh one; the response that lands
// last wins. A failed fetch leaves an empty snapshot carrying the error.
func (s *Service) Refresh(ctx context.Context) error {
	stats, err := s.backend.DashboardStats(ctx, nil)
	now := time.Now().UTC()
	var snap Snapshot
	if err != nil {
		snap = Snapshot{FetchedAt: now, Error: apperr.Message(err, ""), Revenue: s.projector.Money(nil)}
	} else {
		snap = s.Build(stats)
		snap.FetchedAt = now
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return err
}

func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Build turns a stats record into a snapshot.
func (s *Service) Build(stats backend.Record) Snapshot {
	snap := Snapshot{
		TotalShipments: intField(stats, "totalShipments", "total_shipments", "shipments"),
		TotalCustomers: intField(stats, "totalCustomers", "total_customers", "customers"),
		TotalBranches:  intField(stats, "totalBranches", "total_branches", "branches"),
	}
	if v, ok := number(first(stats, "revenue", "totalRevenue", "total_revenue")); ok {
		amt := int64(v)
		snap.Revenue = s.projector.Money(&amt)
	} else {
		snap.Revenue = s.projector.Money(nil)
	}

	byStatus := numberMap(first(stats, "byStatus", "by_status", "statusCounts"))
	statuses := make([]string, 0, len(byStatus))
	for k := range byStatus {
		statuses = append(statuses, k)
	}
	sort.Strings(statuses)
	snap.ByStatus = make([]StatusCount, 0, len(statuses))
	for _, k := range statuses {
		st := models.Status(k)
		d := shipstatus.DisplayOf(st)
		snap.ByStatus = append(snap.ByStatus, StatusCount{Status: st, Label: d.Label, Style: d.Style, Count: int(byStatus[k])})
	}

	snap.StatusChart = SeriesOf(byStatus)
	snap.RevenueChart = SeriesOf(numberMap(first(stats, "revenueByMonth", "revenue_by_month", "monthlyRevenue")))
	return snap
}

// SeriesOf orders a label->value map by label.
func SeriesOf(m map[string]float64) Series {
	out := Series{Labels: make([]string, 0, len(m)), Values: make([]float64, 0, len(m))}
	for k := range m {
		out.Labels = append(out.Labels, k)
	}
	sort.Strings(out.Labels)
	for _, k := range out.Labels {
		out.Values = append(out.Values, m[k])
	}
	return out
}

func first(rec backend.Record, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func intField(rec backend.Record, keys ...string) int {
	v, _ := number(first(rec, keys...))
	return int(v)
}

// numberMap accepts {"k": n} or [{"label"|"status"|"month": k, "count"|"value"|"total": n}].
func numberMap(v any) map[string]float64 {
	out := map[string]float64{}
	switch x := v.(type) {
	case map[string]any:
		for k, raw := range x {
			if n, ok := number(raw); ok {
				out[k] = n
			}
		}
	case []any:
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			label, _ := first(m, "label", "status", "month", "_id").(string)
			n, ok := number(first(m, "count", "value", "total"))
			if label != "" && ok {
				out[label] += n
			}
		}
	}
	return out
}
