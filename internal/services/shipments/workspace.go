package shipments

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/events"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/pagination"
	"github.com/BearBump/CourierDesk/internal/projection"
	"github.com/BearBump/CourierDesk/internal/viewfilter"
)

type Backend interface {
	ListShipments(ctx context.Context, q backend.Query) ([]backend.Record, error)
}

type BranchSource interface {
	Branches(ctx context.Context) ([]models.Branch, error)
}

// Workspace holds the shipment rows the console works on. Rows are replaced
// wholesale by Reload and patched one at a time after confirmed transitions.
type Workspace struct {
	backend   Backend
	branches  BranchSource
	projector *projection.Projector
	pageSize  int

	mu       sync.RWMutex
	rows     []models.ShipmentView
	lastErr  error
	loadedAt time.Time
	reloads  int64
}

func New(b Backend, branches BranchSource, p *projection.Projector) *Workspace {
	return &Workspace{
		backend:   b,
		branches:  branches,
		projector: p,
		pageSize:  pagination.DefaultPageSize,
	}
}

func (w *Workspace) WithPageSize(n int) *Workspace {
	if n > 0 {
		w.pageSize = n
	}
	return w
}

// Reload refetches every shipment. On failure the list is emptied and the
// error kept for View; stale rows are never shown.
func (w *Workspace) Reload(ctx context.Context) error {
	recs, err := w.backend.ListShipments(ctx, nil)
	if err != nil {
		slog.Error("reload shipments", "error", err.Error())
		w.mu.Lock()
		w.rows = nil
		w.lastErr = err
		w.reloads++
		w.mu.Unlock()
		return err
	}

	p := w.projector
	if w.branches != nil {
		if branches, err := w.branches.Branches(ctx); err == nil {
			p = p.WithBranches(branches)
		} else {
			slog.Warn("branch names unavailable", "error", err.Error())
		}
	}
	rows := p.Shipments(recs)

	w.mu.Lock()
	w.rows = rows
	w.lastErr = nil
	w.loadedAt = time.Now().UTC()
	w.reloads++
	w.mu.Unlock()
	return nil
}

func (w *Workspace) Get(id string) (models.ShipmentView, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, r := range w.rows {
		if r.ID == id {
			return r, true
		}
	}
	return models.ShipmentView{}, false
}

// PatchStatus sets status and updatedAt on the row with id. No other row is
// touched. The row slice is copied first: View reads a snapshot without the
// lock.
func (w *Workspace) PatchStatus(id string, status models.Status, at time.Time) (models.ShipmentView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.rows {
		if w.rows[i].ID != id {
			continue
		}
		rows := append([]models.ShipmentView(nil), w.rows...)
		t := at
		rows[i].Status = status
		rows[i].UpdatedAt = &t
		w.rows = rows
		return rows[i], true
	}
	return models.ShipmentView{}, false
}

// Rows returns a copy of every loaded row.
func (w *Workspace) Rows() []models.ShipmentView {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.ShipmentView(nil), w.rows...)
}

type View struct {
	Tab        models.Tab            `json:"tab"`
	Filters    viewfilter.Filters    `json:"filters"`
	Rows       []models.ShipmentView `json:"rows"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"totalPages"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	Pages      []pagination.Item     `json:"pages"`
	Counts     map[models.Tab]int    `json:"counts"`
	// Error is the message of the last failed reload.
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
}

// View derives one tab's page from the loaded rows. size <= 0 uses the
// workspace page size.
func (w *Workspace) View(tab models.Tab, f viewfilter.Filters, page, size int) View {
	if size <= 0 {
		size = w.pageSize
	}
	w.mu.RLock()
	rows := w.rows
	lastErr := w.lastErr
	loadedAt := w.loadedAt
	w.mu.RUnlock()

	filtered := viewfilter.ForView(rows, tab, f)
	res := pagination.Paginate(filtered, page, size)

	v := View{
		Tab:        tab,
		Filters:    f,
		Rows:       res.Rows,
		Total:      res.Total,
		TotalPages: res.TotalPages,
		Page:       res.Page,
		PageSize:   res.PageSize,
		Pages:      pagination.Window(res.Page, res.TotalPages),
		Counts:     viewfilter.CountByTab(rows),
		LoadedAt:   loadedAt,
	}
	if lastErr != nil {
		v.Error = apperr.Message(lastErr, "")
	}
	return v
}

type Stats struct {
	Rows     int       `json:"rows"`
	Reloads  int64     `json:"reloads"`
	LoadedAt time.Time `json:"loadedAt"`
	Error    string    `json:"error,omitempty"`
}

func (w *Workspace) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := Stats{Rows: len(w.rows), Reloads: w.reloads, LoadedAt: w.loadedAt}
	if w.lastErr != nil {
		st.Error = w.lastErr.Error()
	}
	return st
}

// Attach makes the workspace follow bus signals: shipment:updated reloads
// after the debounce window, shipments:refresh reloads at once. With a
// non-nil trigger both go through it, so a sequential runner keeps reloads
// from overlapping. The returned func detaches both.
func (w *Workspace) Attach(ctx context.Context, bus *events.Bus, debounce time.Duration, trigger func()) (detach func()) {
	if trigger == nil {
		trigger = func() {
			go func() {
				if ctx.Err() != nil {
					return
				}
				_ = w.Reload(ctx)
			}()
		}
	}
	offUpdated := events.SubscribeDebounced(bus, events.ShipmentUpdated, debounce, trigger)
	offRefresh := bus.Subscribe(events.ShipmentsRefresh, func(events.Event) { trigger() })
	return func() {
		offUpdated()
		offRefresh()
	}
}
