// Package transitions runs operator status actions on shipments: local
// precondition checks, the status-update call, then an optimistic patch of
// the loaded row and a refresh signal for other views.
//
// The rule table mirrors what the console offers; the backend remains the
// authority and may still reject a transition.
package transitions

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/shipstatus"
	"github.com/google/uuid"
)

type Backend interface {
	UpdateShipmentStatus(ctx context.Context, id, status string, payload map[string]any) (backend.Record, error)
}

// Workspace holds the loaded shipment rows.
type Workspace interface {
	Get(id string) (models.ShipmentView, bool)
	PatchStatus(id string, status models.Status, at time.Time) (models.ShipmentView, bool)
}

type Broadcaster interface {
	ShipmentUpdated(ctx context.Context, shipmentID string, status models.Status, at time.Time)
}

// Fleet lists the vehicles a branch can assign.
type Fleet interface {
	Available(ctx context.Context, branchID string) ([]models.Vehicle, error)
}

type Journal interface {
	AppendTransition(ctx context.Context, rec models.TransitionRecord) error
}

// Plan is a validated transition, ready to send.
type Plan struct {
	ShipmentID string          `json:"shipmentId"`
	Action     Action          `json:"action"`
	From       models.Status   `json:"from"`
	To         models.Status   `json:"to"`
	Payload    map[string]any  `json:"payload,omitempty"`
	Next       models.Location `json:"next"`
	// Stay is true when the shipment remains on the current tab.
	Stay bool `json:"stay"`
}

type Result struct {
	Plan
	Shipment models.ShipmentView `json:"shipment"`
}

type Controller struct {
	backend     Backend
	workspace   Workspace
	broadcaster Broadcaster
	journal     Journal
	fleet       Fleet

	pickupLead time.Duration
	now        func() time.Time
}

func New(b Backend, ws Workspace) *Controller {
	return &Controller{
		backend:    b,
		workspace:  ws,
		pickupLead: 30 * time.Minute,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *Controller) WithBroadcaster(b Broadcaster) *Controller {
	c.broadcaster = b
	return c
}

func (c *Controller) WithJournal(j Journal) *Controller {
	c.journal = j
	return c
}

func (c *Controller) WithFleet(f Fleet) *Controller {
	c.fleet = f
	return c
}

func (c *Controller) WithPickupLead(d time.Duration) *Controller {
	if d > 0 {
		c.pickupLead = d
	}
	return c
}

func (c *Controller) WithClock(now func() time.Time) *Controller {
	if now != nil {
		c.now = now
	}
	return c
}

// Available lists the actions offered for a shipment in status with the
// given draft, in table order. Input validation is not applied.
func Available(status models.Status, d Draft) []Action {
	out := make([]Action, 0, 2)
	for _, r := range rules {
		if r.from != status {
			continue
		}
		if r.guard != nil && !r.guard(d) {
			continue
		}
		out = append(out, r.action)
	}
	return out
}

// Plan checks the action against s and the draft without any side effect.
func (c *Controller) Plan(s models.ShipmentView, a Action, d Draft) (Plan, error) {
	r, ok := findRule(s.Status, a)
	if !ok || (r.guard != nil && !r.guard(d)) {
		return Plan{}, unavailable(s.Status, a)
	}
	if r.validate != nil {
		if err := r.validate(d, check{now: c.now(), lead: c.pickupLead}); err != nil {
			return Plan{}, err
		}
	}

	p := Plan{ShipmentID: s.ID, Action: a, From: s.Status, To: r.to}
	if r.payload != nil {
		p.Payload = r.payload(d)
	}
	if d.Note != "" {
		if p.Payload == nil {
			p.Payload = map[string]any{}
		}
		p.Payload["note"] = d.Note
	}
	if len(p.Payload) == 0 {
		p.Payload = nil
	}

	next, _ := shipstatus.LocationOf(r.to)
	p.Next = next
	if cur, ok := shipstatus.LocationOf(s.Status); ok {
		p.Stay = cur == next
	}
	return p, nil
}

// Execute runs action a on the loaded shipment id. Nothing is sent when the
// action is unavailable or the draft is invalid; on a failed call the row is
// left as it was.
func (c *Controller) Execute(ctx context.Context, id string, a Action, d Draft) (Result, error) {
	s, ok := c.workspace.Get(id)
	if !ok {
		return Result{}, apperr.Validationf("shipment %s is not loaded", id)
	}
	p, err := c.Plan(s, a, d)
	if err != nil {
		slog.Warn("transition rejected", "shipment_id", id, "action", string(a), "error", err.Error())
		return Result{}, err
	}
	if a == ActionConfirmBranch {
		if err := c.checkVehicle(ctx, d.BranchID, d.VehicleID); err != nil {
			slog.Warn("transition rejected", "shipment_id", id, "action", string(a), "error", err.Error())
			return Result{}, err
		}
	}

	if _, err := c.backend.UpdateShipmentStatus(ctx, id, string(p.To), p.Payload); err != nil {
		slog.Error("update shipment status", "shipment_id", id, "status", string(p.To), "error", err.Error())
		return Result{}, err
	}

	at := c.now()
	row, ok := c.workspace.PatchStatus(id, p.To, at)
	if !ok {
		// reloaded away meanwhile; the next fetch brings the new status
		row = s
		row.Status = p.To
		row.UpdatedAt = &at
	}

	if c.broadcaster != nil {
		c.broadcaster.ShipmentUpdated(ctx, id, p.To, at)
	}
	if c.journal != nil {
		rec := models.TransitionRecord{
			ID:         uuid.NewString(),
			ShipmentID: id,
			Action:     string(a),
			From:       p.From,
			To:         p.To,
			Payload:    p.Payload,
			CreatedAt:  at,
		}
		if err := c.journal.AppendTransition(ctx, rec); err != nil {
			slog.Error("append transition journal", "shipment_id", id, "error", err.Error())
		}
	}

	return Result{Plan: p, Shipment: row}, nil
}

// checkVehicle rejects a vehicle the branch cannot assign.
func (c *Controller) checkVehicle(ctx context.Context, branchID, vehicleID string) error {
	if c.fleet == nil {
		return nil
	}
	vehicles, err := c.fleet.Available(ctx, branchID)
	if err != nil {
		return err
	}
	for _, v := range vehicles {
		if v.ID == vehicleID {
			return nil
		}
	}
	return apperr.Validation("Selected vehicle is not available at this branch")
}
