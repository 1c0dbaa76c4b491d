package transitions

import (
	"fmt"
	"time"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/pkg/errors"
)

type Action string

const (
	ActionConfirmBranch    Action = "CONFIRM_BRANCH"
	ActionSchedulePickup   Action = "SCHEDULE_PICKUP_SUCCESS"
	ActionReschedulePickup Action = "RESCHEDULE_PICKUP"
	ActionSetOnTheWay      Action = "SET_ON_THE_WAY_PICKUP"
	ActionMoveToIssue      Action = "MOVE_TO_ISSUE"
	ActionClose            Action = "CLOSE"
	ActionMoveToReturn     Action = "MOVE_TO_RETURN"
	ActionMoveToClose      Action = "MOVE_TO_CLOSE"
)

type CallStatus string

const (
	CallPending CallStatus = "pending"
	CallSuccess CallStatus = "success"
	CallFailed  CallStatus = "failed"
)

func (c CallStatus) unresolved() bool {
	return c == CallPending || c == CallFailed
}

// Draft is the operator's local decision state for one shipment: selector
// values and checkboxes that are never sent back as shipment data and are
// discarded after the action.
type Draft struct {
	CallStatus   CallStatus           `json:"callStatus,omitempty"`
	DriverReady  bool                 `json:"driverReady,omitempty"`
	ProofChecked bool                 `json:"proofChecked,omitempty"`
	BranchID     string               `json:"branchId,omitempty"`
	VehicleID    string               `json:"vehicleId,omitempty"`
	PickupWindow *models.PickupWindow `json:"pickupWindow,omitempty"`
	PickupShift  string               `json:"pickupShift,omitempty"`
	Note         string               `json:"note,omitempty"`
}

// ErrUnavailable marks an action that cannot be taken from the shipment's
// current status with the given draft.
var ErrUnavailable = errors.New("action unavailable")

type check struct {
	now  time.Time
	lead time.Duration
}

type rule struct {
	from   models.Status
	action Action
	to     models.Status
	// guard decides whether the action is offered at all.
	guard func(Draft) bool
	// validate checks the operator's input before anything is sent.
	validate func(Draft, check) error
	payload  func(Draft) map[string]any
}

var rules = []rule{
	{
		from: models.StatusBooked, action: ActionConfirmBranch, to: models.StatusBranchAssigned,
		validate: func(d Draft, _ check) error {
			if d.BranchID == "" {
				return apperr.Validation("Please select a branch")
			}
			if d.VehicleID == "" {
				return apperr.Validation("Please select a vehicle")
			}
			return nil
		},
		payload: func(d Draft) map[string]any {
			return map[string]any{"branch_id": d.BranchID, "vehicle_id": d.VehicleID}
		},
	},
	{
		from: models.StatusBranchAssigned, action: ActionSchedulePickup, to: models.StatusPickupScheduled,
		guard: func(d Draft) bool { return d.CallStatus == CallSuccess },
		validate: func(d Draft, c check) error {
			return ValidatePickupWindow(d.PickupWindow, c.now, c.lead)
		},
		payload: pickupPayload,
	},
	{
		from: models.StatusBranchAssigned, action: ActionReschedulePickup, to: models.StatusPickupRescheduled,
		guard:    func(d Draft) bool { return d.CallStatus.unresolved() },
		validate: optionalWindow,
		payload:  pickupPayload,
	},
	{
		from: models.StatusPickupScheduled, action: ActionSetOnTheWay, to: models.StatusOnTheWayPickup,
		guard: func(d Draft) bool { return d.DriverReady },
	},
	{
		from: models.StatusPickupScheduled, action: ActionReschedulePickup, to: models.StatusPickupRescheduled,
		guard:    func(d Draft) bool { return !d.DriverReady },
		validate: optionalWindow,
		payload:  pickupPayload,
	},
	{
		from: models.StatusPickupRescheduled, action: ActionMoveToIssue, to: models.StatusPickupRescheduled,
		guard: func(d Draft) bool { return d.CallStatus.unresolved() },
		payload: func(Draft) map[string]any {
			return map[string]any{"reason": "ISSUE"}
		},
	},
	{
		from: models.StatusDeliveredSuccess, action: ActionMoveToIssue, to: models.StatusIssue,
	},
	{
		from: models.StatusDeliveredSuccess, action: ActionClose, to: models.StatusClosed,
		validate: func(d Draft, _ check) error {
			if !d.ProofChecked {
				return apperr.Validation("Please confirm the proof of delivery has been checked")
			}
			return nil
		},
	},
	{
		from: models.StatusDeliveryFailed, action: ActionMoveToReturn, to: models.StatusReturn,
	},
	{
		from: models.StatusDeliveryFailed, action: ActionMoveToClose, to: models.StatusClosed,
	},
}

func findRule(from models.Status, a Action) (rule, bool) {
	for _, r := range rules {
		if r.from == from && r.action == a {
			return r, true
		}
	}
	return rule{}, false
}

// ValidatePickupWindow rejects a missing or inverted window and one that
// starts sooner than lead from now.
func ValidatePickupWindow(w *models.PickupWindow, now time.Time, lead time.Duration) error {
	if w == nil || w.Start.IsZero() || w.End.IsZero() {
		return apperr.Validation("Please select both pickup start and end time")
	}
	if w.Start.After(w.End) {
		return apperr.Validation("Pickup start time must be before end time")
	}
	if w.Start.Before(now.Add(lead)) {
		return apperr.Validationf("Pickup start time must be at least %d minutes from now", int(lead.Minutes()))
	}
	return nil
}

func optionalWindow(d Draft, c check) error {
	if d.PickupWindow == nil {
		return nil
	}
	return ValidatePickupWindow(d.PickupWindow, c.now, c.lead)
}

func pickupPayload(d Draft) map[string]any {
	p := map[string]any{}
	if d.PickupWindow != nil {
		p["pickupWindow"] = map[string]any{
			"start": d.PickupWindow.Start.UTC().Format(time.RFC3339),
			"end":   d.PickupWindow.End.UTC().Format(time.RFC3339),
		}
	}
	if d.PickupShift != "" {
		p["pickupShift"] = d.PickupShift
	}
	return p
}

func unavailable(from models.Status, a Action) error {
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: fmt.Sprintf("%s is not available for a %s shipment", a, from),
		Err:     ErrUnavailable,
	}
}
