package messages

import (
	"time"
)

// ShipmentUpdated is published after a confirmed status transition so other
// console instances refresh their views.
type ShipmentUpdated struct {
	ShipmentID string    `json:"shipment_id"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Origin is the instance id of the publisher; an instance skips its own
	// messages.
	Origin string `json:"origin"`
}
