package models

import (
	"time"
)

// TransitionRecord is one confirmed status change, as kept in the journal.
type TransitionRecord struct {
	ID         string         `json:"id"`
	ShipmentID string         `json:"shipmentId"`
	Action     string         `json:"action"`
	From       Status         `json:"from"`
	To         Status         `json:"to"`
	Payload    map[string]any `json:"payload,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
