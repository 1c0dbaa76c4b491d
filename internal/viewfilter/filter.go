// Package viewfilter derives the rows a shipment tab shows.
package viewfilter

import (
	"strings"

	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/shipstatus"
)

// Filters is the free-text and selector state of a list screen.
type Filters struct {
	// Query matches tracking ids and internal ids, case-insensitively, as a substring.
	Query string `json:"query,omitempty"`
	// BranchID is matched exactly. Use BranchIDFor to resolve a selection.
	BranchID string `json:"branchId,omitempty"`
	// ServiceType is matched exactly, ignoring case.
	ServiceType string `json:"serviceType,omitempty"`
}

// Reset clears every free-text and selector filter.
func (f Filters) Reset() Filters {
	return Filters{}
}

func (f Filters) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && f.BranchID == "" && strings.TrimSpace(f.ServiceType) == ""
}

// ForView keeps the shipments whose status belongs to tab and that pass
// every set filter. The input slice is not modified.
func ForView(all []models.ShipmentView, tab models.Tab, f Filters) []models.ShipmentView {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	service := strings.TrimSpace(f.ServiceType)

	out := make([]models.ShipmentView, 0, len(all))
	for _, s := range all {
		if !shipstatus.InTab(tab, s.Status) {
			continue
		}
		if f.BranchID != "" && s.BranchID != f.BranchID {
			continue
		}
		if service != "" && !strings.EqualFold(s.ServiceType, service) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.TrackingID), query) &&
			!strings.Contains(strings.ToLower(s.ID), query) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// BranchIDFor resolves a branch selection (id, code or full name) to the
// branch id. Names are compared whole, so "Central" never selects
// "Central East".
func BranchIDFor(branches []models.Branch, selection string) (string, bool) {
	sel := strings.TrimSpace(selection)
	if sel == "" {
		return "", false
	}
	for _, b := range branches {
		if b.ID == sel {
			return b.ID, true
		}
	}
	for _, b := range branches {
		if strings.EqualFold(b.Code, sel) || strings.EqualFold(b.Name, sel) {
			return b.ID, true
		}
	}
	return "", false
}

// CountByTab counts shipments per tab, for the tab badges.
func CountByTab(all []models.ShipmentView) map[models.Tab]int {
	out := make(map[models.Tab]int)
	for _, s := range all {
		if tab, ok := shipstatus.TabOf(s.Status); ok {
			out[tab]++
		}
	}
	return out
}
