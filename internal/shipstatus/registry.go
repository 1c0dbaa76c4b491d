// Package shipstatus maps console tabs to backend status codes and status
// codes to how they are displayed.
package shipstatus

import "github.com/BearBump/CourierDesk/internal/models"

var tabOrder = []models.Tab{
	models.TabBooked,
	models.TabAssignBranch,
	models.TabSchedulePickup,
	models.TabPickup,
	models.TabDelivered,
	models.TabClosed,
	models.TabIssue,
	models.TabReturn,
}

var tabStatuses = map[models.Tab][]models.Status{
	models.TabBooked:         {models.StatusBooked},
	models.TabAssignBranch:   {models.StatusBranchAssigned},
	models.TabSchedulePickup: {models.StatusPickupScheduled, models.StatusPickupRescheduled},
	models.TabPickup:         {models.StatusOnTheWayPickup},
	models.TabDelivered:      {models.StatusDeliveredSuccess},
	models.TabClosed:         {models.StatusClosed},
	models.TabIssue:          {models.StatusDeliveryFailed, models.StatusIssue},
	models.TabReturn:         {models.StatusReturn},
}

var tabPages = map[models.Tab]models.Page{
	models.TabBooked:         models.PageBooked,
	models.TabAssignBranch:   models.PageBooked,
	models.TabSchedulePickup: models.PageBooked,
	models.TabPickup:         models.PagePickup,
	models.TabDelivered:      models.PageDelivered,
	models.TabClosed:         models.PageDelivered,
	models.TabIssue:          models.PageIssue,
	models.TabReturn:         models.PageReturn,
}

// Tabs returns every known tab in display order.
func Tabs() []models.Tab {
	out := make([]models.Tab, len(tabOrder))
	copy(out, tabOrder)
	return out
}

// TabStatuses returns the closed set of statuses shown under tab. An unknown
// tab has an empty set.
func TabStatuses(tab models.Tab) []models.Status {
	src := tabStatuses[tab]
	out := make([]models.Status, len(src))
	copy(out, src)
	return out
}

// InTab reports whether status belongs to tab.
func InTab(tab models.Tab, status models.Status) bool {
	for _, s := range tabStatuses[tab] {
		if s == status {
			return true
		}
	}
	return false
}

// TabOf returns the tab a status is listed under.
func TabOf(status models.Status) (models.Tab, bool) {
	for _, tab := range tabOrder {
		if InTab(tab, status) {
			return tab, true
		}
	}
	return "", false
}

// PageOf returns the screen that hosts tab.
func PageOf(tab models.Tab) (models.Page, bool) {
	p, ok := tabPages[tab]
	return p, ok
}

// LocationOf is the canonical place to look at a shipment in status.
func LocationOf(status models.Status) (models.Location, bool) {
	tab, ok := TabOf(status)
	if !ok {
		return models.Location{}, false
	}
	return models.Location{Page: tabPages[tab], Tab: tab}, true
}
