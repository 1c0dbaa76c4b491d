package models

// Status is a backend shipment status code. The set is open: codes the
// console does not know are carried through unchanged.
type Status string

const (
	StatusBooked            Status = "BOOKED"
	StatusBranchAssigned    Status = "BRANCH_ASSIGNED"
	StatusPickupScheduled   Status = "PICKUP_SCHEDULED"
	StatusPickupRescheduled Status = "PICKUP_RESCHEDULED"
	StatusOnTheWayPickup    Status = "ON_THE_WAY_PICKUP"
	StatusDeliveredSuccess  Status = "DELIVERED_SUCCESS"
	StatusDeliveryFailed    Status = "DELIVERY_FAILED"
	StatusClosed            Status = "CLOSED"
	StatusIssue             Status = "ISSUE"
	StatusReturn            Status = "RETURN"
)

// Tab groups one or more statuses into a single list view.
type Tab string

const (
	TabBooked         Tab = "BOOKED"
	TabAssignBranch   Tab = "ASSIGN_BRANCH"
	TabSchedulePickup Tab = "SCHEDULE_PICKUP"
	TabPickup         Tab = "PICKUP"
	TabDelivered      Tab = "DELIVERED"
	TabClosed         Tab = "CLOSED"
	TabIssue          Tab = "ISSUE"
	TabReturn         Tab = "RETURN"
)

// Page is a top-level console screen.
type Page string

const (
	PageBooked    Page = "shipments/booked"
	PagePickup    Page = "shipments/pickup"
	PageDelivered Page = "shipments/delivered"
	PageIssue     Page = "shipments/issue"
	PageReturn    Page = "shipments/return"
)

// Location is where the console sends the operator next.
type Location struct {
	Page Page `json:"page"`
	Tab  Tab  `json:"tab"`
}
