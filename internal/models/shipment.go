package models

import "time"

// Placeholders rendered when every known source of an attribute is absent.
const (
	PlaceholderText    = "N/A"
	PlaceholderMeasure = "—"
)

// ShipmentView is the flat, normalized shape every table and detail panel
// reads. It is rebuilt on every fetch and never holds authoritative state.
type ShipmentView struct {
	ID         string `json:"id"`
	TrackingID string `json:"trackingId"`
	Status     Status `json:"status"`

	SenderName      string `json:"senderName"`
	SenderPhone     string `json:"senderPhone"`
	SenderAddress   string `json:"senderAddress"`
	ReceiverName    string `json:"receiverName"`
	ReceiverPhone   string `json:"receiverPhone"`
	ReceiverAddress string `json:"receiverAddress"`

	ProductCategory  string `json:"productCategory"`
	Weight           string `json:"weight"`
	Dimensions       string `json:"dimensions"`
	ActualWeight     string `json:"actualWeight"`
	ActualDimensions string `json:"actualDimensions"`
	ServiceType      string `json:"serviceType"`

	// Amounts are in the backend's base integer unit.
	FeeAmount       *int64 `json:"feeAmount,omitempty"`
	ActualFeeAmount *int64 `json:"actualFeeAmount,omitempty"`
	Fee             string `json:"fee"`
	ActualFee       string `json:"actualFee"`

	PickupWindow *PickupWindow `json:"pickupWindow,omitempty"`
	PickupShift  string        `json:"pickupShift"`

	BranchID   string `json:"branchId"`
	BranchName string `json:"branchName"`
	VehicleID  string `json:"vehicleId"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type PickupWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
