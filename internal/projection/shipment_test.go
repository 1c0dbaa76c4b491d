package projection

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestShipment_FullRecord(t *testing.T) {
	p := NewProjector(100, "$")
	v := p.Shipment(decode(t, `{
  "id": "s1",
  "trackingId": "TRK-001",
  "status": "booked",
  "sender": {"name": "  Alice   Nguyen ", "phone": "0901", "address": {"street": "1 Main", "district": "D1", "city": "HCM"}},
  "receiver": {"name": "Bob", "phone": "0902", "address": "2 Side St"},
  "product": {"category": "Docs", "weight": 1.5, "dimensions": {"length": 10, "width": 20, "height": 5}},
  "serviceType": "express",
  "fee": 1250,
  "pickupWindow": {"start": "2025-01-01T09:00:00Z", "end": "2025-01-01T11:00:00Z"},
  "pickupShift": "morning",
  "branch": {"id": "B1", "name": "Central"},
  "createdAt": "2025-01-01T08:00:00Z"
}`))

	require.Equal(t, "s1", v.ID)
	require.Equal(t, "TRK-001", v.TrackingID)
	require.Equal(t, models.StatusBooked, v.Status)
	require.Equal(t, "Alice Nguyen", v.SenderName)
	require.Equal(t, "1 Main, D1, HCM", v.SenderAddress)
	require.Equal(t, "2 Side St", v.ReceiverAddress)
	require.Equal(t, "1.5 kg", v.Weight)
	require.Equal(t, "10x20x5 cm", v.Dimensions)
	require.Equal(t, "$12.50", v.Fee)
	require.Equal(t, int64(1250), *v.FeeAmount)
	require.Equal(t, "B1", v.BranchID)
	require.Equal(t, "Central", v.BranchName)
	require.NotNil(t, v.PickupWindow)
	require.Equal(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), v.PickupWindow.Start)
	require.NotNil(t, v.CreatedAt)
}

func TestShipment_FallbackSourceWins(t *testing.T) {
	p := NewProjector(1, "")

	cases := []struct {
		name string
		rec  string
		get  func(models.ShipmentView) string
		want string
	}{
		{"branch name from courier", `{"courier": {"branchName": "North"}}`, func(v models.ShipmentView) string { return v.BranchName }, "North"},
		{"branch name snake", `{"branch_name": "South"}`, func(v models.ShipmentView) string { return v.BranchName }, "South"},
		{"branch name nested", `{"branch": {"name": "East"}}`, func(v models.ShipmentView) string { return v.BranchName }, "East"},
		{"actual weight nested", `{"details": {"actualWeight": 3}}`, func(v models.ShipmentView) string { return v.ActualWeight }, "3 kg"},
		{"actual weight snake", `{"actual_weight": "2.5 kg"}`, func(v models.ShipmentView) string { return v.ActualWeight }, "2.5 kg"},
		{"weight nested", `{"details": {"weight": 0.25}}`, func(v models.ShipmentView) string { return v.Weight }, "0.25 kg"},
		{"tracking snake", `{"tracking_id": "T9"}`, func(v models.ShipmentView) string { return v.TrackingID }, "T9"},
		{"blank first source skipped", `{"trackingId": "  ", "trackingNumber": "T10"}`, func(v models.ShipmentView) string { return v.TrackingID }, "T10"},
		{"null first source skipped", `{"branchId": null, "branch_id": "B7"}`, func(v models.ShipmentView) string { return v.BranchID }, "B7"},
		{"service nested", `{"service": {"type": "standard"}}`, func(v models.ShipmentView) string { return v.ServiceType }, "standard"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.get(p.Shipment(decode(t, tc.rec))))
		})
	}
}

func TestShipment_AllSourcesAbsentGivesPlaceholders(t *testing.T) {
	v := NewProjector(1, "$").Shipment(map[string]any{})

	for _, s := range []string{
		v.ID, v.TrackingID, v.SenderName, v.SenderPhone, v.SenderAddress,
		v.ReceiverName, v.ReceiverPhone, v.ReceiverAddress, v.ProductCategory,
		v.ServiceType, v.PickupShift, v.BranchName,
	} {
		require.Equal(t, models.PlaceholderText, s)
	}
	for _, s := range []string{v.Weight, v.Dimensions, v.ActualWeight, v.ActualDimensions, v.Fee, v.ActualFee} {
		require.Equal(t, models.PlaceholderMeasure, s)
	}
	require.Equal(t, models.Status(models.PlaceholderText), v.Status)
	require.Nil(t, v.FeeAmount)
	require.Nil(t, v.PickupWindow)
}

func TestShipment_UnknownFieldNamesRenderPlaceholder(t *testing.T) {
	v := NewProjector(1, "").Shipment(decode(t, `{"branchTitle": "Renamed", "wt": 5}`))
	require.Equal(t, models.PlaceholderText, v.BranchName)
	require.Equal(t, models.PlaceholderMeasure, v.Weight)
}

func TestShipment_BranchNameFromCachedList(t *testing.T) {
	p := NewProjector(1, "").WithBranches([]models.Branch{{ID: "B1", Name: "Central"}})
	v := p.Shipment(decode(t, `{"branch_id": "B1"}`))
	require.Equal(t, "Central", v.BranchName)

	v = p.Shipment(decode(t, `{"branch_id": "B2"}`))
	require.Equal(t, models.PlaceholderText, v.BranchName)
}

func TestShipment_HalfPickupWindowIsDropped(t *testing.T) {
	v := NewProjector(1, "").Shipment(decode(t, `{"pickupWindow": {"start": "2025-01-01T09:00:00Z"}}`))
	require.Nil(t, v.PickupWindow)
}

func TestMoney(t *testing.T) {
	p := NewProjector(25000, "$")
	n := int64(50000)
	require.Equal(t, "$2.00", p.Money(&n))
	require.Equal(t, models.PlaceholderMeasure, p.Money(nil))
}

func TestShipment_NumericStringFeeAndEpochTime(t *testing.T) {
	v := NewProjector(100, "€").Shipment(decode(t, `{"actualFee": "199", "updatedAt": 1735689600000}`))
	require.Equal(t, "€1.99", v.ActualFee)
	require.NotNil(t, v.UpdatedAt)
	require.Equal(t, 2025, v.UpdatedAt.Year())
}
