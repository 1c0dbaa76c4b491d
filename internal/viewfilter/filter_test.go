package viewfilter

import (
	"testing"

	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/shipstatus"
	"github.com/stretchr/testify/require"
)

func sample() []models.ShipmentView {
	return []models.ShipmentView{
		{ID: "1", TrackingID: "TRK-AAA", Status: models.StatusBooked, BranchID: "B1", ServiceType: "Express"},
		{ID: "2", TrackingID: "TRK-BBB", Status: models.StatusBooked, BranchID: "B2", ServiceType: "standard"},
		{ID: "3", TrackingID: "TRK-CCC", Status: models.StatusPickupScheduled, BranchID: "B1", ServiceType: "express"},
		{ID: "4", TrackingID: "TRK-DDD", Status: models.StatusPickupRescheduled, BranchID: "B10", ServiceType: "standard"},
		{ID: "5", TrackingID: "TRK-EEE", Status: "SOMETHING_NEW", BranchID: "B1"},
		{ID: "6", TrackingID: "XYZ-aaa", Status: models.StatusClosed, BranchID: "B2"},
	}
}

func TestForView_StatusMembership(t *testing.T) {
	all := sample()
	for _, tab := range shipstatus.Tabs() {
		got := ForView(all, tab, Filters{})
		ids := map[string]bool{}
		for _, s := range got {
			ids[s.ID] = true
		}
		for _, s := range all {
			require.Equal(t, shipstatus.InTab(tab, s.Status), ids[s.ID], "tab %s shipment %s", tab, s.ID)
		}
	}
}

func TestForView_ScheduleTabIncludesRescheduled(t *testing.T) {
	got := ForView(sample(), models.TabSchedulePickup, Filters{})
	require.Len(t, got, 2)
}

func TestForView_Query(t *testing.T) {
	got := ForView(sample(), models.TabBooked, Filters{Query: " trk-a "})
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)

	got = ForView(sample(), models.TabClosed, Filters{Query: "AAA"})
	require.Len(t, got, 1)
	require.Equal(t, "6", got[0].ID)

	// internal id matches too
	got = ForView(sample(), models.TabBooked, Filters{Query: "2"})
	require.Len(t, got, 1)
}

func TestForView_BranchIsExact(t *testing.T) {
	got := ForView(sample(), models.TabSchedulePickup, Filters{BranchID: "B1"})
	require.Len(t, got, 1)
	require.Equal(t, "3", got[0].ID)
}

func TestForView_ServiceTypeIgnoresCase(t *testing.T) {
	got := ForView(sample(), models.TabBooked, Filters{ServiceType: "EXPRESS"})
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)
}

func TestForView_ResetEqualsStatusOnlyView(t *testing.T) {
	all := sample()
	f := Filters{Query: "zzz", BranchID: "B2", ServiceType: "x"}
	require.Empty(t, ForView(all, models.TabBooked, f))

	reset := f.Reset()
	require.True(t, reset.IsZero())
	require.Equal(t, ForView(all, models.TabBooked, Filters{}), ForView(all, models.TabBooked, reset))
}

func TestForView_DoesNotMutateInput(t *testing.T) {
	all := sample()
	_ = ForView(all, models.TabBooked, Filters{Query: "bbb"})
	require.Equal(t, sample(), all)
}

func TestBranchIDFor(t *testing.T) {
	branches := []models.Branch{
		{ID: "B1", Name: "Central", Code: "CEN"},
		{ID: "B10", Name: "Central East", Code: "CEE"},
	}
	id, ok := BranchIDFor(branches, "Central")
	require.True(t, ok)
	require.Equal(t, "B1", id)

	id, ok = BranchIDFor(branches, "cee")
	require.True(t, ok)
	require.Equal(t, "B10", id)

	id, ok = BranchIDFor(branches, "B10")
	require.True(t, ok)
	require.Equal(t, "B10", id)

	_, ok = BranchIDFor(branches, "Centr")
	require.False(t, ok)
	_, ok = BranchIDFor(branches, "")
	require.False(t, ok)
}

func TestCountByTab(t *testing.T) {
	c := CountByTab(sample())
	require.Equal(t, 2, c[models.TabBooked])
	require.Equal(t, 2, c[models.TabSchedulePickup])
	require.Equal(t, 1, c[models.TabClosed])
	require.Zero(t, c[models.TabIssue])
}
