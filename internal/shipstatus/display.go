package shipstatus

import "github.com/BearBump/CourierDesk/internal/models"

type Style string

const (
	StyleNeutral Style = "neutral"
	StyleInfo    Style = "info"
	StyleWarning Style = "warning"
	StyleSuccess Style = "success"
	StyleDanger  Style = "danger"
)

type Display struct {
	Label string `json:"label"`
	Style Style  `json:"style"`
}

var displays = map[models.Status]Display{
	models.StatusBooked:            {Label: "Booked", Style: StyleInfo},
	models.StatusBranchAssigned:    {Label: "Branch Assigned", Style: StyleInfo},
	models.StatusPickupScheduled:   {Label: "Pickup Scheduled", Style: StyleWarning},
	models.StatusPickupRescheduled: {Label: "Pickup Rescheduled", Style: StyleWarning},
	models.StatusOnTheWayPickup:    {Label: "On The Way Pickup", Style: StyleWarning},
	models.StatusDeliveredSuccess:  {Label: "Delivered", Style: StyleSuccess},
	models.StatusDeliveryFailed:    {Label: "Delivery Failed", Style: StyleDanger},
	models.StatusClosed:            {Label: "Closed", Style: StyleNeutral},
	models.StatusIssue:             {Label: "Issue", Style: StyleDanger},
	models.StatusReturn:            {Label: "Return", Style: StyleDanger},
}

// DisplayOf never fails: an unknown code is shown as the raw code with the
// neutral style.
func DisplayOf(status models.Status) Display {
	if d, ok := displays[status]; ok {
		return d
	}
	return Display{Label: string(status), Style: StyleNeutral}
}
