package models

type CustomerStatus string

const (
	CustomerActive  CustomerStatus = "Active"
	CustomerBlocked CustomerStatus = "Blocked"
)

type Customer struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	Address           string         `json:"address"`
	City              string         `json:"city"`
	SuccessDeliveries int            `json:"successDeliveries"`
	FailedDeliveries  int            `json:"failedDeliveries"`
	TotalOrders       int            `json:"totalOrders"`
	Status            CustomerStatus `json:"status"`
}
