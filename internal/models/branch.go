package models

type Branch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	City     string `json:"city"`
	District string `json:"district"`
	// Vehicle-type key (motorbike, truck_2t, ...) to the number available.
	Vehicles map[string]int `json:"vehicles"`
}

type Vehicle struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Code     string  `json:"code"`
	Capacity float64 `json:"capacity"`
}
