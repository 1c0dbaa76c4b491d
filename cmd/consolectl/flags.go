package main

type Flags struct {
	BackendURL string
	Token      string
	Fake       bool
	FeeDivisor int64
	Currency   string

	Tab     string
	Query   string
	Branch  string
	Service string
	Page    int
	Size    int

	BranchID     string
	VehicleID    string
	CallStatus   string
	DriverReady  bool
	ProofChecked bool
	PickupStart  string
	PickupEnd    string
	PickupShift  string
	Note         string

	ReportType string
	From       string
	To         string
	PDFPath    string
}
