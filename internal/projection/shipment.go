// Package projection turns raw backend records into the console's view
// models.
//
// The backend is not consistent about field names across endpoints, so every
// attribute is read from a fixed, ordered list of candidate paths and the
// first present value wins. When every candidate is absent the attribute gets
// a literal placeholder, never an empty or null value.
package projection

import (
	"fmt"
	"strings"

	"github.com/BearBump/CourierDesk/internal/models"
)

// Candidate paths per attribute, most specific first.
var (
	shipmentIDPaths       = []string{"id", "_id", "courierId", "courier.id"}
	trackingIDPaths       = []string{"trackingId", "tracking_id", "trackingNumber", "courier.trackingId", "code"}
	statusPaths           = []string{"status", "currentStatus", "courier.status"}
	senderNamePaths       = []string{"sender.name", "senderName", "sender_name"}
	senderPhonePaths      = []string{"sender.phone", "senderPhone", "sender_phone"}
	senderAddressPaths    = []string{"sender.address", "senderAddress", "sender_address", "pickupAddress"}
	receiverNamePaths     = []string{"receiver.name", "receiverName", "receiver_name"}
	receiverPhonePaths    = []string{"receiver.phone", "receiverPhone", "receiver_phone"}
	receiverAddressPaths  = []string{"receiver.address", "receiverAddress", "receiver_address", "deliveryAddress"}
	categoryPaths         = []string{"product.category", "productCategory", "category", "details.category"}
	weightPaths           = []string{"product.weight", "weight", "details.weight"}
	dimensionsPaths       = []string{"product.dimensions", "dimensions", "details.dimensions"}
	actualWeightPaths     = []string{"actualWeight", "actual_weight", "details.actualWeight", "product.actualWeight"}
	actualDimensionsPaths = []string{"actualDimensions", "actual_dimensions", "details.actualDimensions", "product.actualDimensions"}
	serviceTypePaths      = []string{"serviceType", "service_type", "service.type", "service"}
	feePaths              = []string{"fee", "estimatedFee", "estimated_fee", "price"}
	actualFeePaths        = []string{"actualFee", "actual_fee", "finalFee"}
	pickupStartPaths      = []string{"pickupWindow.start", "pickup_window.start", "pickupStart"}
	pickupEndPaths        = []string{"pickupWindow.end", "pickup_window.end", "pickupEnd"}
	pickupShiftPaths      = []string{"pickupShift", "pickup_shift", "pickupWindow.shift"}
	branchIDPaths         = []string{"branchId", "branch_id", "branch.id", "branch._id", "courier.branchId"}
	branchNamePaths       = []string{"courier.branchName", "branch_name", "branch.name", "branchName"}
	vehicleIDPaths        = []string{"vehicleId", "vehicle_id", "vehicle.id", "vehicle._id"}
	createdAtPaths        = []string{"createdAt", "created_at"}
	updatedAtPaths        = []string{"updatedAt", "updated_at"}
)

type Projector struct {
	// FeeDivisor converts base-unit amounts into display currency.
	FeeDivisor     int64
	CurrencySymbol string
	// BranchNames resolves a branch id to a display name when the record
	// carries only the id.
	BranchNames map[string]string
}

func NewProjector(feeDivisor int64, currencySymbol string) *Projector {
	if feeDivisor <= 0 {
		feeDivisor = 1
	}
	return &Projector{FeeDivisor: feeDivisor, CurrencySymbol: currencySymbol}
}

// WithBranches returns a copy of p that resolves branch names from branches.
func (p *Projector) WithBranches(branches []models.Branch) *Projector {
	names := make(map[string]string, len(branches))
	for _, b := range branches {
		if b.ID != "" && b.Name != models.PlaceholderText {
			names[b.ID] = b.Name
		}
	}
	cp := *p
	cp.BranchNames = names
	return &cp
}

func (p *Projector) Shipment(rec map[string]any) models.ShipmentView {
	v := models.ShipmentView{
		ID:         firstString(rec, models.PlaceholderText, shipmentIDPaths...),
		TrackingID: firstString(rec, models.PlaceholderText, trackingIDPaths...),
		Status:     models.Status(strings.ToUpper(firstString(rec, "", statusPaths...))),

		SenderName:      firstString(rec, models.PlaceholderText, senderNamePaths...),
		SenderPhone:     firstString(rec, models.PlaceholderText, senderPhonePaths...),
		SenderAddress:   address(rec, senderAddressPaths...),
		ReceiverName:    firstString(rec, models.PlaceholderText, receiverNamePaths...),
		ReceiverPhone:   firstString(rec, models.PlaceholderText, receiverPhonePaths...),
		ReceiverAddress: address(rec, receiverAddressPaths...),

		ProductCategory:  firstString(rec, models.PlaceholderText, categoryPaths...),
		Weight:           weight(rec, weightPaths...),
		Dimensions:       dimensions(rec, dimensionsPaths...),
		ActualWeight:     weight(rec, actualWeightPaths...),
		ActualDimensions: dimensions(rec, actualDimensionsPaths...),
		ServiceType:      firstString(rec, models.PlaceholderText, serviceTypePaths...),

		PickupShift: firstString(rec, models.PlaceholderText, pickupShiftPaths...),
		BranchID:    firstString(rec, "", branchIDPaths...),
		VehicleID:   firstString(rec, "", vehicleIDPaths...),

		CreatedAt: firstTime(rec, createdAtPaths...),
		UpdatedAt: firstTime(rec, updatedAtPaths...),
	}
	if v.Status == "" {
		v.Status = models.Status(models.PlaceholderText)
	}

	v.FeeAmount = amount(rec, feePaths...)
	v.ActualFeeAmount = amount(rec, actualFeePaths...)
	v.Fee = p.Money(v.FeeAmount)
	v.ActualFee = p.Money(v.ActualFeeAmount)

	start := firstTime(rec, pickupStartPaths...)
	end := firstTime(rec, pickupEndPaths...)
	if start != nil && end != nil {
		v.PickupWindow = &models.PickupWindow{Start: *start, End: *end}
	}

	v.BranchName = firstString(rec, "", branchNamePaths...)
	if v.BranchName == "" {
		v.BranchName = p.BranchNames[v.BranchID]
	}
	if v.BranchName == "" {
		v.BranchName = models.PlaceholderText
	}
	return v
}

func (p *Projector) Shipments(recs []map[string]any) []models.ShipmentView {
	out := make([]models.ShipmentView, 0, len(recs))
	for _, r := range recs {
		out = append(out, p.Shipment(r))
	}
	return out
}

// Money formats a base-unit amount for display.
func (p *Projector) Money(amount *int64) string {
	if amount == nil {
		return models.PlaceholderMeasure
	}
	div := p.FeeDivisor
	if div <= 0 {
		div = 1
	}
	return fmt.Sprintf("%s%.2f", p.CurrencySymbol, float64(*amount)/float64(div))
}

func amount(rec map[string]any, paths ...string) *int64 {
	for _, path := range paths {
		v, ok := lookup(rec, path)
		if !ok {
			continue
		}
		if n, ok := asInt64(v); ok {
			return &n
		}
	}
	return nil
}

func weight(rec map[string]any, paths ...string) string {
	for _, path := range paths {
		v, ok := lookup(rec, path)
		if !ok {
			continue
		}
		if n, ok := v.(float64); ok {
			return fmt.Sprintf("%s kg", trimFloat(n))
		}
		if s, ok := asString(v); ok {
			return s
		}
	}
	return models.PlaceholderMeasure
}

func dimensions(rec map[string]any, paths ...string) string {
	for _, path := range paths {
		v, ok := lookup(rec, path)
		if !ok {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			l, lok := firstNumber(m, "length", "l")
			w, wok := firstNumber(m, "width", "w")
			h, hok := firstNumber(m, "height", "h")
			if lok && wok && hok {
				return fmt.Sprintf("%sx%sx%s cm", trimFloat(l), trimFloat(w), trimFloat(h))
			}
			continue
		}
		if s, ok := asString(v); ok {
			return s
		}
	}
	return models.PlaceholderMeasure
}

// address accepts either a plain string or an object of address parts.
func address(rec map[string]any, paths ...string) string {
	for _, path := range paths {
		v, ok := lookup(rec, path)
		if !ok {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			var parts []string
			for _, k := range []string{"street", "line1", "ward", "district", "city"} {
				if s, ok := asString(m[k]); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
			continue
		}
		if s, ok := asString(v); ok {
			return s
		}
	}
	return models.PlaceholderText
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
