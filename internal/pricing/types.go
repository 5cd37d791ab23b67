package pricing

import (
	"sort"
	"time"
)

// Frequency is how often a booking recurs.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Frequencies lists every accepted frequency.
var Frequencies = []Frequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly}

// IsValid reports whether f is one of the accepted frequencies.
func (f Frequency) IsValid() bool {
	for _, v := range Frequencies {
		if f == v {
			return true
		}
	}
	return false
}

// Service is a tenant-defined sellable offering. The pricing pipeline reads
// it and never mutates it.
type Service struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenantId,omitempty"`
	Name         string             `json:"name"`
	Model        PricingModel       `json:"-"`
	PricePerSqm  float64            `json:"pricePerSqm,omitempty"`
	BasePrice    float64            `json:"basePrice,omitempty"`
	MinimumPrice float64            `json:"minimumPrice,omitempty"`
	VatRate      *float64           `json:"vatRate,omitempty"`
	RutEligible  *bool              `json:"rutEligible,omitempty"`
	AddOnPrices  map[string]float64 `json:"addOnPrices,omitempty"`
}

// ModelName returns the name of the service's pricing model, or "" if unset.
func (s *Service) ModelName() ModelName {
	if s == nil || s.Model == nil {
		return ""
	}
	return s.Model.Name()
}

// Input is a single quote request. It is built fresh per calculation.
type Input struct {
	Service        *Service       `json:"service"`
	Area           float64        `json:"area"`
	Rooms          int            `json:"rooms,omitempty"`
	RoomTypes      map[string]int `json:"roomTypes,omitempty"`
	Frequency      Frequency      `json:"frequency,omitempty"`
	ZipCode        string         `json:"zipCode,omitempty"`
	AddOns         []string       `json:"addOns,omitempty"`
	WindowCleaning map[string]int `json:"windowCleaning,omitempty"`
	UseRut         bool           `json:"useRut,omitempty"`
	PromoCode      string         `json:"promoCode,omitempty"`
	Date           *time.Time     `json:"date,omitempty"`
}

// NormalizedInput is Input after coercion and defaulting.
type NormalizedInput struct {
	ServiceID      string         `json:"serviceId"`
	Area           float64        `json:"area"`
	Rooms          int            `json:"rooms,omitempty"`
	RoomTypes      map[string]int `json:"roomTypes,omitempty"`
	Frequency      Frequency      `json:"frequency"`
	ZipCode        string         `json:"zipCode,omitempty"`
	AddOns         []string       `json:"addOns"`
	WindowCleaning map[string]int `json:"windowCleaning"`
	UseRut         bool           `json:"useRut"`
	PromoCode      string         `json:"promoCode,omitempty"`
	Date           time.Time      `json:"date"`
}

// Record exposes the normalized input as a generic record for condition
// evaluation. Besides the input fields it carries the derived hour, month
// (1-12) and weekday (0 = Sunday) of the booking date.
func (n *NormalizedInput) Record() map[string]any {
	addOns := make([]any, len(n.AddOns))
	for i, a := range n.AddOns {
		addOns[i] = a
	}
	windows := make(map[string]any, len(n.WindowCleaning))
	for k, v := range n.WindowCleaning {
		windows[k] = v
	}
	roomTypes := make(map[string]any, len(n.RoomTypes))
	for k, v := range n.RoomTypes {
		roomTypes[k] = v
	}
	return map[string]any{
		"serviceId":      n.ServiceID,
		"area":           n.Area,
		"rooms":          n.Rooms,
		"roomTypes":      roomTypes,
		"frequency":      string(n.Frequency),
		"zipCode":        n.ZipCode,
		"addOns":         addOns,
		"windowCleaning": windows,
		"useRut":         n.UseRut,
		"promoCode":      n.PromoCode,
		"date":           n.Date.Format(time.RFC3339),
		"hour":           n.Date.Hour(),
		"month":          int(n.Date.Month()),
		"weekday":        int(n.Date.Weekday()),
	}
}

// HasAddOn reports whether id was selected.
func (n *NormalizedInput) HasAddOn(id string) bool {
	i := sort.SearchStrings(n.AddOns, id)
	return i < len(n.AddOns) && n.AddOns[i] == id
}

// BreakdownEntry is one named component of a price. The entries of a
// result's breakdown sum to its total.
type BreakdownEntry struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Discount records a discount applied to the running total.
type Discount struct {
	Type       string  `json:"type"`
	Percentage float64 `json:"percentage,omitempty"`
	Amount     float64 `json:"amount"`
}

// AddOnCharge records a selected add-on and its flat price.
type AddOnCharge struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	CalculatedAt time.Time       `json:"calculatedAt"`
	CacheKey     string          `json:"cacheKey"`
	ServiceID    string          `json:"serviceId"`
	PricingModel ModelName       `json:"pricingModel"`
	Input        NormalizedInput `json:"input"`
	FromCache    bool            `json:"fromCache"`
}

// PriceResult is the output of a calculation. Results handed to callers are
// copies; mutating one never affects the cache.
type PriceResult struct {
	BasePrice    float64          `json:"basePrice"`
	TotalPrice   float64          `json:"totalPrice"`
	Breakdown    []BreakdownEntry `json:"breakdown"`
	Discounts    []Discount       `json:"discounts"`
	AddOns       []AddOnCharge    `json:"addOns"`
	AppliedRules []string         `json:"appliedRules"`
	VatRate      float64          `json:"vatRate"`
	VatAmount    float64          `json:"vatAmount"`
	Metadata     Metadata         `json:"metadata"`
}

// BreakdownTotal sums every breakdown entry.
func (r *PriceResult) BreakdownTotal() float64 {
	total := 0.0
	for _, e := range r.Breakdown {
		total += e.Amount
	}
	return roundMoney(total)
}

// Adjust appends a breakdown entry and moves the total by amount.
func (r *PriceResult) Adjust(name string, amount float64) {
	amount = roundMoney(amount)
	if amount == 0 {
		return
	}
	r.Breakdown = append(r.Breakdown, BreakdownEntry{Name: name, Amount: amount})
	r.TotalPrice = roundMoney(r.TotalPrice + amount)
}

// ApplyRuleOutcome folds the final price of a later rule pass into the
// result as a single breakdown entry, then re-applies the service floors and
// the VAT share.
func (r *PriceResult) ApplyRuleOutcome(name string, finalPrice float64, svc *Service, ruleIDs ...string) {
	r.Adjust(name, finalPrice-r.TotalPrice)
	r.AppliedRules = append(r.AppliedRules, ruleIDs...)
	if svc != nil {
		applyFloors(r, svc)
	} else if r.TotalPrice < 0 {
		r.Adjust(EntryZeroFloor, -r.TotalPrice)
	}
	r.VatAmount = vatPortion(r.TotalPrice, r.VatRate)
}

// Clone returns a deep copy of r.
func (r *PriceResult) Clone() *PriceResult {
	c := *r
	c.Breakdown = cloneSlice(r.Breakdown)
	c.Discounts = cloneSlice(r.Discounts)
	c.AddOns = cloneSlice(r.AddOns)
	c.AppliedRules = cloneSlice(r.AppliedRules)
	c.Metadata.Input.AddOns = cloneSlice(r.Metadata.Input.AddOns)
	c.Metadata.Input.WindowCleaning = copyCounts(r.Metadata.Input.WindowCleaning)
	c.Metadata.Input.RoomTypes = copyCounts(r.Metadata.Input.RoomTypes)
	return &c
}

// cloneSlice never returns nil, so empty lists encode as [].
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func copyCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
