package pricing

import (
	"math"
	"sort"

	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

// ModelName names a pricing-model algorithm.
type ModelName string

const (
	ModelFlatRate     ModelName = "flat_rate"
	ModelPerSqmTiered ModelName = "per_sqm_tiered"
	ModelPerRoom      ModelName = "per_room"
	ModelHourlyBySize ModelName = "hourly_by_size"
	ModelWindowBased  ModelName = "window_based"
	ModelFlatRange    ModelName = "flat_range"
	ModelBulkDiscount ModelName = "bulk_discount"
	ModelDynamic      ModelName = "dynamic_pricing"
)

// ModelNames lists every supported pricing model.
var ModelNames = []ModelName{
	ModelFlatRate, ModelPerSqmTiered, ModelPerRoom, ModelHourlyBySize,
	ModelWindowBased, ModelFlatRange, ModelBulkDiscount, ModelDynamic,
}

// PricingModel is the closed set of pricing-model variants. Each variant
// carries its own configuration and computes a base price.
type PricingModel interface {
	Name() ModelName
	// Check reports configuration problems as INVALID_SERVICE.
	Check() error
	// Calculate computes the model's price before modifiers.
	Calculate(in *NormalizedInput, svc *Service) (float64, error)
	sealed()
}

// NewModel returns an empty variant for name, ready to be decoded into.
func NewModel(name ModelName) (PricingModel, error) {
	switch name {
	case ModelFlatRate:
		return &FlatRate{}, nil
	case ModelPerSqmTiered:
		return &PerSqmTiered{}, nil
	case ModelPerRoom:
		return &PerRoom{}, nil
	case ModelHourlyBySize:
		return &HourlyBySize{}, nil
	case ModelWindowBased:
		return &WindowBased{}, nil
	case ModelFlatRange:
		return &FlatRange{}, nil
	case ModelBulkDiscount:
		return &BulkDiscount{}, nil
	case ModelDynamic:
		return &DynamicPricing{}, nil
	}
	return nil, pricingerr.Newf(pricingerr.KindInvalidService, "unsupported pricing model %q", name).
		WithDetail("pricingModel", string(name))
}

func invalidService(model ModelName, msg string) error {
	return pricingerr.New(pricingerr.KindInvalidService, msg).WithDetail("pricingModel", string(model))
}

func outOfRange(model ModelName, area float64) error {
	return pricingerr.Newf(pricingerr.KindOutOfRange, "no %s bracket matches area %g", model, area).
		WithDetail("pricingModel", string(model)).
		WithDetail("area", area)
}

// AreaBracket is an inclusive [MinArea, MaxArea] interval.
type AreaBracket struct {
	MinArea float64 `json:"minArea"`
	MaxArea float64 `json:"maxArea"`
}

// Contains reports whether area falls inside the bracket, bounds included.
func (b AreaBracket) Contains(area float64) bool {
	return area >= b.MinArea && area <= b.MaxArea
}

// FlatRate prices area times a per-square-metre rate.
type FlatRate struct {
	PricePerSqm float64 `json:"pricePerSqm,omitempty"`
}

func (*FlatRate) Name() ModelName { return ModelFlatRate }
func (*FlatRate) sealed()         {}

func (m *FlatRate) Check() error {
	if m.PricePerSqm < 0 {
		return invalidService(ModelFlatRate, "pricePerSqm must not be negative")
	}
	return nil
}

func (m *FlatRate) Calculate(in *NormalizedInput, svc *Service) (float64, error) {
	rate := m.PricePerSqm
	if rate == 0 {
		rate = svc.PricePerSqm
	}
	if rate <= 0 {
		return 0, invalidService(ModelFlatRate, "flat_rate requires a positive pricePerSqm")
	}
	return mulWhole(in.Area, rate), nil
}

// TierType selects how a PerSqmTiered tier is priced.
type TierType string

const (
	TierPerSqm   TierType = "per_sqm"
	TierFlatRate TierType = "flat_rate"
)

// AreaTier is one tier of a PerSqmTiered model.
type AreaTier struct {
	AreaBracket
	Type        TierType `json:"type"`
	PricePerSqm float64  `json:"pricePerSqm,omitempty"`
	Price       float64  `json:"price,omitempty"`
}

// PerSqmTiered picks the tier containing the area.
type PerSqmTiered struct {
	Tiers []AreaTier `json:"tiers"`
}

func (*PerSqmTiered) Name() ModelName { return ModelPerSqmTiered }
func (*PerSqmTiered) sealed()         {}

func (m *PerSqmTiered) Check() error {
	if len(m.Tiers) == 0 {
		return invalidService(ModelPerSqmTiered, "per_sqm_tiered requires at least one tier")
	}
	for _, t := range m.Tiers {
		switch t.Type {
		case TierPerSqm, TierFlatRate, "":
		default:
			return invalidService(ModelPerSqmTiered, "unknown tier type "+string(t.Type))
		}
	}
	return nil
}

func (m *PerSqmTiered) Calculate(in *NormalizedInput, _ *Service) (float64, error) {
	for _, t := range m.Tiers {
		if !t.Contains(in.Area) {
			continue
		}
		if t.Type == TierFlatRate {
			return t.Price, nil
		}
		return mulWhole(in.Area, t.PricePerSqm), nil
	}
	return 0, outOfRange(ModelPerSqmTiered, in.Area)
}

// PerRoom prices per room, by room type when a breakdown is supplied.
type PerRoom struct {
	PricePerRoom float64            `json:"pricePerRoom,omitempty"`
	RoomRates    map[string]float64 `json:"roomRates,omitempty"`
}

// sqmPerRoom is the area assumed per room when no count is given.
const sqmPerRoom = 25

func (*PerRoom) Name() ModelName { return ModelPerRoom }
func (*PerRoom) sealed()         {}

func (m *PerRoom) Check() error {
	if m.PricePerRoom <= 0 && len(m.RoomRates) == 0 {
		return invalidService(ModelPerRoom, "per_room requires pricePerRoom or roomRates")
	}
	return nil
}

func (m *PerRoom) Calculate(in *NormalizedInput, _ *Service) (float64, error) {
	if len(in.RoomTypes) > 0 {
		types := make([]string, 0, len(in.RoomTypes))
		for t := range in.RoomTypes {
			types = append(types, t)
		}
		sort.Strings(types)
		total := 0.0
		for _, t := range types {
			rate, ok := m.RoomRates[t]
			if !ok {
				rate = m.PricePerRoom
			}
			if rate <= 0 {
				return 0, invalidService(ModelPerRoom, "no rate configured for room type "+t)
			}
			total += rate * float64(in.RoomTypes[t])
		}
		return roundMoney(total), nil
	}
	if m.PricePerRoom <= 0 {
		return 0, invalidService(ModelPerRoom, "per_room requires pricePerRoom when no room types are given")
	}
	rooms := in.Rooms
	if rooms <= 0 {
		rooms = int(math.Max(1, math.Floor(in.Area/sqmPerRoom)))
	}
	return mul(float64(rooms), m.PricePerRoom), nil
}

// HourBracket maps an area bracket to an estimated number of hours.
type HourBracket struct {
	AreaBracket
	Hours float64 `json:"hours"`
}

// HourlyBySize estimates hours from area and charges an hourly rate.
type HourlyBySize struct {
	PricePerHour float64       `json:"pricePerHour"`
	Brackets     []HourBracket `json:"brackets"`
}

func (*HourlyBySize) Name() ModelName { return ModelHourlyBySize }
func (*HourlyBySize) sealed()         {}

func (m *HourlyBySize) Check() error {
	if len(m.Brackets) == 0 {
		return invalidService(ModelHourlyBySize, "hourly_by_size requires at least one bracket")
	}
	if m.PricePerHour <= 0 {
		return invalidService(ModelHourlyBySize, "hourly_by_size requires a positive pricePerHour")
	}
	return nil
}

func (m *HourlyBySize) Calculate(in *NormalizedInput, _ *Service) (float64, error) {
	for _, b := range m.Brackets {
		if b.Contains(in.Area) {
			return mul(b.Hours, m.PricePerHour), nil
		}
	}
	return 0, outOfRange(ModelHourlyBySize, in.Area)
}

// WindowBased prices per window by window type.
type WindowBased struct {
	WindowPrices  map[string]float64 `json:"windowPrices"`
	MinimumCharge float64            `json:"minimumCharge,omitempty"`
}

func (*WindowBased) Name() ModelName { return ModelWindowBased }
func (*WindowBased) sealed()         {}

func (m *WindowBased) Check() error {
	if len(m.WindowPrices) == 0 {
		return invalidService(ModelWindowBased, "window_based requires windowPrices")
	}
	return nil
}

func (m *WindowBased) Calculate(in *NormalizedInput, _ *Service) (float64, error) {
	return windowCharge(m.WindowPrices, m.MinimumCharge, in.WindowCleaning)
}

// windowCharge sums price times quantity over the window map and clamps the
// sum up to minimum.
func windowCharge(prices map[string]float64, minimum float64, windows map[string]int) (float64, error) {
	kinds := make([]string, 0, len(windows))
	for k := range windows {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	total := 0.0
	for _, k := range kinds {
		qty := windows[k]
		if qty <= 0 {
			continue
		}
		price, ok := prices[k]
		if !ok {
			return 0, pricingerr.Newf(pricingerr.KindInvalidInput, "unknown window type %q", k).
				WithDetail("field", "windowCleaning."+k)
		}
		total += price * float64(qty)
	}
	if total < minimum {
		total = minimum
	}
	return roundMoney(total), nil
}

// PriceRange maps an area bracket to a fixed price.
type PriceRange struct {
	AreaBracket
	Price float64 `json:"price"`
}

// FlatRange charges the fixed price of the range containing the area.
type FlatRange struct {
	Ranges []PriceRange `json:"ranges"`
}

func (*FlatRange) Name() ModelName { return ModelFlatRange }
func (*FlatRange) sealed()         {}

func (m *FlatRange) Check() error {
	if len(m.Ranges) == 0 {
		return invalidService(ModelFlatRange, "flat_range requires at least one range")
	}
	return nil
}

func (m *FlatRange) Calculate(in *NormalizedInput, _ *Service) (float64, error) {
	for _, r := range m.Ranges {
		if r.Contains(in.Area) {
			return r.Price, nil
		}
	}
	return 0, outOfRange(ModelFlatRange, in.Area)
}

// BulkTier discounts areas at or above MinArea by Percentage.
type BulkTier struct {
	MinArea    float64 `json:"minArea"`
	Percentage float64 `json:"percentage"`
}

// BulkDiscount prices area times a base rate, discounted for large areas.
type BulkDiscount struct {
	BasePrice float64    `json:"basePrice,omitempty"`
	Tiers     []BulkTier `json:"tiers"`
}

func (*BulkDiscount) Name() ModelName { return ModelBulkDiscount }
func (*BulkDiscount) sealed()         {}

func (m *BulkDiscount) Check() error {
	for _, t := range m.Tiers {
		if t.Percentage < 0 || t.Percentage > 100 {
			return invalidService(ModelBulkDiscount, "bulk tier percentage must be between 0 and 100")
		}
	}
	return nil
}

func (m *BulkDiscount) Calculate(in *NormalizedInput, svc *Service) (float64, error) {
	rate := m.BasePrice
	if rate == 0 {
		rate = svc.BasePrice
	}
	if rate <= 0 {
		return 0, invalidService(ModelBulkDiscount, "bulk_discount requires a positive basePrice")
	}
	base := mul(in.Area, rate)
	var best *BulkTier
	for i := range m.Tiers {
		t := &m.Tiers[i]
		if t.MinArea <= in.Area && (best == nil || t.MinArea > best.MinArea) {
			best = t
		}
	}
	if best != nil {
		base -= percentOf(base, best.Percentage)
	}
	return roundWhole(base), nil
}

// TimeMultiplier applies to bookings whose hour is in [StartHour, EndHour).
// A bracket with StartHour > EndHour wraps past midnight.
type TimeMultiplier struct {
	StartHour  int     `json:"startHour"`
	EndHour    int     `json:"endHour"`
	Multiplier float64 `json:"multiplier"`
}

func (t TimeMultiplier) matches(hour int) bool {
	if t.StartHour <= t.EndHour {
		return hour >= t.StartHour && hour < t.EndHour
	}
	return hour >= t.StartHour || hour < t.EndHour
}

// SeasonalMultiplier applies to bookings in any of Months (1-12).
type SeasonalMultiplier struct {
	Months     []int   `json:"months"`
	Multiplier float64 `json:"multiplier"`
}

func (s SeasonalMultiplier) matches(month int) bool {
	for _, m := range s.Months {
		if m == month {
			return true
		}
	}
	return false
}

// DynamicPricing starts from the flat-rate price and composes time-of-day,
// seasonal and demand multipliers.
type DynamicPricing struct {
	PricePerSqm         float64              `json:"pricePerSqm,omitempty"`
	TimeMultipliers     []TimeMultiplier     `json:"timeMultipliers,omitempty"`
	SeasonalMultipliers []SeasonalMultiplier `json:"seasonalMultipliers,omitempty"`
	// DemandMultiplier is a static factor; nothing measures demand.
	DemandMultiplier float64 `json:"demandMultiplier,omitempty"`
}

func (*DynamicPricing) Name() ModelName { return ModelDynamic }
func (*DynamicPricing) sealed()         {}

func (m *DynamicPricing) Check() error {
	for _, t := range m.TimeMultipliers {
		if t.Multiplier < 0 || t.StartHour < 0 || t.StartHour > 23 || t.EndHour < 0 || t.EndHour > 24 {
			return invalidService(ModelDynamic, "invalid time multiplier")
		}
	}
	for _, s := range m.SeasonalMultipliers {
		if s.Multiplier < 0 {
			return invalidService(ModelDynamic, "invalid seasonal multiplier")
		}
	}
	if m.DemandMultiplier < 0 {
		return invalidService(ModelDynamic, "demandMultiplier must not be negative")
	}
	return nil
}

func (m *DynamicPricing) Calculate(in *NormalizedInput, svc *Service) (float64, error) {
	price, err := (&FlatRate{PricePerSqm: m.PricePerSqm}).Calculate(in, svc)
	if err != nil {
		return 0, invalidService(ModelDynamic, "dynamic_pricing requires a positive pricePerSqm")
	}
	hour := in.Date.Hour()
	for _, t := range m.TimeMultipliers {
		if t.matches(hour) {
			price = mul(price, t.Multiplier)
			break
		}
	}
	month := int(in.Date.Month())
	for _, s := range m.SeasonalMultipliers {
		if s.matches(month) {
			price = mul(price, s.Multiplier)
			break
		}
	}
	if m.DemandMultiplier > 0 {
		price = mul(price, m.DemandMultiplier)
	}
	return price, nil
}
