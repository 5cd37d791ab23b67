package rules

import (
	"time"

	"github.com/kosarica/booking-calculator/internal/condition"
)

// PercentageDiscount lowers the price by pct percent when conds hold.
func PercentageDiscount(name string, pct float64, conds ...condition.Condition) Rule {
	return Rule{Name: name, Type: TypeDiscount, Conditions: conds, Action: Action{Type: ActionPercentage, Value: pct}}
}

// FixedDiscount lowers the price by amount when conds hold.
func FixedDiscount(name string, amount float64, conds ...condition.Condition) Rule {
	return Rule{Name: name, Type: TypeDiscount, Conditions: conds, Action: Action{Type: ActionFixed, Value: amount}}
}

// PercentageMarkup raises the price by pct percent when conds hold.
func PercentageMarkup(name string, pct float64, conds ...condition.Condition) Rule {
	return Rule{Name: name, Type: TypeMarkup, Conditions: conds, Action: Action{Type: ActionPercentage, Value: pct}}
}

// MinimumPrice floors the price. It runs last by default.
func MinimumPrice(name string, floor float64) Rule {
	return Rule{Name: name, Type: TypeMinimumPrice, Action: Action{Type: ActionSet, Value: floor}, Priority: PriorityLowest}
}

// MaximumPrice caps the price. It runs last by default.
func MaximumPrice(name string, ceiling float64) Rule {
	return Rule{Name: name, Type: TypeMaximumPrice, Action: Action{Type: ActionSet, Value: ceiling}, Priority: PriorityLowest}
}

// BulkAreaDiscount discounts large areas by the best matching tier.
func BulkAreaDiscount(name string, tiers ...AreaDiscount) Rule {
	return Rule{Name: name, Type: TypeBulkDiscount, Action: Action{Type: ActionPercentage}, Params: Params{AreaTiers: tiers}}
}

// SeasonalAdjustment adjusts the price by pct percent in the given months.
// A negative pct is a discount.
func SeasonalAdjustment(name string, pct float64, months ...int) Rule {
	return Rule{
		Name:   name,
		Type:   TypeSeasonal,
		Action: Action{Type: ActionPercentage, Value: pct},
		Params: Params{Months: months},
	}
}

// TimeSurcharge multiplies the price for bookings within hours on weekdays.
// No weekdays means every day.
func TimeSurcharge(name string, multiplier float64, hours HourRange, weekdays ...int) Rule {
	return Rule{
		Name:   name,
		Type:   TypeTimeBased,
		Action: Action{Type: ActionMultiply, Value: multiplier},
		Params: Params{Hours: &hours, Weekdays: weekdays},
	}
}

// LocationAdjustment adjusts the price by pct percent in the given zip codes.
func LocationAdjustment(name string, pct float64, zips ...string) Rule {
	return Rule{
		Name:   name,
		Type:   TypeLocationBased,
		Action: Action{Type: ActionPercentage, Value: pct},
		Params: Params{ZipCodes: zips},
	}
}

// ComboDiscount lowers the price by pct percent when every add-on is selected.
func ComboDiscount(name string, pct float64, addOns ...string) Rule {
	return Rule{
		Name:   name,
		Type:   TypeServiceCombination,
		Action: Action{Type: ActionPercentage, Value: -pct},
		Params: Params{RequiredAddOns: addOns},
	}
}

// PromoCode lowers the price by pct percent for bookings using code within
// [start, end]. Zero bounds are open.
func PromoCode(name, code string, pct float64, start, end time.Time) Rule {
	p := Params{PromoCode: code}
	if !start.IsZero() {
		p.PromoStart = &start
	}
	if !end.IsZero() {
		p.PromoEnd = &end
	}
	return Rule{
		Name:     name,
		Type:     TypePromotional,
		Action:   Action{Type: ActionPercentage, Value: pct},
		Params:   p,
		Priority: PriorityHigh,
	}
}
