package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/kosarica/booking-calculator/internal/fieldpath"
)

func round2(v decimal.Decimal) float64 {
	return v.Round(2).InexactFloat64()
}

// adjust applies a signed action: a negative percentage or fixed value
// lowers the price.
func adjust(price float64, a Action) (float64, error) {
	p := decimal.NewFromFloat(price)
	v := decimal.NewFromFloat(a.Value)
	switch a.Type {
	case ActionPercentage:
		return round2(p.Add(p.Mul(v).Div(decimal.NewFromInt(100)))), nil
	case ActionFixed:
		return round2(p.Add(v)), nil
	case ActionMultiply:
		return round2(p.Mul(v)), nil
	case ActionSet:
		return round2(v), nil
	}
	return 0, fmt.Errorf("unsupported action type %q", a.Type)
}

// reduce lowers the price by the action's magnitude.
func reduce(price float64, a Action) (float64, error) {
	switch a.Type {
	case ActionPercentage, ActionFixed:
		neg := a
		neg.Value = -absf(a.Value)
		return adjust(price, neg)
	}
	return 0, fmt.Errorf("discount action must be percentage or fixed, got %q", a.Type)
}

// raise increases the price by the action's magnitude.
func raise(price float64, a Action) (float64, error) {
	switch a.Type {
	case ActionPercentage, ActionFixed:
		pos := a
		pos.Value = absf(a.Value)
		return adjust(price, pos)
	}
	return 0, fmt.Errorf("markup action must be percentage or fixed, got %q", a.Type)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func skipped(reason string) (HandlerResult, error) {
	return HandlerResult{Skipped: true, Metadata: map[string]any{"reason": reason}}, nil
}

func applied(price float64, meta map[string]any) (HandlerResult, error) {
	return HandlerResult{NewPrice: price, Metadata: meta}, nil
}

func inputValue(ctx *Context, path string) (any, bool) {
	if ctx.InputData == nil {
		return nil, false
	}
	return fieldpath.Get(ctx.InputData, path)
}

func inputNumber(ctx *Context, path string) (float64, bool) {
	v, ok := inputValue(ctx, path)
	if !ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}

func inputString(ctx *Context, path string) string {
	v, ok := inputValue(ctx, path)
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

func inputStrings(ctx *Context, path string) []string {
	v, ok := inputValue(ctx, path)
	if !ok || v == nil {
		return nil
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	return s
}

// builtinHandlers returns the handlers for every built-in rule type. now
// supplies the booking date when the input carries none.
func builtinHandlers(now func() time.Time) map[RuleType]Handler {
	bookingTime := func(ctx *Context) time.Time {
		if v, ok := inputValue(ctx, "date"); ok && v != nil {
			if t, err := cast.ToTimeE(v); err == nil && !t.IsZero() {
				return t
			}
		}
		return now()
	}

	return map[RuleType]Handler{
		TypeDiscount: func(r *Rule, ctx *Context) (HandlerResult, error) {
			p, err := reduce(ctx.CurrentPrice, r.Action)
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"actionType": string(r.Action.Type), "value": r.Action.Value})
		},

		TypeMarkup: func(r *Rule, ctx *Context) (HandlerResult, error) {
			p, err := raise(ctx.CurrentPrice, r.Action)
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"actionType": string(r.Action.Type), "value": r.Action.Value})
		},

		TypeMinimumPrice: func(r *Rule, ctx *Context) (HandlerResult, error) {
			if ctx.CurrentPrice >= r.Action.Value {
				return skipped("price already above minimum")
			}
			return applied(r.Action.Value, map[string]any{"minimum": r.Action.Value})
		},

		TypeMaximumPrice: func(r *Rule, ctx *Context) (HandlerResult, error) {
			if ctx.CurrentPrice <= r.Action.Value {
				return skipped("price already below maximum")
			}
			return applied(r.Action.Value, map[string]any{"maximum": r.Action.Value})
		},

		TypeBulkDiscount: func(r *Rule, ctx *Context) (HandlerResult, error) {
			area, ok := inputNumber(ctx, "area")
			if !ok {
				return skipped("no area in input")
			}
			var best *AreaDiscount
			for i := range r.Params.AreaTiers {
				t := &r.Params.AreaTiers[i]
				if t.MinArea <= area && (best == nil || t.MinArea > best.MinArea) {
					best = t
				}
			}
			if best == nil {
				return skipped("no area tier matched")
			}
			p, err := reduce(ctx.CurrentPrice, Action{Type: ActionPercentage, Value: best.Percentage})
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"area": area, "tierMinArea": best.MinArea, "percentage": best.Percentage})
		},

		TypeSeasonal: func(r *Rule, ctx *Context) (HandlerResult, error) {
			month := int(bookingTime(ctx).Month())
			if !containsInt(r.Params.Months, month) {
				return skipped("out of season")
			}
			p, err := adjust(ctx.CurrentPrice, r.Action)
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"month": month})
		},

		TypeTimeBased: func(r *Rule, ctx *Context) (HandlerResult, error) {
			at := bookingTime(ctx)
			if r.Params.Hours != nil && !r.Params.Hours.contains(at.Hour()) {
				return skipped("outside hour range")
			}
			if len(r.Params.Weekdays) > 0 && !containsInt(r.Params.Weekdays, int(at.Weekday())) {
				return skipped("outside weekdays")
			}
			p, err := adjust(ctx.CurrentPrice, r.Action)
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"hour": at.Hour(), "weekday": int(at.Weekday())})
		},

		TypeLocationBased: func(r *Rule, ctx *Context) (HandlerResult, error) {
			zip := strings.ReplaceAll(inputString(ctx, "zipCode"), " ", "")
			if zip == "" {
				return skipped("no zip code in input")
			}
			if !zipMatches(r.Params, zip) {
				return skipped("zip code not covered")
			}
			p, err := adjust(ctx.CurrentPrice, r.Action)
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"zipCode": zip})
		},

		TypeServiceCombination: func(r *Rule, ctx *Context) (HandlerResult, error) {
			if len(r.Params.RequiredAddOns) == 0 {
				return HandlerResult{}, fmt.Errorf("service_combination rule %q lists no add-ons", r.ID)
			}
			selected := inputStrings(ctx, "addOns")
			for _, want := range r.Params.RequiredAddOns {
				if !containsString(selected, want) {
					return skipped("missing add-on " + want)
				}
			}
			p, err := adjust(ctx.CurrentPrice, r.Action)
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"addOns": r.Params.RequiredAddOns})
		},

		TypePromotional: func(r *Rule, ctx *Context) (HandlerResult, error) {
			code := strings.TrimSpace(inputString(ctx, "promoCode"))
			if r.Params.PromoCode == "" || !strings.EqualFold(code, r.Params.PromoCode) {
				return skipped("promo code does not match")
			}
			at := bookingTime(ctx)
			if r.Params.PromoStart != nil && at.Before(*r.Params.PromoStart) {
				return skipped("promotion not started")
			}
			if r.Params.PromoEnd != nil && at.After(*r.Params.PromoEnd) {
				return skipped("promotion ended")
			}
			p, err := reduce(ctx.CurrentPrice, r.Action)
			if err != nil {
				return HandlerResult{}, err
			}
			return applied(p, map[string]any{"promoCode": r.Params.PromoCode})
		},
	}
}

func zipMatches(p Params, zip string) bool {
	for _, z := range p.ZipCodes {
		if strings.ReplaceAll(z, " ", "") == zip {
			return true
		}
	}
	if p.ZipRange != nil {
		if n, err := cast.ToIntE(strings.TrimLeft(zip, "0")); err == nil {
			return n >= p.ZipRange.From && n <= p.ZipRange.To
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
