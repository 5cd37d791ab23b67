package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundMoney rounds to öre (two decimals), half away from zero.
func roundMoney(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// roundWhole rounds to whole kronor, half away from zero.
func roundWhole(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(0).InexactFloat64()
}

// mul multiplies a and b exactly before rounding to öre.
func mul(a, b float64) float64 {
	if !finite(a) || !finite(b) {
		return a * b
	}
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// mulWhole multiplies a and b exactly before rounding to whole kronor.
func mulWhole(a, b float64) float64 {
	if !finite(a) || !finite(b) {
		return a * b
	}
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(0).InexactFloat64()
}

// percentOf returns pct percent of v, rounded to öre.
func percentOf(v, pct float64) float64 {
	if !finite(v) || !finite(pct) {
		return v * pct / 100
	}
	return decimal.NewFromFloat(v).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// vatPortion returns the VAT contained in a VAT-inclusive total.
func vatPortion(total, rate float64) float64 {
	if rate <= 0 || total <= 0 || !finite(total) || !finite(rate) {
		return 0
	}
	t := decimal.NewFromFloat(total)
	net := t.Div(decimal.NewFromFloat(1 + rate))
	return t.Sub(net).Round(2).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
