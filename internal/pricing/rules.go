package pricing

import (
	"fmt"

	"github.com/kosarica/booking-calculator/internal/condition"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

// ActionType is the effect of an internal pricing rule.
type ActionType string

const (
	ActionMultiply           ActionType = "multiply"
	ActionAdd                ActionType = "add"
	ActionSubtract           ActionType = "subtract"
	ActionSetMinimum         ActionType = "set_minimum"
	ActionSetMaximum         ActionType = "set_maximum"
	ActionDiscountPercentage ActionType = "discount_percentage"
)

// RuleAction is the action of an internal pricing rule.
type RuleAction struct {
	Type  ActionType `mapstructure:"type" json:"type" validate:"oneof=multiply add subtract set_minimum set_maximum discount_percentage"`
	Value float64    `mapstructure:"value" json:"value"`
}

// Rule is an entry of the engine's own linear rule list. Conditions are
// evaluated against {price, inputData}; all must hold.
type Rule struct {
	Name       string                `mapstructure:"name" json:"name" validate:"required"`
	Conditions []condition.Condition `mapstructure:"conditions" json:"conditions,omitempty"`
	Action     RuleAction            `mapstructure:"action" json:"action"`
}

// apply returns the price after the action.
func (a RuleAction) apply(price float64) float64 {
	switch a.Type {
	case ActionMultiply:
		return mul(price, a.Value)
	case ActionAdd:
		return roundMoney(price + a.Value)
	case ActionSubtract:
		return roundMoney(price - a.Value)
	case ActionSetMinimum:
		if price < a.Value {
			return a.Value
		}
	case ActionSetMaximum:
		if price > a.Value {
			return a.Value
		}
	case ActionDiscountPercentage:
		return roundMoney(price - percentOf(price, a.Value))
	}
	return price
}

// applyRules folds the rule list over the running total. Each rule sees the
// price left by the previous one.
func (e *Engine) applyRules(result *PriceResult, in *NormalizedInput) error {
	inputData := in.Record()
	for _, r := range e.cfg.Rules {
		record := map[string]any{"price": result.TotalPrice, "inputData": inputData}
		ok, err := condition.All(r.Conditions, record)
		if err != nil {
			return pricingerr.Wrap(pricingerr.KindCalculationError, err,
				fmt.Sprintf("pricing rule %q has an invalid condition", r.Name)).
				WithDetail("rule", r.Name)
		}
		if !ok {
			e.logger.Debug().Str("rule", r.Name).Msg("pricing rule conditions not met")
			continue
		}
		before := result.TotalPrice
		after := r.Action.apply(before)
		result.Adjust("rule:"+r.Name, after-before)
		result.AppliedRules = append(result.AppliedRules, r.Name)
		e.logger.Debug().
			Str("rule", r.Name).
			Str("action", string(r.Action.Type)).
			Float64("before", before).
			Float64("after", result.TotalPrice).
			Msg("pricing rule applied")
	}
	return nil
}
