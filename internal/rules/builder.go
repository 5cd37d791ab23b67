package rules

import (
	"time"

	"github.com/kosarica/booking-calculator/internal/condition"
)

// RuleBuilder assembles a Rule fluently. Build validates the result.
type RuleBuilder struct {
	rule Rule
}

// NewRuleBuilder starts a rule of the given type and name.
func NewRuleBuilder(t RuleType, name string) *RuleBuilder {
	return &RuleBuilder{rule: Rule{Type: t, Name: name, Priority: PriorityMedium}}
}

func (b *RuleBuilder) ID(id string) *RuleBuilder {
	b.rule.ID = id
	return b
}

func (b *RuleBuilder) Description(d string) *RuleBuilder {
	b.rule.Description = d
	return b
}

// When adds an AND-ed leaf condition.
func (b *RuleBuilder) When(field string, op condition.Operator, value any) *RuleBuilder {
	b.rule.Conditions = append(b.rule.Conditions, condition.Leaf(field, op, value))
	return b
}

// WhenAny adds a group that holds when at least one of conds holds.
func (b *RuleBuilder) WhenAny(conds ...condition.Condition) *RuleBuilder {
	b.rule.Conditions = append(b.rule.Conditions, condition.AnyOf(conds...))
	return b
}

// WhenCondition adds an arbitrary condition tree.
func (b *RuleBuilder) WhenCondition(c condition.Condition) *RuleBuilder {
	b.rule.Conditions = append(b.rule.Conditions, c)
	return b
}

func (b *RuleBuilder) Percentage(v float64) *RuleBuilder {
	b.rule.Action = Action{Type: ActionPercentage, Value: v}
	return b
}

func (b *RuleBuilder) Fixed(v float64) *RuleBuilder {
	b.rule.Action = Action{Type: ActionFixed, Value: v}
	return b
}

func (b *RuleBuilder) Multiply(v float64) *RuleBuilder {
	b.rule.Action = Action{Type: ActionMultiply, Value: v}
	return b
}

func (b *RuleBuilder) Set(v float64) *RuleBuilder {
	b.rule.Action = Action{Type: ActionSet, Value: v}
	return b
}

func (b *RuleBuilder) Priority(p int) *RuleBuilder {
	b.rule.Priority = p
	return b
}

// ValidBetween sets the validity window. Either bound may be zero.
func (b *RuleBuilder) ValidBetween(from, until time.Time) *RuleBuilder {
	if !from.IsZero() {
		b.rule.ValidFrom = &from
	}
	if !until.IsZero() {
		b.rule.ValidUntil = &until
	}
	return b
}

func (b *RuleBuilder) Disabled() *RuleBuilder {
	off := false
	b.rule.Enabled = &off
	return b
}

// Params replaces the handler parameters.
func (b *RuleBuilder) Params(p Params) *RuleBuilder {
	b.rule.Params = p
	return b
}

// Build returns the rule, or a VALIDATION_ERROR when it is incomplete.
func (b *RuleBuilder) Build() (Rule, error) {
	r := *b.rule.clone()
	if err := ValidateRule(&r); err != nil {
		return Rule{}, err
	}
	return r, nil
}
