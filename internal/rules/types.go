package rules

import (
	"time"

	"github.com/kosarica/booking-calculator/internal/condition"
)

// RuleType selects the handler that applies a rule.
type RuleType string

const (
	TypeDiscount           RuleType = "discount"
	TypeMarkup             RuleType = "markup"
	TypeMinimumPrice       RuleType = "minimum_price"
	TypeMaximumPrice       RuleType = "maximum_price"
	TypeBulkDiscount       RuleType = "bulk_discount"
	TypeSeasonal           RuleType = "seasonal"
	TypeTimeBased          RuleType = "time_based"
	TypeLocationBased      RuleType = "location_based"
	TypeServiceCombination RuleType = "service_combination"
	TypePromotional        RuleType = "promotional"
	TypeCustom             RuleType = "custom"
)

// RuleTypes lists every rule type.
var RuleTypes = []RuleType{
	TypeDiscount, TypeMarkup, TypeMinimumPrice, TypeMaximumPrice, TypeBulkDiscount,
	TypeSeasonal, TypeTimeBased, TypeLocationBased, TypeServiceCombination,
	TypePromotional, TypeCustom,
}

// Priority levels. Lower numbers run first.
const (
	PriorityHighest = 1
	PriorityHigh    = 25
	PriorityMedium  = 50
	PriorityLow     = 75
	PriorityLowest  = 100
)

// ActionType says how an action's value changes a price.
type ActionType string

const (
	// ActionPercentage adjusts by Value percent of the price.
	ActionPercentage ActionType = "percentage"
	// ActionFixed adjusts by Value kronor.
	ActionFixed ActionType = "fixed"
	// ActionMultiply multiplies the price by Value.
	ActionMultiply ActionType = "multiply"
	// ActionSet replaces the price with Value.
	ActionSet ActionType = "set"
)

// Action is what a rule does once its conditions hold.
type Action struct {
	Type  ActionType `json:"type"`
	Value float64    `json:"value"`
}

// AreaDiscount is one bracket of a bulk_discount rule.
type AreaDiscount struct {
	MinArea    float64 `json:"minArea"`
	Percentage float64 `json:"percentage"`
}

// HourRange is [Start, End) in hours; Start > End wraps past midnight.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (h HourRange) contains(hour int) bool {
	if h.Start <= h.End {
		return hour >= h.Start && hour < h.End
	}
	return hour >= h.Start || hour < h.End
}

// ZipRange is an inclusive numeric zip-code range.
type ZipRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Params holds the gates and tables read by the typed handlers.
type Params struct {
	// bulk_discount
	AreaTiers []AreaDiscount `json:"areaTiers,omitempty"`
	// seasonal, months 1-12
	Months []int `json:"months,omitempty"`
	// time_based; weekdays 0 = Sunday
	Hours    *HourRange `json:"hours,omitempty"`
	Weekdays []int      `json:"weekdays,omitempty"`
	// location_based
	ZipCodes []string  `json:"zipCodes,omitempty"`
	ZipRange *ZipRange `json:"zipRange,omitempty"`
	// service_combination
	RequiredAddOns []string `json:"requiredAddOns,omitempty"`
	// promotional; the window gates the booking date
	PromoCode  string     `json:"promoCode,omitempty"`
	PromoStart *time.Time `json:"promoStart,omitempty"`
	PromoEnd   *time.Time `json:"promoEnd,omitempty"`
}

// Rule is a named, typed, prioritized price policy.
type Rule struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Type        RuleType              `json:"type"`
	Conditions  []condition.Condition `json:"conditions,omitempty"`
	Action      Action                `json:"action"`
	Params      Params                `json:"params,omitempty"`
	Priority    int                   `json:"priority"`
	Enabled     *bool                 `json:"enabled,omitempty"`
	ValidFrom   *time.Time            `json:"validFrom,omitempty"`
	ValidUntil  *time.Time            `json:"validUntil,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`

	seq uint64
}

// IsEnabled reports whether the rule is enabled. Rules are enabled unless
// explicitly disabled.
func (r *Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// ActiveAt reports whether now falls inside the rule's validity window.
func (r *Rule) ActiveAt(now time.Time) bool {
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidUntil != nil && now.After(*r.ValidUntil) {
		return false
	}
	return true
}

func (r *Rule) clone() *Rule {
	c := *r
	c.Conditions = append([]condition.Condition(nil), r.Conditions...)
	c.Params.AreaTiers = append([]AreaDiscount(nil), r.Params.AreaTiers...)
	c.Params.Months = append([]int(nil), r.Params.Months...)
	c.Params.Weekdays = append([]int(nil), r.Params.Weekdays...)
	c.Params.ZipCodes = append([]string(nil), r.Params.ZipCodes...)
	c.Params.RequiredAddOns = append([]string(nil), r.Params.RequiredAddOns...)
	if r.Enabled != nil {
		v := *r.Enabled
		c.Enabled = &v
	}
	return &c
}

// Context is the input to a rule pass.
type Context struct {
	CurrentPrice float64        `json:"currentPrice"`
	InputData    map[string]any `json:"inputData"`
}

// record is the view conditions are evaluated against.
func (c *Context) record(price float64) map[string]any {
	return map[string]any{
		"price":        price,
		"currentPrice": price,
		"inputData":    c.InputData,
	}
}

// HandlerResult is what a rule handler returns. A skipped result leaves the
// price untouched and the rule out of the applied list.
type HandlerResult struct {
	NewPrice float64
	Skipped  bool
	Metadata map[string]any
}

// Handler applies one rule to the running price in ctx.
type Handler func(rule *Rule, ctx *Context) (HandlerResult, error)

// AppliedRule summarizes a rule that changed the fold.
type AppliedRule struct {
	RuleID      string   `json:"ruleId"`
	Name        string   `json:"name"`
	Type        RuleType `json:"type"`
	PriceBefore float64  `json:"priceBefore"`
	PriceAfter  float64  `json:"priceAfter"`
	Adjustment  float64  `json:"adjustment"`
}

// LogEntry records one applied rule.
type LogEntry struct {
	RuleID      string         `json:"ruleId"`
	RuleName    string         `json:"ruleName"`
	RuleType    RuleType       `json:"ruleType"`
	PriceBefore float64        `json:"priceBefore"`
	PriceAfter  float64        `json:"priceAfter"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SkippedRule records a rule dropped because its handler failed.
type SkippedRule struct {
	RuleID string `json:"ruleId"`
	Error  string `json:"error"`
}

// ApplyResult is the outcome of a rule pass.
type ApplyResult struct {
	FinalPrice      float64       `json:"finalPrice"`
	OriginalPrice   float64       `json:"originalPrice"`
	AppliedRules    []AppliedRule `json:"appliedRules"`
	ExecutionLog    []LogEntry    `json:"executionLog"`
	TotalAdjustment float64       `json:"totalAdjustment"`
	SkippedRules    []SkippedRule `json:"skippedRules,omitempty"`
}

// RuleIDs returns the ids of the applied rules in application order.
func (r *ApplyResult) RuleIDs() []string {
	ids := make([]string, len(r.AppliedRules))
	for i, a := range r.AppliedRules {
		ids[i] = a.RuleID
	}
	return ids
}

// HistoryEntry summarizes one ApplyRules call.
type HistoryEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	OriginalPrice  float64   `json:"originalPrice"`
	FinalPrice     float64   `json:"finalPrice"`
	AppliedRules   []string  `json:"appliedRules"`
	EvaluatedRules int       `json:"evaluatedRules"`
	Error          string    `json:"error,omitempty"`
}

// Statistics describes the registry and history.
type Statistics struct {
	TotalRules   int              `json:"totalRules"`
	EnabledRules int              `json:"enabledRules"`
	ActiveRules  int              `json:"activeRules"`
	RulesByType  map[RuleType]int `json:"rulesByType"`
	HistorySize  int              `json:"historySize"`
	HandlerCount int              `json:"handlerCount"`
	TotalApplied int              `json:"totalApplied"`
}
