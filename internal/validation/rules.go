package validation

import (
	"github.com/kosarica/booking-calculator/internal/condition"
)

// RuleType names a validation check.
type RuleType string

const (
	RuleRequired    RuleType = "required"
	RuleTypeCheck   RuleType = "type"
	RuleMin         RuleType = "min"
	RuleMax         RuleType = "max"
	RuleRange       RuleType = "range"
	RulePattern     RuleType = "pattern"
	RuleEnum        RuleType = "enum"
	RuleArray       RuleType = "array"
	RuleConditional RuleType = "conditional"
)

// DataType is a value type recognized by the type rule.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeInteger DataType = "integer"
	TypeBoolean DataType = "boolean"
	TypeDate    DataType = "date"
	TypeEmail   DataType = "email"
	TypePhone   DataType = "phone"
	TypeZipCode DataType = "zipCode"
	TypeArray   DataType = "array"
	TypeObject  DataType = "object"
)

// Rule is one declarative check applied to a value. Only the fields relevant
// to Type are read.
type Rule struct {
	Type RuleType `json:"type"`

	DataType DataType `json:"dataType,omitempty"`
	Limit    float64  `json:"limit,omitempty"`
	Min      float64  `json:"min,omitempty"`
	Max      float64  `json:"max,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Values   []any    `json:"values,omitempty"`

	// array
	Items      []Rule `json:"items,omitempty"`
	ItemSchema Schema `json:"itemSchema,omitempty"`

	// conditional: Then runs only when When holds against the whole record
	When *condition.Condition `json:"when,omitempty"`
	Then []Rule               `json:"then,omitempty"`

	Message         string `json:"message,omitempty"`
	ContinueOnError bool   `json:"continueOnError,omitempty"`
	Warning         bool   `json:"warning,omitempty"`
}

// Schema maps dot-path field names to their rule lists.
type Schema map[string][]Rule

func Required() Rule                { return Rule{Type: RuleRequired} }
func OfType(t DataType) Rule        { return Rule{Type: RuleTypeCheck, DataType: t} }
func Min(limit float64) Rule        { return Rule{Type: RuleMin, Limit: limit} }
func Max(limit float64) Rule        { return Rule{Type: RuleMax, Limit: limit} }
func Range(min, max float64) Rule   { return Rule{Type: RuleRange, Min: min, Max: max} }
func Pattern(pattern string) Rule   { return Rule{Type: RulePattern, Pattern: pattern} }
func Enum(values ...any) Rule       { return Rule{Type: RuleEnum, Values: values} }
func ArrayOf(items ...Rule) Rule    { return Rule{Type: RuleArray, Items: items} }
func ArrayOfObjects(s Schema) Rule  { return Rule{Type: RuleArray, ItemSchema: s} }

// When runs rules only when cond holds against the whole record.
func When(cond condition.Condition, rules ...Rule) Rule {
	return Rule{Type: RuleConditional, When: &cond, Then: rules}
}

// WithMessage overrides the default failure message.
func (r Rule) WithMessage(msg string) Rule {
	r.Message = msg
	return r
}

// Continue keeps evaluating later rules after this one fails.
func (r Rule) Continue() Rule {
	r.ContinueOnError = true
	return r
}

// AsWarning reports failures as warnings instead of errors.
func (r Rule) AsWarning() Rule {
	r.Warning = true
	return r
}
