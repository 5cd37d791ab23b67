// Package condition evaluates field/operator/value condition trees against
// generic records. Both rule engines share it.
package condition

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"github.com/kosarica/booking-calculator/internal/fieldpath"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

// Operator names a comparison between a record field and a condition value.
type Operator string

const (
	Equals             Operator = "equals"
	NotEquals          Operator = "not_equals"
	GreaterThan        Operator = "greater_than"
	GreaterThanOrEqual Operator = "greater_than_or_equal"
	LessThan           Operator = "less_than"
	LessThanOrEqual    Operator = "less_than_or_equal"
	Contains           Operator = "contains"
	NotContains        Operator = "not_contains"
	In                 Operator = "in"
	NotIn              Operator = "not_in"
	Between            Operator = "between"
	NotBetween         Operator = "not_between"
	StartsWith         Operator = "starts_with"
	EndsWith           Operator = "ends_with"
	Regex              Operator = "regex"
	Exists             Operator = "exists"
	NotExists          Operator = "not_exists"
)

// Logic joins the children of a group condition.
type Logic string

const (
	And Logic = "AND"
	Or  Logic = "OR"
)

var aliases = map[string]Operator{
	"==": Equals, "eq": Equals,
	"!=": NotEquals, "ne": NotEquals,
	">": GreaterThan, "gt": GreaterThan,
	">=": GreaterThanOrEqual, "gte": GreaterThanOrEqual,
	"<": LessThan, "lt": LessThan,
	"<=": LessThanOrEqual, "lte": LessThanOrEqual,
}

// Condition is either a leaf (Field, Operator, Value) or a group (Logic,
// Conditions). A group without Logic is an AND group.
type Condition struct {
	Field      string      `json:"field,omitempty"`
	Operator   Operator    `json:"operator,omitempty"`
	Value      any         `json:"value,omitempty"`
	Logic      Logic       `json:"logic,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// IsGroup reports whether c combines child conditions.
func (c Condition) IsGroup() bool {
	return c.Logic != "" || len(c.Conditions) > 0
}

// Leaf builds a leaf condition.
func Leaf(field string, op Operator, value any) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

// AllOf builds an AND group.
func AllOf(conds ...Condition) Condition {
	return Condition{Logic: And, Conditions: conds}
}

// AnyOf builds an OR group.
func AnyOf(conds ...Condition) Condition {
	return Condition{Logic: Or, Conditions: conds}
}

// All evaluates conds with AND semantics. An empty list holds.
func All(conds []Condition, record map[string]any) (bool, error) {
	for _, c := range conds {
		ok, err := Evaluate(c, record)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Evaluate evaluates a single condition tree against record.
func Evaluate(c Condition, record map[string]any) (bool, error) {
	if c.IsGroup() {
		switch strings.ToUpper(string(c.Logic)) {
		case "", string(And):
			return All(c.Conditions, record)
		case string(Or):
			for _, child := range c.Conditions {
				ok, err := Evaluate(child, record)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		default:
			return false, pricingerr.Newf(pricingerr.KindInvalidInput, "unknown condition logic %q", c.Logic)
		}
	}

	if c.Field == "" {
		return false, pricingerr.New(pricingerr.KindMissingRequired, "condition field is required")
	}
	actual, found := fieldpath.Get(record, c.Field)
	return Compare(normalize(c.Operator), actual, found, c.Value)
}

func normalize(op Operator) Operator {
	if alias, ok := aliases[strings.ToLower(string(op))]; ok {
		return alias
	}
	return Operator(strings.ToLower(string(op)))
}

// Compare applies op to a resolved field value. found is false when the
// field is absent from the record.
func Compare(op Operator, actual any, found bool, expected any) (bool, error) {
	switch op {
	case Exists:
		return found && actual != nil, nil
	case NotExists:
		return !found || actual == nil, nil
	}
	if !found {
		// absent fields only satisfy the negative operators
		switch op {
		case NotEquals, NotContains, NotIn, NotBetween:
			return true, nil
		}
		return false, nil
	}

	switch op {
	case Equals:
		return equal(actual, expected), nil
	case NotEquals:
		return !equal(actual, expected), nil
	case GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual:
		a, okA := toNumber(actual)
		b, okB := toNumber(expected)
		if !okA || !okB {
			return false, nil
		}
		switch op {
		case GreaterThan:
			return a > b, nil
		case GreaterThanOrEqual:
			return a >= b, nil
		case LessThan:
			return a < b, nil
		default:
			return a <= b, nil
		}
	case Contains:
		return contains(actual, expected), nil
	case NotContains:
		return !contains(actual, expected), nil
	case In:
		return memberOf(actual, expected), nil
	case NotIn:
		return !memberOf(actual, expected), nil
	case Between:
		return between(actual, expected)
	case NotBetween:
		ok, err := between(actual, expected)
		return !ok && err == nil, err
	case StartsWith:
		return strings.HasPrefix(cast.ToString(actual), cast.ToString(expected)), nil
	case EndsWith:
		return strings.HasSuffix(cast.ToString(actual), cast.ToString(expected)), nil
	case Regex:
		re, err := compile(cast.ToString(expected))
		if err != nil {
			return false, err
		}
		return re.MatchString(cast.ToString(actual)), nil
	}
	return false, pricingerr.Newf(pricingerr.KindInvalidInput, "unsupported condition operator %q", op)
}

func toNumber(v any) (float64, bool) {
	switch v.(type) {
	case nil, bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

func equal(a, b any) bool {
	if fa, ok := toNumber(a); ok {
		if fb, ok := toNumber(b); ok {
			return fa == fb
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return sa == sb
		}
	}
	return reflect.DeepEqual(a, b)
}

func elements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func contains(actual, expected any) bool {
	if list, ok := elements(actual); ok {
		for _, item := range list {
			if equal(item, expected) {
				return true
			}
		}
		return false
	}
	if s, ok := actual.(string); ok {
		return strings.Contains(s, cast.ToString(expected))
	}
	return false
}

func memberOf(actual, expected any) bool {
	list, ok := elements(expected)
	if !ok {
		return equal(actual, expected)
	}
	for _, item := range list {
		if equal(actual, item) {
			return true
		}
	}
	return false
}

func between(actual, expected any) (bool, error) {
	bounds, ok := elements(expected)
	if !ok || len(bounds) != 2 {
		return false, pricingerr.New(pricingerr.KindInvalidInput, "between expects a [min, max] pair")
	}
	lo, okLo := toNumber(bounds[0])
	hi, okHi := toNumber(bounds[1])
	if !okLo || !okHi {
		return false, pricingerr.New(pricingerr.KindInvalidInput, "between bounds must be numeric")
	}
	v, okV := toNumber(actual)
	if !okV {
		return false, nil
	}
	return v >= lo && v <= hi, nil
}

var regexCache sync.Map

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, pricingerr.Wrap(pricingerr.KindInvalidInput, err, fmt.Sprintf("invalid regex %q", pattern))
	}
	regexCache.Store(pattern, re)
	return re, nil
}
