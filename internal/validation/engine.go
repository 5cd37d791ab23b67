// Package validation checks raw records against declarative per-field rule
// lists and reports field-level errors as data. It never returns an error.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"golang.org/x/text/unicode/norm"

	"github.com/kosarica/booking-calculator/internal/condition"
	"github.com/kosarica/booking-calculator/internal/fieldpath"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

var (
	// Swedish national numbers: +46 or 0, then 7-10 digits
	phoneRegex = regexp.MustCompile(`^(\+46|0)[1-9]\d{6,9}$`)
	zipRegex   = regexp.MustCompile(`^\d{5}$`)

	structValidator = validator.New()
)

// Config holds ValidationEngine options.
type Config struct {
	Debug bool `mapstructure:"debug"`
}

// ValueResult is the outcome of validating a single value.
type ValueResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Summary counts fields by outcome.
type Summary struct {
	TotalFields   int `json:"totalFields"`
	ValidFields   int `json:"validFields"`
	ErrorFields   int `json:"errorFields"`
	WarningFields int `json:"warningFields"`
}

// ObjectResult is the outcome of validating a record against a schema.
// Errors holds the first message for each invalid field; a field absent from
// Errors is valid.
type ObjectResult struct {
	IsValid     bool                `json:"isValid"`
	Errors      map[string]string   `json:"errors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
	Warnings    map[string][]string `json:"warnings"`
	Summary     Summary             `json:"summary"`
}

// Err converts a failed result into a VALIDATION_ERROR, or nil when valid.
func (r *ObjectResult) Err() error {
	if r.IsValid {
		return nil
	}
	fields := make([]string, 0, len(r.Errors))
	for f := range r.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	fieldErrors := make([]pricingerr.FieldError, 0, len(fields))
	for _, f := range fields {
		fieldErrors = append(fieldErrors, pricingerr.FieldError{Field: f, Message: r.Errors[f]})
	}
	return pricingerr.Validation(fieldErrors)
}

// Engine is the ValidationEngine. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	logger zerolog.Logger
	debug  bool
}

// NewEngine creates a validation engine.
func NewEngine(cfg Config, logger *zerolog.Logger) *Engine {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "validation_engine").Logger()
	}
	if cfg.Debug {
		l = l.Level(zerolog.DebugLevel)
	} else if l.GetLevel() < zerolog.InfoLevel {
		l = l.Level(zerolog.InfoLevel)
	}
	return &Engine{logger: l, debug: cfg.Debug}
}

// ValidateValue runs rules in order against value. It stops at the first
// failing rule unless that rule has ContinueOnError set. record is the whole
// record, used by conditional rules.
func (e *Engine) ValidateValue(value any, rules []Rule, record map[string]any) ValueResult {
	res := ValueResult{IsValid: true, Errors: []string{}}
	empty := isEmpty(value)

	for _, rule := range rules {
		// optional fields: only required and conditional rules see empty values
		if empty && rule.Type != RuleRequired && rule.Type != RuleConditional {
			continue
		}

		msgs := e.check(value, rule, record)
		if len(msgs) == 0 {
			continue
		}
		if rule.Warning {
			res.Warnings = append(res.Warnings, msgs...)
			continue
		}
		res.Errors = append(res.Errors, msgs...)
		if !rule.ContinueOnError {
			break
		}
	}

	if len(res.Errors) > 0 {
		res.IsValid = false
		res.Error = res.Errors[0]
	}
	return res
}

// ValidateObject applies ValidateValue to every field named in schema.
func (e *Engine) ValidateObject(data map[string]any, schema Schema) *ObjectResult {
	res := &ObjectResult{
		IsValid:     true,
		Errors:      make(map[string]string),
		FieldErrors: make(map[string][]string),
		Warnings:    make(map[string][]string),
	}

	fields := make([]string, 0, len(schema))
	for f := range schema {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value, _ := fieldpath.Get(data, field)
		vr := e.ValidateValue(value, schema[field], data)

		res.Summary.TotalFields++
		if len(vr.Warnings) > 0 {
			res.Warnings[field] = vr.Warnings
			res.Summary.WarningFields++
		}
		if !vr.IsValid {
			res.Errors[field] = vr.Error
			res.FieldErrors[field] = vr.Errors
			res.Summary.ErrorFields++
			continue
		}
		res.Summary.ValidFields++
	}

	res.IsValid = len(res.Errors) == 0
	if e.debug {
		e.logger.Debug().
			Int("fields", res.Summary.TotalFields).
			Int("errors", res.Summary.ErrorFields).
			Int("warnings", res.Summary.WarningFields).
			Msg("Validated object")
	}
	return res
}

func (e *Engine) check(value any, rule Rule, record map[string]any) []string {
	fail := func(def string) []string {
		if rule.Message != "" {
			return []string{rule.Message}
		}
		return []string{def}
	}

	switch rule.Type {
	case RuleRequired:
		if isEmpty(value) {
			return fail("is required")
		}
	case RuleTypeCheck:
		if !hasType(value, rule.DataType) {
			return fail(fmt.Sprintf("must be a valid %s", rule.DataType))
		}
	case RuleMin:
		if n, ok := measure(value); ok && n < rule.Limit {
			return fail(fmt.Sprintf("must be at least %s", formatNumber(rule.Limit)))
		}
	case RuleMax:
		if n, ok := measure(value); ok && n > rule.Limit {
			return fail(fmt.Sprintf("must be at most %s", formatNumber(rule.Limit)))
		}
	case RuleRange:
		if n, ok := measure(value); !ok || n < rule.Min || n > rule.Max {
			return fail(fmt.Sprintf("must be between %s and %s", formatNumber(rule.Min), formatNumber(rule.Max)))
		}
	case RulePattern:
		re, err := compilePattern(rule.Pattern)
		if err != nil {
			e.logger.Warn().Err(err).Str("pattern", rule.Pattern).Msg("Invalid validation pattern")
			return fail("has an invalid pattern rule")
		}
		if !re.MatchString(norm.NFC.String(cast.ToString(value))) {
			return fail("has an invalid format")
		}
	case RuleEnum:
		ok, _ := condition.Compare(condition.In, value, true, rule.Values)
		if !ok {
			return fail(fmt.Sprintf("must be one of: %s", joinValues(rule.Values)))
		}
	case RuleArray:
		return e.checkArray(value, rule, record, fail)
	case RuleConditional:
		if rule.When == nil {
			return nil
		}
		holds, err := condition.Evaluate(*rule.When, record)
		if err != nil {
			e.logger.Warn().Err(err).Msg("Conditional validation rule failed to evaluate")
			return nil
		}
		if !holds {
			return nil
		}
		nested := e.ValidateValue(value, rule.Then, record)
		if !nested.IsValid {
			if rule.Message != "" {
				return []string{rule.Message}
			}
			return nested.Errors
		}
	default:
		e.logger.Warn().Str("rule_type", string(rule.Type)).Msg("Unknown validation rule type")
	}
	return nil
}

func (e *Engine) checkArray(value any, rule Rule, record map[string]any, fail func(string) []string) []string {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fail("must be an array")
	}

	var msgs []string
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if len(rule.Items) > 0 {
			ir := e.ValidateValue(item, rule.Items, record)
			for _, m := range ir.Errors {
				msgs = append(msgs, fmt.Sprintf("item %d %s", i, m))
			}
		}
		if len(rule.ItemSchema) > 0 {
			obj, ok := item.(map[string]any)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("item %d must be an object", i))
				continue
			}
			or := e.ValidateObject(obj, rule.ItemSchema)
			fields := make([]string, 0, len(or.Errors))
			for f := range or.Errors {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				msgs = append(msgs, fmt.Sprintf("item %d %s %s", i, f, or.Errors[f]))
			}
		}
	}
	if len(msgs) > 0 && rule.Message != "" {
		return []string{rule.Message}
	}
	return msgs
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	if n, ok := value.(interface{ Float64() (float64, error) }); ok {
		_, err := n.Float64()
		return err == nil
	}
	return false
}

func hasType(value any, t DataType) bool {
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		return isNumber(value)
	case TypeInteger:
		if !isNumber(value) {
			return false
		}
		f := cast.ToFloat64(value)
		return f == math.Trunc(f)
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeDate:
		switch v := value.(type) {
		case time.Time:
			return !v.IsZero()
		case string:
			_, err := cast.ToTimeE(v)
			return err == nil
		}
		return false
	case TypeEmail:
		s, ok := value.(string)
		return ok && structValidator.Var(s, "required,email") == nil
	case TypePhone:
		s, ok := value.(string)
		return ok && phoneRegex.MatchString(compact(s))
	case TypeZipCode:
		s, ok := value.(string)
		return ok && zipRegex.MatchString(compact(s))
	case TypeArray:
		rv := reflect.ValueOf(value)
		return value != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)
	case TypeObject:
		rv := reflect.ValueOf(value)
		return value != nil && (rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct)
	}
	return false
}

// measure returns the numeric magnitude used by min/max/range: the number
// itself, the rune length of a string or the length of a collection.
func measure(value any) (float64, bool) {
	if isNumber(value) {
		return cast.ToFloat64(value), true
	}
	if s, ok := value.(string); ok {
		return float64(len([]rune(norm.NFC.String(strings.TrimSpace(s))))), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return float64(rv.Len()), true
	}
	return 0, false
}

func compact(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

func formatNumber(f float64) string {
	return cast.ToString(f)
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = cast.ToString(v)
	}
	return strings.Join(parts, ", ")
}

var patternCache sync.Map

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}
