// Package rules is the general pricing rules engine: an in-memory registry
// of typed, prioritized rules folded over a running price.
package rules

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kosarica/booking-calculator/internal/condition"
	"github.com/kosarica/booking-calculator/internal/pkg/cuid2"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

var tracer = otel.Tracer("github.com/kosarica/booking-calculator/internal/rules")

// DefaultHistorySize bounds the execution history.
const DefaultHistorySize = 100

// Config holds rules engine options.
type Config struct {
	ContinueOnError bool `mapstructure:"continue_on_error"`
	HistorySize     int  `mapstructure:"history_size"`
	Debug           bool `mapstructure:"debug"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{HistorySize: DefaultHistorySize}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.HistorySize < 1 {
		return ErrInvalidConfig{Field: "history_size", Reason: "must be at least 1"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the clock used for validity windows and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the rule id generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// Engine is the PricingRulesEngine. It is safe for concurrent use.
type Engine struct {
	cfg     Config
	logger  zerolog.Logger
	metrics *MetricsRecorder
	now     func() time.Time
	newID   func() string

	mu       sync.RWMutex
	rules    map[string]*Rule
	handlers map[RuleType]Handler
	seq      uint64

	historyMu sync.Mutex
	history   []HistoryEntry
	next      int
	full      bool
}

// NewEngine creates a rules engine with the built-in handlers registered.
func NewEngine(cfg Config, logger *zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg.HistorySize == 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "rules_engine").Logger()
	}
	if cfg.Debug {
		l = l.Level(zerolog.DebugLevel)
	} else if l.GetLevel() < zerolog.InfoLevel {
		l = l.Level(zerolog.InfoLevel)
	}
	e := &Engine{
		cfg:     cfg,
		logger:  l,
		metrics: NewMetricsRecorder(),
		now:     time.Now,
		newID:   cuid2.NewRuleID,
		rules:   make(map[string]*Rule),
		history: make([]HistoryEntry, cfg.HistorySize),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = builtinHandlers(func() time.Time { return e.now() })
	return e, nil
}

// ValidateRule checks a rule's structural completeness.
func ValidateRule(r *Rule) error {
	var errs []pricingerr.FieldError
	if r.Name == "" {
		errs = append(errs, pricingerr.FieldError{Field: "name", Message: "is required"})
	}
	if r.Type == "" {
		errs = append(errs, pricingerr.FieldError{Field: "type", Message: "is required"})
	}
	if r.Action.Type == "" {
		errs = append(errs, pricingerr.FieldError{Field: "action.type", Message: "is required"})
	}
	if math.IsNaN(r.Action.Value) || math.IsInf(r.Action.Value, 0) {
		errs = append(errs, pricingerr.FieldError{Field: "action.value", Message: "must be a finite number"})
	}
	if r.ValidFrom != nil && r.ValidUntil != nil && r.ValidUntil.Before(*r.ValidFrom) {
		errs = append(errs, pricingerr.FieldError{Field: "validUntil", Message: "must not be before validFrom"})
	}
	if len(errs) > 0 {
		return pricingerr.Validation(errs)
	}
	return nil
}

// AddRule registers a copy of rule and returns its id. A missing id is
// generated and a zero priority becomes PriorityMedium.
func (e *Engine) AddRule(rule Rule) (string, error) {
	if err := ValidateRule(&rule); err != nil {
		return "", err
	}
	r := rule.clone()
	if r.Priority == 0 {
		r.Priority = PriorityMedium
	}
	now := e.now()
	r.CreatedAt, r.UpdatedAt = now, now

	e.mu.Lock()
	defer e.mu.Unlock()
	if r.ID == "" {
		r.ID = e.newID()
	}
	if _, exists := e.rules[r.ID]; exists {
		return "", pricingerr.Newf(pricingerr.KindValidationError, "rule %s already exists", r.ID).
			WithDetail("ruleId", r.ID)
	}
	e.seq++
	r.seq = e.seq
	e.rules[r.ID] = r
	e.metrics.SetRuleCount(len(e.rules))
	e.logger.Debug().Str("rule_id", r.ID).Str("type", string(r.Type)).Int("priority", r.Priority).Msg("rule added")
	return r.ID, nil
}

// UpdateRule applies patch to a copy of the rule, validates it and stores
// it. The id and registration order never change.
func (e *Engine) UpdateRule(id string, patch func(*Rule) error) (*Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur, ok := e.rules[id]
	if !ok {
		return nil, notFound(id)
	}
	next := cur.clone()
	if err := patch(next); err != nil {
		return nil, pricingerr.Wrap(pricingerr.KindValidationError, err, "invalid rule update").WithDetail("ruleId", id)
	}
	if err := ValidateRule(next); err != nil {
		return nil, err
	}
	next.ID, next.seq, next.CreatedAt = cur.ID, cur.seq, cur.CreatedAt
	if next.Priority == 0 {
		next.Priority = PriorityMedium
	}
	next.UpdatedAt = e.now()
	e.rules[id] = next
	e.logger.Debug().Str("rule_id", id).Msg("rule updated")
	return next.clone(), nil
}

// RemoveRule deletes a rule.
func (e *Engine) RemoveRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rules[id]; !ok {
		return notFound(id)
	}
	delete(e.rules, id)
	e.metrics.SetRuleCount(len(e.rules))
	e.logger.Debug().Str("rule_id", id).Msg("rule removed")
	return nil
}

// GetRule returns a copy of a rule.
func (e *Engine) GetRule(id string) (*Rule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rules[id]
	if !ok {
		return nil, notFound(id)
	}
	return r.clone(), nil
}

// GetRules returns copies of every rule in application order.
func (e *Engine) GetRules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Rule, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.clone())
	}
	sortRules(out)
	return out
}

// EnableRule enables a rule.
func (e *Engine) EnableRule(id string) error {
	return e.setEnabled(id, true)
}

// DisableRule disables a rule without removing it.
func (e *Engine) DisableRule(id string) error {
	return e.setEnabled(id, false)
}

func (e *Engine) setEnabled(id string, enabled bool) error {
	_, err := e.UpdateRule(id, func(r *Rule) error {
		r.Enabled = &enabled
		return nil
	})
	return err
}

// RegisterRuleHandler installs a handler for a rule type, replacing any
// built-in handler for it.
func (e *Engine) RegisterRuleHandler(t RuleType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[t] = h
}

func notFound(id string) error {
	return pricingerr.Newf(pricingerr.KindNotFound, "rule %s not found", id).WithDetail("ruleId", id)
}

// sortRules orders by ascending priority, then registration order.
func sortRules(rs []*Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Priority != rs[j].Priority {
			return rs[i].Priority < rs[j].Priority
		}
		return rs[i].seq < rs[j].seq
	})
}

// candidates returns the enabled rules whose validity window contains now,
// in application order, together with a snapshot of the handlers.
func (e *Engine) candidates(now time.Time) ([]*Rule, map[RuleType]Handler) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Rule, 0, len(e.rules))
	for _, r := range e.rules {
		if r.IsEnabled() && r.ActiveAt(now) {
			out = append(out, r.clone())
		}
	}
	handlers := make(map[RuleType]Handler, len(e.handlers))
	for t, h := range e.handlers {
		handlers[t] = h
	}
	sortRules(out)
	return out, handlers
}

// ApplyRules folds the applicable rules over rc.CurrentPrice in priority
// order. Conditions are evaluated against the running price, so each rule
// sees the effect of the rules before it. A failing handler aborts the pass
// unless ContinueOnError is set, in which case the rule is skipped.
func (e *Engine) ApplyRules(ctx context.Context, rc Context) (*ApplyResult, error) {
	_, span := tracer.Start(ctx, "rules.ApplyRules")
	defer span.End()

	began := time.Now()
	start := e.now()
	if math.IsNaN(rc.CurrentPrice) || math.IsInf(rc.CurrentPrice, 0) || rc.CurrentPrice < 0 {
		err := pricingerr.Validation([]pricingerr.FieldError{{Field: "currentPrice", Message: "must be a finite non-negative number"}})
		span.SetStatus(codes.Error, string(pricingerr.KindValidationError))
		return nil, err
	}

	rules, handlers := e.candidates(start)
	span.SetAttributes(attribute.Int("rules.candidates", len(rules)))

	result := &ApplyResult{
		OriginalPrice: rc.CurrentPrice,
		FinalPrice:    rc.CurrentPrice,
		AppliedRules:  []AppliedRule{},
		ExecutionLog:  []LogEntry{},
	}
	price := rc.CurrentPrice

	for _, r := range rules {
		next, meta, skip, err := e.applyOne(r, handlers, &rc, price)
		if err != nil {
			e.metrics.RecordRuleError(r.Type)
			if e.cfg.ContinueOnError {
				e.logger.Warn().Err(err).Str("rule_id", r.ID).Msg("rule failed, skipping")
				result.SkippedRules = append(result.SkippedRules, SkippedRule{RuleID: r.ID, Error: err.Error()})
				continue
			}
			e.record(result, price, len(rules), err)
			span.RecordError(err)
			span.SetStatus(codes.Error, string(pricingerr.KindRuleError))
			return nil, err
		}
		if skip {
			continue
		}
		result.AppliedRules = append(result.AppliedRules, AppliedRule{
			RuleID:      r.ID,
			Name:        r.Name,
			Type:        r.Type,
			PriceBefore: price,
			PriceAfter:  next,
			Adjustment:  round2Float(next - price),
		})
		result.ExecutionLog = append(result.ExecutionLog, LogEntry{
			RuleID:      r.ID,
			RuleName:    r.Name,
			RuleType:    r.Type,
			PriceBefore: price,
			PriceAfter:  next,
			Timestamp:   e.now(),
			Metadata:    meta,
		})
		e.metrics.RecordRuleApplied(r.Type)
		e.logger.Debug().
			Str("rule_id", r.ID).
			Str("type", string(r.Type)).
			Float64("before", price).
			Float64("after", next).
			Msg("rule applied")
		price = next
	}

	result.FinalPrice = price
	result.TotalAdjustment = round2Float(price - rc.CurrentPrice)
	e.record(result, price, len(rules), nil)
	e.metrics.RecordPass(time.Since(began), len(result.AppliedRules))
	span.SetAttributes(
		attribute.Int("rules.applied", len(result.AppliedRules)),
		attribute.Float64("rules.final_price", price),
	)
	return result, nil
}

// applyOne evaluates a rule's conditions against the running price and runs
// its handler. skip is true when the rule does not apply.
func (e *Engine) applyOne(r *Rule, handlers map[RuleType]Handler, rc *Context, price float64) (float64, map[string]any, bool, error) {
	ok, err := condition.All(r.Conditions, rc.record(price))
	if err != nil {
		return 0, nil, false, ruleError(r, err, "condition evaluation failed")
	}
	if !ok {
		e.logger.Debug().Str("rule_id", r.ID).Msg("rule conditions not met")
		return price, nil, true, nil
	}
	h, ok := handlers[r.Type]
	if !ok {
		return 0, nil, false, ruleError(r, fmt.Errorf("no handler registered for rule type %q", r.Type), "rule has no handler")
	}
	res, err := h(r, &Context{CurrentPrice: price, InputData: rc.InputData})
	if err != nil {
		return 0, nil, false, ruleError(r, err, "rule handler failed")
	}
	if res.Skipped {
		e.logger.Debug().Str("rule_id", r.ID).Interface("metadata", res.Metadata).Msg("rule handler skipped")
		return price, nil, true, nil
	}
	next := res.NewPrice
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return 0, nil, false, ruleError(r, fmt.Errorf("handler returned %v", next), "rule produced an invalid price")
	}
	if next < 0 {
		next = 0
	}
	return round2Float(next), res.Metadata, false, nil
}

func ruleError(r *Rule, err error, msg string) error {
	return pricingerr.Wrap(pricingerr.KindRuleError, err, msg).
		WithDetail("ruleId", r.ID).
		WithDetail("ruleType", string(r.Type))
}

func round2Float(v float64) float64 {
	return round2(decimal.NewFromFloat(v))
}
