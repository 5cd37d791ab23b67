// Package pricing computes booking prices from a service definition and a
// quote input: one pricing-model calculator, the universal modifiers, an
// internal rule pass, a bounded result cache and extension processors.
package pricing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/kosarica/booking-calculator/internal/pricingerr"
)

var tracer = otel.Tracer("github.com/kosarica/booking-calculator/internal/pricing")

// Processor is an extension stage run over every assembled result, in
// registration order. It receives a private copy and returns the result to
// pass on.
type Processor func(ctx context.Context, result *PriceResult) (*PriceResult, error)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the clock used for default booking dates and
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine is the PricingEngine. It is safe for concurrent use.
type Engine struct {
	cfg     *Config
	rutZips map[string]struct{}
	cache   *resultCache
	group   singleflight.Group
	metrics *MetricsRecorder
	logger  zerolog.Logger
	now     func() time.Time

	mu         sync.RWMutex
	processors []Processor
}

// NewEngine creates a pricing engine. A nil cfg uses Defaults().
func NewEngine(cfg *Config, logger *zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "pricing_engine").Logger()
	}
	if cfg.Debug {
		l = l.Level(zerolog.DebugLevel)
	} else if l.GetLevel() < zerolog.InfoLevel {
		l = l.Level(zerolog.InfoLevel)
	}
	e := &Engine{
		cfg:     cfg,
		rutZips: make(map[string]struct{}, len(cfg.RutEligibleZips)),
		cache:   newResultCache(cfg.CacheSize, cfg.CacheTTL),
		metrics: NewMetricsRecorder(),
		logger:  l,
		now:     time.Now,
	}
	for _, z := range cfg.RutEligibleZips {
		e.rutZips[compactZip(z)] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration. It must not be modified.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Use appends extension processors.
func (e *Engine) Use(processors ...Processor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processors = append(e.processors, processors...)
}

// CalculatePrice prices one quote input. Results are cached by a hash of the
// normalized input; extension processors run on every call, cached or not.
func (e *Engine) CalculatePrice(ctx context.Context, in *Input) (*PriceResult, error) {
	if in == nil {
		return nil, pricingerr.Validation([]pricingerr.FieldError{{Field: "input", Message: "is required"}})
	}
	model := in.Service.ModelName()
	ctx, span := tracer.Start(ctx, "pricing.CalculatePrice")
	defer span.End()
	span.SetAttributes(attribute.String("pricing.model", string(model)))

	result, err := e.calculate(in)
	if err != nil {
		kind := string(pricingerr.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		e.metrics.RecordError(model, kind)
		return nil, err
	}

	result, err = e.runProcessors(ctx, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "processor failed")
		e.metrics.RecordError(model, string(pricingerr.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("pricing.total", result.TotalPrice),
		attribute.Bool("pricing.cached", result.Metadata.FromCache),
	)
	return result, nil
}

// calculate returns a private copy of the cached or freshly computed result.
// Invalid input is rejected before the cache is consulted.
func (e *Engine) calculate(in *Input) (*PriceResult, error) {
	if err := e.checkInput(in); err != nil {
		return nil, err
	}
	normalized := normalize(in, e.now())
	key := ComputeCacheKey(normalized, in.Service)

	if cached, ok := e.cache.get(key); ok {
		cached.Metadata.FromCache = true
		cached.Metadata.Input = *normalized
		e.metrics.RecordCacheHit(cached.Metadata.PricingModel)
		e.logger.Debug().Str("cache_key", key).Msg("price served from cache")
		return cached, nil
	}
	if e.cache != nil {
		e.metrics.RecordCacheMiss()
	}

	v, err, shared := e.group.Do(key, func() (any, error) {
		start := time.Now()
		r, err := e.compute(normalized, in.Service, key)
		if err != nil {
			return nil, err
		}
		e.cache.put(key, r)
		e.metrics.SetCacheEntries(e.cache.len())
		e.metrics.RecordCalculation(r.Metadata.PricingModel, time.Since(start), r.TotalPrice)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.logger.Debug().Str("cache_key", key).Msg("joined in-flight calculation")
	}
	result := v.(*PriceResult).Clone()
	result.Metadata.Input = *normalized
	return result, nil
}

// compute runs model dispatch, modifiers, internal rules and floors.
func (e *Engine) compute(in *NormalizedInput, svc *Service, key string) (*PriceResult, error) {
	if svc.Model == nil {
		return nil, pricingerr.New(pricingerr.KindInvalidService, "service has no pricing model").
			WithDetail("serviceId", svc.ID)
	}
	if err := svc.Model.Check(); err != nil {
		return nil, err
	}
	base, err := svc.Model.Calculate(in, svc)
	if err != nil {
		return nil, err
	}
	if !finite(base) || base < 0 {
		return nil, pricingerr.Newf(pricingerr.KindCalculationError, "%s produced an invalid base price", svc.Model.Name()).
			WithDetail("serviceId", svc.ID).
			WithDetail("basePrice", base)
	}
	e.logger.Debug().
		Str("service_id", svc.ID).
		Str("model", string(svc.Model.Name())).
		Float64("base", base).
		Msg("base price calculated")

	result := &PriceResult{
		BasePrice:    base,
		Breakdown:    []BreakdownEntry{},
		Discounts:    []Discount{},
		AddOns:       []AddOnCharge{},
		AppliedRules: []string{},
	}
	result.Adjust(EntryBase, base)
	if base == 0 {
		result.Breakdown = append(result.Breakdown, BreakdownEntry{Name: EntryBase, Amount: 0})
	}

	if err := e.applyModifiers(result, in, svc); err != nil {
		return nil, err
	}
	if err := e.applyRules(result, in); err != nil {
		return nil, err
	}
	applyFloors(result, svc)

	if !finite(result.TotalPrice) {
		return nil, pricingerr.New(pricingerr.KindCalculationError, "calculation produced a non-finite total").
			WithDetail("serviceId", svc.ID)
	}

	vat := e.cfg.VatRate
	if svc.VatRate != nil {
		vat = *svc.VatRate
	}
	result.VatRate = vat
	result.VatAmount = vatPortion(result.TotalPrice, vat)
	result.Metadata = Metadata{
		CalculatedAt: e.now(),
		CacheKey:     key,
		ServiceID:    svc.ID,
		PricingModel: svc.Model.Name(),
		Input:        *in,
	}
	return result, nil
}

func (e *Engine) runProcessors(ctx context.Context, result *PriceResult) (*PriceResult, error) {
	e.mu.RLock()
	processors := append([]Processor(nil), e.processors...)
	e.mu.RUnlock()

	for i, p := range processors {
		next, err := p(ctx, result)
		if err != nil {
			var perr *pricingerr.Error
			if errors.As(err, &perr) {
				return nil, err
			}
			return nil, pricingerr.Wrap(pricingerr.KindCalculationError, err, "extension processor failed").
				WithDetail("processor", i)
		}
		if next != nil {
			result = next
		}
	}
	return result, nil
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cache.purge()
	e.metrics.SetCacheEntries(0)
	e.logger.Info().Msg("price cache cleared")
}

// CacheStats returns a snapshot of the result cache.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.stats()
}
