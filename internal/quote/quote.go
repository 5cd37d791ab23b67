// Package quote runs one booking quote through validation, pricing and the
// rules engine, and folds the rules outcome back into the price.
package quote

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kosarica/booking-calculator/internal/pricing"
	"github.com/kosarica/booking-calculator/internal/pricingerr"
	"github.com/kosarica/booking-calculator/internal/rules"
	"github.com/kosarica/booking-calculator/internal/validation"
)

var tracer = otel.Tracer("github.com/kosarica/booking-calculator/internal/quote")

// EntryRules names the breakdown entry carrying the rules engine adjustment.
const EntryRules = "rules"

// ServiceSource resolves service definitions by id.
type ServiceSource interface {
	Service(id string) (*pricing.Service, error)
}

// Request is one quote request. Input holds the raw pricing fields (area,
// rooms, frequency, zipCode, addOns, windowCleaning, useRut, promoCode,
// date); Customer is optional.
type Request struct {
	ServiceID string         `json:"serviceId" binding:"required"`
	Input     map[string]any `json:"input" binding:"required"`
	Customer  map[string]any `json:"customer,omitempty"`
}

// Quote is the priced outcome of a Request.
type Quote struct {
	ID                 string                   `json:"id"`
	ServiceID          string                   `json:"serviceId"`
	Price              *pricing.PriceResult     `json:"price"`
	Rules              *rules.ApplyResult       `json:"rules"`
	Validation         *validation.ObjectResult `json:"validation"`
	CustomerValidation *validation.ObjectResult `json:"customerValidation,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
}

// Service is the quote pipeline.
type Service struct {
	services  ServiceSource
	validator *validation.Engine
	pricing   *pricing.Engine
	rules     *rules.Engine
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService wires the three engines into a pipeline.
func NewService(src ServiceSource, v *validation.Engine, p *pricing.Engine, r *rules.Engine, logger *zerolog.Logger) *Service {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "quote").Logger()
	}
	return &Service{services: src, validator: v, pricing: p, rules: r, logger: l, now: time.Now}
}

// Validation returns the validation engine.
func (s *Service) Validation() *validation.Engine { return s.validator }

// Pricing returns the pricing engine.
func (s *Service) Pricing() *pricing.Engine { return s.pricing }

// Rules returns the rules engine.
func (s *Service) Rules() *rules.Engine { return s.rules }

// ValidationRecord returns input with the service summary the pricing input
// schema expects under "service".
func ValidationRecord(input map[string]any, svc *pricing.Service) map[string]any {
	record := make(map[string]any, len(input)+1)
	for k, v := range input {
		record[k] = v
	}
	if svc != nil {
		record["service"] = map[string]any{
			"id":           svc.ID,
			"name":         svc.Name,
			"pricingModel": string(svc.ModelName()),
		}
	}
	return record
}

// Quote validates, prices and applies rules for one request. Validation
// failures return a VALIDATION_ERROR; no partial quote is ever returned.
func (s *Service) Quote(ctx context.Context, req Request) (*Quote, error) {
	ctx, span := tracer.Start(ctx, "quote.Quote")
	defer span.End()
	span.SetAttributes(attribute.String("quote.service_id", req.ServiceID))

	q, err := s.quote(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(pricingerr.KindOf(err)))
		s.logger.Debug().Err(err).Str("service_id", req.ServiceID).Msg("quote failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("quote.id", q.ID), attribute.Float64("quote.total", q.Price.TotalPrice))
	return q, nil
}

func (s *Service) quote(ctx context.Context, req Request) (*Quote, error) {
	svc, err := s.services.Service(req.ServiceID)
	if err != nil {
		return nil, err
	}

	checked := s.validator.ValidatePricingInput(ValidationRecord(req.Input, svc))
	if err := checked.Err(); err != nil {
		return nil, err
	}
	var customer *validation.ObjectResult
	if req.Customer != nil {
		customer = s.validator.ValidateCustomerInfo(req.Customer)
		if err := customer.Err(); err != nil {
			return nil, err
		}
	}

	in, err := pricing.InputFromRecord(req.Input, svc)
	if err != nil {
		return nil, err
	}
	price, err := s.pricing.CalculatePrice(ctx, in)
	if err != nil {
		return nil, err
	}

	outcome, err := s.rules.ApplyRules(ctx, rules.Context{
		CurrentPrice: price.TotalPrice,
		InputData:    price.Metadata.Input.Record(),
	})
	if err != nil {
		return nil, err
	}
	if len(outcome.AppliedRules) > 0 {
		price.ApplyRuleOutcome(EntryRules, outcome.FinalPrice, svc, outcome.RuleIDs()...)
	}

	q := &Quote{
		ID:                 uuid.NewString(),
		ServiceID:          svc.ID,
		Price:              price,
		Rules:              outcome,
		Validation:         checked,
		CustomerValidation: customer,
		CreatedAt:          s.now(),
	}
	s.logger.Info().
		Str("quote_id", q.ID).
		Str("service_id", svc.ID).
		Str("model", string(price.Metadata.PricingModel)).
		Float64("total", price.TotalPrice).
		Int("rules_applied", len(outcome.AppliedRules)).
		Bool("cached", price.Metadata.FromCache).
		Msg("quote calculated")
	return q, nil
}
